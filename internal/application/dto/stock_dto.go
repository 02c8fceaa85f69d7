package dto

import (
	"time"

	"github.com/jhoicas/pos-ledger-api/internal/domain/stock"
)

// Operaciones de mantenimiento del ledger aceptadas por POST /api/stock/manage.
const (
	OperationSyncInitial            = "sync-initial"
	OperationRecalculate            = "recalculate"
	OperationRecalculateFromInitial = "recalculate-from-initial"
	OperationFullSync               = "full-sync"
)

// ManageStockRequest selector de operación de mantenimiento.
type ManageStockRequest struct {
	Operation string `json:"operation"`
}

// ProcessingError identifica el fallo de un producto o movimiento dentro de
// una pasada de reconciliación.
type ProcessingError struct {
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName,omitempty"`
	MovementID  string `json:"movementId,omitempty"`
	Error       string `json:"error"`
}

// ProcessingStats es el reporte de una pasada de reconciliación. Las pasadas
// siempre terminan y reportan: el caller debe inspeccionar TotalErrors, no el
// status HTTP, para detectar fallos parciales.
type ProcessingStats struct {
	TotalProducts  int               `json:"totalProducts"`
	TotalProcessed int               `json:"totalProcessed"`
	TotalErrors    int               `json:"totalErrors"`
	Errors         []ProcessingError `json:"errors,omitempty"`
}

// Fail registra el fallo de un producto y lo cuenta.
func (s *ProcessingStats) Fail(e ProcessingError) {
	s.TotalErrors++
	s.Errors = append(s.Errors, e)
}

// ManageStockResponse respuesta del endpoint de mantenimiento.
type ManageStockResponse struct {
	Operation string           `json:"operation"`
	Stats     *ProcessingStats `json:"stats"`
}

// BackfillStats reporte del backfill de movimientos históricos.
type BackfillStats struct {
	Processed        int `json:"processed"`
	Skipped          int `json:"skipped"`
	MovementsCreated int `json:"movementsCreated"`
	Errors           int `json:"errors"`
}

// StockMovementDTO representación JSON de un movimiento del ledger.
type StockMovementDTO struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	ShopID        string    `json:"shop_id"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	StockBefore   int       `json:"stock_before"`
	StockAfter    int       `json:"stock_after"`
	ReferenceType string    `json:"reference_type,omitempty"`
	ReferenceID   string    `json:"reference_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// MovementHistoryResponse historial de movimientos de un producto con el
// resumen del ledger.
type MovementHistoryResponse struct {
	Product   ProductResponse    `json:"product"`
	Movements []StockMovementDTO `json:"movements"`
	Summary   stock.Summary      `json:"summary"`
}
