// Package stock contiene el cálculo puro del ledger de inventario: progresión
// antes/después de cada movimiento, stock final desde un valor inicial y las
// utilidades de orden y validación. Ninguna función hace I/O; todo es
// determinista y testeable sin base de datos.
package stock

import (
	"fmt"
	"sort"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
)

// ProgressionUpdate es el resultado del cálculo para un movimiento: los
// valores antes/después que deben persistirse.
type ProgressionUpdate struct {
	MovementID  string
	StockBefore int
	StockAfter  int
}

// ComputeProgression recorre los movimientos ya ordenados por fecha ascendente
// y calcula StockBefore/StockAfter encadenados partiendo de un total corrido 0:
//
//	StockAfter = StockBefore + Quantity; el siguiente StockBefore = StockAfter.
//
// El total corrido puede quedar negativo aquí: el piso en cero es una política
// de persistencia (ver ClampStock), no del cálculo. No reordena la entrada.
func ComputeProgression(movements []entity.StockMovement) []ProgressionUpdate {
	running := 0
	updates := make([]ProgressionUpdate, 0, len(movements))
	for _, m := range movements {
		before := running
		after := running + m.Quantity
		updates = append(updates, ProgressionUpdate{
			MovementID:  m.ID,
			StockBefore: before,
			StockAfter:  after,
		})
		running = after
	}
	return updates
}

// ComputeFinalStock calcula el stock resultante partiendo de un valor inicial
// conocido y sumando los movimientos. Nunca retorna negativo.
func ComputeFinalStock(initialStock int, movements []entity.StockMovement) int {
	total := 0
	for _, m := range movements {
		total += m.Quantity
	}
	return ClampStock(initialStock + total)
}

// ClampStock es la política de piso no-negativo: toda cantidad que se persiste
// como stock de un producto pasa por aquí. Una venta que sobregire el stock se
// recorta a cero en lugar de rechazarse (regla heredada del POS original;
// centralizada en esta función para poder cambiarla en un solo lugar).
func ClampStock(qty int) int {
	if qty < 0 {
		return 0
	}
	return qty
}

// SortByDate retorna una copia de los movimientos ordenada por CreatedAt.
// El orden es estable: ante fechas iguales se conserva el orden de entrada.
func SortByDate(movements []entity.StockMovement, ascending bool) []entity.StockMovement {
	sorted := make([]entity.StockMovement, len(movements))
	copy(sorted, movements)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[j].CreatedAt.Before(sorted[i].CreatedAt)
	})
	return sorted
}

// IsInitialMovement indica si un movimiento representa el stock inicial del
// producto, por tipo o por referencia (las dos convenciones conviven en datos
// históricos).
func IsInitialMovement(m entity.StockMovement) bool {
	return m.Type == entity.MovementTypeInitial || m.ReferenceType == entity.ReferenceTypeInitial
}

// MovementDraft es un movimiento parcial por validar antes de insertarlo.
// Quantity es puntero para distinguir "cero" de "no enviado".
type MovementDraft struct {
	ProductID string
	ShopID    string
	Type      string
	Quantity  *int
}

// ValidateMovement retorna la lista de errores de campos faltantes. No retorna
// error: el caller decide cómo reaccionar (rechazar, registrar y continuar...).
func ValidateMovement(draft MovementDraft) []string {
	var errs []string
	if draft.ProductID == "" {
		errs = append(errs, "product_id is required")
	}
	if draft.ShopID == "" {
		errs = append(errs, "shop_id is required")
	}
	if draft.Type == "" {
		errs = append(errs, "type is required")
	}
	if draft.Quantity == nil {
		errs = append(errs, "quantity is required")
	}
	return errs
}

// DraftOf construye el borrador de validación de un movimiento ya armado.
func DraftOf(m *entity.StockMovement) MovementDraft {
	qty := m.Quantity
	return MovementDraft{
		ProductID: m.ProductID,
		ShopID:    m.ShopID,
		Type:      m.Type,
		Quantity:  &qty,
	}
}

// RepairStrategy identifica las dos estrategias de reparación del ledger, que
// usan verdades de base distintas y pueden no coincidir:
//
//   - ReplayFromZero: reconstruye antes/después reproduciendo el ledger desde 0
//     (la pasada recalculate; es la estrategia canónica).
//   - TrustCurrentAsInitial: toma el stock_qty actual del producto como valor
//     inicial y le suma los movimientos no-iniciales.
type RepairStrategy string

const (
	RepairReplayFromZero        RepairStrategy = "replay_from_zero"
	RepairTrustCurrentAsInitial RepairStrategy = "trust_current_as_initial"
)

// Summary resume el estado del ledger de un producto (se usa en el endpoint de
// historial y en el reporte kardex).
type Summary struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	InitialStock   int    `json:"initialStock"`
	TotalMovements int    `json:"totalMovements"`
	FinalStock     int    `json:"finalStock"`
	MovementsCount int    `json:"movementsCount"`
}

// Summarize calcula el resumen del ledger de un producto a partir de sus
// movimientos, tomando StockQty como valor inicial.
func Summarize(product *entity.Product, movements []entity.StockMovement) Summary {
	total := 0
	for _, m := range movements {
		total += m.Quantity
	}
	return Summary{
		ProductID:      product.ID,
		ProductName:    product.Name,
		InitialStock:   product.StockQty,
		TotalMovements: total,
		FinalStock:     ClampStock(product.StockQty + total),
		MovementsCount: len(movements),
	}
}

// String implementa fmt.Stringer para logs.
func (s Summary) String() string {
	return fmt.Sprintf("%s: inicial=%d movimientos=%d final=%d", s.ProductName, s.InitialStock, s.TotalMovements, s.FinalStock)
}
