package repository

import (
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/stock"
)

// MovementListOptions controla el listado de movimientos de un producto.
type MovementListOptions struct {
	ExcludeInitial bool // omite el movimiento de stock inicial
	Descending     bool // por defecto ascendente por created_at
}

// MovementUpdateError es el fallo de una actualización individual dentro de
// un batch.
type MovementUpdateError struct {
	MovementID string
	Err        string
}

// BatchUpdateResult acumula el resultado de un batch: cuántas filas se
// actualizaron y qué actualizaciones fallaron. El batch no es atómico como
// conjunto; cada fila se aplica por separado.
type BatchUpdateResult struct {
	Updated int
	Errors  []MovementUpdateError
}

// UpsertInitialResult indica qué rama tomó UpsertInitial.
type UpsertInitialResult struct {
	Created bool
	Updated bool
}

// StockMovementRepository define el puerto de persistencia del ledger de
// movimientos. Append-only en operación normal; solo las pasadas de
// reparación usan BatchUpdateProgression y UpsertInitial.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	// ListByProduct retorna los movimientos de un producto según las
	// opciones. Slice vacío (no error) cuando el producto no tiene.
	ListByProduct(productID string, opts MovementListOptions) ([]entity.StockMovement, error)
	// GetInitial retorna el movimiento de stock inicial del producto, o nil
	// sin error cuando no existe (caso distinto de un fallo de consulta).
	GetInitial(productID string) (*entity.StockMovement, error)
	// BatchUpdateProgression aplica cada par antes/después calculado por la
	// pasada de recálculo, acumulando fallos por fila en vez de abortar.
	BatchUpdateProgression(updates []stock.ProgressionUpdate) (BatchUpdateResult, error)
	// UpsertInitial sobreescribe el movimiento inicial si existe, o lo crea
	// fechado en la creación del producto (no "ahora") para conservar el
	// orden histórico.
	UpsertInitial(product *entity.Product, initialStock int) (UpsertInitialResult, error)
	// InsertSale inserta un movimiento de venta respetando la restricción de
	// unicidad (product_id, reference_type, reference_id). Retorna false sin
	// error si ya existía uno para esa referencia (ON CONFLICT DO NOTHING):
	// esa restricción es la clave de idempotencia del checkout y el backfill.
	InsertSale(movement *entity.StockMovement) (inserted bool, err error)
	// ExistsForReference verifica si un producto ya tiene un movimiento para
	// una referencia dada (guardia de idempotencia por línea).
	ExistsForReference(productID, referenceType, referenceID string) (bool, error)
	// AnyForReference verifica si alguna línea de la referencia ya generó
	// movimientos (guardia por transacción del backfill).
	AnyForReference(referenceType, referenceID string) (bool, error)
}
