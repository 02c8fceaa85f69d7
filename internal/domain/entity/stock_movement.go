package entity

import "time"

// Tipos de movimiento del ledger de stock.
const (
	MovementTypeInitial      = "initial"       // stock inicial del producto
	MovementTypeSale         = "sale"          // venta (checkout POS)
	MovementTypePurchase     = "purchase"      // compra a proveedor
	MovementTypeRestock      = "restock"       // reposición
	MovementTypeOpname       = "opname"        // conteo físico / stocktake
	MovementTypeCancelReturn = "cancel_return" // devolución por cancelación
	MovementTypeAdjustment   = "adjustment"    // ajuste manual
)

// Valores de ReferenceType que el motor reconoce.
const (
	ReferenceTypeInitial     = "initial stock"
	ReferenceTypeTransaction = "transaction"
)

// StockMovement es una entrada append-only del ledger: un cambio con signo en
// el stock de un producto, con snapshot del total corrido antes y después.
// Invariante por producto (ordenado por CreatedAt ascendente):
//
//	StockAfter[i]    == StockBefore[i] + Quantity[i]
//	StockBefore[i+1] == StockAfter[i]
//
// El primer movimiento (el inicial) tiene StockBefore = 0.
// Solo las pasadas de reparación mutan movimientos existentes; la operación
// normal (checkout) únicamente agrega.
type StockMovement struct {
	ID            string
	ProductID     string
	ShopID        string // tenant denormalizado
	Type          string
	Quantity      int // positivo = entrada, negativo = salida
	StockBefore   int
	StockAfter    int
	ReferenceType string // "" = sin referencia (NULL en DB)
	ReferenceID   string // id de la entidad causante, ej. transacción
	CreatedBy     string // UserID, opcional
	CreatedAt     time.Time
}
