package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una transacción POS. Solo las completadas generan movimientos.
const (
	TransactionStatusCompleted = "completed"
	TransactionStatusCancelled = "cancelled"
	TransactionStatusRefunded  = "refunded"
)

// TransactionItem es una línea de la venta. Se guarda dentro del JSONB items
// de la transacción, igual que en el esquema original del POS.
type TransactionItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Transaction es una venta registrada en el POS. Para el motor de stock es un
// disparador inmutable: una vez emitidos movimientos para su ID, reprocesarla
// debe ser un no-op (clave de idempotencia: reference_id == Transaction.ID y
// reference_type == "transaction").
type Transaction struct {
	ID            string
	ShopID        string
	UserID        string
	CustomerID    string // "" = venta anónima
	Items         []TransactionItem
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string // cash, card, transfer
	Status        string
	CreatedAt     time.Time
}
