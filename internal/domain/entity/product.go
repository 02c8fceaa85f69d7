package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de una tienda (tenant).
// StockQty es la cantidad en mano actual; el invariante del ledger exige que
// siempre sea igual al resultado de plegar todos los movimientos del producto
// (del más antiguo al más reciente) partiendo del movimiento inicial.
// Escrituras directas pueden romperlo temporalmente; las pasadas de
// reconciliación existen para restaurarlo.
type Product struct {
	ID        string
	ShopID    string
	SKU       string // opcional, único por tienda cuando está presente
	Name      string
	Price     decimal.Decimal // precio unitario de venta
	StockQty  int             // cantidad en mano; nunca se persiste negativa
	CreatedAt time.Time
	UpdatedAt time.Time
}
