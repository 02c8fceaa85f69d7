package dto

import "github.com/shopspring/decimal"

// CheckoutItemRequest línea del carrito enviada al checkout.
type CheckoutItemRequest struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// CheckoutRequest venta completa enviada por el POS.
type CheckoutRequest struct {
	CustomerID    string                `json:"customer_id,omitempty"`
	PaymentMethod string                `json:"payment_method,omitempty"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	Items         []CheckoutItemRequest `json:"items"`
}

// CheckoutResponse resultado del checkout. LineWarnings reporta líneas cuya
// emisión de movimiento falló o se omitió; no invalidan la venta.
type CheckoutResponse struct {
	TransactionID    string   `json:"transaction_id"`
	MovementsCreated int      `json:"movements_created"`
	LineWarnings     []string `json:"line_warnings,omitempty"`
}
