package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
)

// CreateProductRequest alta de producto en el catálogo.
type CreateProductRequest struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	StockQty int             `json:"stock_qty"`
}

// ProductResponse representación JSON de un producto.
type ProductResponse struct {
	ID        string          `json:"id"`
	ShopID    string          `json:"shop_id"`
	SKU       string          `json:"sku,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	StockQty  int             `json:"stock_qty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToProductResponse mapea la entidad al DTO.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		ShopID:    p.ShopID,
		SKU:       p.SKU,
		Name:      p.Name,
		Price:     p.Price,
		StockQty:  p.StockQty,
		CreatedAt: p.CreatedAt,
	}
}

// ToMovementDTO mapea un movimiento del ledger al DTO.
func ToMovementDTO(m entity.StockMovement) StockMovementDTO {
	return StockMovementDTO{
		ID:            m.ID,
		ProductID:     m.ProductID,
		ShopID:        m.ShopID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		StockBefore:   m.StockBefore,
		StockAfter:    m.StockAfter,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		CreatedAt:     m.CreatedAt,
	}
}
