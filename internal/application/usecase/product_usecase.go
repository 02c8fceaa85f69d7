package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// ProductUseCase operaciones CRUD delgadas del catálogo. El alta siembra el
// movimiento de stock inicial del producto, fechado en su creación, para que
// el ledger nazca consistente en vez de depender de un sync-initial posterior.
type ProductUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(productRepo repository.ProductRepository, movementRepo repository.StockMovementRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo, movementRepo: movementRepo}
}

// Create registra el producto y su movimiento inicial.
func (uc *ProductUseCase) Create(shopID string, in dto.CreateProductRequest) (*entity.Product, error) {
	if shopID == "" || in.Name == "" || in.StockQty < 0 || in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		ShopID:    shopID,
		SKU:       in.SKU,
		Name:      in.Name,
		Price:     in.Price,
		StockQty:  in.StockQty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}

	if _, err := uc.movementRepo.UpsertInitial(product, product.StockQty); err != nil {
		// El producto ya existe; el movimiento inicial faltante se puede
		// sembrar después con la pasada sync-initial.
		return product, err
	}
	return product, nil
}

// List lista el catálogo de una tienda.
func (uc *ProductUseCase) List(shopID string, page dto.PageRequest) ([]*entity.Product, error) {
	page.DefaultPage()
	return uc.productRepo.List(shopID, page.Limit, page.Offset)
}

// GetByID retorna un producto validando tenencia.
func (uc *ProductUseCase) GetByID(shopID, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.ShopID != shopID {
		return nil, domain.ErrForbidden
	}
	return product, nil
}
