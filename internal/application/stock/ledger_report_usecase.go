package stock

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
	calc "github.com/jhoicas/pos-ledger-api/internal/domain/stock"
)

// LedgerReportUseCase arma las vistas de solo lectura del ledger de un
// producto: el historial de movimientos con resumen (JSON) y el kardex (PDF).
type LedgerReportUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	kardex       KardexGenerator
}

// NewLedgerReportUseCase construye el caso de uso.
func NewLedgerReportUseCase(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	kardex KardexGenerator,
) *LedgerReportUseCase {
	return &LedgerReportUseCase{productRepo: productRepo, movementRepo: movementRepo, kardex: kardex}
}

// MovementHistory retorna los movimientos de un producto en orden cronológico
// junto con el resumen del ledger (inicial, suma de no-iniciales, final).
func (uc *LedgerReportUseCase) MovementHistory(ctx context.Context, shopID, productID string) (*dto.MovementHistoryResponse, error) {
	product, movements, err := uc.load(shopID, productID)
	if err != nil {
		return nil, err
	}

	movementDTOs := make([]dto.StockMovementDTO, 0, len(movements))
	for _, m := range movements {
		movementDTOs = append(movementDTOs, dto.ToMovementDTO(m))
	}

	return &dto.MovementHistoryResponse{
		Product:   dto.ToProductResponse(product),
		Movements: movementDTOs,
		Summary:   calc.Summarize(product, nonInitial(movements)),
	}, nil
}

// KardexPDF genera el kardex del producto con su ledger completo.
func (uc *LedgerReportUseCase) KardexPDF(ctx context.Context, shopID, productID string) ([]byte, error) {
	product, movements, err := uc.load(shopID, productID)
	if err != nil {
		return nil, err
	}
	summary := calc.Summarize(product, nonInitial(movements))
	pdf, err := uc.kardex.GenerateKardexPDF(product, movements, summary)
	if err != nil {
		return nil, fmt.Errorf("generar kardex: %w", err)
	}
	return pdf, nil
}

// load valida tenencia (el producto debe ser de la tienda del token) y trae
// el ledger completo en orden cronológico.
func (uc *LedgerReportUseCase) load(shopID, productID string) (*entity.Product, []entity.StockMovement, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.ErrProductNotFound
	}
	if shopID != "" && product.ShopID != shopID {
		return nil, nil, domain.ErrForbidden
	}
	movements, err := uc.movementRepo.ListByProduct(productID, repository.MovementListOptions{})
	if err != nil {
		return nil, nil, err
	}
	return product, calc.SortByDate(movements, true), nil
}

func nonInitial(movements []entity.StockMovement) []entity.StockMovement {
	out := make([]entity.StockMovement, 0, len(movements))
	for _, m := range movements {
		if !calc.IsInitialMovement(m) {
			out = append(out, m)
		}
	}
	return out
}
