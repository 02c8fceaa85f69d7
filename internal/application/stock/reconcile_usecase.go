// Package stock orquesta las pasadas de mantenimiento del ledger de
// inventario: sembrado del stock inicial, recálculo de la progresión
// antes/después y reparación desde el valor actual. Todas las pasadas son
// idempotentes y procesan producto por producto sin abortar por fallos
// individuales.
package stock

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
	calc "github.com/jhoicas/pos-ledger-api/internal/domain/stock"
	"github.com/jhoicas/pos-ledger-api/pkg/logger"
)

// ReconcileUseCase ejecuta pasadas de reconciliación sobre el catálogo
// completo. Secuencial por diseño: el read-modify-write por producto no va
// dentro de una transacción de BD, y paralelizar aumentaría el riesgo de
// actualizaciones parciales entrelazadas sobre un mismo producto.
type ReconcileUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	log          *logger.Logger
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	log *logger.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{productRepo: productRepo, movementRepo: movementRepo, log: log}
}

// SyncInitialStock crea o sobreescribe el movimiento inicial de cada producto
// tomando su stock_qty actual como valor inicial. Pensada para arrancar el
// ledger en un catálogo que lo antecede; una vez hay ventas, re-ejecutarla
// captura el stock ya descontado como "inicial" (usar con criterio).
func (uc *ReconcileUseCase) SyncInitialStock(ctx context.Context) (*dto.ProcessingStats, error) {
	products, stats, err := uc.loadCatalog()
	if err != nil {
		return nil, err
	}
	uc.syncInitial(products, stats)
	uc.logPass("sync-initial", stats)
	return stats, nil
}

// RecalculateMovements reconstruye la progresión antes/después de cada
// producto reproduciendo su ledger desde cero (estrategia ReplayFromZero, la
// canónica) y deja stock_qty en el stock_after del último movimiento.
func (uc *ReconcileUseCase) RecalculateMovements(ctx context.Context) (*dto.ProcessingStats, error) {
	products, stats, err := uc.loadCatalog()
	if err != nil {
		return nil, err
	}
	uc.recalculate(products, stats)
	uc.logPass("recalculate", stats)
	return stats, nil
}

// FullSync encadena sembrado inicial y recálculo, en ese orden, sobre una
// misma lectura del catálogo y un mismo reporte.
func (uc *ReconcileUseCase) FullSync(ctx context.Context) (*dto.ProcessingStats, error) {
	products, stats, err := uc.loadCatalog()
	if err != nil {
		return nil, err
	}
	uc.syncInitial(products, stats)
	uc.recalculate(products, stats)
	uc.logPass("full-sync", stats)
	return stats, nil
}

// RecalculateFromInitial repara stock_qty con la estrategia
// TrustCurrentAsInitial: toma el stock_qty actual como valor inicial, suma los
// movimientos no-iniciales y persiste max(0, inicial + suma). Puede no
// coincidir con RecalculateMovements; cuál es la correcta es decisión del
// operador (ver DESIGN.md).
func (uc *ReconcileUseCase) RecalculateFromInitial(ctx context.Context) (*dto.ProcessingStats, error) {
	products, stats, err := uc.loadCatalog()
	if err != nil {
		return nil, err
	}
	for _, product := range products {
		movements, err := uc.movementRepo.ListByProduct(product.ID, repository.MovementListOptions{ExcludeInitial: true})
		if err != nil {
			stats.Fail(productError(product, err))
			continue
		}
		finalStock := calc.ComputeFinalStock(product.StockQty, movements)
		if err := uc.productRepo.UpdateStock(product.ID, finalStock); err != nil {
			stats.Fail(productError(product, err))
			continue
		}
		stats.TotalProcessed++
		uc.log.Debug().
			Str("product_id", product.ID).
			Str("strategy", string(calc.RepairTrustCurrentAsInitial)).
			Int("final_stock", finalStock).
			Msg("stock reparado desde valor inicial")
	}
	uc.logPass("recalculate-from-initial", stats)
	return stats, nil
}

// loadCatalog lee el catálogo completo una sola vez por pasada. Un fallo aquí
// sí es fatal: sin productos no hay nada que reportar.
func (uc *ReconcileUseCase) loadCatalog() ([]*entity.Product, *dto.ProcessingStats, error) {
	products, err := uc.productRepo.ListAll()
	if err != nil {
		return nil, nil, fmt.Errorf("listar productos: %w", err)
	}
	return products, &dto.ProcessingStats{TotalProducts: len(products)}, nil
}

func (uc *ReconcileUseCase) syncInitial(products []*entity.Product, stats *dto.ProcessingStats) {
	for _, product := range products {
		res, err := uc.movementRepo.UpsertInitial(product, product.StockQty)
		if err != nil {
			stats.Fail(productError(product, err))
			continue
		}
		stats.TotalProcessed++
		uc.log.Debug().
			Str("product_id", product.ID).
			Int("initial_stock", product.StockQty).
			Bool("created", res.Created).
			Msg("movimiento inicial sincronizado")
	}
}

func (uc *ReconcileUseCase) recalculate(products []*entity.Product, stats *dto.ProcessingStats) {
	for _, product := range products {
		movements, err := uc.movementRepo.ListByProduct(product.ID, repository.MovementListOptions{})
		if err != nil {
			stats.Fail(productError(product, err))
			continue
		}
		if len(movements) == 0 {
			// Sin movimientos no hay nada que recalcular; no es un error.
			uc.log.Debug().Str("product_id", product.ID).Msg("sin movimientos, producto omitido")
			continue
		}

		sorted := calc.SortByDate(movements, true)
		updates := calc.ComputeProgression(sorted)

		res, err := uc.movementRepo.BatchUpdateProgression(updates)
		if err != nil {
			stats.Fail(productError(product, err))
			continue
		}

		finalStock := 0
		if len(updates) > 0 {
			finalStock = updates[len(updates)-1].StockAfter
		}
		if err := uc.productRepo.UpdateStock(product.ID, finalStock); err != nil {
			stats.Fail(productError(product, err))
			continue
		}

		stats.TotalProcessed++
		for _, updateErr := range res.Errors {
			stats.Fail(dto.ProcessingError{
				ProductID:   product.ID,
				ProductName: product.Name,
				MovementID:  updateErr.MovementID,
				Error:       updateErr.Err,
			})
		}
		uc.log.Debug().
			Str("product_id", product.ID).
			Str("strategy", string(calc.RepairReplayFromZero)).
			Int("movements", len(movements)).
			Int("updated", res.Updated).
			Int("final_stock", finalStock).
			Msg("progresión recalculada")
	}
}

func (uc *ReconcileUseCase) logPass(operation string, stats *dto.ProcessingStats) {
	uc.log.Info().
		Str("operation", operation).
		Int("total_products", stats.TotalProducts).
		Int("processed", stats.TotalProcessed).
		Int("errors", stats.TotalErrors).
		Msg("pasada de reconciliación completada")
}

func productError(product *entity.Product, err error) dto.ProcessingError {
	return dto.ProcessingError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Error:       err.Error(),
	}
}
