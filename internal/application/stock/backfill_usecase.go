package stock

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-ledger-api/internal/application/checkout"
	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
	"github.com/jhoicas/pos-ledger-api/pkg/logger"
)

// BackfillUseCase genera los movimientos "sale" faltantes para transacciones
// completadas que anteceden al ledger. Reutiliza el emisor del checkout, con
// los movimientos fechados en la fecha original de cada transacción para
// conservar el orden histórico. Seguro de re-ejecutar: las transacciones que
// ya tienen movimientos se omiten.
type BackfillUseCase struct {
	transactionRepo repository.TransactionRepository
	movementRepo    repository.StockMovementRepository
	emitter         *checkout.SaleEmitter
	log             *logger.Logger
}

// NewBackfillUseCase construye el caso de uso.
func NewBackfillUseCase(
	transactionRepo repository.TransactionRepository,
	movementRepo repository.StockMovementRepository,
	emitter *checkout.SaleEmitter,
	log *logger.Logger,
) *BackfillUseCase {
	return &BackfillUseCase{
		transactionRepo: transactionRepo,
		movementRepo:    movementRepo,
		emitter:         emitter,
		log:             log,
	}
}

// Run recorre todas las transacciones completadas en orden cronológico y
// emite los movimientos de las que aún no tienen. Los fallos se cuentan y no
// detienen el recorrido.
func (uc *BackfillUseCase) Run(ctx context.Context) (*dto.BackfillStats, error) {
	transactions, err := uc.transactionRepo.ListCompleted()
	if err != nil {
		return nil, fmt.Errorf("listar transacciones completadas: %w", err)
	}

	stats := &dto.BackfillStats{}
	for _, transaction := range transactions {
		stats.Processed++

		applied, err := uc.movementRepo.AnyForReference(entity.ReferenceTypeTransaction, transaction.ID)
		if err != nil {
			stats.Errors++
			uc.log.Error().Err(err).Str("transaction_id", transaction.ID).Msg("verificación de movimientos existentes fallida")
			continue
		}
		if applied {
			stats.Skipped++
			continue
		}

		for _, item := range checkout.MergeByProduct(transaction.Items) {
			created, err := uc.emitter.EmitSale(ctx, transaction, item, transaction.CreatedAt)
			if err != nil {
				stats.Errors++
				uc.log.Error().Err(err).
					Str("transaction_id", transaction.ID).
					Str("product_id", item.ProductID).
					Msg("backfill de línea fallido")
				continue
			}
			if created {
				stats.MovementsCreated++
			}
		}
	}

	uc.log.Info().
		Int("processed", stats.Processed).
		Int("skipped", stats.Skipped).
		Int("movements_created", stats.MovementsCreated).
		Int("errors", stats.Errors).
		Msg("backfill de movimientos completado")

	return stats, nil
}
