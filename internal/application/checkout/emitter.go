package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
	"github.com/jhoicas/pos-ledger-api/internal/domain/stock"
	"github.com/jhoicas/pos-ledger-api/pkg/logger"
)

// errAlreadyApplied señala dentro de la tx que la referencia ya tenía un
// movimiento insertado: fuerza el rollback del decremento de stock y se
// traduce a un skip silencioso fuera de la tx.
var errAlreadyApplied = errors.New("movimiento ya aplicado para la referencia")

// SaleEmitter emite el movimiento de venta de una línea y decrementa el stock
// del producto dentro de una misma transacción SQL. Lo comparten el checkout
// (movimiento fechado "ahora") y el backfill de transacciones históricas
// (movimiento fechado en la fecha original de la transacción).
type SaleEmitter struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewSaleEmitter construye el emisor.
func NewSaleEmitter(txRunner TxRunner, log *logger.Logger) *SaleEmitter {
	return &SaleEmitter{txRunner: txRunner, log: log}
}

// EmitSale aplica una línea de venta: bloquea la fila del producto, verifica
// la guardia de idempotencia, decrementa el stock con piso en cero y agrega
// el movimiento "sale" con snapshot antes/después.
//
// Retorna (false, nil) cuando la línea se omite sin ser un error: producto
// inexistente (no aborta la emisión de las demás líneas) o referencia ya
// aplicada (reprocesar la misma transacción es un no-op).
func (e *SaleEmitter) EmitSale(ctx context.Context, tx *entity.Transaction, item entity.TransactionItem, at time.Time) (bool, error) {
	created := false
	err := e.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		product, err := productRepo.GetForUpdate(item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			// Línea huérfana (producto borrado o id inválido): se omite y se
			// continúa con el resto de la venta.
			e.log.Warn().
				Str("transaction_id", tx.ID).
				Str("product_id", item.ProductID).
				Msg("producto no encontrado, línea omitida")
			return nil
		}

		exists, err := movementRepo.ExistsForReference(product.ID, entity.ReferenceTypeTransaction, tx.ID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		stockBefore := product.StockQty
		stockAfter := stock.ClampStock(stockBefore - item.Quantity)
		if err := productRepo.UpdateStock(product.ID, stockAfter); err != nil {
			return err
		}

		movement := &entity.StockMovement{
			ID:            uuid.New().String(),
			ProductID:     product.ID,
			ShopID:        tx.ShopID,
			Type:          entity.MovementTypeSale,
			Quantity:      -item.Quantity,
			StockBefore:   stockBefore,
			StockAfter:    stockAfter,
			ReferenceType: entity.ReferenceTypeTransaction,
			ReferenceID:   tx.ID,
			CreatedBy:     tx.UserID,
			CreatedAt:     at,
		}
		if errs := stock.ValidateMovement(stock.DraftOf(movement)); len(errs) > 0 {
			return fmt.Errorf("movimiento inválido: %s", strings.Join(errs, "; "))
		}

		inserted, err := movementRepo.InsertSale(movement)
		if err != nil {
			return err
		}
		if !inserted {
			// La restricción única ganó a la verificación previa (carrera con
			// otro emisor): revertir también el decremento de stock.
			return errAlreadyApplied
		}
		created = true
		return nil
	})
	if errors.Is(err, errAlreadyApplied) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return created, nil
}
