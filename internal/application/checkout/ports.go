package checkout

import (
	"context"

	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. El read-modify-write de cada línea del
// checkout corre completo dentro de una transacción con la fila del producto
// bloqueada; así un checkout y una reconciliación concurrentes sobre el mismo
// producto se serializan en vez de pisarse.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
	) error) error
}
