package stock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcheckout "github.com/jhoicas/pos-ledger-api/internal/application/checkout"
	appstock "github.com/jhoicas/pos-ledger-api/internal/application/stock"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

// fakeTransactionRepo solo lo necesita el backfill: lista completadas.
type fakeTransactionRepo struct {
	completed []*entity.Transaction
	failList  bool
}

func (r *fakeTransactionRepo) Create(tx *entity.Transaction) error { return nil }

func (r *fakeTransactionRepo) GetByID(id string) (*entity.Transaction, error) {
	for _, tx := range r.completed {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepo) ListCompleted() ([]*entity.Transaction, error) {
	if r.failList {
		return nil, errors.New("conexión rechazada")
	}
	return r.completed, nil
}

func completedTx(id, productID string, qty int, at time.Time) *entity.Transaction {
	return &entity.Transaction{
		ID:     id,
		ShopID: "shop-1",
		UserID: "user-1",
		Items: []entity.TransactionItem{{
			ProductID: productID,
			Quantity:  qty,
			Price:     decimal.NewFromInt(1000),
		}},
		Status:    entity.TransactionStatusCompleted,
		CreatedAt: at,
	}
}

func newBackfill(products *fakeProductRepo, movements *fakeMovementRepo, txRepo *fakeTransactionRepo) *appstock.BackfillUseCase {
	emitter := appcheckout.NewSaleEmitter(&fakeTxRunner{products: products, movements: movements}, testLog)
	return appstock.NewBackfillUseCase(txRepo, movements, emitter, testLog)
}

// El backfill emite movimientos para transacciones históricas que no los
// tienen, fechados en la fecha original de la transacción, y decrementa stock.
func TestBackfill_EmiteMovimientosFaltantes(t *testing.T) {
	txDate := testCreatedAt.Add(48 * time.Hour)
	products := newFakeProductRepo(product("p1", 10))
	movements := newFakeMovementRepo()
	txRepo := &fakeTransactionRepo{completed: []*entity.Transaction{completedTx("tx-1", "p1", 3, txDate)}}
	uc := newBackfill(products, movements, txRepo)

	stats, err := uc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 1, stats.MovementsCreated)
	assert.Equal(t, 0, stats.Errors)

	list, _ := movements.ListByProduct("p1", repository.MovementListOptions{})
	require.Len(t, list, 1)
	assert.Equal(t, entity.MovementTypeSale, list[0].Type)
	assert.Equal(t, -3, list[0].Quantity)
	assert.Equal(t, 10, list[0].StockBefore)
	assert.Equal(t, 7, list[0].StockAfter)
	assert.Equal(t, txDate, list[0].CreatedAt, "el movimiento conserva la fecha original de la transacción")

	p, _ := products.GetByID("p1")
	assert.Equal(t, 7, p.StockQty)
}

// Re-ejecutar el backfill es un no-op: las transacciones ya aplicadas se
// omiten por la clave de idempotencia (reference_id + reference_type).
func TestBackfill_ReEjecucionEsNoOp(t *testing.T) {
	products := newFakeProductRepo(product("p1", 10))
	movements := newFakeMovementRepo()
	txRepo := &fakeTransactionRepo{completed: []*entity.Transaction{completedTx("tx-1", "p1", 3, testCreatedAt)}}
	uc := newBackfill(products, movements, txRepo)

	_, err := uc.Run(context.Background())
	require.NoError(t, err)
	stats, err := uc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.MovementsCreated)

	list, _ := movements.ListByProduct("p1", repository.MovementListOptions{})
	assert.Len(t, list, 1, "un solo movimiento de venta tras dos backfills")
	p, _ := products.GetByID("p1")
	assert.Equal(t, 7, p.StockQty, "el stock no se decrementa dos veces")
}

// Una transacción histórica con dos líneas del mismo producto se aplica como
// un solo decremento por la suma, igual que en el checkout: la clave de
// idempotencia admite un único movimiento de venta por producto y transacción,
// y emitir línea a línea dejaría la segunda silenciosamente sin aplicar.
func TestBackfill_LineasDelMismoProductoSeConsolidan(t *testing.T) {
	products := newFakeProductRepo(product("p1", 10))
	movements := newFakeMovementRepo()
	tx := completedTx("tx-1", "p1", 2, testCreatedAt)
	tx.Items = append(tx.Items, entity.TransactionItem{
		ProductID: "p1",
		Quantity:  2,
		Price:     decimal.NewFromInt(1000),
	})
	txRepo := &fakeTransactionRepo{completed: []*entity.Transaction{tx}}
	uc := newBackfill(products, movements, txRepo)

	stats, err := uc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.MovementsCreated, "un único movimiento para las dos líneas")
	assert.Equal(t, 0, stats.Errors)

	list, _ := movements.ListByProduct("p1", repository.MovementListOptions{})
	require.Len(t, list, 1)
	assert.Equal(t, -4, list[0].Quantity)
	assert.Equal(t, 10, list[0].StockBefore)
	assert.Equal(t, 6, list[0].StockAfter)

	p, _ := products.GetByID("p1")
	assert.Equal(t, 6, p.StockQty, "el stock descuenta la suma de ambas líneas")
}

// Una transacción con producto inexistente no aborta el backfill de las demás.
func TestBackfill_ProductoInexistenteNoAborta(t *testing.T) {
	products := newFakeProductRepo(product("p2", 5))
	movements := newFakeMovementRepo()
	txRepo := &fakeTransactionRepo{completed: []*entity.Transaction{
		completedTx("tx-1", "desconocido", 1, testCreatedAt),
		completedTx("tx-2", "p2", 2, testCreatedAt.Add(time.Hour)),
	}}
	uc := newBackfill(products, movements, txRepo)

	stats, err := uc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.MovementsCreated, "solo la línea del producto existente generó movimiento")
	assert.Equal(t, 0, stats.Errors, "el producto faltante se omite, no es un error")

	p2, _ := products.GetByID("p2")
	assert.Equal(t, 3, p2.StockQty)
}

func TestBackfill_FalloDeListadoEsFatal(t *testing.T) {
	uc := newBackfill(newFakeProductRepo(), newFakeMovementRepo(), &fakeTransactionRepo{failList: true})
	stats, err := uc.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, stats)
}
