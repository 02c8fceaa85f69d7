package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/jhoicas/pos-ledger-api/internal/application/stock"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
	"github.com/jhoicas/pos-ledger-api/pkg/logger"
)

var (
	testCreatedAt = time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	testLog       = logger.New(logger.Config{Env: "production", Level: "error"})
)

func product(id string, stockQty int) *entity.Product {
	return &entity.Product{ID: id, ShopID: "shop-1", Name: "Producto " + id, StockQty: stockQty, CreatedAt: testCreatedAt}
}

func newReconcile(products *fakeProductRepo, movements *fakeMovementRepo) *appstock.ReconcileUseCase {
	return appstock.NewReconcileUseCase(products, movements, testLog)
}

// ──────────────────────────────────────────────────────────────────────────────
// SyncInitialStock
// ──────────────────────────────────────────────────────────────────────────────

// Escenario A: producto con stock 50 y sin movimientos; la pasada debe crear
// exactamente un movimiento inicial {qty 50, before 0, after 50} fechado en la
// creación del producto.
func TestSyncInitialStock_CreaMovimientoInicial(t *testing.T) {
	products := newFakeProductRepo(product("p1", 50))
	movements := newFakeMovementRepo()
	uc := newReconcile(products, movements)

	stats, err := uc.SyncInitialStock(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalProducts)
	assert.Equal(t, 1, stats.TotalProcessed)
	assert.Equal(t, 0, stats.TotalErrors)

	initial, err := movements.GetInitial("p1")
	require.NoError(t, err)
	require.NotNil(t, initial)
	assert.Equal(t, entity.MovementTypeInitial, initial.Type)
	assert.Equal(t, 50, initial.Quantity)
	assert.Equal(t, 0, initial.StockBefore)
	assert.Equal(t, 50, initial.StockAfter)
	assert.Equal(t, entity.ReferenceTypeInitial, initial.ReferenceType)
	assert.Equal(t, testCreatedAt, initial.CreatedAt, "el inicial se fecha en la creación del producto, no en ahora")
}

// Re-ejecutar la pasada sobreescribe el inicial existente en vez de duplicarlo.
func TestSyncInitialStock_Idempotente(t *testing.T) {
	products := newFakeProductRepo(product("p1", 50))
	movements := newFakeMovementRepo()
	uc := newReconcile(products, movements)

	_, err := uc.SyncInitialStock(context.Background())
	require.NoError(t, err)
	_, err = uc.SyncInitialStock(context.Background())
	require.NoError(t, err)

	list, _ := movements.ListByProduct("p1", repository.MovementListOptions{})
	assert.Len(t, list, 1, "un solo movimiento inicial tras dos pasadas")
}

// ──────────────────────────────────────────────────────────────────────────────
// RecalculateMovements
// ──────────────────────────────────────────────────────────────────────────────

// Escenario B: ledger ya consistente (inicial 50, venta -5); el recálculo no
// cambia ningún número y no reporta errores.
func TestRecalculateMovements_LedgerConsistenteNoCambia(t *testing.T) {
	products := newFakeProductRepo(product("p1", 45))
	movements := newFakeMovementRepo()
	movements.add(entity.StockMovement{
		ID: "m1", ProductID: "p1", ShopID: "shop-1", Type: entity.MovementTypeInitial,
		Quantity: 50, StockBefore: 0, StockAfter: 50,
		ReferenceType: entity.ReferenceTypeInitial, CreatedAt: testCreatedAt,
	})
	movements.add(entity.StockMovement{
		ID: "m2", ProductID: "p1", ShopID: "shop-1", Type: entity.MovementTypeSale,
		Quantity: -5, StockBefore: 50, StockAfter: 45,
		ReferenceType: entity.ReferenceTypeTransaction, ReferenceID: "tx-1",
		CreatedAt: testCreatedAt.Add(time.Hour),
	})
	uc := newReconcile(products, movements)

	stats, err := uc.RecalculateMovements(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalErrors)
	assert.Equal(t, 1, stats.TotalProcessed)

	list, _ := movements.ListByProduct("p1", repository.MovementListOptions{})
	assert.Equal(t, 50, list[0].StockAfter)
	assert.Equal(t, 50, list[1].StockBefore)
	assert.Equal(t, 45, list[1].StockAfter)
	p, _ := products.GetByID("p1")
	assert.Equal(t, 45, p.StockQty)
}

// El recálculo repara un ledger con antes/después corruptos y deja stock_qty
// en el stock_after del último movimiento.
func TestRecalculateMovements_ReparaLedgerCorrupto(t *testing.T) {
	products := newFakeProductRepo(product("p1", 999))
	movements := newFakeMovementRepo()
	movements.add(entity.StockMovement{
		ID: "m1", ProductID: "p1", Type: entity.MovementTypeInitial, Quantity: 20,
		StockBefore: 7, StockAfter: 3, // corrupto
		ReferenceType: entity.ReferenceTypeInitial, CreatedAt: testCreatedAt,
	})
	movements.add(entity.StockMovement{
		ID: "m2", ProductID: "p1", Type: entity.MovementTypeSale, Quantity: -8,
		StockBefore: 100, StockAfter: 1, // corrupto
		CreatedAt: testCreatedAt.Add(time.Minute),
	})
	uc := newReconcile(products, movements)

	stats, err := uc.RecalculateMovements(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalErrors)

	list, _ := movements.ListByProduct("p1", repository.MovementListOptions{})
	assert.Equal(t, 0, list[0].StockBefore)
	assert.Equal(t, 20, list[0].StockAfter)
	assert.Equal(t, 20, list[1].StockBefore)
	assert.Equal(t, 12, list[1].StockAfter)

	p, _ := products.GetByID("p1")
	assert.Equal(t, 12, p.StockQty, "stock_qty queda en el stock_after del último movimiento")
}

// Idempotencia: una segunda pasada sobre un ledger sin cambios no altera nada.
func TestRecalculateMovements_Idempotente(t *testing.T) {
	products := newFakeProductRepo(product("p1", 0))
	movements := newFakeMovementRepo()
	movements.add(entity.StockMovement{ID: "m1", ProductID: "p1", Type: entity.MovementTypeInitial, Quantity: 10, ReferenceType: entity.ReferenceTypeInitial, CreatedAt: testCreatedAt})
	movements.add(entity.StockMovement{ID: "m2", ProductID: "p1", Type: entity.MovementTypeSale, Quantity: -4, CreatedAt: testCreatedAt.Add(time.Minute)})
	uc := newReconcile(products, movements)

	_, err := uc.RecalculateMovements(context.Background())
	require.NoError(t, err)
	first, _ := movements.ListByProduct("p1", repository.MovementListOptions{})

	_, err = uc.RecalculateMovements(context.Background())
	require.NoError(t, err)
	second, _ := movements.ListByProduct("p1", repository.MovementListOptions{})

	assert.Equal(t, first, second, "la segunda pasada no cambia ningún antes/después")
}

// Un producto sin movimientos se omite sin contarse como procesado ni error.
func TestRecalculateMovements_SinMovimientosSeOmite(t *testing.T) {
	products := newFakeProductRepo(product("p1", 5))
	uc := newReconcile(products, newFakeMovementRepo())

	stats, err := uc.RecalculateMovements(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProducts)
	assert.Equal(t, 0, stats.TotalProcessed)
	assert.Equal(t, 0, stats.TotalErrors)
}

// El fallo de un producto se acumula en el reporte y no aborta la pasada: los
// demás productos se procesan igual.
func TestRecalculateMovements_FalloPorProductoNoAborta(t *testing.T) {
	products := newFakeProductRepo(product("p1", 0), product("p2", 0))
	movements := newFakeMovementRepo()
	movements.failListFor = "p1"
	movements.add(entity.StockMovement{ID: "m2", ProductID: "p2", Type: entity.MovementTypeInitial, Quantity: 8, ReferenceType: entity.ReferenceTypeInitial, CreatedAt: testCreatedAt})
	uc := newReconcile(products, movements)

	stats, err := uc.RecalculateMovements(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalErrors)
	assert.Equal(t, 1, stats.TotalProcessed)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, "p1", stats.Errors[0].ProductID)
	assert.Contains(t, stats.Errors[0].Error, "timeout")

	p2, _ := products.GetByID("p2")
	assert.Equal(t, 8, p2.StockQty, "p2 se procesó a pesar del fallo de p1")
}

// El fallo de una fila dentro del batch se reporta con su movementId pero el
// producto cuenta como procesado (el batch no es atómico).
func TestRecalculateMovements_FalloDeFilaEnBatch(t *testing.T) {
	products := newFakeProductRepo(product("p1", 0))
	movements := newFakeMovementRepo()
	movements.failUpdateMovement = "m2"
	movements.add(entity.StockMovement{ID: "m1", ProductID: "p1", Type: entity.MovementTypeInitial, Quantity: 10, ReferenceType: entity.ReferenceTypeInitial, CreatedAt: testCreatedAt})
	movements.add(entity.StockMovement{ID: "m2", ProductID: "p1", Type: entity.MovementTypeSale, Quantity: -2, CreatedAt: testCreatedAt.Add(time.Minute)})
	uc := newReconcile(products, movements)

	stats, err := uc.RecalculateMovements(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalProcessed)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, "m2", stats.Errors[0].MovementID)
	assert.Equal(t, "p1", stats.Errors[0].ProductID)
}

// Un fallo al listar el catálogo sí es fatal para la pasada.
func TestRecalculateMovements_FalloDeCatalogoEsFatal(t *testing.T) {
	products := newFakeProductRepo()
	products.failList = true
	uc := newReconcile(products, newFakeMovementRepo())

	stats, err := uc.RecalculateMovements(context.Background())
	require.Error(t, err)
	assert.Nil(t, stats)
}

// ──────────────────────────────────────────────────────────────────────────────
// RecalculateFromInitial y FullSync
// ──────────────────────────────────────────────────────────────────────────────

// Escenario C: stock_qty=10 como verdad de base y movimientos no-iniciales que
// suman -3 → stock_qty final max(0, 10-3) = 7.
func TestRecalculateFromInitial_EscenarioC(t *testing.T) {
	products := newFakeProductRepo(product("p1", 10))
	movements := newFakeMovementRepo()
	// El inicial se excluye de la suma: solo cuentan los no-iniciales.
	movements.add(entity.StockMovement{ID: "m0", ProductID: "p1", Type: entity.MovementTypeInitial, Quantity: 10, ReferenceType: entity.ReferenceTypeInitial, CreatedAt: testCreatedAt})
	movements.add(entity.StockMovement{ID: "m1", ProductID: "p1", Type: entity.MovementTypeSale, Quantity: -2, CreatedAt: testCreatedAt.Add(time.Minute)})
	movements.add(entity.StockMovement{ID: "m2", ProductID: "p1", Type: entity.MovementTypeSale, Quantity: -1, CreatedAt: testCreatedAt.Add(2 * time.Minute)})
	uc := newReconcile(products, movements)

	stats, err := uc.RecalculateFromInitial(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProcessed)
	assert.Equal(t, 0, stats.TotalErrors)

	p, _ := products.GetByID("p1")
	assert.Equal(t, 7, p.StockQty)
}

// Sobregiro con la estrategia trust-current: nunca persiste negativo.
func TestRecalculateFromInitial_PisoEnCero(t *testing.T) {
	products := newFakeProductRepo(product("p1", 1))
	movements := newFakeMovementRepo()
	movements.add(entity.StockMovement{ID: "m1", ProductID: "p1", Type: entity.MovementTypeSale, Quantity: -4, CreatedAt: testCreatedAt})
	uc := newReconcile(products, movements)

	_, err := uc.RecalculateFromInitial(context.Background())
	require.NoError(t, err)

	p, _ := products.GetByID("p1")
	assert.Equal(t, 0, p.StockQty)
}

// FullSync siembra el inicial y luego recalcula, sobre un mismo reporte.
func TestFullSync_SiembraYRecalcula(t *testing.T) {
	products := newFakeProductRepo(product("p1", 50))
	movements := newFakeMovementRepo()
	uc := newReconcile(products, movements)

	stats, err := uc.FullSync(context.Background())
	require.NoError(t, err)

	// Procesado por las dos fases: sync-initial y recalculate.
	assert.Equal(t, 2, stats.TotalProcessed)
	assert.Equal(t, 0, stats.TotalErrors)

	initial, _ := movements.GetInitial("p1")
	require.NotNil(t, initial)
	assert.Equal(t, 50, initial.StockAfter)
	p, _ := products.GetByID("p1")
	assert.Equal(t, 50, p.StockQty)
}
