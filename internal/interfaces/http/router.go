package http

import (
	"github.com/gofiber/fiber/v2"

	appcheckout "github.com/jhoicas/pos-ledger-api/internal/application/checkout"
	appstock "github.com/jhoicas/pos-ledger-api/internal/application/stock"
	"github.com/jhoicas/pos-ledger-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC    *usecase.ProductUseCase
	CheckoutUC   *appcheckout.CheckoutUseCase
	ReconcileUC  *appstock.ReconcileUseCase
	BackfillUC   *appstock.BackfillUseCase
	LedgerReport *appstock.LedgerReportUseCase
	JWTSecret    string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; el
// mantenimiento del ledger además exige rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Ledger de stock por producto
	stockHandler := NewStockHandler(deps.ReconcileUC, deps.BackfillUC, deps.LedgerReport)
	products.Get("/:id/movements", stockHandler.Movements)
	products.Get("/:id/kardex", stockHandler.Kardex)

	// Checkout del POS
	checkoutHandler := NewCheckoutHandler(deps.CheckoutUC)
	protected.Post("/checkout", checkoutHandler.Create)

	// Mantenimiento del ledger (solo admin)
	stock := protected.Group("/stock", RequireRole("admin"))
	stock.Post("/manage", stockHandler.Manage)
	stock.Post("/backfill", stockHandler.Backfill)
}
