package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appcheckout "github.com/jhoicas/pos-ledger-api/internal/application/checkout"
	appstock "github.com/jhoicas/pos-ledger-api/internal/application/stock"
	"github.com/jhoicas/pos-ledger-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/pos-ledger-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pos-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/pos-ledger-api/pkg/config"
	"github.com/jhoicas/pos-ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	emitter := appcheckout.NewSaleEmitter(txRunner, log)
	checkoutUC := appcheckout.NewCheckoutUseCase(transactionRepo, emitter, log)
	reconcileUC := appstock.NewReconcileUseCase(productRepo, movementRepo, log)
	backfillUC := appstock.NewBackfillUseCase(transactionRepo, movementRepo, emitter, log)
	kardexGenerator := infrapdf.NewMarotoKardexGenerator()
	ledgerReportUC := appstock.NewLedgerReportUseCase(productRepo, movementRepo, kardexGenerator)
	productUC := usecase.NewProductUseCase(productRepo, movementRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:    productUC,
		CheckoutUC:   checkoutUC,
		ReconcileUC:  reconcileUC,
		BackfillUC:   backfillUC,
		LedgerReport: ledgerReportUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
