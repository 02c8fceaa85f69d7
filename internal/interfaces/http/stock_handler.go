package http

import (
	"github.com/gofiber/fiber/v2"

	appstock "github.com/jhoicas/pos-ledger-api/internal/application/stock"
	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain"
)

// StockHandler maneja el mantenimiento y la consulta del ledger de stock (protegido).
type StockHandler struct {
	reconcile *appstock.ReconcileUseCase
	backfill  *appstock.BackfillUseCase
	report    *appstock.LedgerReportUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(
	reconcile *appstock.ReconcileUseCase,
	backfill *appstock.BackfillUseCase,
	report *appstock.LedgerReportUseCase,
) *StockHandler {
	return &StockHandler{reconcile: reconcile, backfill: backfill, report: report}
}

// Manage godoc
// @Summary      Ejecutar pasada de mantenimiento del ledger
// @Description  Operaciones: sync-initial, recalculate, recalculate-from-initial, full-sync. Siempre responde 200 con stats; inspeccionar totalErrors para detectar fallos parciales.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ManageStockRequest  true  "Operación a ejecutar"
// @Success      200   {object}  dto.ManageStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/manage [post]
func (h *StockHandler) Manage(c *fiber.Ctx) error {
	var in dto.ManageStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	var stats *dto.ProcessingStats
	var err error
	switch in.Operation {
	case dto.OperationSyncInitial:
		stats, err = h.reconcile.SyncInitialStock(c.Context())
	case dto.OperationRecalculate:
		stats, err = h.reconcile.RecalculateMovements(c.Context())
	case dto.OperationRecalculateFromInitial:
		stats, err = h.reconcile.RecalculateFromInitial(c.Context())
	case dto.OperationFullSync:
		stats, err = h.reconcile.FullSync(c.Context())
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "INVALID_OPERATION",
			Message: "operation debe ser sync-initial, recalculate, recalculate-from-initial o full-sync",
		})
	}
	if err != nil {
		// Solo el fallo de listar el catálogo aborta una pasada.
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	return c.JSON(dto.ManageStockResponse{Operation: in.Operation, Stats: stats})
}

// Backfill godoc
// @Summary      Reemitir movimientos de ventas históricas
// @Description  Recorre las transacciones completadas y emite los movimientos "sale" faltantes. Seguro de re-ejecutar.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BackfillStats
// @Router       /api/stock/backfill [post]
func (h *StockHandler) Backfill(c *fiber.Ctx) error {
	stats, err := h.backfill.Run(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(stats)
}

// Movements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.MovementHistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	productID := c.Params("id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.report.MovementHistory(c.Context(), shopID, productID)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(out)
}

// Kardex godoc
// @Summary      Kardex del producto en PDF
// @Tags         stock
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/kardex [get]
func (h *StockHandler) Kardex(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	productID := c.Params("id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	pdfBytes, err := h.report.KardexPDF(c.Context(), shopID, productID)
	if err != nil {
		return ledgerError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="kardex-`+productID+`.pdf"`)
	return c.Send(pdfBytes)
}

func ledgerError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrNotFound, domain.ErrProductNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	case domain.ErrForbidden:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el producto pertenece a otra tienda"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
