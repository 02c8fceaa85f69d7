package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger-api/internal/application/checkout"
	"github.com/jhoicas/pos-ledger-api/internal/application/dto"
	"github.com/jhoicas/pos-ledger-api/internal/domain"
)

// CheckoutHandler maneja las peticiones HTTP del checkout (protegido).
type CheckoutHandler struct {
	uc *checkout.CheckoutUseCase
}

// NewCheckoutHandler construye el handler.
func NewCheckoutHandler(uc *checkout.CheckoutUseCase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

// Create godoc
// @Summary      Procesar checkout
// @Description  Registra la venta completada y emite un movimiento "sale" por producto. Los fallos de emisión por línea se reportan en line_warnings, no invalidan la venta.
// @Tags         checkout
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "Venta del POS"
// @Success      201   {object}  dto.CheckoutResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/checkout [post]
func (h *CheckoutHandler) Create(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	userID := GetUserID(c)
	if shopID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "shop_id y user_id requeridos"})
	}
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	lines := make([]checkout.CheckoutLine, 0, len(in.Items))
	for _, item := range in.Items {
		lines = append(lines, checkout.CheckoutLine{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	result, err := h.uc.ProcessCheckout(c.Context(), checkout.CheckoutInput{
		ShopID:        shopID,
		UserID:        userID,
		CustomerID:    in.CustomerID,
		PaymentMethod: in.PaymentMethod,
		TaxAmount:     in.TaxAmount,
		Lines:         lines,
	})
	if err != nil {
		switch err {
		case domain.ErrEmptyCheckout:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "EMPTY_CHECKOUT", Message: "la venta no tiene líneas"})
		case domain.ErrInvalidInput:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "líneas inválidas: product_id, quantity > 0 y price >= 0 son requeridos"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CheckoutResponse{
		TransactionID:    result.TransactionID,
		MovementsCreated: result.MovementsCreated,
		LineWarnings:     result.LineWarnings,
	})
}
