package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
	"github.com/jhoicas/pos-ledger-api/pkg/logger"
)

// CheckoutUseCase persiste la venta completada y emite exactamente un
// movimiento "sale" por línea, decrementando el stock de cada producto.
// La escritura de la transacción es el único fallo fatal del flujo; los
// fallos de emisión por línea se registran y la venta sigue siendo válida.
type CheckoutUseCase struct {
	transactionRepo repository.TransactionRepository
	emitter         *SaleEmitter
	log             *logger.Logger
}

// NewCheckoutUseCase construye el caso de uso.
func NewCheckoutUseCase(transactionRepo repository.TransactionRepository, emitter *SaleEmitter, log *logger.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{transactionRepo: transactionRepo, emitter: emitter, log: log}
}

// CheckoutLine línea del carrito ya normalizada por el handler.
type CheckoutLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

// CheckoutInput entrada del checkout (shop y user vienen del token).
type CheckoutInput struct {
	ShopID        string
	UserID        string
	CustomerID    string
	PaymentMethod string
	TaxAmount     decimal.Decimal
	Lines         []CheckoutLine
}

// CheckoutResult resultado del checkout. LineWarnings describe líneas cuya
// emisión de movimiento se omitió o falló sin invalidar la venta.
type CheckoutResult struct {
	TransactionID    string
	MovementsCreated int
	LineWarnings     []string
}

// ProcessCheckout valida la venta, persiste la transacción como "completed" y
// aplica las líneas en secuencia: dos líneas del mismo producto encadenan su
// antes/después (la segunda parte del stock que dejó la primera).
func (uc *CheckoutUseCase) ProcessCheckout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if input.ShopID == "" || input.UserID == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(input.Lines) == 0 {
		return nil, domain.ErrEmptyCheckout
	}
	for _, line := range input.Lines {
		if line.ProductID == "" || line.Quantity <= 0 || line.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	items := make([]entity.TransactionItem, 0, len(input.Lines))
	subtotal := decimal.Zero
	for _, line := range input.Lines {
		lineSubtotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		items = append(items, entity.TransactionItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       line.Price,
			Subtotal:    lineSubtotal,
		})
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	transaction := &entity.Transaction{
		ID:            uuid.New().String(),
		ShopID:        input.ShopID,
		UserID:        input.UserID,
		CustomerID:    input.CustomerID,
		Items:         items,
		Subtotal:      subtotal,
		TaxAmount:     input.TaxAmount,
		Total:         subtotal.Add(input.TaxAmount),
		PaymentMethod: paymentMethod,
		Status:        entity.TransactionStatusCompleted,
		CreatedAt:     now,
	}

	// Único punto fatal: si la venta no se puede registrar, el checkout falla.
	if err := uc.transactionRepo.Create(transaction); err != nil {
		return nil, fmt.Errorf("registrar transacción: %w", err)
	}

	result := &CheckoutResult{TransactionID: transaction.ID}
	for _, item := range MergeByProduct(transaction.Items) {
		created, err := uc.emitter.EmitSale(ctx, transaction, item, now)
		if err != nil {
			// La venta ya está registrada: el fallo de la línea se reporta y
			// queda reparable con backfill + recalculate.
			uc.log.Error().Err(err).
				Str("transaction_id", transaction.ID).
				Str("product_id", item.ProductID).
				Msg("emisión de movimiento de venta fallida")
			result.LineWarnings = append(result.LineWarnings,
				fmt.Sprintf("%s: %s", item.ProductID, err.Error()))
			continue
		}
		if created {
			result.MovementsCreated++
		}
	}

	uc.log.Info().
		Str("transaction_id", transaction.ID).
		Str("shop_id", transaction.ShopID).
		Int("lines", len(transaction.Items)).
		Int("movements", result.MovementsCreated).
		Msg("checkout procesado")

	return result, nil
}

// MergeByProduct consolida líneas repetidas del mismo producto en una sola
// antes de emitir. El ledger admite un único movimiento de venta por producto
// y transacción (restricción de unicidad en el almacén), así que dos líneas
// del mismo producto se aplican como un solo decremento por la suma. Todo
// recorrido que emite movimientos a partir de una transacción debe pasar las
// líneas por aquí (checkout y backfill).
func MergeByProduct(items []entity.TransactionItem) []entity.TransactionItem {
	merged := make([]entity.TransactionItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			merged[i].Subtotal = merged[i].Subtotal.Add(item.Subtotal)
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
