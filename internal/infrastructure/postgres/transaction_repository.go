package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger-api/internal/domain"
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, shop_id, user_id, customer_id, items, subtotal, tax_amount, total, payment_method, status, created_at`

// TransactionRepo implementación del puerto TransactionRepository sobre
// PostgreSQL. Las líneas de la venta viven como JSONB en la misma fila.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create registra la venta completada.
func (r *TransactionRepo) Create(t *entity.Transaction) error {
	items, err := json.Marshal(t.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.q.Exec(context.Background(), query,
		t.ID, t.ShopID, t.UserID, nullIfEmpty(t.CustomerID), items,
		t.Subtotal, t.TaxAmount, t.Total, t.PaymentMethod, t.Status, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una venta por ID.
func (r *TransactionRepo) GetByID(id string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	t, err := scanTransaction(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListCompleted lista todas las ventas completadas en orden cronológico.
// Es el recorrido del backfill de movimientos.
func (r *TransactionRepo) ListCompleted() ([]*entity.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions WHERE status = 'completed' ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	var customerID *string
	var items []byte
	err := row.Scan(
		&t.ID, &t.ShopID, &t.UserID, &customerID, &items,
		&t.Subtotal, &t.TaxAmount, &t.Total, &t.PaymentMethod, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.CustomerID = deref(customerID)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &t.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
	}
	return &t, nil
}
