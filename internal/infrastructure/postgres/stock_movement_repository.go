package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
	"github.com/jhoicas/pos-ledger-api/internal/domain/stock"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, shop_id, type, quantity, stock_before, stock_after, reference_type, reference_id, created_by, created_at`

// StockMovementRepo implementación del puerto StockMovementRepository sobre
// PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento tal cual viene (sin guardia de idempotencia).
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ProductID, m.ShopID, m.Type, m.Quantity, m.StockBefore, m.StockAfter,
		nullIfEmpty(m.ReferenceType), nullIfEmpty(m.ReferenceID), nullIfEmpty(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByProduct lista los movimientos de un producto ordenados por fecha de
// creación (id como desempate estable). opts permite excluir el movimiento
// inicial y pedir orden descendente.
func (r *StockMovementRepo) ListByProduct(productID string, opts repository.MovementListOptions) ([]entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE product_id = $1`
	if opts.ExcludeInitial {
		query += ` AND type <> 'initial' AND reference_type IS DISTINCT FROM 'initial stock'`
	}
	if opts.Descending {
		query += ` ORDER BY created_at DESC, id DESC`
	} else {
		query += ` ORDER BY created_at ASC, id ASC`
	}
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// GetInitial devuelve el movimiento inicial del producto, o nil si aún no existe.
func (r *StockMovementRepo) GetInitial(productID string) (*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE product_id = $1 AND (type = 'initial' OR reference_type = 'initial stock')
		ORDER BY created_at ASC, id ASC
		LIMIT 1`
	row := r.q.QueryRow(context.Background(), query, productID)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get initial movement: %w", err)
	}
	return m, nil
}

// BatchUpdateProgression aplica cada corrección de antes/después de forma
// individual, acumulando fallos por fila en vez de abortar el lote.
func (r *StockMovementRepo) BatchUpdateProgression(updates []stock.ProgressionUpdate) (repository.BatchUpdateResult, error) {
	var result repository.BatchUpdateResult
	for _, u := range updates {
		cmd, err := r.q.Exec(context.Background(),
			`UPDATE stock_movements SET stock_before = $2, stock_after = $3 WHERE id = $1`,
			u.MovementID, u.StockBefore, u.StockAfter,
		)
		if err != nil {
			result.Errors = append(result.Errors, repository.MovementUpdateError{MovementID: u.MovementID, Err: err.Error()})
			continue
		}
		if cmd.RowsAffected() == 0 {
			result.Errors = append(result.Errors, repository.MovementUpdateError{
				MovementID: u.MovementID,
				Err:        "movimiento inexistente",
			})
			continue
		}
		result.Updated++
	}
	return result, nil
}

// UpsertInitial siembra o corrige el movimiento inicial del producto. El
// insert queda fechado en la creación del producto, no en "ahora", para que
// preceda a cualquier venta histórica.
func (r *StockMovementRepo) UpsertInitial(product *entity.Product, initialStock int) (repository.UpsertInitialResult, error) {
	existing, err := r.GetInitial(product.ID)
	if err != nil {
		return repository.UpsertInitialResult{}, err
	}
	if existing != nil {
		_, err := r.q.Exec(context.Background(),
			`UPDATE stock_movements SET type = 'initial', quantity = $2, stock_before = 0, stock_after = $2 WHERE id = $1`,
			existing.ID, initialStock,
		)
		if err != nil {
			return repository.UpsertInitialResult{}, fmt.Errorf("update initial movement: %w", err)
		}
		return repository.UpsertInitialResult{Updated: true}, nil
	}

	m := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		ShopID:        product.ShopID,
		Type:          entity.MovementTypeInitial,
		Quantity:      initialStock,
		StockBefore:   0,
		StockAfter:    initialStock,
		ReferenceType: entity.ReferenceTypeInitial,
		CreatedAt:     product.CreatedAt,
	}
	if err := r.Create(m); err != nil {
		return repository.UpsertInitialResult{}, err
	}
	return repository.UpsertInitialResult{Created: true}, nil
}

// InsertSale inserta un movimiento de venta respetando la unicidad
// (product_id, reference_type, reference_id). Devuelve false sin error cuando
// la referencia ya estaba aplicada: la restricción del almacén es la guardia
// de idempotencia, no un chequeo previo.
func (r *StockMovementRepo) InsertSale(m *entity.StockMovement) (bool, error) {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (product_id, reference_type, reference_id) DO NOTHING`
	cmd, err := r.q.Exec(context.Background(), query,
		m.ID, m.ProductID, m.ShopID, m.Type, m.Quantity, m.StockBefore, m.StockAfter,
		nullIfEmpty(m.ReferenceType), nullIfEmpty(m.ReferenceID), nullIfEmpty(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert sale movement: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// ExistsForReference indica si el producto ya tiene un movimiento ligado a la referencia.
func (r *StockMovementRepo) ExistsForReference(productID, referenceType, referenceID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM stock_movements WHERE product_id = $1 AND reference_type = $2 AND reference_id = $3)`,
		productID, referenceType, referenceID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}
	return exists, nil
}

// AnyForReference indica si algún producto tiene movimientos ligados a la
// referencia. Lo usa el backfill para saltar transacciones ya aplicadas.
func (r *StockMovementRepo) AnyForReference(referenceType, referenceID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM stock_movements WHERE reference_type = $1 AND reference_id = $2)`,
		referenceType, referenceID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}
	return exists, nil
}

func scanMovements(rows pgx.Rows) ([]entity.StockMovement, error) {
	var list []entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var refType, refID, createdBy *string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.ShopID, &m.Type, &m.Quantity, &m.StockBefore, &m.StockAfter,
		&refType, &refID, &createdBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.ReferenceType = deref(refType)
	m.ReferenceID = deref(refID)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
