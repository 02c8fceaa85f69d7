package repository

import "github.com/jhoicas/pos-ledger-api/internal/domain/entity"

// TransactionRepository define el puerto de persistencia de ventas POS.
// El motor de stock consume transacciones, no las posee: Create lo usa el
// checkout y ListCompleted el backfill de movimientos históricos.
type TransactionRepository interface {
	Create(tx *entity.Transaction) error
	GetByID(id string) (*entity.Transaction, error)
	// ListCompleted retorna todas las transacciones completadas ordenadas por
	// created_at ascendente (el backfill las reproduce en orden histórico).
	ListCompleted() ([]*entity.Transaction, error)
}
