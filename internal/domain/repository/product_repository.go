package repository

import "github.com/jhoicas/pos-ledger-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para productos (DIP).
// ListAll recorre el catálogo completo (todas las tiendas): lo usan las
// pasadas de reconciliación. List es el listado por tienda del API.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE); usar
	// dentro de una transacción para el read-modify-write del checkout.
	GetForUpdate(id string) (*entity.Product, error)
	ListAll() ([]*entity.Product, error)
	List(shopID string, limit, offset int) ([]*entity.Product, error)
	// UpdateStock persiste la cantidad en mano. El adaptador aplica el piso
	// no-negativo (stock.ClampStock) antes de escribir.
	UpdateStock(id string, stockQty int) error
}
