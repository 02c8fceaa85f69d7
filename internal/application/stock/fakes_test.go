package stock_test

import (
	"context"
	"errors"
	"sort"

	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	"github.com/jhoicas/pos-ledger-api/internal/domain/repository"
	calc "github.com/jhoicas/pos-ledger-api/internal/domain/stock"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia. Replican el contrato de los
// adaptadores de PostgreSQL: piso en cero al persistir stock, slice vacío sin
// error cuando no hay movimientos, unicidad por (producto, referencia).
// ──────────────────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	products map[string]*entity.Product
	order    []string
	failList bool
	// failUpdateFor simula un fallo de escritura para un producto puntual.
	failUpdateFor string
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[string]*entity.Product{}}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
		r.order = append(r.order, p.ID)
	}
	return r
}

func (r *fakeProductRepo) Create(p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	r.order = append(r.order, p.ID)
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *fakeProductRepo) ListAll() ([]*entity.Product, error) {
	if r.failList {
		return nil, errors.New("conexión rechazada")
	}
	out := make([]*entity.Product, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.products[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeProductRepo) List(shopID string, limit, offset int) ([]*entity.Product, error) {
	all, _ := r.ListAll()
	out := make([]*entity.Product, 0)
	for _, p := range all {
		if p.ShopID == shopID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) UpdateStock(id string, stockQty int) error {
	if id == r.failUpdateFor {
		return errors.New("permiso denegado")
	}
	p, ok := r.products[id]
	if !ok {
		return errors.New("producto inexistente")
	}
	p.StockQty = calc.ClampStock(stockQty)
	return nil
}

type fakeMovementRepo struct {
	movements map[string][]entity.StockMovement // por producto
	seq       int
	// failListFor simula un fallo de lectura para un producto puntual.
	failListFor string
	// failUpdateMovement simula el fallo de una fila dentro del batch.
	failUpdateMovement string
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{movements: map[string][]entity.StockMovement{}}
}

func (r *fakeMovementRepo) add(m entity.StockMovement) {
	r.movements[m.ProductID] = append(r.movements[m.ProductID], m)
}

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	r.add(*m)
	return nil
}

func (r *fakeMovementRepo) ListByProduct(productID string, opts repository.MovementListOptions) ([]entity.StockMovement, error) {
	if productID == r.failListFor {
		return nil, errors.New("timeout de consulta")
	}
	out := make([]entity.StockMovement, 0)
	for _, m := range r.movements[productID] {
		if opts.ExcludeInitial && calc.IsInitialMovement(m) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if opts.Descending {
			return out[j].CreatedAt.Before(out[i].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeMovementRepo) GetInitial(productID string) (*entity.StockMovement, error) {
	for _, m := range r.movements[productID] {
		if calc.IsInitialMovement(m) {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) BatchUpdateProgression(updates []calc.ProgressionUpdate) (repository.BatchUpdateResult, error) {
	res := repository.BatchUpdateResult{}
	for _, u := range updates {
		if u.MovementID == r.failUpdateMovement {
			res.Errors = append(res.Errors, repository.MovementUpdateError{MovementID: u.MovementID, Err: "restricción violada"})
			continue
		}
		if r.applyUpdate(u) {
			res.Updated++
		}
	}
	return res, nil
}

func (r *fakeMovementRepo) applyUpdate(u calc.ProgressionUpdate) bool {
	for productID, list := range r.movements {
		for i, m := range list {
			if m.ID == u.MovementID {
				list[i].StockBefore = u.StockBefore
				list[i].StockAfter = u.StockAfter
				r.movements[productID] = list
				return true
			}
		}
	}
	return false
}

func (r *fakeMovementRepo) UpsertInitial(product *entity.Product, initialStock int) (repository.UpsertInitialResult, error) {
	for i, m := range r.movements[product.ID] {
		if calc.IsInitialMovement(m) {
			m.Quantity = initialStock
			m.StockBefore = 0
			m.StockAfter = initialStock
			m.Type = entity.MovementTypeInitial
			r.movements[product.ID][i] = m
			return repository.UpsertInitialResult{Updated: true}, nil
		}
	}
	r.seq++
	r.add(entity.StockMovement{
		ID:            "init-" + product.ID,
		ProductID:     product.ID,
		ShopID:        product.ShopID,
		Type:          entity.MovementTypeInitial,
		Quantity:      initialStock,
		StockBefore:   0,
		StockAfter:    initialStock,
		ReferenceType: entity.ReferenceTypeInitial,
		CreatedAt:     product.CreatedAt,
	})
	return repository.UpsertInitialResult{Created: true}, nil
}

func (r *fakeMovementRepo) InsertSale(m *entity.StockMovement) (bool, error) {
	exists, _ := r.ExistsForReference(m.ProductID, m.ReferenceType, m.ReferenceID)
	if exists {
		return false, nil
	}
	r.add(*m)
	return true, nil
}

func (r *fakeMovementRepo) ExistsForReference(productID, referenceType, referenceID string) (bool, error) {
	for _, m := range r.movements[productID] {
		if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMovementRepo) AnyForReference(referenceType, referenceID string) (bool, error) {
	for _, list := range r.movements {
		for _, m := range list {
			if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
				return true, nil
			}
		}
	}
	return false, nil
}

// fakeTxRunner pasa los fakes directamente; no hay transacción real que abrir.
type fakeTxRunner struct {
	products  *fakeProductRepo
	movements *fakeMovementRepo
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
) error) error {
	return fn(r.products, r.movements)
}
