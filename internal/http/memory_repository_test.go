package http

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/losbaristas/cafeteria-catalog/internal/model"
	"github.com/losbaristas/cafeteria-catalog/internal/repository"
)

// memoryRepository is an in-process repository.ProductRepository with the
// same id and not-found semantics as the SQL one.
type memoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]model.Product
	failAll error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{nextID: 1, rows: make(map[int64]model.Product)}
}

func (r *memoryRepository) List(_ context.Context, query repository.Query) ([]*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}

	ids := make([]int64, 0, len(r.rows))
	for id := range r.rows {
		if query.Paginator != nil && id <= query.Paginator.LastID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if query.Limit > 0 && len(ids) > query.Limit {
		ids = ids[:query.Limit]
	}

	products := make([]*model.Product, 0, len(ids))
	for _, id := range ids {
		p := r.rows[id]
		products = append(products, &p)
	}
	return products, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id int64) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	p, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepository) Create(_ context.Context, product *model.Product) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	p := *product
	p.ID = r.nextID
	r.nextID++
	r.rows[p.ID] = p
	return &p, nil
}

func (r *memoryRepository) Update(_ context.Context, product *model.Product) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	if _, ok := r.rows[product.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	p := *product
	r.rows[p.ID] = p
	return &p, nil
}

func (r *memoryRepository) DeleteByID(_ context.Context, id int64) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	p, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.rows, id)
	return &p, nil
}

func (r *memoryRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(context.Context) error {
	return f.err
}

var errDatabaseDown = errors.New("database down")
