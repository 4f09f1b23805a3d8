package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/losbaristas/cafeteria-catalog/internal/model"
)

var (
	// ErrNotFound is returned when no row matches the requested key.
	ErrNotFound = errors.New("not found")
)

// ProductRepository is the storage access for the productos table.
type ProductRepository interface {
	List(ctx context.Context, query Query) ([]*model.Product, error)
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) (*model.Product, error)
	// DeleteByID removes the row and returns it as it was before deletion.
	DeleteByID(ctx context.Context, id int64) (*model.Product, error)
}

// EventRepository is the storage access for the outbox events table.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	ListPending(ctx context.Context, limit int) ([]*model.Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error
}

// Transactor runs fn with repositories bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(products ProductRepository, events EventRepository) error) error
}
