package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/losbaristas/cafeteria-catalog/internal/model"
	"github.com/losbaristas/cafeteria-catalog/internal/repository"
	"github.com/losbaristas/cafeteria-catalog/internal/sqs"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repository.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	return m.product(m.Called(ctx, id))
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	return m.product(m.Called(ctx, product))
}

func (m *MockProductRepository) Update(ctx context.Context, product *model.Product) (*model.Product, error) {
	return m.product(m.Called(ctx, product))
}

func (m *MockProductRepository) DeleteByID(ctx context.Context, id int64) (*model.Product, error) {
	return m.product(m.Called(ctx, id))
}

func (m *MockProductRepository) product(args mock.Arguments) (*model.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockEventRepository is a mock implementation of repository.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *MockEventRepository) ListPending(ctx context.Context, limit int) ([]*model.Event, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *MockEventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// fakeTransactor runs the callback directly against the given mocks and
// reports whether it was used.
type fakeTransactor struct {
	products *MockProductRepository
	events   *MockEventRepository
	calls    int
}

func (f *fakeTransactor) WithinTransaction(_ context.Context, fn func(repository.ProductRepository, repository.EventRepository) error) error {
	f.calls++
	return fn(f.products, f.events)
}

// MockPublisher is a mock implementation of MessagePublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductMessage(ctx context.Context, msg sqs.ProductMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
