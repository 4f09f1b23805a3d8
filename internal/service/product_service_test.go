package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/losbaristas/cafeteria-catalog/internal/model"
	"github.com/losbaristas/cafeteria-catalog/internal/repository"
	"github.com/losbaristas/cafeteria-catalog/internal/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("without outbox", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		input := &model.Product{Nombre: "Espresso", Precio: 300, Imagen: "esp.png"}
		stored := &model.Product{ID: 1, Nombre: "Espresso", Precio: 300, Imagen: "esp.png"}
		mockRepo.On("Create", ctx, input).Return(stored, nil)

		productService := NewProductService(mockRepo)

		created, err := productService.CreateProduct(ctx, "Espresso", 300, "esp.png")

		require.NoError(t, err)
		assert.Equal(t, stored, created)
		mockRepo.AssertExpectations(t)
	})

	t.Run("with outbox records a created event", func(t *testing.T) {
		txProducts := new(MockProductRepository)
		txEvents := new(MockEventRepository)
		transactor := &fakeTransactor{products: txProducts, events: txEvents}

		stored := &model.Product{ID: 3, Nombre: "Mocha", Precio: 550, Imagen: "mocha.png"}
		txProducts.On("Create", ctx, mock.AnythingOfType("*model.Product")).Return(stored, nil)
		txEvents.On("Create", ctx, mock.MatchedBy(func(e *model.Event) bool {
			var msg sqs.ProductMessage
			if err := json.Unmarshal(e.EventData, &msg); err != nil {
				return false
			}
			return e.EventType == model.EventTypeProductCreated &&
				msg == sqs.ProductMessage{Action: ActionCreated, ProductID: 3, Nombre: "Mocha", Precio: 550, Imagen: "mocha.png"}
		})).Return(&model.Event{}, nil)

		productService := NewProductServiceWithOutbox(new(MockProductRepository), transactor)

		created, err := productService.CreateProduct(ctx, "Mocha", 550, "mocha.png")

		require.NoError(t, err)
		assert.Equal(t, stored, created)
		assert.Equal(t, 1, transactor.calls)
		txProducts.AssertExpectations(t)
		txEvents.AssertExpectations(t)
	})

	t.Run("event failure fails the write", func(t *testing.T) {
		txProducts := new(MockProductRepository)
		txEvents := new(MockEventRepository)
		transactor := &fakeTransactor{products: txProducts, events: txEvents}

		txProducts.On("Create", ctx, mock.Anything).Return(&model.Product{ID: 4}, nil)
		txEvents.On("Create", ctx, mock.Anything).Return(nil, errors.New("insert failed"))

		productService := NewProductServiceWithOutbox(new(MockProductRepository), transactor)

		created, err := productService.CreateProduct(ctx, "Mocha", 550, "mocha.png")

		require.Error(t, err)
		assert.Nil(t, created)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces all fields", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		want := &model.Product{ID: 1, Nombre: "Latte", Precio: 500, Imagen: "latte.png"}
		mockRepo.On("Update", ctx, want).Return(want, nil)

		productService := NewProductService(mockRepo)

		updated, err := productService.UpdateProduct(ctx, 1, "Latte", 500, "latte.png")

		require.NoError(t, err)
		assert.Equal(t, want, updated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("not found propagates", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("Update", ctx, mock.Anything).Return(nil, repository.ErrNotFound)

		productService := NewProductService(mockRepo)

		_, err := productService.UpdateProduct(ctx, 9, "Latte", 500, "latte.png")

		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the deleted snapshot", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		snapshot := &model.Product{ID: 1, Nombre: "Espresso", Precio: 300, Imagen: "esp.png"}
		mockRepo.On("DeleteByID", ctx, int64(1)).Return(snapshot, nil)

		productService := NewProductService(mockRepo)

		deleted, err := productService.DeleteProduct(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, snapshot, deleted)
		mockRepo.AssertExpectations(t)
	})

	t.Run("not found does not write an event", func(t *testing.T) {
		txProducts := new(MockProductRepository)
		txEvents := new(MockEventRepository)
		transactor := &fakeTransactor{products: txProducts, events: txEvents}
		txProducts.On("DeleteByID", ctx, int64(2)).Return(nil, repository.ErrNotFound)

		productService := NewProductServiceWithOutbox(new(MockProductRepository), transactor)

		_, err := productService.DeleteProduct(ctx, 2)

		assert.ErrorIs(t, err, repository.ErrNotFound)
		txEvents.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)

	products := []*model.Product{
		{ID: 1, Nombre: "Espresso", Precio: 300},
		{ID: 2, Nombre: "Latte", Precio: 500},
	}
	query := repository.NewQuery()
	mockRepo.On("List", ctx, *query).Return(products, nil)

	productService := NewProductService(mockRepo)

	results, err := productService.ListProducts(ctx, *query)

	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "Espresso", results[0].Nombre)
	assert.Equal(t, "Latte", results[1].Nombre)
	mockRepo.AssertExpectations(t)
}

func TestGetProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockRepo.On("FindByID", ctx, int64(5)).Return(nil, repository.ErrNotFound)

	productService := NewProductService(mockRepo)

	_, err := productService.GetProduct(ctx, 5)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProductWrites_RecordTypedEvents(t *testing.T) {
	ctx := context.Background()
	stored := &model.Product{ID: 7, Nombre: "Latte", Precio: 500, Imagen: "latte.png"}

	tests := []struct {
		name      string
		setup     func(products *MockProductRepository)
		write     func(ps *ProductService) error
		eventType string
	}{
		{
			name:  "update",
			setup: func(p *MockProductRepository) { p.On("Update", ctx, mock.Anything).Return(stored, nil) },
			write: func(ps *ProductService) error {
				_, err := ps.UpdateProduct(ctx, 7, "Latte", 500, "latte.png")
				return err
			},
			eventType: model.EventTypeProductUpdated,
		},
		{
			name:  "delete",
			setup: func(p *MockProductRepository) { p.On("DeleteByID", ctx, int64(7)).Return(stored, nil) },
			write: func(ps *ProductService) error {
				_, err := ps.DeleteProduct(ctx, 7)
				return err
			},
			eventType: model.EventTypeProductDeleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			txProducts := new(MockProductRepository)
			txEvents := new(MockEventRepository)
			tt.setup(txProducts)
			txEvents.On("Create", ctx, mock.MatchedBy(func(e *model.Event) bool {
				return e.EventType == tt.eventType
			})).Return(&model.Event{}, nil)

			productService := NewProductServiceWithOutbox(new(MockProductRepository), &fakeTransactor{products: txProducts, events: txEvents})

			// when
			err := tt.write(productService)

			// then
			require.NoError(t, err)
			txEvents.AssertExpectations(t)
		})
	}
}

func TestNewProductEvent_UnknownAction(t *testing.T) {
	event, err := newProductEvent("archived", &model.Product{ID: 1})

	require.Error(t, err)
	assert.Nil(t, event)
	assert.Contains(t, err.Error(), "unknown product action")
}
