package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/losbaristas/cafeteria-catalog/internal/metrics"
	"github.com/losbaristas/cafeteria-catalog/internal/model"
	"github.com/losbaristas/cafeteria-catalog/internal/repository"
	"github.com/losbaristas/cafeteria-catalog/internal/sqs"
)

const (
	ActionCreated = model.ProductActionCreated
	ActionUpdated = model.ProductActionUpdated
	ActionDeleted = model.ProductActionDeleted
)

// ProductService holds the catalog operations. With an outbox, every write
// also records a product event in the same transaction.
type ProductService struct {
	repo       repository.ProductRepository
	transactor repository.Transactor
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

func NewProductServiceWithOutbox(repo repository.ProductRepository, transactor repository.Transactor) *ProductService {
	return &ProductService{
		repo:       repo,
		transactor: transactor,
	}
}

func (ps *ProductService) ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	return ps.repo.List(ctx, query)
}

func (ps *ProductService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return ps.repo.FindByID(ctx, id)
}

func (ps *ProductService) CreateProduct(ctx context.Context, nombre string, precio int64, imagen string) (*model.Product, error) {
	product := &model.Product{
		Nombre: nombre,
		Precio: precio,
		Imagen: imagen,
	}

	created, err := ps.write(ctx, ActionCreated, func(products repository.ProductRepository) (*model.Product, error) {
		return products.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	slog.Info("Product created", slog.Int64("product_id", created.ID))
	return created, nil
}

// UpdateProduct replaces nombre, precio and imagen of product id.
func (ps *ProductService) UpdateProduct(ctx context.Context, id int64, nombre string, precio int64, imagen string) (*model.Product, error) {
	product := &model.Product{
		ID:     id,
		Nombre: nombre,
		Precio: precio,
		Imagen: imagen,
	}

	updated, err := ps.write(ctx, ActionUpdated, func(products repository.ProductRepository) (*model.Product, error) {
		return products.Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	metrics.ProductsUpdated.Inc()
	slog.Info("Product updated", slog.Int64("product_id", updated.ID))
	return updated, nil
}

// DeleteProduct removes product id and returns the row as it was.
func (ps *ProductService) DeleteProduct(ctx context.Context, id int64) (*model.Product, error) {
	deleted, err := ps.write(ctx, ActionDeleted, func(products repository.ProductRepository) (*model.Product, error) {
		return products.DeleteByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	metrics.ProductsDeleted.Inc()
	slog.Info("Product deleted", slog.Int64("product_id", deleted.ID))
	return deleted, nil
}

func (ps *ProductService) write(ctx context.Context, action string, op func(repository.ProductRepository) (*model.Product, error)) (*model.Product, error) {
	if ps.transactor == nil {
		return op(ps.repo)
	}

	var result *model.Product
	err := ps.transactor.WithinTransaction(ctx, func(products repository.ProductRepository, events repository.EventRepository) error {
		product, err := op(products)
		if err != nil {
			return err
		}

		event, err := newProductEvent(action, product)
		if err != nil {
			return err
		}
		if _, err := events.Create(ctx, event); err != nil {
			return err
		}

		result = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func newProductEvent(action string, product *model.Product) (*model.Event, error) {
	eventType, ok := model.ProductEventType(action)
	if !ok {
		return nil, fmt.Errorf("unknown product action %q", action)
	}

	data, err := json.Marshal(sqs.ProductMessage{
		Action:    action,
		ProductID: product.ID,
		Nombre:    product.Nombre,
		Precio:    product.Precio,
		Imagen:    product.Imagen,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	return &model.Event{
		EventType: eventType,
		EventData: data,
		Status:    model.EventStatusPending,
	}, nil
}
