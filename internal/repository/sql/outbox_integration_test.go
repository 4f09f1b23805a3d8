package sql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/losbaristas/cafeteria-catalog/internal/model"
	"github.com/losbaristas/cafeteria-catalog/internal/repository"
	"github.com/losbaristas/cafeteria-catalog/internal/repository/sql"
	"github.com/losbaristas/cafeteria-catalog/internal/service"
	"github.com/losbaristas/cafeteria-catalog/internal/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []sqs.ProductMessage
}

func (p *recordingPublisher) PublishProductMessage(_ context.Context, msg sqs.ProductMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) published() []sqs.ProductMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sqs.ProductMessage(nil), p.messages...)
}

func TestOutbox_Integration(t *testing.T) {
	tdb := setupTestDB(t)
	ctx := context.Background()

	productRepo := sql.NewProductRepository(tdb.DB)
	eventRepo := sql.NewEventRepository(tdb.DB)
	productService := service.NewProductServiceWithOutbox(productRepo, sql.NewTransactionalRepository(tdb.DB))

	t.Run("writes are published in order", func(t *testing.T) {
		// given
		tdb.truncate(t)
		publisher := &recordingPublisher{}

		created, err := productService.CreateProduct(ctx, "Espresso", 300, "esp.png")
		require.NoError(t, err)
		_, err = productService.UpdateProduct(ctx, created.ID, "Latte", 500, "latte.png")
		require.NoError(t, err)
		_, err = productService.DeleteProduct(ctx, created.ID)
		require.NoError(t, err)

		pending, err := eventRepo.ListPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 3)

		// when
		workerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		worker := service.NewOutboxWorker(eventRepo, publisher, 20*time.Millisecond)
		go worker.Start(workerCtx)

		// then
		require.Eventually(t, func() bool {
			return len(publisher.published()) == 3
		}, 5*time.Second, 20*time.Millisecond)

		msgs := publisher.published()
		assert.Equal(t, service.ActionCreated, msgs[0].Action)
		assert.Equal(t, service.ActionUpdated, msgs[1].Action)
		assert.Equal(t, "Latte", msgs[1].Nombre)
		assert.Equal(t, service.ActionDeleted, msgs[2].Action)
		for _, msg := range msgs {
			assert.Equal(t, created.ID, msg.ProductID)
		}

		require.Eventually(t, func() bool {
			pending, err := eventRepo.ListPending(ctx, 10)
			return err == nil && len(pending) == 0
		}, 5*time.Second, 20*time.Millisecond)
	})

	t.Run("failed write leaves no event", func(t *testing.T) {
		tdb.truncate(t)

		_, err := productService.UpdateProduct(ctx, 999, "Latte", 500, "latte.png")
		require.ErrorIs(t, err, repository.ErrNotFound)

		pending, err := eventRepo.ListPending(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("event insert failure rolls back the product", func(t *testing.T) {
		tdb.truncate(t)
		failing := service.NewProductServiceWithOutbox(productRepo, failingEventsTransactor{sql.NewTransactionalRepository(tdb.DB)})

		_, err := failing.CreateProduct(ctx, "Espresso", 300, "esp.png")
		require.Error(t, err)

		products, err := productRepo.List(ctx, *repository.NewQuery())
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}

// failingEventsTransactor runs the real transaction but refuses to store events.
type failingEventsTransactor struct {
	inner repository.Transactor
}

func (f failingEventsTransactor) WithinTransaction(ctx context.Context, fn func(repository.ProductRepository, repository.EventRepository) error) error {
	return f.inner.WithinTransaction(ctx, func(products repository.ProductRepository, _ repository.EventRepository) error {
		return fn(products, failingEvents{})
	})
}

type failingEvents struct{}

func (failingEvents) Create(context.Context, *model.Event) (*model.Event, error) {
	return nil, errors.New("events table unavailable")
}

func (failingEvents) ListPending(context.Context, int) ([]*model.Event, error) {
	return nil, nil
}

func (failingEvents) UpdateStatus(context.Context, uuid.UUID, model.EventStatus) error {
	return nil
}
