package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/losbaristas/cafeteria-catalog/internal/config"
	"github.com/losbaristas/cafeteria-catalog/internal/logger"
	"github.com/losbaristas/cafeteria-catalog/internal/model"
	sqspkg "github.com/losbaristas/cafeteria-catalog/internal/sqs"
)

func main() {
	conf, err := config.LoadNotificationFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqsClient, err := sqspkg.NewClient(ctx, conf.AWS)
	handleErr("creating SQS client", err)
	consumer := sqspkg.NewConsumer(sqsClient, conf.AWS.SQSQueueURL)
	consumer.Handle(model.EventTypeProductCreated, notify("Product added to the catalog"))
	consumer.Handle(model.EventTypeProductUpdated, notify("Product changed"))
	consumer.Handle(model.EventTypeProductDeleted, notify("Product removed from the catalog"))

	slog.Info("Notification service started. Listening for product events...")

	// Start blocks until the signal context is cancelled
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Consumer error", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("Shutting down gracefully...")
}

// notify logs the product an event is about.
func notify(msg string) sqspkg.HandlerFunc {
	return func(_ context.Context, product sqspkg.ProductMessage) error {
		slog.Info(msg,
			slog.String("action", product.Action),
			slog.Int64("product_id", product.ProductID),
			slog.String("nombre", product.Nombre),
			slog.Int64("precio", product.Precio),
			slog.String("imagen", product.Imagen),
		)
		return nil
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
