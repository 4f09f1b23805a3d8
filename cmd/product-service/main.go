package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/losbaristas/cafeteria-catalog/internal/assets"
	"github.com/losbaristas/cafeteria-catalog/internal/config"
	httpAPI "github.com/losbaristas/cafeteria-catalog/internal/http"
	"github.com/losbaristas/cafeteria-catalog/internal/http/controller"
	"github.com/losbaristas/cafeteria-catalog/internal/logger"
	"github.com/losbaristas/cafeteria-catalog/internal/metrics"
	"github.com/losbaristas/cafeteria-catalog/internal/repository/sql"
	"github.com/losbaristas/cafeteria-catalog/internal/service"
	sqspkg "github.com/losbaristas/cafeteria-catalog/internal/sqs"
	"github.com/losbaristas/cafeteria-catalog/pkg/closer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := closer.New(2 * time.Second)

	db, err := sql.StartDB(ctx, conf.Database)
	handleErr("starting database", err)
	shutdown.Add(func(context.Context) error {
		slog.Info("Closing database pool")
		return db.Close()
	})

	images, err := newImageStore(conf.Assets)
	handleErr("initializing image store", err)

	// Create repositories
	productRepository := sql.NewProductRepository(db)

	productService := service.NewProductService(productRepository)
	if conf.AWS.OutboxEnabled() {
		sqsClient, err := sqspkg.NewClient(ctx, conf.AWS)
		handleErr("creating SQS client", err)
		sqsPublisher := sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL)

		// Product writes also record an event in the same transaction
		productService = service.NewProductServiceWithOutbox(productRepository, sql.NewTransactionalRepository(db))

		outboxWorker := service.NewOutboxWorker(sql.NewEventRepository(db), sqsPublisher, conf.AWS.OutboxInterval)
		workerDone := make(chan struct{})
		go func() {
			defer close(workerDone)
			outboxWorker.Start(ctx)
		}()
		shutdown.Add(func(ctx context.Context) error {
			select {
			case <-workerDone:
			default:
				outboxWorker.Stop()
			}
			select {
			case <-workerDone:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	} else {
		slog.Info("SQS queue not configured, product events are not published")
	}

	// Start HTTP server
	ctr := controller.New(db)
	productCtr := controller.NewProductController(productService, images)
	router := httpAPI.InitRouter(conf, gin.New(), ctr, productCtr)

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsServer := metrics.NewServer(conf.MetricsServer.Port)

	serve(httpServer, "HTTP", stop)
	serve(metricsServer, "metrics", stop)
	shutdown.Add(metricsServer.Shutdown)
	shutdown.Add(httpServer.Shutdown)

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdown.Close(shutdownCtx); err != nil {
		slog.Error("Shutdown finished with errors", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("Shutdown complete")
}

func newImageStore(conf config.Assets) (assets.Store, error) {
	if conf.Backend == config.AssetsBackendMinio {
		client, err := assets.NewMinioClient(conf.Minio.Endpoint, conf.Minio.AccessKey, conf.Minio.SecretKey, conf.Minio.UseSSL)
		if err != nil {
			return nil, err
		}
		slog.Info("Serving product images from MinIO", slog.String("bucket", conf.Minio.Bucket))
		return assets.NewMinioStore(client, conf.Minio.Bucket), nil
	}
	slog.Info("Serving product images from directory", slog.String("dir", conf.ImagesDir))
	return assets.NewDirStore(conf.ImagesDir), nil
}

// serve runs srv in the background. A listen failure triggers shutdown.
func serve(srv *http.Server, name string, stop context.CancelFunc) {
	go func() {
		slog.Info("Server starting", slog.String("server", name), slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", slog.String("server", name), slog.Any("err", err))
			stop()
		}
	}()
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
