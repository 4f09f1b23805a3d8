package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// DBSSLModeEnv is the environment variable for the libpq sslmode.
	DBSSLModeEnv = "DB_SSL_MODE"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// ImagesDirEnv is the directory product images are served from.
	ImagesDirEnv = "IMAGES_DIR"

	// AssetsBackendEnv selects where product images live: "fs" or "minio".
	AssetsBackendEnv = "ASSETS_BACKEND"

	MinioEndpointEnv  = "MINIO_ENDPOINT"
	MinioBucketEnv    = "MINIO_BUCKET"
	MinioAccessKeyEnv = "MINIO_ACCESS_KEY"
	MinioSecretKeyEnv = "MINIO_SECRET_KEY"
	MinioUseSSLEnv    = "MINIO_USE_SSL"

	// CORSAllowedOriginEnv is the only origin allowed to call the collection root.
	CORSAllowedOriginEnv = "CORS_ALLOWED_ORIGIN"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	// Leaving it empty disables the outbox.
	SQSQueueURLEnv = "SQS_QUEUE_URL"

	// OutboxIntervalEnv is how often pending outbox events are polled.
	OutboxIntervalEnv = "OUTBOX_INTERVAL"
)

const (
	AssetsBackendFS    = "fs"
	AssetsBackendMinio = "minio"

	defaultImagesDir      = "static/img"
	defaultSSLMode        = "disable"
	defaultAllowedOrigin  = "https://carladlp.github.io"
	defaultOutboxInterval = 2 * time.Second
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")

	// ErrInvalidConfig is returned when a configuration value is present but unusable.
	ErrInvalidConfig = errors.New("invalid config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	Assets        Assets
	CORS          CORS
	AWS           AWSConfig
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region         string
	Endpoint       string
	SQSQueueURL    string
	OutboxInterval time.Duration
}

// OutboxEnabled reports whether product events should be written and published.
func (a AWSConfig) OutboxEnabled() bool {
	return a.SQSQueueURL != ""
}

// DB represents database configuration settings.
type DB struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// Assets describes where product images are read from.
type Assets struct {
	Backend   string
	ImagesDir string
	Minio     Minio
}

type Minio struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// CORS holds the cross-origin policy of the collection root.
type CORS struct {
	AllowedOrigin string
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	// Validate database configuration
	if err := allNonEmpty(map[string]string{
		DBHostEnv: c.Database.Host,
		DBUserEnv: c.Database.User,
		DBNameEnv: c.Database.Name,
	}); err != nil {
		return fmt.Errorf("database configuration incomplete: %w", err)
	}

	// Validate server ports
	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	// Validate port numbers
	if err := allNumbers(map[string]string{
		DBPortEnv:            c.Database.Port,
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	switch c.Assets.Backend {
	case AssetsBackendFS:
		if err := allNonEmpty(map[string]string{ImagesDirEnv: c.Assets.ImagesDir}); err != nil {
			return fmt.Errorf("assets configuration incomplete: %w", err)
		}
	case AssetsBackendMinio:
		if err := allNonEmpty(map[string]string{
			MinioEndpointEnv:  c.Assets.Minio.Endpoint,
			MinioBucketEnv:    c.Assets.Minio.Bucket,
			MinioAccessKeyEnv: c.Assets.Minio.AccessKey,
			MinioSecretKeyEnv: c.Assets.Minio.SecretKey,
		}); err != nil {
			return fmt.Errorf("minio configuration incomplete: %w", err)
		}
	default:
		return fmt.Errorf("%w: unknown %s %q", ErrInvalidConfig, AssetsBackendEnv, c.Assets.Backend)
	}

	if c.AWS.OutboxEnabled() {
		if err := allNonEmpty(map[string]string{AWSRegionEnv: c.AWS.Region}); err != nil {
			return fmt.Errorf("AWS configuration incomplete: %w", err)
		}
		if c.AWS.OutboxInterval <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, OutboxIntervalEnv)
		}
	}

	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if val, err := time.ParseDuration(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadNotificationFromEnv loads the settings of the queue consumer, which needs
// neither the database nor the HTTP servers.
func LoadNotificationFromEnv() (*Config, error) {
	envPath := getEnv(EnvFilePath, DefaultEnvFilePath)
	if err := ApplyEnvFile(envPath); err != nil {
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
	}

	if err := allNonEmpty(map[string]string{
		AWSRegionEnv:   conf.AWS.Region,
		SQSQueueURLEnv: conf.AWS.SQSQueueURL,
	}); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		Database: DB{
			Host:     os.Getenv(DBHostEnv),
			User:     os.Getenv(DBUserEnv),
			Password: os.Getenv(DBPassEnv),
			Name:     os.Getenv(DBNameEnv),
			Port:     os.Getenv(DBPortEnv),
			SSLMode:  getEnv(DBSSLModeEnv, defaultSSLMode),
		},
		HTTPServer: Server{
			Port: os.Getenv(HTTPServerPortEnv),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		Assets: Assets{
			Backend:   getEnv(AssetsBackendEnv, AssetsBackendFS),
			ImagesDir: getEnv(ImagesDirEnv, defaultImagesDir),
			Minio: Minio{
				Endpoint:  os.Getenv(MinioEndpointEnv),
				Bucket:    os.Getenv(MinioBucketEnv),
				AccessKey: os.Getenv(MinioAccessKeyEnv),
				SecretKey: os.Getenv(MinioSecretKeyEnv),
				UseSSL:    getEnvAsBool(MinioUseSSLEnv, false),
			},
		},
		CORS: CORS{
			AllowedOrigin: getEnv(CORSAllowedOriginEnv, defaultAllowedOrigin),
		},
		AWS: AWSConfig{
			Region:         os.Getenv(AWSRegionEnv),
			Endpoint:       os.Getenv(AWSEndpointEnv),
			SQSQueueURL:    os.Getenv(SQSQueueURLEnv),
			OutboxInterval: getEnvAsDuration(OutboxIntervalEnv, defaultOutboxInterval),
		},
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
