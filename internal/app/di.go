// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/keyvault/internal/config"
	"github.com/allisson/keyvault/internal/database"
	"github.com/allisson/keyvault/internal/http"
	"github.com/allisson/keyvault/internal/metrics"
	"github.com/allisson/keyvault/internal/storage"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Background context for long-lived middleware work, canceled by Shutdown.
	ctx    context.Context
	cancel context.CancelFunc

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB
	store  storage.Store

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	storeMetrics    metrics.StoreMetrics

	// Vault components, see di_vault.go
	vaultComponents

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	storeInit           sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	storeMetricsInit    sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection of the SQL store drivers.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// Store returns the durable store selected by STORE_DRIVER, sealed with the KMS
// keeper when one is configured and instrumented with store metrics.
func (c *Container) Store() (storage.Store, error) {
	var err error
	c.storeInit.Do(func() {
		c.store, err = c.initStore()
		if err != nil {
			c.initErrors["store"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["store"]; exists {
		return nil, storedErr
	}
	return c.store, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// StoreMetrics returns the store call recorder.
func (c *Container) StoreMetrics() (metrics.StoreMetrics, error) {
	var err error
	c.storeMetricsInit.Do(func() {
		c.storeMetrics, err = c.initStoreMetrics()
		if err != nil {
			c.initErrors["storeMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["storeMetrics"]; exists {
		return nil, storedErr
	}
	return c.storeMetrics, nil
}

// HTTPServer returns the HTTP server instance with its router set up.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// The SQL stores own the connection pool.
	switch {
	case c.store != nil:
		if err := c.store.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("store close: %w", err))
		}
	case c.db != nil:
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(shutdownErrors...))
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	switch c.config.StoreDriver {
	case config.StoreDriverSQLite, config.StoreDriverPostgres, config.StoreDriverMySQL:
	default:
		return nil, fmt.Errorf("store driver %q does not use a database", c.config.StoreDriver)
	}

	db, err := database.Connect(database.Config{
		Driver:             c.config.StoreDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initStore opens the backend named by the store driver and decorates it.
func (c *Container) initStore() (storage.Store, error) {
	base, err := c.openBaseStore()
	if err != nil {
		return nil, err
	}

	var store storage.Store = base
	if c.config.StoreKMSKeyURI != "" {
		keeper, err := c.KMSService().OpenKeeper(c.ctx, c.config.StoreKMSKeyURI)
		if err != nil {
			_ = base.Close()
			return nil, fmt.Errorf("failed to open store keeper: %w", err)
		}
		store = storage.NewSealedStore(store, keeper)
	}

	storeMetrics, err := c.StoreMetrics()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to get store metrics for store: %w", err)
	}

	return storage.NewInstrumentedStore(store, c.config.StoreDriver, storeMetrics), nil
}

func (c *Container) openBaseStore() (storage.Store, error) {
	switch c.config.StoreDriver {
	case config.StoreDriverMemory:
		return storage.NewMemoryStore(), nil
	case config.StoreDriverFile:
		store, err := storage.NewFileStore(c.config.StorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return store, nil
	case config.StoreDriverBlob:
		store, err := storage.OpenBlobStore(c.ctx, c.config.BlobBucketURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open blob store: %w", err)
		}
		return store, nil
	case config.StoreDriverSQLite, config.StoreDriverPostgres, config.StoreDriverMySQL:
		return c.openSQLStore()
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", c.config.StoreDriver)
	}
}

func (c *Container) openSQLStore() (storage.Store, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for store: %w", err)
	}

	if c.config.DBAutoMigrate {
		if err := database.Migrate(db, c.config.StoreDriver); err != nil {
			return nil, err
		}
	}

	switch c.config.StoreDriver {
	case config.StoreDriverPostgres:
		return storage.NewPostgreSQLStore(db), nil
	case config.StoreDriverMySQL:
		return storage.NewMySQLStore(db), nil
	default:
		return storage.NewSQLiteStore(db), nil
	}
}

// initMetricsProvider creates the Prometheus backed meter provider.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the business metrics or a no-op recorder when metrics are disabled.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initStoreMetrics creates the store metrics or a no-op recorder when metrics are disabled.
func (c *Container) initStoreMetrics() (metrics.StoreMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for store metrics: %w", err)
	}
	if provider == nil {
		return metrics.NoOpStoreMetrics{}, nil
	}
	return metrics.NewStoreMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	store, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for http server: %w", err)
	}

	secretHandler, err := c.SecretHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret handler for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(store, http.ServerConfig{
		Host:         c.config.ServerHost,
		Port:         c.config.ServerPort,
		ReadTimeout:  c.config.ServerReadTimeout,
		WriteTimeout: c.config.ServerWriteTimeout,
		IdleTimeout:  c.config.ServerIdleTimeout,
	}, c.Logger())

	server.SetupRouter(c.ctx, http.RouterConfig{
		UserHeader:              c.config.AuthUserHeader,
		RateLimitEnabled:        c.config.RateLimitEnabled,
		RateLimitRequestsPerSec: c.config.RateLimitRequestsPerSec,
		RateLimitBurst:          c.config.RateLimitBurst,
		CORSEnabled:             c.config.CORSEnabled,
		CORSAllowOrigins:        c.config.CORSAllowOrigins,
		MetricsNamespace:        c.config.MetricsNamespace,
	}, secretHandler, provider)

	return server, nil
}

// initMetricsServer creates the metrics server when metrics are enabled.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(http.ServerConfig{
		Host:         c.config.ServerHost,
		Port:         c.config.MetricsPort,
		ReadTimeout:  c.config.ServerReadTimeout,
		WriteTimeout: c.config.ServerWriteTimeout,
		IdleTimeout:  c.config.ServerIdleTimeout,
	}, c.Logger(), provider), nil
}
