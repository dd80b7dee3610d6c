// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	customValidation "github.com/allisson/keyvault/internal/validation"
)

// Store drivers.
const (
	StoreDriverMemory   = "memory"
	StoreDriverFile     = "file"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverMySQL    = "mysql"
	StoreDriverBlob     = "blob"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// ServerReadTimeout bounds reading a whole request.
	ServerReadTimeout time.Duration
	// ServerWriteTimeout bounds writing a response.
	ServerWriteTimeout time.Duration
	// ServerIdleTimeout bounds keep-alive connections.
	ServerIdleTimeout time.Duration
	// ServerShutdownTimeout bounds graceful shutdown.
	ServerShutdownTimeout time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// StoreDriver selects the durable store backend.
	StoreDriver string
	// StoreNamespace is the namespace user collections are stored under.
	StoreNamespace string
	// StorePath is the root directory of the file store.
	StorePath string
	// StoreTimeout bounds every call to the store.
	StoreTimeout time.Duration
	// StoreKMSKeyURI optionally names a gocloud.dev/secrets keeper that seals stored values.
	StoreKMSKeyURI string

	// DBConnectionString is the connection string for the SQL store drivers.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration
	// DBAutoMigrate applies the embedded migrations when the store is opened.
	DBAutoMigrate bool

	// BlobBucketURL is the gocloud.dev/blob bucket URL of the blob store.
	BlobBucketURL string

	// KDFAlgorithm is the key derivation function for new records.
	KDFAlgorithm string
	// KDFArgon2Time is the Argon2id number of passes.
	KDFArgon2Time int
	// KDFArgon2MemoryKiB is the Argon2id memory cost in KiB.
	KDFArgon2MemoryKiB int
	// KDFArgon2Threads is the Argon2id parallelism.
	KDFArgon2Threads int
	// KDFPBKDF2Iterations is the PBKDF2 iteration count.
	KDFPBKDF2Iterations int

	// CipherAlgorithm is the AEAD used for new records.
	CipherAlgorithm string

	// ListConcurrency bounds parallel decryptions within one listing.
	ListConcurrency int

	// AuthUserHeader is the trusted request header carrying the user identity.
	AuthUserHeader string

	// RateLimitEnabled indicates whether per-user rate limiting is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per user.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size of the per-user rate limiter.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:            env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:            env.GetInt("SERVER_PORT", 8080),
		ServerReadTimeout:     env.GetDuration("SERVER_READ_TIMEOUT", 15, time.Second),
		ServerWriteTimeout:    env.GetDuration("SERVER_WRITE_TIMEOUT", 15, time.Second),
		ServerIdleTimeout:     env.GetDuration("SERVER_IDLE_TIMEOUT", 60, time.Second),
		ServerShutdownTimeout: env.GetDuration("SERVER_SHUTDOWN_TIMEOUT", 10, time.Second),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Store
		StoreDriver:    env.GetString("STORE_DRIVER", StoreDriverSQLite),
		StoreNamespace: env.GetString("STORE_NAMESPACE", "apiKeys"),
		StorePath:      env.GetString("STORE_PATH", "data"),
		StoreTimeout:   env.GetDuration("STORE_TIMEOUT", 5, time.Second),
		StoreKMSKeyURI: env.GetString("STORE_KMS_KEY_URI", ""),

		// Database configuration
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", "file:data/keyvault.db"),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),
		DBAutoMigrate:        env.GetBool("DB_AUTO_MIGRATE", true),

		// Blob
		BlobBucketURL: env.GetString("BLOB_BUCKET_URL", "mem://"),

		// Key derivation
		KDFAlgorithm:        env.GetString("KDF_ALGORITHM", string(cryptoDomain.Argon2id)),
		KDFArgon2Time:       env.GetInt("KDF_ARGON2_TIME", 3),
		KDFArgon2MemoryKiB:  env.GetInt("KDF_ARGON2_MEMORY_KIB", 64*1024),
		KDFArgon2Threads:    env.GetInt("KDF_ARGON2_THREADS", 2),
		KDFPBKDF2Iterations: env.GetInt("KDF_PBKDF2_ITERATIONS", 600_000),

		// Encryption
		CipherAlgorithm: env.GetString("CIPHER_ALGORITHM", string(cryptoDomain.AESGCM)),
		ListConcurrency: env.GetInt("LIST_CONCURRENCY", 4),

		// Identity
		AuthUserHeader: env.GetString("AUTH_USER_HEADER", "X-User-Id"),

		// Rate Limiting (per user)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "keyvault"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// Validate checks that the configuration names known drivers and algorithms and
// sane cost values.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.StoreDriver,
			validation.Required,
			validation.In(
				StoreDriverMemory,
				StoreDriverFile,
				StoreDriverSQLite,
				StoreDriverPostgres,
				StoreDriverMySQL,
				StoreDriverBlob,
			),
		),
		validation.Field(&c.StoreNamespace, validation.Required),
		validation.Field(&c.StorePath,
			validation.When(c.StoreDriver == StoreDriverFile, validation.Required),
		),
		validation.Field(&c.DBConnectionString,
			validation.When(
				c.StoreDriver == StoreDriverSQLite ||
					c.StoreDriver == StoreDriverPostgres ||
					c.StoreDriver == StoreDriverMySQL,
				validation.Required,
			),
		),
		validation.Field(&c.BlobBucketURL,
			validation.When(c.StoreDriver == StoreDriverBlob, validation.Required),
		),
		validation.Field(&c.KDFAlgorithm,
			validation.Required,
			validation.In(string(cryptoDomain.Argon2id), string(cryptoDomain.PBKDF2SHA256)),
		),
		validation.Field(&c.CipherAlgorithm,
			validation.Required,
			validation.In(string(cryptoDomain.AESGCM), string(cryptoDomain.XChaCha20)),
		),
		validation.Field(&c.KDFArgon2Time, validation.Min(1), validation.Max(cryptoDomain.MaxArgon2Time)),
		validation.Field(&c.KDFArgon2MemoryKiB, validation.Min(8), validation.Max(cryptoDomain.MaxArgon2MemoryKiB)),
		validation.Field(&c.KDFArgon2Threads, validation.Min(1), validation.Max(255)),
		validation.Field(&c.KDFPBKDF2Iterations,
			validation.Min(1),
			validation.Max(cryptoDomain.MaxPBKDF2Iterations),
		),
		validation.Field(&c.ListConcurrency, validation.Min(1)),
		validation.Field(&c.AuthUserHeader, validation.Required, customValidation.NoWhitespace),
		validation.Field(&c.RateLimitRequestsPerSec,
			validation.When(c.RateLimitEnabled, validation.Min(0.001)),
		),
		validation.Field(&c.RateLimitBurst,
			validation.When(c.RateLimitEnabled, validation.Min(1)),
		),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

// KDFParams returns the key derivation parameters for new records.
func (c *Config) KDFParams() cryptoDomain.KDFParams {
	if cryptoDomain.KDFAlgorithm(c.KDFAlgorithm) == cryptoDomain.PBKDF2SHA256 {
		return cryptoDomain.KDFParams{
			Algorithm:  cryptoDomain.PBKDF2SHA256,
			Iterations: c.KDFPBKDF2Iterations,
		}
	}
	return cryptoDomain.KDFParams{
		Algorithm: cryptoDomain.Argon2id,
		Time:      uint32(c.KDFArgon2Time),
		MemoryKiB: uint32(c.KDFArgon2MemoryKiB),
		Threads:   uint8(c.KDFArgon2Threads),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
