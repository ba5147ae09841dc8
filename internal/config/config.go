package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog-service/internal/repository"
	"catalog-service/internal/storage"
)

type Config struct {
	// Database
	DBDriver   string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis
	RedisURL string

	// NATS
	NATSURL string

	// Server
	Port        string
	Environment string

	// Auth
	JWTSecret    string
	AuthDisabled bool

	// CORS
	CORSOrigins []string

	// File storage
	StorageBackend        string
	StorageDir            string
	StorageBaseURL        string
	MaxUploadBytes        int64
	DocumentServiceURL    string
	DocumentServiceBucket string

	// Pagination
	DefaultPageSize int
	MaxPageSize     int

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	defaultPageSize, _ := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "20"))
	maxPageSize, _ := strconv.Atoi(getEnv("MAX_PAGE_SIZE", "100"))
	maxUploadBytes, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", ""), 10, 64)
	if err != nil || maxUploadBytes <= 0 {
		maxUploadBytes = storage.DefaultMaxBytes
	}
	authDisabled, _ := strconv.ParseBool(getEnv("AUTH_DISABLED", "false"))
	rateLimitRPS, _ := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "20"), 64)
	rateLimitBurst, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "40"))

	cfg := &Config{
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "catalog_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "catalog.db"),

		RedisURL: getEnv("REDIS_URL", ""),
		NATSURL:  getEnv("NATS_URL", ""),

		Port:        getEnv("PORT", "8087"),
		Environment: getEnv("ENVIRONMENT", "development"),

		JWTSecret:    getEnv("JWT_SECRET", "your-secret-key"),
		AuthDisabled: authDisabled,

		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),

		StorageBackend:        strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
		StorageDir:            getEnv("STORAGE_DIR", "./uploads"),
		StorageBaseURL:        getEnv("STORAGE_BASE_URL", "http://localhost:8087/api/media/files"),
		MaxUploadBytes:        maxUploadBytes,
		DocumentServiceURL:    getEnv("DOCUMENT_SERVICE_URL", "http://localhost:8082"),
		DocumentServiceBucket: getEnv("DOCUMENT_SERVICE_BUCKET", "catalog-media"),

		DefaultPageSize: defaultPageSize,
		MaxPageSize:     maxPageSize,

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,
	}

	if cfg.MaxPageSize < 1 {
		cfg.MaxPageSize = 100
	}
	if cfg.DefaultPageSize < 1 || cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = min(20, cfg.MaxPageSize)
	}
	return cfg
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NewLogger builds the JSON logrus logger used by every component.
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.IsProduction() {
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// InitDB opens the configured database and brings the schema up to date.
func InitDB(cfg *Config, log *logrus.Logger) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.IsProduction() {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		// sqlite allows one writer at a time.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.WithField("driver", cfg.DBDriver).Info("Running auto-migrations")
	if err := repository.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
	}
	log.Info("Auto-migrations completed successfully")

	return db, nil
}

// NewFileStorage returns the blob store selected by STORAGE_BACKEND.
func NewFileStorage(cfg *Config) (storage.FileStorage, error) {
	switch cfg.StorageBackend {
	case "local":
		return storage.NewLocalStorage(cfg.StorageDir, cfg.StorageBaseURL, cfg.MaxUploadBytes)
	case "document-service":
		return storage.NewDocumentServiceStorage(cfg.DocumentServiceURL, cfg.DocumentServiceBucket, cfg.MaxUploadBytes), nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
