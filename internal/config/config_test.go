package config

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/storage"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 20, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, storage.DefaultMaxBytes, cfg.MaxUploadBytes)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.False(t, cfg.AuthDisabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DEFAULT_PAGE_SIZE", "500")
	t.Setenv("MAX_PAGE_SIZE", "50")
	t.Setenv("MAX_UPLOAD_BYTES", "-1")
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com, ,https://admin.example.com")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 50, cfg.MaxPageSize)
	assert.Equal(t, 20, cfg.DefaultPageSize, "default page size is capped by the maximum")
	assert.Equal(t, storage.DefaultMaxBytes, cfg.MaxUploadBytes)
	assert.True(t, cfg.AuthDisabled)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, logrus.InfoLevel, NewLogger(cfg).GetLevel())
}

func TestInitDBWithSQLite(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &Config{
		DBDriver:    "sqlite",
		SQLitePath:  filepath.Join(t.TempDir(), "catalog.db"),
		Environment: "production",
	}
	db, err := InitDB(cfg, log)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable("base_items"))
	assert.True(t, db.Migrator().HasTable("products"))
	assert.True(t, db.Migrator().HasTable("item_brands"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	_, err := InitDB(&Config{DBDriver: "oracle"}, logrus.New())
	assert.Error(t, err)
}

func TestNewFileStorage(t *testing.T) {
	local, err := NewFileStorage(&Config{StorageBackend: "local", StorageDir: t.TempDir(), MaxUploadBytes: 10})
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, local)

	remote, err := NewFileStorage(&Config{StorageBackend: "document-service", DocumentServiceURL: "http://docs"})
	require.NoError(t, err)
	assert.IsType(t, &storage.DocumentServiceStorage{}, remote)

	_, err = NewFileStorage(&Config{StorageBackend: "ftp"})
	assert.Error(t, err)
}
