package services

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
	"catalog-service/internal/search"
)

// ============================================================================
// Mocks
// ============================================================================

type MockPublisher struct {
	mock.Mock
}

var _ EventPublisher = (*MockPublisher)(nil)

func (m *MockPublisher) PublishItemCreated(ctx context.Context, item *models.CatalogItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockPublisher) PublishItemUpdated(ctx context.Context, item *models.CatalogItem, changedFields []string) error {
	args := m.Called(ctx, item, changedFields)
	return args.Error(0)
}

func (m *MockPublisher) PublishItemDeleted(ctx context.Context, kind models.ItemKind, id uuid.UUID) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

type MockTracker struct {
	mock.Mock
}

var _ search.Tracker = (*MockTracker)(nil)

func (m *MockTracker) Track(ctx context.Context, scope, term string) error {
	args := m.Called(ctx, scope, term)
	return args.Error(0)
}

func (m *MockTracker) Popular(ctx context.Context, scope string, limit int) ([]search.TermCount, error) {
	args := m.Called(ctx, scope, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]search.TermCount), args.Error(1)
}

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) SaveFile(ctx context.Context, name string, r io.Reader) (string, error) {
	args := m.Called(ctx, name, r)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) GetFile(ctx context.Context, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockFileStorage) ValidateFile(name string, size int64, contentType string) error {
	args := m.Called(name, size, contentType)
	return args.Error(0)
}

// ============================================================================
// Fixtures
// ============================================================================

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestStore opens a private in-memory sqlite database with the full schema.
func newTestStore(t *testing.T) *repository.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repository.Migrate(db))
	return repository.NewStore(db)
}

type fixture struct {
	ctx      context.Context
	store    *repository.Store
	products *CatalogService
	services *CatalogService
	category *models.Category
	owner    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newTestStore(t)
	ctx := context.Background()

	category := &models.Category{Name: "Shoes", IsActive: true}
	require.NoError(t, store.Categories.Create(ctx, category))

	return &fixture{
		ctx:      ctx,
		store:    store,
		products: NewCatalogService(models.KindProduct, store, nil, nil, testLogger()),
		services: NewCatalogService(models.KindService, store, nil, nil, testLogger()),
		category: category,
		owner:    uuid.New(),
	}
}

func productRequest(name string, price float64, sku string, categoryID uuid.UUID) models.CreateItemRequest {
	return models.CreateItemRequest{
		Name:        name,
		Description: name + " description",
		Price:       &price,
		CategoryID:  &categoryID,
		SKU:         sku,
		Stock:       10,
	}
}

func serviceRequest(name string, price float64, categoryID uuid.UUID) models.CreateItemRequest {
	return models.CreateItemRequest{
		Name:        name,
		Description: name + " description",
		Price:       &price,
		CategoryID:  &categoryID,
		ServiceType: "Repair",
		Duration:    60,
	}
}

func (f *fixture) createProduct(t *testing.T, name string, price float64, sku string) *models.CatalogItem {
	t.Helper()
	item, err := f.products.Create(f.ctx, f.owner, productRequest(name, price, sku, f.category.ID))
	require.NoError(t, err)
	return item
}

func (f *fixture) createMediaType(t *testing.T, name string) *models.MediaType {
	t.Helper()
	mediaType := &models.MediaType{Name: name}
	require.NoError(t, f.store.MediaTypes.Create(f.ctx, mediaType))
	return mediaType
}

func (f *fixture) createBrand(t *testing.T, name string) *models.Brand {
	t.Helper()
	brand := &models.Brand{Name: name, IsActive: true}
	require.NoError(t, f.store.Brands.Create(f.ctx, brand))
	return brand
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }
