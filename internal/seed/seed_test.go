package seed

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/pagination"
	"catalog-service/internal/repository"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repository.Migrate(db))
	return repository.NewStore(db)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestDefaultSeedParses(t *testing.T) {
	data, err := Default()
	require.NoError(t, err)
	assert.NotEmpty(t, data.MediaTypes)
	assert.NotEmpty(t, data.Categories)
	assert.NotEmpty(t, data.Brands)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "categories: [name: x"},
		{"blank media type", "mediaTypes:\n  - name: ' '\n"},
		{"blank brand", "brands:\n  - description: nameless\n"},
		{"blank nested category", "categories:\n  - name: Root\n    children:\n      - name: ''\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}

	_, err := Load(strings.NewReader("categories:\n  - name: Root\n    children:\n      - name: ''\n"))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "categories[0].children[0]")
}

func TestApplyCreatesTreeAndIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	data, err := Load(strings.NewReader(`
mediaTypes:
  - name: image
brands:
  - name: Acme
    description: Anvils
categories:
  - name: Clothing
    children:
      - name: Footwear
        children:
          - name: Sneakers
  - name: Electronics
`))
	require.NoError(t, err)

	result, err := Apply(ctx, store, data, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, Result{MediaTypes: 1, Categories: 4, Brands: 1}, result)

	clothing, err := store.Categories.FindByName(ctx, "Clothing", nil)
	require.NoError(t, err)
	footwear, err := store.Categories.FindByName(ctx, "Footwear", &clothing.ID)
	require.NoError(t, err)
	_, err = store.Categories.FindByName(ctx, "Sneakers", &footwear.ID)
	require.NoError(t, err)

	brand, err := store.Brands.FindByName(ctx, "Acme")
	require.NoError(t, err)
	assert.True(t, brand.IsActive)
	require.NotNil(t, brand.Description)
	assert.Equal(t, "Anvils", *brand.Description)

	again, err := Apply(ctx, store, data, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, Result{}, again)

	_, total, err := store.Categories.GetAll(ctx, pagination.Normalize(1, 50))
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestApplyMergesIntoExistingTree(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := Load(strings.NewReader("categories:\n  - name: Clothing\n"))
	require.NoError(t, err)
	_, err = Apply(ctx, store, first, quietLogger())
	require.NoError(t, err)

	second, err := Load(strings.NewReader("categories:\n  - name: Clothing\n    children:\n      - name: Hats\n"))
	require.NoError(t, err)
	result, err := Apply(ctx, store, second, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Categories, "only the new child is created")

	clothing, err := store.Categories.FindByName(ctx, "Clothing", nil)
	require.NoError(t, err)
	children, err := store.Categories.GetSubCategories(ctx, clothing.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Hats", children[0].Name)
}
