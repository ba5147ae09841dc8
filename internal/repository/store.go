package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/models"
)

// Store groups the catalog repositories over one gorm handle. A Store built
// inside WithTransaction shares the transaction across every repository.
type Store struct {
	db *gorm.DB

	Items      *ItemRepository
	Categories *CategoryRepository
	Brands     *BrandRepository
	Media      *MediaRepository
	MediaTypes *MediaTypeRepository
	Features   *FeatureRepository
	Favorites  *FavoriteRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Items:      &ItemRepository{db: db},
		Categories: &CategoryRepository{db: db},
		Brands:     &BrandRepository{db: db},
		Media:      &MediaRepository{db: db},
		MediaTypes: &MediaTypeRepository{db: db},
		Features:   &FeatureRepository{db: db},
		Favorites:  &FavoriteRepository{db: db},
	}
}

// WithTransaction runs fn inside a single database transaction. Returning an
// error from fn rolls everything back.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping checks the underlying connection for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or updates the schema for every catalog model.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.BaseItem{}, "Brands", &models.ItemBrand{}); err != nil {
		return fmt.Errorf("failed to set up item_brands join table: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to run auto-migrations: %w", err)
	}
	return nil
}

// JoinActive inner-joins table on cond and drops its soft-deleted rows. The
// root model of a query is filtered by gorm's DeletedAt convention already,
// so together they form the active-rows view of a join.
func JoinActive(table, cond string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins(fmt.Sprintf("JOIN %s ON %s AND %s.deleted_at IS NULL", table, cond, table))
	}
}

// IncludingDeleted lifts the soft-delete filter. Only internal read paths use it.
func IncludingDeleted(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

func mapError(err error, entity string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("%s %v not found", entity, id)
	}
	return apperrors.Persistence(err, fmt.Sprintf("failed to access %s", entity))
}

func persistence(err error, action string) error {
	if err == nil {
		return nil
	}
	return apperrors.Persistence(err, "failed to "+action)
}
