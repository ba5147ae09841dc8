package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/models"
)

// FeatureRepository stores product and service features in one table. Every
// lookup by owner names the owner kind, so a product id never matches a
// service feature and vice versa.
type FeatureRepository struct {
	db *gorm.DB
}

func (r *FeatureRepository) Create(ctx context.Context, feature *models.Feature) error {
	return persistence(r.db.WithContext(ctx).Create(feature).Error, "create feature")
}

func (r *FeatureRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Feature, error) {
	var feature models.Feature
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&feature).Error; err != nil {
		return nil, mapError(err, "feature", id)
	}
	return &feature, nil
}

func (r *FeatureRepository) ListByOwner(ctx context.Context, kind models.ItemKind, ownerID uuid.UUID) ([]models.Feature, error) {
	var features []models.Feature
	err := r.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_id = ?", kind, ownerID).
		Order("created_at ASC, id ASC").
		Find(&features).Error
	if err != nil {
		return nil, persistence(err, "list features")
	}
	return features, nil
}

// FindByName matches the feature name case-insensitively within one owner.
func (r *FeatureRepository) FindByName(ctx context.Context, kind models.ItemKind, ownerID uuid.UUID, name string) (*models.Feature, error) {
	var feature models.Feature
	err := r.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_id = ? AND LOWER(name) = ?", kind, ownerID, strings.ToLower(strings.TrimSpace(name))).
		First(&feature).Error
	if err != nil {
		return nil, mapError(err, "feature", name)
	}
	return &feature, nil
}

func (r *FeatureRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return persistence(r.db.WithContext(ctx).Model(&models.Feature{}).Where("id = ?", id).Updates(updates).Error, "update feature")
}

func (r *FeatureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return persistence(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Feature{}).Error, "delete feature")
}

// DeleteByOwner soft deletes every feature of one owner.
func (r *FeatureRepository) DeleteByOwner(ctx context.Context, kind models.ItemKind, ownerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_id = ?", kind, ownerID).
		Delete(&models.Feature{})
	return result.RowsAffected, persistence(result.Error, "delete features")
}
