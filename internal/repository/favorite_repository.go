package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/models"
	"catalog-service/internal/pagination"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func (r *FavoriteRepository) Create(ctx context.Context, favorite *models.Favorite) error {
	return persistence(r.db.WithContext(ctx).Omit("BaseItem").Create(favorite).Error, "create favorite")
}

func (r *FavoriteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Favorite, error) {
	var favorite models.Favorite
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&favorite).Error; err != nil {
		return nil, mapError(err, "favorite", id)
	}
	return &favorite, nil
}

// CountActive counts active favorites for the (user, item) pair.
func (r *FavoriteRepository) CountActive(ctx context.Context, userID, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND base_item_id = ?", userID, itemID).
		Count(&count).Error
	if err != nil {
		return 0, persistence(err, "check favorite")
	}
	return count, nil
}

// ListByUser returns one page of a user's favorites with the item preloaded.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Favorite, int64, error) {
	var favorites []models.Favorite
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Favorite{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, persistence(err, "count favorites")
	}
	err := query.Preload("BaseItem").
		Order("created_at DESC, id ASC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&favorites).Error
	if err != nil {
		return nil, 0, persistence(err, "list favorites")
	}
	return favorites, total, nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return persistence(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Favorite{}).Error, "delete favorite")
}

// DeleteByItem soft deletes every favorite pointing at a base item.
func (r *FavoriteRepository) DeleteByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("base_item_id = ?", itemID).Delete(&models.Favorite{})
	return result.RowsAffected, persistence(result.Error, "delete item favorites")
}
