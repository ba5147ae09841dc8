package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/models"
	"catalog-service/internal/pagination"
)

type MediaRepository struct {
	db *gorm.DB
}

func (r *MediaRepository) Create(ctx context.Context, media *models.Media) error {
	return persistence(r.db.WithContext(ctx).Omit("MediaType").Create(media).Error, "create media")
}

func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).Preload("MediaType").Where("id = ?", id).First(&media).Error; err != nil {
		return nil, mapError(err, "media", id)
	}
	return &media, nil
}

func (r *MediaRepository) GetAll(ctx context.Context, page pagination.Params) ([]models.Media, int64, error) {
	var media []models.Media
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Media{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, persistence(err, "count media")
	}
	err := query.Preload("MediaType").
		Order("created_at ASC, id ASC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&media).Error
	if err != nil {
		return nil, 0, persistence(err, "list media")
	}
	return media, total, nil
}

// ListByItem returns the active media of a base item in creation order.
func (r *MediaRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.Media, error) {
	var media []models.Media
	err := r.db.WithContext(ctx).
		Preload("MediaType").
		Where("base_item_id = ?", itemID).
		Order("created_at ASC, id ASC").
		Find(&media).Error
	if err != nil {
		return nil, persistence(err, "list item media")
	}
	return media, nil
}

func (r *MediaRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return persistence(r.db.WithContext(ctx).Model(&models.Media{}).Where("id = ?", id).Updates(updates).Error, "update media")
}

func (r *MediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return persistence(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Media{}).Error, "delete media")
}

// DeleteByItem soft deletes every media row of a base item.
func (r *MediaRepository) DeleteByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("base_item_id = ?", itemID).Delete(&models.Media{})
	return result.RowsAffected, persistence(result.Error, "delete item media")
}

type MediaTypeRepository struct {
	db *gorm.DB
}

func (r *MediaTypeRepository) Create(ctx context.Context, mediaType *models.MediaType) error {
	return persistence(r.db.WithContext(ctx).Create(mediaType).Error, "create media type")
}

func (r *MediaTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaType, error) {
	var mediaType models.MediaType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&mediaType).Error; err != nil {
		return nil, mapError(err, "media type", id)
	}
	return &mediaType, nil
}

func (r *MediaTypeRepository) FindByName(ctx context.Context, name string) (*models.MediaType, error) {
	var mediaType models.MediaType
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&mediaType).Error; err != nil {
		return nil, mapError(err, "media type", name)
	}
	return &mediaType, nil
}

func (r *MediaTypeRepository) GetAll(ctx context.Context) ([]models.MediaType, error) {
	var mediaTypes []models.MediaType
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&mediaTypes).Error; err != nil {
		return nil, persistence(err, "list media types")
	}
	return mediaTypes, nil
}

func (r *MediaTypeRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return persistence(r.db.WithContext(ctx).Model(&models.MediaType{}).Where("id = ?", id).Updates(updates).Error, "update media type")
}

func (r *MediaTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return persistence(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MediaType{}).Error, "delete media type")
}
