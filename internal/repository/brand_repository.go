package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catalog-service/internal/models"
	"catalog-service/internal/pagination"
)

type BrandRepository struct {
	db *gorm.DB
}

func (r *BrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	return persistence(r.db.WithContext(ctx).Create(brand).Error, "create brand")
}

func (r *BrandRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&brand).Error; err != nil {
		return nil, mapError(err, "brand", id)
	}
	return &brand, nil
}

func (r *BrandRepository) GetAll(ctx context.Context, page pagination.Params) ([]models.Brand, int64, error) {
	var brands []models.Brand
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Brand{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, persistence(err, "count brands")
	}
	err := query.Order("name ASC, id ASC").Offset(page.Offset()).Limit(page.Size).Find(&brands).Error
	if err != nil {
		return nil, 0, persistence(err, "list brands")
	}
	return brands, total, nil
}

func (r *BrandRepository) FindByName(ctx context.Context, name string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&brand).Error; err != nil {
		return nil, mapError(err, "brand", name)
	}
	return &brand, nil
}

func (r *BrandRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return persistence(r.db.WithContext(ctx).Model(&models.Brand{}).Where("id = ?", id).Updates(updates).Error, "update brand")
}

func (r *BrandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return persistence(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Brand{}).Error, "delete brand")
}

// Link inserts the (item, brand) pair unless it is already present.
func (r *BrandRepository) Link(ctx context.Context, itemID, brandID uuid.UUID) error {
	link := models.ItemBrand{ItemID: itemID, BrandID: brandID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	return persistence(err, "link brand")
}

// Unlink removes the (item, brand) pair. Removing an absent pair is not an error.
func (r *BrandRepository) Unlink(ctx context.Context, itemID, brandID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND brand_id = ?", itemID, brandID).
		Delete(&models.ItemBrand{}).Error
	return persistence(err, "unlink brand")
}

// CountLinks counts the join rows for the pair; it is 0 or 1.
func (r *BrandRepository) CountLinks(ctx context.Context, itemID, brandID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ItemBrand{}).
		Where("item_id = ? AND brand_id = ?", itemID, brandID).
		Count(&count).Error
	if err != nil {
		return 0, persistence(err, "count brand links")
	}
	return count, nil
}

// ListByItem returns the active brands linked to itemID.
func (r *BrandRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.Brand, error) {
	var brands []models.Brand
	err := r.db.WithContext(ctx).
		Joins("JOIN item_brands ON item_brands.brand_id = brands.id").
		Where("item_brands.item_id = ?", itemID).
		Order("brands.name ASC").
		Find(&brands).Error
	if err != nil {
		return nil, persistence(err, "list item brands")
	}
	return brands, nil
}
