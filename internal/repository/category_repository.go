package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/models"
	"catalog-service/internal/pagination"
)

type CategoryRepository struct {
	db *gorm.DB
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return persistence(r.db.WithContext(ctx).Omit("Children").Create(category).Error, "create category")
}

// GetByID retrieves an active category
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, mapError(err, "category", id)
	}
	return &category, nil
}

// GetAll retrieves one page of categories ordered by name
func (r *CategoryRepository) GetAll(ctx context.Context, page pagination.Params) ([]models.Category, int64, error) {
	var categories []models.Category
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Category{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, persistence(err, "count categories")
	}
	err := query.Order("name ASC, id ASC").Offset(page.Offset()).Limit(page.Size).Find(&categories).Error
	if err != nil {
		return nil, 0, persistence(err, "list categories")
	}
	return categories, total, nil
}

// GetSubCategories returns the direct active children of parentID.
func (r *CategoryRepository) GetSubCategories(ctx context.Context, parentID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("parent_id = ? AND is_active = ?", parentID, true).
		Order("name ASC, id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, persistence(err, "list subcategories")
	}
	return categories, nil
}

// ParentOf returns the parent id of an active category, nil for a root.
func (r *CategoryRepository) ParentOf(ctx context.Context, id uuid.UUID) (*uuid.UUID, error) {
	category, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return category.ParentID, nil
}

// Count returns the number of active categories.
func (r *CategoryRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&total).Error; err != nil {
		return 0, persistence(err, "count categories")
	}
	return total, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return persistence(r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(updates).Error, "update category")
}

// Delete soft deletes a category
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return persistence(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{}).Error, "delete category")
}

// FindByName looks up an active category by exact name under parentID (nil for roots).
func (r *CategoryRepository) FindByName(ctx context.Context, name string, parentID *uuid.UUID) (*models.Category, error) {
	var category models.Category
	query := r.db.WithContext(ctx).Where("name = ?", name)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	if err := query.First(&category).Error; err != nil {
		return nil, mapError(err, "category", name)
	}
	return &category, nil
}
