package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/models"
	"catalog-service/internal/pagination"
	"catalog-service/internal/repository"
)

// CategoryService manages the category tree.
type CategoryService struct {
	store  *repository.Store
	logger *logrus.Entry
}

func NewCategoryService(store *repository.Store, logger *logrus.Logger) *CategoryService {
	return &CategoryService{
		store:  store,
		logger: logger.WithField("component", "categories"),
	}
}

func (s *CategoryService) Create(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if req.ParentID != nil {
		if _, err := s.store.Categories.GetByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		Name:        name,
		Description: req.Description,
		ParentID:    req.ParentID,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := s.store.Categories.Create(ctx, category); err != nil {
		return nil, err
	}
	s.logger.WithField("categoryID", category.ID).Info("Category created")
	return category, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.store.Categories.GetByID(ctx, id)
}

func (s *CategoryService) GetAll(ctx context.Context, page pagination.Params) ([]models.Category, pagination.Info, error) {
	page = pagination.Normalize(page.Page, page.Size)
	categories, total, err := s.store.Categories.GetAll(ctx, page)
	if err != nil {
		return nil, pagination.Info{}, err
	}
	return categories, pagination.New(page.Page, page.Size, total), nil
}

// GetSubCategories returns the direct active children of parentID.
func (s *CategoryService) GetSubCategories(ctx context.Context, parentID uuid.UUID) ([]models.Category, error) {
	if _, err := s.store.Categories.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.store.Categories.GetSubCategories(ctx, parentID)
}

// Update applies a partial update. Reparenting under the category itself or
// one of its descendants is rejected.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req models.UpdateCategoryRequest) (*models.Category, error) {
	if _, err := s.store.Categories.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("name must not be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	switch {
	case req.ClearParent:
		updates["parent_id"] = nil
	case req.ParentID != nil:
		if err := s.checkReparent(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
		updates["parent_id"] = *req.ParentID
	}

	if err := s.store.Categories.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.store.Categories.GetByID(ctx, id)
}

// checkReparent walks from the proposed parent up to the root. Meeting id on
// the way means the move would create a cycle. The walk is bounded by the
// number of categories so corrupt data cannot loop forever.
func (s *CategoryService) checkReparent(ctx context.Context, id, parentID uuid.UUID) error {
	if parentID == id {
		return apperrors.Validation("category cannot be its own parent")
	}
	if _, err := s.store.Categories.GetByID(ctx, parentID); err != nil {
		return err
	}

	limit, err := s.store.Categories.Count(ctx)
	if err != nil {
		return err
	}

	current := parentID
	for step := int64(0); step <= limit; step++ {
		if current == id {
			return apperrors.Validation("category cannot be moved under its own descendant")
		}
		parent, err := s.store.Categories.ParentOf(ctx, current)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindNotFound {
				return nil
			}
			return err
		}
		if parent == nil {
			return nil
		}
		current = *parent
	}
	return apperrors.Validation("category tree contains a cycle")
}

// Delete soft-deletes the category unless an active item still references it.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.Categories.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.store.Items.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict("category %s is used by %d active items", id, count)
	}
	if err := s.store.Categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("categoryID", id).Info("Category deleted")
	return nil
}
