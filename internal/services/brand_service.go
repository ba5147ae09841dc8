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

type BrandService struct {
	store  *repository.Store
	logger *logrus.Entry
}

func NewBrandService(store *repository.Store, logger *logrus.Logger) *BrandService {
	return &BrandService{
		store:  store,
		logger: logger.WithField("component", "brands"),
	}
}

func (s *BrandService) Create(ctx context.Context, req models.CreateBrandRequest) (*models.Brand, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if err := s.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	brand := &models.Brand{
		Name:        name,
		Description: req.Description,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := s.store.Brands.Create(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

func (s *BrandService) GetByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	return s.store.Brands.GetByID(ctx, id)
}

func (s *BrandService) GetAll(ctx context.Context, page pagination.Params) ([]models.Brand, pagination.Info, error) {
	page = pagination.Normalize(page.Page, page.Size)
	brands, total, err := s.store.Brands.GetAll(ctx, page)
	if err != nil {
		return nil, pagination.Info{}, err
	}
	return brands, pagination.New(page.Page, page.Size, total), nil
}

func (s *BrandService) Update(ctx context.Context, id uuid.UUID, req models.UpdateBrandRequest) (*models.Brand, error) {
	if _, err := s.store.Brands.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("name must not be empty")
		}
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.store.Brands.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.store.Brands.GetByID(ctx, id)
}

// Delete soft-deletes the brand. Item links stay but stop resolving.
func (s *BrandService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.Brands.GetByID(ctx, id); err != nil {
		return err
	}
	return s.store.Brands.Delete(ctx, id)
}

func (s *BrandService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.store.Brands.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != self:
		return apperrors.Conflict("brand %q already exists", name)
	case err == nil, apperrors.KindOf(err) == apperrors.KindNotFound:
		return nil
	default:
		return err
	}
}
