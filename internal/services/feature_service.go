package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// FeatureService manages features directly. Every call states the owner kind;
// a product id is never looked up among service features.
type FeatureService struct {
	store *repository.Store
}

func NewFeatureService(store *repository.Store) *FeatureService {
	return &FeatureService{store: store}
}

func (s *FeatureService) Create(ctx context.Context, req models.CreateFeatureRequest) (*models.Feature, error) {
	kind, err := s.ownerKind(string(req.OwnerKind))
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if err := s.ensureOwner(ctx, kind, req.OwnerID); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, kind, req.OwnerID, name, uuid.Nil); err != nil {
		return nil, err
	}

	feature := &models.Feature{OwnerID: req.OwnerID, OwnerKind: kind, Name: name, Value: req.Value}
	if err := s.store.Features.Create(ctx, feature); err != nil {
		return nil, err
	}
	return feature, nil
}

func (s *FeatureService) GetByID(ctx context.Context, id uuid.UUID) (*models.Feature, error) {
	return s.store.Features.GetByID(ctx, id)
}

func (s *FeatureService) ListByOwner(ctx context.Context, ownerKind string, ownerID uuid.UUID) ([]models.Feature, error) {
	kind, err := s.ownerKind(ownerKind)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOwner(ctx, kind, ownerID); err != nil {
		return nil, err
	}
	return s.store.Features.ListByOwner(ctx, kind, ownerID)
}

func (s *FeatureService) Update(ctx context.Context, id uuid.UUID, req models.UpdateFeatureRequest) (*models.Feature, error) {
	feature, err := s.store.Features.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("name must not be empty")
		}
		if err := s.ensureNameFree(ctx, feature.OwnerKind, feature.OwnerID, name, id); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if req.Value != nil {
		updates["value"] = *req.Value
	}

	if err := s.store.Features.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.store.Features.GetByID(ctx, id)
}

func (s *FeatureService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.Features.GetByID(ctx, id); err != nil {
		return err
	}
	return s.store.Features.Delete(ctx, id)
}

func (s *FeatureService) ownerKind(raw string) (models.ItemKind, error) {
	kind, ok := models.ParseItemKind(strings.ToLower(strings.TrimSpace(raw)))
	if !ok {
		return "", apperrors.Validation("ownerKind must be product or service")
	}
	return kind, nil
}

func (s *FeatureService) ensureOwner(ctx context.Context, kind models.ItemKind, ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return apperrors.Validation("ownerId is required")
	}
	ok, err := s.store.Items.Exists(ctx, kind, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("%s %s not found", kind, ownerID)
	}
	return nil
}

func (s *FeatureService) ensureNameFree(ctx context.Context, kind models.ItemKind, ownerID uuid.UUID, name string, self uuid.UUID) error {
	existing, err := s.store.Features.FindByName(ctx, kind, ownerID, name)
	switch {
	case err == nil && existing.ID != self:
		return apperrors.Conflict("feature %q already exists on this %s", name, kind)
	case err == nil, apperrors.KindOf(err) == apperrors.KindNotFound:
		return nil
	default:
		return err
	}
}
