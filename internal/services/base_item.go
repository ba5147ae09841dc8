package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// baseItemInput is the shared part of every create command.
type baseItemInput struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
	Price       float64
	CategoryID  uuid.UUID
	IsAvailable bool
}

// baseItemFields is a partial update of the shared fields. Nil fields are left unchanged.
type baseItemFields struct {
	Name        *string
	Description *string
	Price       *float64
	CategoryID  *uuid.UUID
	IsAvailable *bool
}

func validateBaseItem(in baseItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.Validation("name is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return apperrors.Validation("description is required")
	}
	if in.Price < 0 {
		return apperrors.Validation("price must not be negative")
	}
	if in.CategoryID == uuid.Nil {
		return apperrors.Validation("categoryId is required")
	}
	if in.OwnerID == uuid.Nil {
		return apperrors.Validation("ownerId is required")
	}
	return nil
}

// createBaseItem inserts the shared row of a new product or service. It never
// touches variant or dependent rows.
func createBaseItem(ctx context.Context, tx *repository.Store, kind models.ItemKind, in baseItemInput) (*models.BaseItem, error) {
	if err := validateBaseItem(in); err != nil {
		return nil, err
	}
	if _, err := tx.Categories.GetByID(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	categoryID := in.CategoryID
	item := &models.BaseItem{
		OwnerID:     in.OwnerID,
		Kind:        kind,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		IsAvailable: in.IsAvailable,
		CategoryID:  &categoryID,
	}
	if err := tx.Items.CreateBaseItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// updateBaseItem applies f to an active base item and returns the columns it wrote.
func updateBaseItem(ctx context.Context, tx *repository.Store, id uuid.UUID, f baseItemFields) (map[string]interface{}, error) {
	if _, err := tx.Items.GetBaseItem(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if f.Name != nil {
		name := strings.TrimSpace(*f.Name)
		if name == "" {
			return nil, apperrors.Validation("name must not be empty")
		}
		updates["name"] = name
	}
	if f.Description != nil {
		description := strings.TrimSpace(*f.Description)
		if description == "" {
			return nil, apperrors.Validation("description must not be empty")
		}
		updates["description"] = description
	}
	if f.Price != nil {
		if *f.Price < 0 {
			return nil, apperrors.Validation("price must not be negative")
		}
		updates["price"] = *f.Price
	}
	if f.CategoryID != nil {
		if *f.CategoryID == uuid.Nil {
			return nil, apperrors.Validation("categoryId must not be empty")
		}
		if _, err := tx.Categories.GetByID(ctx, *f.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *f.CategoryID
	}
	if f.IsAvailable != nil {
		updates["is_available"] = *f.IsAvailable
	}

	if err := tx.Items.UpdateBaseItem(ctx, id, updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// softDeleteBaseItem marks the base row deleted. Deleting an already deleted
// row succeeds without changing it.
func softDeleteBaseItem(ctx context.Context, tx *repository.Store, id uuid.UUID) error {
	return tx.Items.SoftDeleteBaseItem(ctx, id)
}
