package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/models"
	"catalog-service/internal/pagination"
	"catalog-service/internal/repository"
)

type FavoriteService struct {
	store  *repository.Store
	logger *logrus.Entry
}

func NewFavoriteService(store *repository.Store, logger *logrus.Logger) *FavoriteService {
	return &FavoriteService{
		store:  store,
		logger: logger.WithField("component", "favorites"),
	}
}

// Add favorites an active item for userID. A second active favorite for the
// same pair is a conflict.
func (s *FavoriteService) Add(ctx context.Context, userID, itemID uuid.UUID) (*models.Favorite, error) {
	if userID == uuid.Nil {
		return nil, apperrors.Validation("userId is required")
	}
	if itemID == uuid.Nil {
		return nil, apperrors.Validation("baseItemId is required")
	}

	var favorite *models.Favorite
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Items.GetBaseItem(ctx, itemID); err != nil {
			return err
		}
		count, err := tx.Favorites.CountActive(ctx, userID, itemID)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict("item %s is already a favorite", itemID)
		}
		favorite = &models.Favorite{UserID: userID, BaseItemID: itemID}
		return tx.Favorites.Create(ctx, favorite)
	})
	if err != nil {
		return nil, err
	}
	return favorite, nil
}

// Remove soft-deletes a favorite owned by userID. Other users' favorites are NotFound.
func (s *FavoriteService) Remove(ctx context.Context, userID, favoriteID uuid.UUID) error {
	favorite, err := s.store.Favorites.GetByID(ctx, favoriteID)
	if err != nil {
		return err
	}
	if favorite.UserID != userID {
		return apperrors.NotFound("favorite %s not found", favoriteID)
	}
	return s.store.Favorites.Delete(ctx, favoriteID)
}

func (s *FavoriteService) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Favorite, pagination.Info, error) {
	page = pagination.Normalize(page.Page, page.Size)
	favorites, total, err := s.store.Favorites.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, pagination.Info{}, err
	}
	return favorites, pagination.New(page.Page, page.Size, total), nil
}
