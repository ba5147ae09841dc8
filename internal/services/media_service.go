package services

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/models"
	"catalog-service/internal/pagination"
	"catalog-service/internal/repository"
	"catalog-service/internal/storage"
)

// UploadInput is one multipart file destined for an item's media set.
type UploadInput struct {
	ItemID      uuid.UUID
	MediaTypeID uuid.UUID
	FileName    string
	Size        int64
	ContentType string
	Body        io.Reader
}

// MediaService manages media rows and the blobs behind uploaded ones.
type MediaService struct {
	store  *repository.Store
	files  storage.FileStorage
	logger *logrus.Entry
}

func NewMediaService(store *repository.Store, files storage.FileStorage, logger *logrus.Logger) *MediaService {
	return &MediaService{
		store:  store,
		files:  files,
		logger: logger.WithField("component", "media"),
	}
}

func (s *MediaService) Create(ctx context.Context, req models.CreateMediaRequest) (*models.Media, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, apperrors.Validation("url is required")
	}
	if err := s.checkReferences(ctx, req.BaseItemID, req.MediaTypeID); err != nil {
		return nil, err
	}

	media := &models.Media{BaseItemID: req.BaseItemID, URL: url, MediaTypeID: req.MediaTypeID}
	if err := s.store.Media.Create(ctx, media); err != nil {
		return nil, err
	}
	return s.store.Media.GetByID(ctx, media.ID)
}

// Upload validates and stores the file, then records it as media of the item.
func (s *MediaService) Upload(ctx context.Context, in UploadInput) (*models.Media, error) {
	if err := s.files.ValidateFile(in.FileName, in.Size, in.ContentType); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, in.ItemID, in.MediaTypeID); err != nil {
		return nil, err
	}

	url, err := s.files.SaveFile(ctx, in.FileName, in.Body)
	if err != nil {
		return nil, err
	}

	media := &models.Media{BaseItemID: in.ItemID, URL: url, MediaTypeID: in.MediaTypeID}
	if err := s.store.Media.Create(ctx, media); err != nil {
		s.logger.WithError(err).WithField("url", url).Error("Stored file has no media row")
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"mediaID": media.ID, "itemID": in.ItemID}).Info("Media uploaded")
	return s.store.Media.GetByID(ctx, media.ID)
}

// OpenFile streams a stored blob. The caller closes it.
func (s *MediaService) OpenFile(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.files.GetFile(ctx, name)
}

func (s *MediaService) GetByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	return s.store.Media.GetByID(ctx, id)
}

func (s *MediaService) GetAll(ctx context.Context, page pagination.Params) ([]models.Media, pagination.Info, error) {
	page = pagination.Normalize(page.Page, page.Size)
	media, total, err := s.store.Media.GetAll(ctx, page)
	if err != nil {
		return nil, pagination.Info{}, err
	}
	return media, pagination.New(page.Page, page.Size, total), nil
}

// ListByItem returns an active item's media, oldest first.
func (s *MediaService) ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.Media, error) {
	if _, err := s.store.Items.GetBaseItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.store.Media.ListByItem(ctx, itemID)
}

func (s *MediaService) Update(ctx context.Context, id uuid.UUID, req models.UpdateMediaRequest) (*models.Media, error) {
	if _, err := s.store.Media.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.URL != nil {
		url := strings.TrimSpace(*req.URL)
		if url == "" {
			return nil, apperrors.Validation("url must not be empty")
		}
		updates["url"] = url
	}
	if req.MediaTypeID != nil {
		if _, err := s.store.MediaTypes.GetByID(ctx, *req.MediaTypeID); err != nil {
			return nil, err
		}
		updates["media_type_id"] = *req.MediaTypeID
	}

	if err := s.store.Media.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.store.Media.GetByID(ctx, id)
}

func (s *MediaService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.Media.GetByID(ctx, id); err != nil {
		return err
	}
	return s.store.Media.Delete(ctx, id)
}

func (s *MediaService) checkReferences(ctx context.Context, itemID, mediaTypeID uuid.UUID) error {
	if itemID == uuid.Nil {
		return apperrors.Validation("itemId is required")
	}
	if mediaTypeID == uuid.Nil {
		return apperrors.Validation("mediaTypeId is required")
	}
	if _, err := s.store.Items.GetBaseItem(ctx, itemID); err != nil {
		return err
	}
	_, err := s.store.MediaTypes.GetByID(ctx, mediaTypeID)
	return err
}

// MediaTypeService manages the media type lookup table.
type MediaTypeService struct {
	store *repository.Store
}

func NewMediaTypeService(store *repository.Store) *MediaTypeService {
	return &MediaTypeService{store: store}
}

func (s *MediaTypeService) Create(ctx context.Context, req models.CreateMediaTypeRequest) (*models.MediaType, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if err := s.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	mediaType := &models.MediaType{Name: name, Description: req.Description}
	if err := s.store.MediaTypes.Create(ctx, mediaType); err != nil {
		return nil, err
	}
	return mediaType, nil
}

func (s *MediaTypeService) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaType, error) {
	return s.store.MediaTypes.GetByID(ctx, id)
}

func (s *MediaTypeService) GetAll(ctx context.Context) ([]models.MediaType, error) {
	return s.store.MediaTypes.GetAll(ctx)
}

func (s *MediaTypeService) Update(ctx context.Context, id uuid.UUID, req models.UpdateMediaTypeRequest) (*models.MediaType, error) {
	if _, err := s.store.MediaTypes.GetByID(ctx, id); err != nil {
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

	if err := s.store.MediaTypes.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.store.MediaTypes.GetByID(ctx, id)
}

func (s *MediaTypeService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.MediaTypes.GetByID(ctx, id); err != nil {
		return err
	}
	return s.store.MediaTypes.Delete(ctx, id)
}

func (s *MediaTypeService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.store.MediaTypes.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != self:
		return apperrors.Conflict("media type %q already exists", name)
	case err == nil, apperrors.KindOf(err) == apperrors.KindNotFound:
		return nil
	default:
		return err
	}
}
