package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/models"
	"catalog-service/internal/pagination"
	"catalog-service/internal/repository"
	"catalog-service/internal/search"
)

// EventPublisher receives catalog item changes once they are committed.
type EventPublisher interface {
	PublishItemCreated(ctx context.Context, item *models.CatalogItem) error
	PublishItemUpdated(ctx context.Context, item *models.CatalogItem, changedFields []string) error
	PublishItemDeleted(ctx context.Context, kind models.ItemKind, id uuid.UUID) error
}

// ScoredItem is a fuzzy search hit.
type ScoredItem struct {
	models.CatalogItem
	Score int
}

// CatalogService runs the commands and queries of one item kind. Products and
// services each get their own instance over the same store.
type CatalogService struct {
	kind      models.ItemKind
	store     *repository.Store
	tracker   search.Tracker
	publisher EventPublisher
	logger    *logrus.Entry
}

// NewCatalogService wires a catalog service. tracker and publisher may be nil.
func NewCatalogService(kind models.ItemKind, store *repository.Store, tracker search.Tracker, publisher EventPublisher, logger *logrus.Logger) *CatalogService {
	if tracker == nil {
		tracker = search.NopTracker{}
	}
	return &CatalogService{
		kind:      kind,
		store:     store,
		tracker:   tracker,
		publisher: publisher,
		logger: logger.WithFields(logrus.Fields{
			"component": "catalog",
			"kind":      kind,
		}),
	}
}

func (s *CatalogService) Kind() models.ItemKind {
	return s.kind
}

// ============================================================================
// Commands
// ============================================================================

// Create writes the base item and its variant row only.
func (s *CatalogService) Create(ctx context.Context, ownerID uuid.UUID, req models.CreateItemRequest) (*models.CatalogItem, error) {
	id, err := s.create(ctx, ownerID, models.CreateAggregateRequest{CreateItemRequest: req})
	if err != nil {
		return nil, err
	}
	item, err := s.store.Items.Get(ctx, s.kind, id)
	if err != nil {
		return nil, err
	}
	s.publishCreated(ctx, item)
	return item, nil
}

// CreateAggregate writes the base item, variant, media, features and brand
// links in one transaction.
func (s *CatalogService) CreateAggregate(ctx context.Context, ownerID uuid.UUID, req models.CreateAggregateRequest) (*models.ItemDetails, error) {
	id, err := s.create(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}
	details, err := s.GetByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishCreated(ctx, &details.CatalogItem)
	return details, nil
}

func (s *CatalogService) create(ctx context.Context, ownerID uuid.UUID, req models.CreateAggregateRequest) (uuid.UUID, error) {
	if req.Price == nil {
		return uuid.Nil, apperrors.Validation("price is required")
	}
	if req.CategoryID == nil {
		return uuid.Nil, apperrors.Validation("categoryId is required")
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	base := baseItemInput{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		CategoryID:  *req.CategoryID,
		IsAvailable: available,
	}
	if err := validateBaseItem(base); err != nil {
		return uuid.Nil, err
	}
	if err := s.validateNewVariant(req.CreateItemRequest, base.Price); err != nil {
		return uuid.Nil, err
	}
	if err := validateDependents(req.Media, req.Features); err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if s.kind == models.KindProduct {
			if err := ensureUniqueSKU(ctx, tx, strings.TrimSpace(req.SKU), uuid.Nil); err != nil {
				return err
			}
		}

		item, err := createBaseItem(ctx, tx, s.kind, base)
		if err != nil {
			return err
		}
		id = item.ID

		if err := s.createVariant(ctx, tx, id, req.CreateItemRequest, available); err != nil {
			return err
		}
		if err := appendMedia(ctx, tx, id, req.Media); err != nil {
			return err
		}
		if err := upsertFeatures(ctx, tx, s.kind, id, req.Features); err != nil {
			return err
		}
		return linkBrands(ctx, tx, id, req.BrandIDs)
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.logger.WithFields(logrus.Fields{"itemID": id, "ownerID": ownerID}).Info("Catalog item created")
	return id, nil
}

func (s *CatalogService) validateNewVariant(req models.CreateItemRequest, price float64) error {
	switch s.kind {
	case models.KindProduct:
		if strings.TrimSpace(req.SKU) == "" {
			return apperrors.Validation("sku is required")
		}
		if req.Stock < 0 {
			return apperrors.Validation("stock must not be negative")
		}
		return validateDiscount(req.DiscountPrice, price)
	default:
		if req.Duration < 0 {
			return apperrors.Validation("duration must not be negative")
		}
	}
	return nil
}

func (s *CatalogService) createVariant(ctx context.Context, tx *repository.Store, id uuid.UUID, req models.CreateItemRequest, available bool) error {
	if s.kind == models.KindService {
		return tx.Items.CreateService(ctx, &models.Service{
			ID:          id,
			ServiceType: strings.TrimSpace(req.ServiceType),
			Duration:    req.Duration,
			IsAvailable: available,
		})
	}
	return tx.Items.CreateProduct(ctx, &models.Product{
		ID:            id,
		SKU:           strings.TrimSpace(req.SKU),
		Stock:         req.Stock,
		DiscountPrice: req.DiscountPrice,
	})
}

// Update changes the base item and variant fields only.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, req models.UpdateItemRequest) (*models.CatalogItem, error) {
	changed, err := s.update(ctx, id, models.UpdateAggregateRequest{UpdateItemRequest: req})
	if err != nil {
		return nil, err
	}
	item, err := s.store.Items.Get(ctx, s.kind, id)
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, item, changed)
	return item, nil
}

// UpdateAggregate also upserts features by name, appends media and links brands.
func (s *CatalogService) UpdateAggregate(ctx context.Context, id uuid.UUID, req models.UpdateAggregateRequest) (*models.ItemDetails, error) {
	changed, err := s.update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	details, err := s.GetByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, &details.CatalogItem, changed)
	return details, nil
}

// SetPrice replaces the price, keeping any discount strictly below it.
func (s *CatalogService) SetPrice(ctx context.Context, id uuid.UUID, price float64) (*models.CatalogItem, error) {
	if price < 0 {
		return nil, apperrors.Validation("price must not be negative")
	}
	return s.Update(ctx, id, models.UpdateItemRequest{Price: &price})
}

func (s *CatalogService) update(ctx context.Context, id uuid.UUID, req models.UpdateAggregateRequest) ([]string, error) {
	current, err := s.store.Items.Get(ctx, s.kind, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateVariantUpdate(current, req.UpdateItemRequest); err != nil {
		return nil, err
	}
	if err := validateDependents(req.Media, req.Features); err != nil {
		return nil, err
	}

	var changed []string
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		baseUpdates, err := updateBaseItem(ctx, tx, id, baseItemFields{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			CategoryID:  req.CategoryID,
			IsAvailable: req.IsAvailable,
		})
		if err != nil {
			return err
		}
		changed = append(changed, columnNames(baseUpdates)...)

		variantUpdates, err := s.updateVariant(ctx, tx, id, req.UpdateItemRequest)
		if err != nil {
			return err
		}
		changed = append(changed, columnNames(variantUpdates)...)

		if len(req.Media) > 0 {
			if err := appendMedia(ctx, tx, id, req.Media); err != nil {
				return err
			}
			changed = append(changed, "media")
		}
		if len(req.Features) > 0 {
			if err := upsertFeatures(ctx, tx, s.kind, id, req.Features); err != nil {
				return err
			}
			changed = append(changed, "features")
		}
		if len(req.BrandIDs) > 0 {
			if err := linkBrands(ctx, tx, id, req.BrandIDs); err != nil {
				return err
			}
			changed = append(changed, "brands")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dedupe(changed), nil
}

func (s *CatalogService) validateVariantUpdate(current *models.CatalogItem, req models.UpdateItemRequest) error {
	price := current.Base.Price
	if req.Price != nil {
		if *req.Price < 0 {
			return apperrors.Validation("price must not be negative")
		}
		price = *req.Price
	}

	switch v := current.Variant.(type) {
	case models.ProductVariant:
		if req.SKU != nil && strings.TrimSpace(*req.SKU) == "" {
			return apperrors.Validation("sku must not be empty")
		}
		if req.Stock != nil && *req.Stock < 0 {
			return apperrors.Validation("stock must not be negative")
		}
		discount := v.DiscountPrice
		if req.ClearDiscount {
			discount = nil
		}
		if req.DiscountPrice != nil {
			discount = req.DiscountPrice
		}
		return validateDiscount(discount, price)
	case models.ServiceVariant:
		if req.Duration != nil && *req.Duration < 0 {
			return apperrors.Validation("duration must not be negative")
		}
	}
	return nil
}

func (s *CatalogService) updateVariant(ctx context.Context, tx *repository.Store, id uuid.UUID, req models.UpdateItemRequest) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if s.kind == models.KindService {
		if req.ServiceType != nil {
			updates["service_type"] = strings.TrimSpace(*req.ServiceType)
		}
		if req.Duration != nil {
			updates["duration"] = *req.Duration
		}
		if req.IsAvailable != nil {
			updates["is_available"] = *req.IsAvailable
		}
		return updates, tx.Items.UpdateService(ctx, id, updates)
	}

	if req.SKU != nil {
		sku := strings.TrimSpace(*req.SKU)
		if err := ensureUniqueSKU(ctx, tx, sku, id); err != nil {
			return nil, err
		}
		updates["sku"] = sku
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.ClearDiscount {
		updates["discount_price"] = nil
	}
	if req.DiscountPrice != nil {
		updates["discount_price"] = *req.DiscountPrice
	}
	return updates, tx.Items.UpdateProduct(ctx, id, updates)
}

// Delete soft-deletes the variant and base item. Deleting an already deleted
// item succeeds; an id that never existed is NotFound.
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.delete(ctx, id, false)
}

// DeleteAggregate also soft-deletes the item's media, features and favorites.
func (s *CatalogService) DeleteAggregate(ctx context.Context, id uuid.UUID) error {
	return s.delete(ctx, id, true)
}

func (s *CatalogService) delete(ctx context.Context, id uuid.UUID, cascade bool) error {
	base, err := s.store.Items.GetBaseItemIncludingDeleted(ctx, id)
	if err != nil {
		return err
	}
	if base.Kind != s.kind {
		return apperrors.NotFound("%s %s not found", s.kind, id)
	}
	wasActive := !base.DeletedAt.Valid

	fields := logrus.Fields{"itemID": id}
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if err := tx.Items.SoftDeleteVariant(ctx, s.kind, id); err != nil {
			return err
		}
		if err := softDeleteBaseItem(ctx, tx, id); err != nil {
			return err
		}
		if !cascade {
			return nil
		}

		media, err := tx.Media.DeleteByItem(ctx, id)
		if err != nil {
			return err
		}
		features, err := tx.Features.DeleteByOwner(ctx, s.kind, id)
		if err != nil {
			return err
		}
		favorites, err := tx.Favorites.DeleteByItem(ctx, id)
		if err != nil {
			return err
		}
		fields["media"] = media
		fields["features"] = features
		fields["favorites"] = favorites
		return nil
	})
	if err != nil {
		return err
	}

	if wasActive {
		s.logger.WithFields(fields).Info("Catalog item deleted")
		if s.publisher != nil {
			if err := s.publisher.PublishItemDeleted(ctx, s.kind, id); err != nil {
				s.logger.WithError(err).WithField("itemID", id).Warn("Failed to publish item deleted event")
			}
		}
	}
	return nil
}

// ============================================================================
// Brand links
// ============================================================================

// AddBrand links brandID to the item. An existing link counts as success.
func (s *CatalogService) AddBrand(ctx context.Context, itemID, brandID uuid.UUID) (bool, error) {
	if err := s.ensureActive(ctx, itemID); err != nil {
		return false, err
	}
	if _, err := s.store.Brands.GetByID(ctx, brandID); err != nil {
		return false, err
	}
	if err := s.store.Brands.Link(ctx, itemID, brandID); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveBrand unlinks brandID from the item. A missing link counts as success.
func (s *CatalogService) RemoveBrand(ctx context.Context, itemID, brandID uuid.UUID) (bool, error) {
	if err := s.ensureActive(ctx, itemID); err != nil {
		return false, err
	}
	if _, err := s.store.Brands.GetByID(ctx, brandID); err != nil {
		return false, err
	}
	if err := s.store.Brands.Unlink(ctx, itemID, brandID); err != nil {
		return false, err
	}
	return true, nil
}

// ============================================================================
// Queries
// ============================================================================

func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	return s.store.Items.Get(ctx, s.kind, id)
}

// GetByIDIncludingDeleted ignores the soft-delete filter. It is not routed.
func (s *CatalogService) GetByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	return s.store.Items.GetIncludingDeleted(ctx, s.kind, id)
}

func (s *CatalogService) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*models.ItemDetails, error) {
	item, err := s.store.Items.GetWithDetails(ctx, s.kind, id)
	if err != nil {
		return nil, err
	}
	features, err := s.store.Features.ListByOwner(ctx, s.kind, id)
	if err != nil {
		return nil, err
	}
	return &models.ItemDetails{CatalogItem: *item, Features: features}, nil
}

func (s *CatalogService) List(ctx context.Context, page pagination.Params) ([]models.CatalogItem, pagination.Info, error) {
	return s.list(ctx, repository.ItemFilter{}, page)
}

func (s *CatalogService) GetByCategory(ctx context.Context, categoryID uuid.UUID, page pagination.Params) ([]models.CatalogItem, pagination.Info, error) {
	if _, err := s.store.Categories.GetByID(ctx, categoryID); err != nil {
		return nil, pagination.Info{}, err
	}
	return s.list(ctx, repository.ItemFilter{CategoryID: &categoryID}, page)
}

func (s *CatalogService) GetByBrand(ctx context.Context, brandID uuid.UUID, page pagination.Params) ([]models.CatalogItem, pagination.Info, error) {
	if _, err := s.store.Brands.GetByID(ctx, brandID); err != nil {
		return nil, pagination.Info{}, err
	}
	return s.list(ctx, repository.ItemFilter{BrandID: &brandID}, page)
}

// GetByPriceRange filters on inclusive bounds. A nil bound is open.
func (s *CatalogService) GetByPriceRange(ctx context.Context, min, max *float64, page pagination.Params) ([]models.CatalogItem, pagination.Info, error) {
	if (min != nil && *min < 0) || (max != nil && *max < 0) {
		return nil, pagination.Info{}, apperrors.Validation("price bounds must not be negative")
	}
	if min != nil && max != nil && *min > *max {
		return nil, pagination.Info{}, apperrors.Validation("min price must not exceed max price")
	}
	return s.list(ctx, repository.ItemFilter{MinPrice: min, MaxPrice: max}, page)
}

func (s *CatalogService) GetByUserID(ctx context.Context, ownerID uuid.UUID, page pagination.Params) ([]models.CatalogItem, pagination.Info, error) {
	if ownerID == uuid.Nil {
		return nil, pagination.Info{}, apperrors.Validation("userId is required")
	}
	return s.list(ctx, repository.ItemFilter{OwnerID: &ownerID}, page)
}

// GetByIDs returns the active items among ids, skipping unknown ones.
func (s *CatalogService) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CatalogItem, error) {
	return s.store.Items.GetByIDs(ctx, s.kind, ids)
}

func (s *CatalogService) list(ctx context.Context, filter repository.ItemFilter, page pagination.Params) ([]models.CatalogItem, pagination.Info, error) {
	page = pagination.Normalize(page.Page, page.Size)
	filter.Kind = s.kind
	items, total, err := s.store.Items.List(ctx, filter, page)
	if err != nil {
		return nil, pagination.Info{}, err
	}
	return items, pagination.New(page.Page, page.Size, total), nil
}

// SearchByName ranks every active item by name similarity to query.
func (s *CatalogService) SearchByName(ctx context.Context, query string) ([]ScoredItem, error) {
	if search.Normalize(query) == "" {
		return nil, apperrors.Validation("search name is required")
	}

	rows, err := s.store.Items.NameCandidates(ctx, s.kind)
	if err != nil {
		return nil, err
	}
	candidates := make([]search.Candidate[uuid.UUID], len(rows))
	for i, row := range rows {
		candidates[i] = search.Candidate[uuid.UUID]{Name: row.Name, Value: row.ID}
	}
	matches := search.Rank(query, candidates)

	if err := s.tracker.Track(ctx, s.kind.Plural(), query); err != nil {
		s.logger.WithError(err).Debug("Search term not tracked")
	}

	results := make([]ScoredItem, 0, len(matches))
	if len(matches) == 0 {
		return results, nil
	}

	ids := make([]uuid.UUID, len(matches))
	for i, m := range matches {
		ids[i] = m.Value
	}
	items, err := s.store.Items.GetByIDs(ctx, s.kind, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.CatalogItem, len(items))
	for _, item := range items {
		byID[item.ID()] = item
	}
	for _, m := range matches {
		if item, ok := byID[m.Value]; ok {
			results = append(results, ScoredItem{CatalogItem: item, Score: m.Score})
		}
	}
	return results, nil
}

// PopularSearches returns the most searched terms for this kind.
func (s *CatalogService) PopularSearches(ctx context.Context, limit int) ([]search.TermCount, error) {
	terms, err := s.tracker.Popular(ctx, s.kind.Plural(), limit)
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to load popular searches")
	}
	return terms, nil
}

// Features lists the features of an active item.
func (s *CatalogService) Features(ctx context.Context, itemID uuid.UUID) ([]models.Feature, error) {
	if err := s.ensureActive(ctx, itemID); err != nil {
		return nil, err
	}
	return s.store.Features.ListByOwner(ctx, s.kind, itemID)
}

func (s *CatalogService) ensureActive(ctx context.Context, id uuid.UUID) error {
	ok, err := s.store.Items.Exists(ctx, s.kind, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("%s %s not found", s.kind, id)
	}
	return nil
}

func (s *CatalogService) publishCreated(ctx context.Context, item *models.CatalogItem) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishItemCreated(ctx, item); err != nil {
		s.logger.WithError(err).WithField("itemID", item.ID()).Warn("Failed to publish item created event")
	}
}

func (s *CatalogService) publishUpdated(ctx context.Context, item *models.CatalogItem, changed []string) {
	if s.publisher == nil || len(changed) == 0 {
		return
	}
	if err := s.publisher.PublishItemUpdated(ctx, item, changed); err != nil {
		s.logger.WithError(err).WithField("itemID", item.ID()).Warn("Failed to publish item updated event")
	}
}

// ============================================================================
// Helpers shared by the aggregate commands
// ============================================================================

func validateDiscount(discount *float64, price float64) error {
	if discount == nil {
		return nil
	}
	if *discount < 0 {
		return apperrors.Validation("discountPrice must not be negative")
	}
	if *discount >= price {
		return apperrors.Validation("discountPrice must be below price")
	}
	return nil
}

func ensureUniqueSKU(ctx context.Context, tx *repository.Store, sku string, excludeID uuid.UUID) error {
	exists, err := tx.Items.SKUExists(ctx, sku, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.Conflict("sku %s is already in use", sku)
	}
	return nil
}

func validateDependents(media []models.MediaInput, features []models.FeatureInput) error {
	for i, m := range media {
		if strings.TrimSpace(m.URL) == "" {
			return apperrors.Validation("media[%d].url is required", i)
		}
		if m.MediaTypeID == uuid.Nil {
			return apperrors.Validation("media[%d].mediaTypeId is required", i)
		}
	}
	for i, f := range features {
		if strings.TrimSpace(f.Name) == "" {
			return apperrors.Validation("features[%d].name is required", i)
		}
	}
	return nil
}

func appendMedia(ctx context.Context, tx *repository.Store, itemID uuid.UUID, media []models.MediaInput) error {
	for _, m := range media {
		if _, err := tx.MediaTypes.GetByID(ctx, m.MediaTypeID); err != nil {
			return err
		}
		row := &models.Media{
			BaseItemID:  itemID,
			URL:         strings.TrimSpace(m.URL),
			MediaTypeID: m.MediaTypeID,
		}
		if err := tx.Media.Create(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// upsertFeatures updates the value of features whose name already exists on
// the owner (case-insensitive) and creates the rest. Other features are kept.
func upsertFeatures(ctx context.Context, tx *repository.Store, kind models.ItemKind, ownerID uuid.UUID, features []models.FeatureInput) error {
	for _, f := range features {
		name := strings.TrimSpace(f.Name)
		existing, err := tx.Features.FindByName(ctx, kind, ownerID, name)
		switch {
		case err == nil:
			if err := tx.Features.Update(ctx, existing.ID, map[string]interface{}{"value": f.Value}); err != nil {
				return err
			}
		case apperrors.KindOf(err) == apperrors.KindNotFound:
			feature := &models.Feature{OwnerID: ownerID, OwnerKind: kind, Name: name, Value: f.Value}
			if err := tx.Features.Create(ctx, feature); err != nil {
				return err
			}
		default:
			return err
		}
	}
	return nil
}

func linkBrands(ctx context.Context, tx *repository.Store, itemID uuid.UUID, brandIDs []uuid.UUID) error {
	for _, brandID := range brandIDs {
		if _, err := tx.Brands.GetByID(ctx, brandID); err != nil {
			return err
		}
		if err := tx.Brands.Link(ctx, itemID, brandID); err != nil {
			return err
		}
	}
	return nil
}

func columnNames(updates map[string]interface{}) []string {
	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
