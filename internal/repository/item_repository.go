package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/models"
	"catalog-service/internal/pagination"
)

// ItemRepository persists base items and their product or service rows.
type ItemRepository struct {
	db *gorm.DB
}

// ItemFilter narrows a catalog listing. Zero fields do not filter.
type ItemFilter struct {
	Kind       models.ItemKind
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	OwnerID    *uuid.UUID
	MinPrice   *float64
	MaxPrice   *float64
}

// NameCandidate is the minimal projection scanned by fuzzy search.
type NameCandidate struct {
	ID   uuid.UUID
	Name string
}

// --- Base items ---

func (r *ItemRepository) CreateBaseItem(ctx context.Context, item *models.BaseItem) error {
	return persistence(r.db.WithContext(ctx).Omit("Category", "Media", "Brands").Create(item).Error, "create base item")
}

// GetBaseItem returns an active base item.
func (r *ItemRepository) GetBaseItem(ctx context.Context, id uuid.UUID) (*models.BaseItem, error) {
	var item models.BaseItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, mapError(err, "item", id)
	}
	return &item, nil
}

// GetBaseItemIncludingDeleted returns the base item even when soft deleted.
func (r *ItemRepository) GetBaseItemIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.BaseItem, error) {
	var item models.BaseItem
	if err := IncludingDeleted(r.db.WithContext(ctx)).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, mapError(err, "item", id)
	}
	return &item, nil
}

func (r *ItemRepository) UpdateBaseItem(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return persistence(r.db.WithContext(ctx).Model(&models.BaseItem{}).Where("id = ?", id).Updates(updates).Error, "update item")
}

// SoftDeleteBaseItem marks the row deleted. Rows already deleted are left as they are.
func (r *ItemRepository) SoftDeleteBaseItem(ctx context.Context, id uuid.UUID) error {
	return persistence(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BaseItem{}).Error, "delete item")
}

// --- Variants ---

func (r *ItemRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return persistence(r.db.WithContext(ctx).Create(product).Error, "create product")
}

func (r *ItemRepository) CreateService(ctx context.Context, service *models.Service) error {
	return persistence(r.db.WithContext(ctx).Create(service).Error, "create service")
}

func (r *ItemRepository) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return persistence(r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error, "update product")
}

func (r *ItemRepository) UpdateService(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return persistence(r.db.WithContext(ctx).Model(&models.Service{}).Where("id = ?", id).Updates(updates).Error, "update service")
}

// SoftDeleteVariant marks the product or service row deleted. Idempotent.
func (r *ItemRepository) SoftDeleteVariant(ctx context.Context, kind models.ItemKind, id uuid.UUID) error {
	var model interface{} = &models.Product{}
	if kind == models.KindService {
		model = &models.Service{}
	}
	return persistence(r.db.WithContext(ctx).Where("id = ?", id).Delete(model).Error, "delete "+string(kind))
}

// SKUExists reports whether an active product other than excludeID uses sku.
func (r *ItemRepository) SKUExists(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("sku = ? AND id <> ?", sku, excludeID).
		Count(&count).Error
	if err != nil {
		return false, persistence(err, "check sku")
	}
	return count > 0, nil
}

// --- Catalog items (base + variant) ---

func (r *ItemRepository) itemsQuery(ctx context.Context, kind models.ItemKind) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.BaseItem{}).
		Scopes(JoinActive(variantTable(kind), variantTable(kind)+".id = base_items.id")).
		Where("base_items.kind = ?", kind)
}

func variantTable(kind models.ItemKind) string {
	if kind == models.KindService {
		return "services"
	}
	return "products"
}

// Exists reports whether id is an active item of kind.
func (r *ItemRepository) Exists(ctx context.Context, kind models.ItemKind, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.itemsQuery(ctx, kind).Where("base_items.id = ?", id).Count(&count).Error; err != nil {
		return false, persistence(err, "check item")
	}
	return count > 0, nil
}

// Get returns an active item of kind.
func (r *ItemRepository) Get(ctx context.Context, kind models.ItemKind, id uuid.UUID) (*models.CatalogItem, error) {
	items, err := r.find(ctx, kind, r.itemsQuery(ctx, kind).Where("base_items.id = ?", id))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.NotFound("%s %s not found", kind, id)
	}
	return &items[0], nil
}

// GetIncludingDeleted returns the item whatever its deletion state. Internal and test use only.
func (r *ItemRepository) GetIncludingDeleted(ctx context.Context, kind models.ItemKind, id uuid.UUID) (*models.CatalogItem, error) {
	base, err := r.GetBaseItemIncludingDeleted(ctx, id)
	if err != nil {
		return nil, err
	}
	if base.Kind != kind {
		return nil, apperrors.NotFound("%s %s not found", kind, id)
	}

	db := IncludingDeleted(r.db.WithContext(ctx))
	switch kind {
	case models.KindService:
		var service models.Service
		if err := db.Where("id = ?", id).First(&service).Error; err != nil {
			return nil, mapError(err, "service", id)
		}
		item := models.NewServiceItem(*base, service)
		return &item, nil
	default:
		var product models.Product
		if err := db.Where("id = ?", id).First(&product).Error; err != nil {
			return nil, mapError(err, "product", id)
		}
		item := models.NewProductItem(*base, product)
		return &item, nil
	}
}

// GetWithDetails returns an active item with category, media (and media type)
// and brands preloaded. Features are loaded separately by owner kind.
func (r *ItemRepository) GetWithDetails(ctx context.Context, kind models.ItemKind, id uuid.UUID) (*models.CatalogItem, error) {
	query := r.itemsQuery(ctx, kind).
		Where("base_items.id = ?", id).
		Preload("Category").
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("media.created_at ASC, media.id ASC")
		}).
		Preload("Media.MediaType").
		Preload("Brands")

	items, err := r.find(ctx, kind, query)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.NotFound("%s %s not found", kind, id)
	}
	return &items[0], nil
}

// List returns one page of active items matching filter plus the total count.
func (r *ItemRepository) List(ctx context.Context, filter ItemFilter, page pagination.Params) ([]models.CatalogItem, int64, error) {
	query := r.itemsQuery(ctx, filter.Kind)
	query = applyItemFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, persistence(err, "count items")
	}

	query = query.Order("base_items.created_at DESC, base_items.id ASC").
		Offset(page.Offset()).
		Limit(page.Size)

	items, err := r.find(ctx, filter.Kind, query)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetByIDs returns the active items of kind among ids. Unknown ids are skipped.
func (r *ItemRepository) GetByIDs(ctx context.Context, kind models.ItemKind, ids []uuid.UUID) ([]models.CatalogItem, error) {
	if len(ids) == 0 {
		return []models.CatalogItem{}, nil
	}
	return r.find(ctx, kind, r.itemsQuery(ctx, kind).Where("base_items.id IN ?", ids).Order("base_items.created_at ASC, base_items.id ASC"))
}

// NameCandidates returns every active item of kind in storage retrieval order.
func (r *ItemRepository) NameCandidates(ctx context.Context, kind models.ItemKind) ([]NameCandidate, error) {
	var candidates []NameCandidate
	err := r.itemsQuery(ctx, kind).
		Select("base_items.id, base_items.name").
		Order("base_items.created_at ASC, base_items.id ASC").
		Scan(&candidates).Error
	if err != nil {
		return nil, persistence(err, "load search candidates")
	}
	return candidates, nil
}

// All returns every active item of kind, oldest first.
func (r *ItemRepository) All(ctx context.Context, kind models.ItemKind) ([]models.CatalogItem, error) {
	return r.find(ctx, kind, r.itemsQuery(ctx, kind).Order("base_items.created_at ASC, base_items.id ASC"))
}

// CountByCategory counts active base items of any kind that reference categoryID.
func (r *ItemRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BaseItem{}).Where("category_id = ?", categoryID).Count(&count).Error
	if err != nil {
		return 0, persistence(err, "count items by category")
	}
	return count, nil
}

func applyItemFilter(query *gorm.DB, filter ItemFilter) *gorm.DB {
	if filter.CategoryID != nil {
		query = query.Where("base_items.category_id = ?", *filter.CategoryID)
	}
	if filter.OwnerID != nil {
		query = query.Where("base_items.owner_id = ?", *filter.OwnerID)
	}
	if filter.MinPrice != nil {
		query = query.Where("base_items.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("base_items.price <= ?", *filter.MaxPrice)
	}
	if filter.BrandID != nil {
		query = query.Joins("JOIN item_brands ON item_brands.item_id = base_items.id AND item_brands.brand_id = ?", *filter.BrandID)
	}
	return query
}

// find runs query for base rows and attaches the matching variant rows, keeping query order.
func (r *ItemRepository) find(ctx context.Context, kind models.ItemKind, query *gorm.DB) ([]models.CatalogItem, error) {
	var bases []models.BaseItem
	if err := query.Select("base_items.*").Find(&bases).Error; err != nil {
		return nil, persistence(err, "load items")
	}
	if len(bases) == 0 {
		return []models.CatalogItem{}, nil
	}

	ids := make([]uuid.UUID, len(bases))
	for i := range bases {
		ids[i] = bases[i].ID
	}

	items := make([]models.CatalogItem, 0, len(bases))
	switch kind {
	case models.KindService:
		var services []models.Service
		if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&services).Error; err != nil {
			return nil, persistence(err, "load services")
		}
		byID := make(map[uuid.UUID]models.Service, len(services))
		for _, s := range services {
			byID[s.ID] = s
		}
		for _, base := range bases {
			if s, ok := byID[base.ID]; ok {
				items = append(items, models.NewServiceItem(base, s))
			}
		}
	default:
		var products []models.Product
		if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
			return nil, persistence(err, "load products")
		}
		byID := make(map[uuid.UUID]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		for _, base := range bases {
			if p, ok := byID[base.ID]; ok {
				items = append(items, models.NewProductItem(base, p))
			}
		}
	}
	return items, nil
}
