package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemKind discriminates the two sellable variants of a base item.
type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindService ItemKind = "service"
)

// ParseItemKind accepts both the singular kind and the plural route segment.
func ParseItemKind(s string) (ItemKind, bool) {
	switch s {
	case "product", "products":
		return KindProduct, true
	case "service", "services":
		return KindService, true
	}
	return "", false
}

// Plural is the route segment and display label for the kind.
func (k ItemKind) Plural() string {
	return string(k) + "s"
}

// BaseItem holds the identity, pricing, availability, ownership and
// categorization shared by every product and service.
type BaseItem struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID      `json:"ownerId" gorm:"type:uuid;not null;index"`
	Kind        ItemKind       `json:"kind" gorm:"type:varchar(16);not null;index"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text;not null"`
	Price       float64        `json:"price" gorm:"not null"`
	IsAvailable bool           `json:"isAvailable" gorm:"not null"`
	CategoryID  *uuid.UUID     `json:"categoryId,omitempty" gorm:"type:uuid;index"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Media    []Media   `json:"media,omitempty" gorm:"foreignKey:BaseItemID"`
	Brands   []Brand   `json:"brands,omitempty" gorm:"many2many:item_brands;joinForeignKey:ItemID;joinReferences:BrandID"`
}

func (BaseItem) TableName() string {
	return "base_items"
}

func (b *BaseItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// Variant is the type-specific payload of a catalog item.
type Variant interface {
	Kind() ItemKind
}

// ProductVariant carries the product-only fields.
type ProductVariant struct {
	SKU           string
	Stock         float64
	DiscountPrice *float64
}

func (ProductVariant) Kind() ItemKind { return KindProduct }

// ServiceVariant carries the service-only fields. IsAvailable shadows the base item's flag.
type ServiceVariant struct {
	ServiceType string
	Duration    int
	IsAvailable bool
}

func (ServiceVariant) Kind() ItemKind { return KindService }

// CatalogItem is a base item together with exactly one variant.
type CatalogItem struct {
	Base    BaseItem
	Variant Variant
}

func (i *CatalogItem) ID() uuid.UUID {
	return i.Base.ID
}

func (i *CatalogItem) Kind() ItemKind {
	return i.Variant.Kind()
}

// Available reports the effective availability, honouring the service override.
func (i *CatalogItem) Available() bool {
	if sv, ok := i.Variant.(ServiceVariant); ok {
		return sv.IsAvailable
	}
	return i.Base.IsAvailable
}

// NewProductItem joins a base row with its product row.
func NewProductItem(base BaseItem, p Product) CatalogItem {
	return CatalogItem{Base: base, Variant: p.Variant()}
}

// NewServiceItem joins a base row with its service row.
func NewServiceItem(base BaseItem, s Service) CatalogItem {
	return CatalogItem{Base: base, Variant: s.Variant()}
}

// ItemDetails is a catalog item with its category, media, features and brands loaded.
type ItemDetails struct {
	CatalogItem
	Features []Feature
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Category{},
		&Brand{},
		&MediaType{},
		&BaseItem{},
		&Product{},
		&Service{},
		&Media{},
		&Feature{},
		&Favorite{},
		&ItemBrand{},
	}
}
