package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product extends a base item 1:1. Its primary key is the base item id.
type Product struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	SKU           string         `json:"sku" gorm:"type:varchar(100);not null;index"`
	Stock         float64        `json:"stock" gorm:"not null"`
	DiscountPrice *float64       `json:"discountPrice,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (Product) TableName() string {
	return "products"
}

func (p Product) Variant() ProductVariant {
	return ProductVariant{SKU: p.SKU, Stock: p.Stock, DiscountPrice: p.DiscountPrice}
}

// Service extends a base item 1:1, never sharing it with a product.
type Service struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	ServiceType string         `json:"serviceType" gorm:"type:varchar(100)"`
	Duration    int            `json:"duration" gorm:"not null"` // minutes
	IsAvailable bool           `json:"isAvailable" gorm:"not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (Service) TableName() string {
	return "services"
}

func (s Service) Variant() ServiceVariant {
	return ServiceVariant{ServiceType: s.ServiceType, Duration: s.Duration, IsAvailable: s.IsAvailable}
}
