package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Brand struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description *string        `json:"description,omitempty" gorm:"type:text"`
	IsActive    bool           `json:"isActive" gorm:"not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (Brand) TableName() string {
	return "brands"
}

func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// ItemBrand is the many-to-many link between a catalog item and a brand.
type ItemBrand struct {
	ItemID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	BrandID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

func (ItemBrand) TableName() string {
	return "item_brands"
}

type CreateBrandRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

type UpdateBrandRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}
