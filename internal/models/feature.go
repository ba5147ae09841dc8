package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feature is a name/value attribute of a product or a service. OwnerKind says
// which variant OwnerID belongs to.
type Feature struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID      `json:"ownerId" gorm:"type:uuid;not null;index:idx_features_owner"`
	OwnerKind ItemKind       `json:"ownerKind" gorm:"type:varchar(16);not null;index:idx_features_owner"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null"`
	Value     string         `json:"value" gorm:"type:text"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (Feature) TableName() string {
	return "features"
}

func (f *Feature) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

type FeatureInput struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type CreateFeatureRequest struct {
	OwnerID   uuid.UUID `json:"ownerId" binding:"required"`
	OwnerKind ItemKind  `json:"ownerKind" binding:"required"`
	Name      string    `json:"name" binding:"required"`
	Value     string    `json:"value"`
}

type UpdateFeatureRequest struct {
	Name  *string `json:"name"`
	Value *string `json:"value"`
}
