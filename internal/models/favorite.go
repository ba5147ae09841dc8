package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Favorite marks a base item as favorited by a user. At most one active row
// exists per (user, item).
type Favorite struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID      `json:"userId" gorm:"type:uuid;not null;index:idx_favorites_user_item"`
	BaseItemID uuid.UUID      `json:"baseItemId" gorm:"type:uuid;not null;index:idx_favorites_user_item"`
	CreatedAt  time.Time      `json:"createdAt"`
	DeletedAt  gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`

	BaseItem *BaseItem `json:"item,omitempty" gorm:"foreignKey:BaseItemID"`
}

func (Favorite) TableName() string {
	return "favorites"
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

type AddFavoriteRequest struct {
	BaseItemID uuid.UUID `json:"baseItemId" binding:"required"`
}
