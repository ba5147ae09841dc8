package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a node in the self-referential category tree.
type Category struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description *string        `json:"description,omitempty" gorm:"type:text"`
	ParentID    *uuid.UUID     `json:"parentId,omitempty" gorm:"type:uuid;index"`
	IsActive    bool           `json:"isActive" gorm:"not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`

	Children []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type CreateCategoryRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parentId"`
	IsActive    *bool      `json:"isActive"`
}

// UpdateCategoryRequest is a partial update. Setting ClearParent moves the
// category to the root.
type UpdateCategoryRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parentId"`
	ClearParent bool       `json:"clearParent"`
	IsActive    *bool      `json:"isActive"`
}
