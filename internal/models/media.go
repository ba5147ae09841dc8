package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media is a typed reference to a stored blob, ordered by creation time.
type Media struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	BaseItemID  uuid.UUID      `json:"baseItemId" gorm:"type:uuid;not null;index"`
	URL         string         `json:"url" gorm:"type:varchar(1024);not null"`
	MediaTypeID uuid.UUID      `json:"mediaTypeId" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`

	MediaType *MediaType `json:"mediaType,omitempty" gorm:"foreignKey:MediaTypeID"`
}

func (Media) TableName() string {
	return "media"
}

func (m *Media) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

type MediaType struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Description *string        `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (MediaType) TableName() string {
	return "media_types"
}

func (m *MediaType) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// MediaInput describes one media row inside an aggregate command.
type MediaInput struct {
	URL         string    `json:"url"`
	MediaTypeID uuid.UUID `json:"mediaTypeId"`
}

type CreateMediaRequest struct {
	BaseItemID  uuid.UUID `json:"baseItemId" binding:"required"`
	URL         string    `json:"url" binding:"required"`
	MediaTypeID uuid.UUID `json:"mediaTypeId" binding:"required"`
}

type UpdateMediaRequest struct {
	URL         *string    `json:"url"`
	MediaTypeID *uuid.UUID `json:"mediaTypeId"`
}

type CreateMediaTypeRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type UpdateMediaTypeRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
