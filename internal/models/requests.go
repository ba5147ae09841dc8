package models

import "github.com/google/uuid"

// CreateItemRequest is the flat DTO for creating a product or a service.
// Variant fields that do not apply to the addressed kind are ignored.
type CreateItemRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Price       *float64   `json:"price" binding:"required"`
	CategoryID  *uuid.UUID `json:"categoryId" binding:"required"`
	IsAvailable *bool      `json:"isAvailable"`

	// Product
	SKU           string   `json:"sku"`
	Stock         float64  `json:"stock"`
	DiscountPrice *float64 `json:"discountPrice"`

	// Service
	ServiceType string `json:"serviceType"`
	Duration    int    `json:"duration"`
}

// CreateAggregateRequest creates the item together with media, features and brand links.
type CreateAggregateRequest struct {
	CreateItemRequest
	Media    []MediaInput   `json:"media"`
	Features []FeatureInput `json:"features"`
	BrandIDs []uuid.UUID    `json:"brandIds"`
}

// UpdateItemRequest is a partial update; nil fields are left unchanged.
type UpdateItemRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Price         *float64   `json:"price"`
	CategoryID    *uuid.UUID `json:"categoryId"`
	IsAvailable   *bool      `json:"isAvailable"`
	SKU           *string    `json:"sku"`
	Stock         *float64   `json:"stock"`
	DiscountPrice *float64   `json:"discountPrice"`
	ClearDiscount bool       `json:"clearDiscount"`
	ServiceType   *string    `json:"serviceType"`
	Duration      *int       `json:"duration"`
}

// UpdateAggregateRequest also upserts features by name, appends media and links brands.
type UpdateAggregateRequest struct {
	UpdateItemRequest
	Media    []MediaInput   `json:"media"`
	Features []FeatureInput `json:"features"`
	BrandIDs []uuid.UUID    `json:"brandIds"`
}

type SetPriceRequest struct {
	Price *float64 `json:"price" binding:"required"`
}

type GetByIDsRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required"`
}
