package models

import (
	"time"

	"github.com/google/uuid"

	"catalog-service/internal/pagination"
)

// ResultStatus is the coarse outcome reported in every envelope.
type ResultStatus string

const (
	ResultOk       ResultStatus = "Ok"
	ResultCreated  ResultStatus = "Created"
	ResultInvalid  ResultStatus = "Invalid"
	ResultNotFound ResultStatus = "NotFound"
	ResultConflict ResultStatus = "Conflict"
	ResultError    ResultStatus = "Error"

	ResultUnauthorized    ResultStatus = "Unauthorized"
	ResultTooManyRequests ResultStatus = "TooManyRequests"
)

// Response wraps every API payload.
type Response struct {
	ResultStatus ResultStatus     `json:"resultStatus"`
	Success      bool             `json:"success"`
	Message      string           `json:"message,omitempty"`
	ErrorType    string           `json:"errorType,omitempty"`
	Data         interface{}      `json:"data,omitempty"`
	Pagination   *pagination.Info `json:"pagination,omitempty"`
}

// CatalogItemResponse is the flattened view of a catalog item.
type CatalogItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	Kind        ItemKind   `json:"kind"`
	OwnerID     uuid.UUID  `json:"ownerId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	IsAvailable bool       `json:"isAvailable"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`

	SKU           *string  `json:"sku,omitempty"`
	Stock         *float64 `json:"stock,omitempty"`
	DiscountPrice *float64 `json:"discountPrice,omitempty"`

	ServiceType *string `json:"serviceType,omitempty"`
	Duration    *int    `json:"duration,omitempty"`

	Category *Category `json:"category,omitempty"`
	Media    []Media   `json:"media,omitempty"`
	Features []Feature `json:"features,omitempty"`
	Brands   []Brand   `json:"brands,omitempty"`

	Score *int `json:"score,omitempty"`
}

// ToResponse flattens the tagged union back into a single DTO.
func (i *CatalogItem) ToResponse() CatalogItemResponse {
	resp := CatalogItemResponse{
		ID:          i.Base.ID,
		Kind:        i.Kind(),
		OwnerID:     i.Base.OwnerID,
		Name:        i.Base.Name,
		Description: i.Base.Description,
		Price:       i.Base.Price,
		IsAvailable: i.Available(),
		CategoryID:  i.Base.CategoryID,
		CreatedAt:   i.Base.CreatedAt,
		UpdatedAt:   i.Base.UpdatedAt,
		Category:    i.Base.Category,
		Media:       i.Base.Media,
		Brands:      i.Base.Brands,
	}
	if i.Base.DeletedAt.Valid {
		deletedAt := i.Base.DeletedAt.Time
		resp.DeletedAt = &deletedAt
	}

	switch v := i.Variant.(type) {
	case ProductVariant:
		resp.SKU = &v.SKU
		resp.Stock = &v.Stock
		resp.DiscountPrice = v.DiscountPrice
	case ServiceVariant:
		resp.ServiceType = &v.ServiceType
		resp.Duration = &v.Duration
	}
	return resp
}

func (d *ItemDetails) ToResponse() CatalogItemResponse {
	resp := d.CatalogItem.ToResponse()
	resp.Features = d.Features
	return resp
}

// ToResponses flattens a slice of items.
func ToResponses(items []CatalogItem) []CatalogItemResponse {
	out := make([]CatalogItemResponse, 0, len(items))
	for i := range items {
		out = append(out, items[i].ToResponse())
	}
	return out
}
