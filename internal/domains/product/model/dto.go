package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"grocery-backend/internal/shared/pagination"
)

type CreateProductRequest struct {
	Name        string         `form:"name" json:"name"`
	MarketPrice int64          `form:"market_price" json:"market_price"`
	SalePrice   int64          `form:"sale_price" json:"sale_price"`
	Status      *ProductStatus `form:"status" json:"status,omitempty"`
}

func (r CreateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.MarketPrice, validation.Required, validation.Min(int64(MinPrice))),
		validation.Field(&r.SalePrice, validation.Required, validation.Min(int64(MinPrice))),
		validation.Field(&r.Status, validation.In(StatusActive, StatusInactive)),
	)
}

// UpdateProductRequest is a partial patch. Absent fields leave the
// product untouched; absent price legs carry forward from the latest
// ledger entry when the other leg changes.
type UpdateProductRequest struct {
	Name        *string        `form:"name" json:"name,omitempty"`
	MarketPrice *int64         `form:"market_price" json:"market_price,omitempty"`
	SalePrice   *int64         `form:"sale_price" json:"sale_price,omitempty"`
	Status      *ProductStatus `form:"status" json:"status,omitempty"`
}

func (r UpdateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.MarketPrice, validation.Min(int64(MinPrice))),
		validation.Field(&r.SalePrice, validation.Min(int64(MinPrice))),
		validation.Field(&r.Status, validation.In(StatusActive, StatusInactive)),
	)
}

// ListProductsRequest filters the catalog. IsHidden is tri-state:
// nil means no filter.
type ListProductsRequest struct {
	Search   string         `form:"search" json:"search,omitempty"`
	Status   *ProductStatus `form:"status" json:"status,omitempty"`
	IsHidden *bool          `form:"is_hidden" json:"is_hidden,omitempty"`
	Page     int            `form:"page" json:"page"`
	Limit    int            `form:"limit" json:"limit"`
}

func (r *ListProductsRequest) ApplyDefaults() {
	if r.Page < 1 {
		r.Page = pagination.DefaultPage
	}
	if r.Limit == 0 {
		r.Limit = pagination.DefaultLimit
	}
}

func (r ListProductsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Page, validation.Min(1)),
		validation.Field(&r.Limit, validation.By(func(value interface{}) error {
			if !pagination.IsAllowedLimit(value.(int)) {
				return validation.NewError("validation_limit", "limit must be one of 5, 10, 20, 30, 40, 50")
			}
			return nil
		})),
		validation.Field(&r.Status, validation.In(StatusActive, StatusInactive)),
	)
}

type CreatePriceHistoryRequest struct {
	ProductID   uuid.UUID  `json:"product_id"`
	MarketPrice int64      `json:"market_price"`
	SalePrice   int64      `json:"sale_price"`
	ValuationAt *time.Time `json:"valuation_at,omitempty"`
}

func (r CreatePriceHistoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required, validation.By(func(value interface{}) error {
			if value.(uuid.UUID) == uuid.Nil {
				return validation.NewError("validation_required", "cannot be blank")
			}
			return nil
		})),
		validation.Field(&r.MarketPrice, validation.Required, validation.Min(int64(MinPrice))),
		validation.Field(&r.SalePrice, validation.Required, validation.Min(int64(MinPrice))),
	)
}
