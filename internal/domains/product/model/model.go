package model

import (
	"time"

	"github.com/google/uuid"
)

type ProductStatus string

const (
	StatusActive   ProductStatus = "Active"
	StatusInactive ProductStatus = "Inactive"
)

// MinPrice is the smallest accepted amount, in minor currency units.
const MinPrice = 500

// Product is the aggregate root. LatestPrice and Image are populated by
// reads; they are not columns of the products table.
type Product struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	NormalizeName string        `json:"normalize_name"`
	Slug          string        `json:"slug"`
	Status        ProductStatus `json:"status"`
	HiddenAt      *time.Time    `json:"hidden_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	DeletedAt     *time.Time    `json:"-"`

	LatestPrice *PriceHistory `json:"latest_price,omitempty"`
	Image       *ProductImage `json:"image,omitempty"`
}

// IsHidden reports the hidden invariant: hidden products are Inactive
// and carry a hidden_at timestamp.
func (p *Product) IsHidden() bool {
	return p.HiddenAt != nil
}

// PriceHistory is one append-only ledger entry. Entries are never
// updated or deleted.
type PriceHistory struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	MarketPrice int64     `json:"market_price"`
	SalePrice   int64     `json:"sale_price"`
	ValuationAt time.Time `json:"valuation_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductImage is the single live image of a product. The medium and
// small paths are derived URLs on the asset host, not separate objects.
type ProductImage struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	PublicID     string    `json:"public_id"`
	OriginalPath string    `json:"original_path"`
	MediumPath   string    `json:"medium_path"`
	SmallPath    string    `json:"small_path"`
	DisplayName  string    `json:"display_name"`
	Bytes        int64     `json:"bytes"`
	Format       string    `json:"format"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
