package repository

import (
	"context"

	"github.com/google/uuid"

	"grocery-backend/internal/domains/product/model"
)

// ListFilter is the repository-level view of a list request, with the
// search term already normalized.
type ListFilter struct {
	Search          string
	NormalizedQuery string
	Status          *model.ProductStatus
	IsHidden        *bool
	Limit           int
	Offset          int
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	FindByName(ctx context.Context, name string) (*model.Product, error)
	List(ctx context.Context, filter ListFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsByNameOrSlug(ctx context.Context, name, slug string, excludeID *uuid.UUID) (bool, error)
}

type PriceHistoryRepository interface {
	Create(ctx context.Context, ph *model.PriceHistory) error
	FindAll(ctx context.Context) ([]model.PriceHistory, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.PriceHistory, error)
	FindAllByProduct(ctx context.Context, productID uuid.UUID) ([]model.PriceHistory, error)
	FindLatestByProduct(ctx context.Context, productID uuid.UUID) (*model.PriceHistory, error)
}

type ProductImageRepository interface {
	Create(ctx context.Context, img *model.ProductImage) error
	FindByProductID(ctx context.Context, productID uuid.UUID) (*model.ProductImage, error)
	FindByPublicID(ctx context.Context, publicID string) (*model.ProductImage, error)
	DeleteByPublicID(ctx context.Context, publicID string) error
}
