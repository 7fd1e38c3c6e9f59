package service

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"grocery-backend/internal/domains/product/model"
	"grocery-backend/internal/infrastructure/storage"
	"grocery-backend/internal/shared/pagination"
)

// Service is the product aggregate. Writes touching more than one table
// run inside a single transaction.
type Service interface {
	Create(ctx context.Context, req *model.CreateProductRequest, file *multipart.FileHeader) (*model.Product, error)
	List(ctx context.Context, req *model.ListProductsRequest, requestURL string) ([]model.Product, pagination.Meta, error)
	// Get resolves key as uuid, then slug, then exact name.
	Get(ctx context.Context, key string) (*model.Product, error)
	Update(ctx context.Context, key string, req *model.UpdateProductRequest, file *multipart.FileHeader) (*model.Product, error)
	Hide(ctx context.Context, key string) (*model.Product, error)
	Show(ctx context.Context, key string) (*model.Product, error)
	Remove(ctx context.Context, key string) (*model.Product, error)
	GetAllPrices(ctx context.Context, key string) ([]model.PriceHistory, error)
	IsExistName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	ExportToExcel(ctx context.Context, req *model.ListProductsRequest) (*excelize.File, error)
}

type PriceHistoryService interface {
	Create(ctx context.Context, req *model.CreatePriceHistoryRequest) (*model.PriceHistory, error)
	FindAll(ctx context.Context) ([]model.PriceHistory, error)
	FindOne(ctx context.Context, id uuid.UUID) (*model.PriceHistory, error)
	FindAllByProduct(ctx context.Context, productID uuid.UUID) ([]model.PriceHistory, error)
}

// ImageService splits upload (remote, before the transaction) from the
// row write (inside it) so the aggregate can compensate on rollback.
type ImageService interface {
	Create(ctx context.Context, productID uuid.UUID, file *multipart.FileHeader) (*model.ProductImage, error)
	Upload(ctx context.Context, productID uuid.UUID, file *multipart.FileHeader) (*storage.UploadResult, string, error)
	AttachUpload(ctx context.Context, productID uuid.UUID, upload *storage.UploadResult, displayName string) (*model.ProductImage, error)
	RemoveByPublicID(ctx context.Context, publicID string) error
	FindOneByProductID(ctx context.Context, productID uuid.UUID) (*model.ProductImage, error)
}
