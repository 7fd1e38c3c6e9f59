package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/xuri/excelize/v2"

	"grocery-backend/internal/domains/product/model"
	"grocery-backend/internal/domains/product/repository"
	"grocery-backend/internal/infrastructure/queue"
	"grocery-backend/internal/infrastructure/storage"
	"grocery-backend/internal/shared"
	"grocery-backend/internal/shared/pagination"
	"grocery-backend/internal/shared/utils"
	"grocery-backend/pkg/cache"
	"grocery-backend/pkg/database"
	"grocery-backend/pkg/logger"
)

const (
	cacheTTL        = 5 * time.Minute
	cachePrefix     = "products:"
	cacheAllPattern = "products:*"
)

type productService struct {
	products repository.ProductRepository
	prices   repository.PriceHistoryRepository
	images   ImageService
	tx       database.TxManager
	cache    cache.Cache
	enqueuer queue.Enqueuer
}

func NewProductService(
	products repository.ProductRepository,
	prices repository.PriceHistoryRepository,
	images ImageService,
	tx database.TxManager,
	c cache.Cache,
	enqueuer queue.Enqueuer,
) Service {
	return &productService{
		products: products,
		prices:   prices,
		images:   images,
		tx:       tx,
		cache:    c,
		enqueuer: enqueuer,
	}
}

// Create inserts the product and its first ledger entry, plus the image
// row when a file is attached, in one transaction. The upload itself
// happens before the transaction; if the transaction then fails, the
// orphaned remote asset is handed to the cleanup queue.
func (s *productService) Create(ctx context.Context, req *model.CreateProductRequest, file *multipart.FileHeader) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	p := model.NewFromCreate(*req, now)
	p.ID = uuid.New()

	taken, err := s.products.ExistsByNameOrSlug(ctx, p.Name, p.Slug, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, model.ErrProductNameTaken
	}

	var upload *storage.UploadResult
	var displayName string
	if file != nil {
		upload, displayName, err = s.images.Upload(ctx, p.ID, file)
		if err != nil {
			return nil, err
		}
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.products.Create(ctx, &p); err != nil {
			return err
		}

		entry := &model.PriceHistory{
			ID:          uuid.New(),
			ProductID:   p.ID,
			MarketPrice: req.MarketPrice,
			SalePrice:   req.SalePrice,
			ValuationAt: now,
			CreatedAt:   now,
		}
		if err := s.prices.Create(ctx, entry); err != nil {
			return err
		}

		if upload != nil {
			if _, err := s.images.AttachUpload(ctx, p.ID, upload, displayName); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if upload != nil {
			s.enqueueAssetCleanup(upload.PublicID, "product create rolled back")
		}
		return nil, err
	}

	s.invalidateCache(ctx)
	return s.products.FindByID(ctx, p.ID)
}

func (s *productService) List(ctx context.Context, req *model.ListProductsRequest, requestURL string) ([]model.Product, pagination.Meta, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, pagination.Meta{}, err
	}

	type cached struct {
		Products []model.Product `json:"products"`
		Meta     pagination.Meta `json:"meta"`
	}

	key := listCacheKey(req, requestURL)
	var hit cached
	if found, err := s.cache.Get(ctx, key, &hit); err == nil && found {
		return hit.Products, hit.Meta, nil
	}

	filter := repository.ListFilter{
		Search:          req.Search,
		NormalizedQuery: utils.NormalizeName(req.Search),
		Status:          req.Status,
		IsHidden:        req.IsHidden,
		Limit:           req.Limit,
		Offset:          pagination.Offset(req.Page, req.Limit),
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	meta := pagination.NewMeta(req.Page, req.Limit, total, requestURL)

	if err := s.cache.Set(ctx, key, cached{Products: products, Meta: meta}, cacheTTL); err != nil {
		logger.Warn("product list cache set failed", map[string]interface{}{"error": err.Error()})
	}
	return products, meta, nil
}

func (s *productService) Get(ctx context.Context, key string) (*model.Product, error) {
	cacheKey := cachePrefix + "detail:" + key

	var hit model.Product
	if found, err := s.cache.Get(ctx, cacheKey, &hit); err == nil && found {
		return &hit, nil
	}

	p, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, p, cacheTTL); err != nil {
		logger.Warn("product detail cache set failed", map[string]interface{}{"error": err.Error()})
	}
	return p, nil
}

// Update applies a partial patch. Price legs absent from the patch
// carry forward from the latest ledger entry; a replaced image deletes
// the prior remote asset by its public id.
func (s *productService) Update(ctx context.Context, key string, req *model.UpdateProductRequest, file *multipart.FileHeader) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updated := model.ApplyPatch(*existing, *req, now)

	if req.Name != nil && *req.Name != existing.Name {
		taken, err := s.products.ExistsByNameOrSlug(ctx, updated.Name, updated.Slug, &existing.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, model.ErrProductNameTaken
		}
	}

	var upload *storage.UploadResult
	var displayName string
	if file != nil {
		upload, displayName, err = s.images.Upload(ctx, existing.ID, file)
		if err != nil {
			return nil, err
		}
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.products.Update(ctx, &updated); err != nil {
			return err
		}

		if market, sale, needed := model.CarryForwardPrice(existing.LatestPrice, req.MarketPrice, req.SalePrice); needed {
			entry := &model.PriceHistory{
				ID:          uuid.New(),
				ProductID:   existing.ID,
				MarketPrice: market,
				SalePrice:   sale,
				ValuationAt: now,
				CreatedAt:   now,
			}
			if err := s.prices.Create(ctx, entry); err != nil {
				return err
			}
		}

		if upload != nil {
			if existing.Image != nil {
				if err := s.images.RemoveByPublicID(ctx, existing.Image.PublicID); err != nil {
					return err
				}
			}
			if _, err := s.images.AttachUpload(ctx, existing.ID, upload, displayName); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if upload != nil {
			s.enqueueAssetCleanup(upload.PublicID, "product update rolled back")
		}
		return nil, err
	}

	s.invalidateCache(ctx)
	return s.products.FindByID(ctx, existing.ID)
}

func (s *productService) Hide(ctx context.Context, key string) (*model.Product, error) {
	return s.setHidden(ctx, key, true)
}

func (s *productService) Show(ctx context.Context, key string) (*model.Product, error) {
	return s.setHidden(ctx, key, false)
}

func (s *productService) setHidden(ctx context.Context, key string, hidden bool) (*model.Product, error) {
	p, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if hidden {
		p.Status = model.StatusInactive
		p.HiddenAt = &now
	} else {
		p.Status = model.StatusActive
		p.HiddenAt = nil
	}
	p.UpdatedAt = now

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	return s.products.FindByID(ctx, p.ID)
}

// Remove deletes the image first so a failed remote delete never leaves
// a product row pointing at a live asset.
func (s *productService) Remove(ctx context.Context, key string) (*model.Product, error) {
	p, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	if p.Image != nil {
		if err := s.images.RemoveByPublicID(ctx, p.Image.PublicID); err != nil {
			return nil, err
		}
	}

	if err := s.products.Delete(ctx, p.ID); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	return p, nil
}

func (s *productService) GetAllPrices(ctx context.Context, key string) ([]model.PriceHistory, error) {
	p, err := s.resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.prices.FindAllByProduct(ctx, p.ID)
}

func (s *productService) IsExistName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	return s.products.ExistsByNameOrSlug(ctx, name, utils.Slugify(name), excludeID)
}

func (s *productService) ExportToExcel(ctx context.Context, req *model.ListProductsRequest) (*excelize.File, error) {
	filter := repository.ListFilter{
		Search:          req.Search,
		NormalizedQuery: utils.NormalizeName(req.Search),
		Status:          req.Status,
		IsHidden:        req.IsHidden,
	}

	products, _, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Products"
	f.SetSheetName("Sheet1", sheet)

	headers := []interface{}{"Name", "Slug", "Status", "Market Price", "Sale Price", "Hidden At", "Created At"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}

	for i, p := range products {
		var market, sale interface{}
		if p.LatestPrice != nil {
			market = p.LatestPrice.MarketPrice
			sale = p.LatestPrice.SalePrice
		}
		var hiddenAt interface{}
		if p.HiddenAt != nil {
			hiddenAt = p.HiddenAt.Format(time.RFC3339)
		}

		row := []interface{}{p.Name, p.Slug, string(p.Status), market, sale, hiddenAt, p.CreatedAt.Format(time.RFC3339)}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write export row: %w", err)
		}
	}

	return f, nil
}

// resolve tries the key as a uuid, then as a slug, then as an exact name.
func (s *productService) resolve(ctx context.Context, key string) (*model.Product, error) {
	if id, err := uuid.Parse(key); err == nil {
		return s.products.FindByID(ctx, id)
	}
	if utils.IsSlug(key) {
		return s.products.FindBySlug(ctx, key)
	}
	return s.products.FindByName(ctx, key)
}

func (s *productService) invalidateCache(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, cacheAllPattern); err != nil {
		logger.Warn("product cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *productService) enqueueAssetCleanup(publicID, reason string) {
	payload := shared.AssetCleanupPayload{PublicID: publicID, Reason: reason}
	err := s.enqueuer.Enqueue(context.Background(), shared.TypeAssetCleanup, payload,
		asynq.Queue(shared.QueueMaintenance), asynq.MaxRetry(5))
	if err != nil {
		logger.Error("could not enqueue asset cleanup for "+publicID, err)
	}
}

func listCacheKey(req *model.ListProductsRequest, requestURL string) string {
	status := ""
	if req.Status != nil {
		status = string(*req.Status)
	}
	hidden := ""
	if req.IsHidden != nil {
		hidden = fmt.Sprintf("%t", *req.IsHidden)
	}
	return fmt.Sprintf("%slist:%s:%s:%s:%d:%d:%s",
		cachePrefix, req.Search, status, hidden, req.Page, req.Limit, requestURL)
}
