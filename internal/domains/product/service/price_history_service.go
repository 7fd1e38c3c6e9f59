package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"grocery-backend/internal/domains/product/model"
	"grocery-backend/internal/domains/product/repository"
)

type priceHistoryService struct {
	prices   repository.PriceHistoryRepository
	products repository.ProductRepository
}

// NewPriceHistoryService builds the ledger service. It depends on the
// product repository only for existence checks; the ledger never calls
// back into the aggregate.
func NewPriceHistoryService(
	prices repository.PriceHistoryRepository,
	products repository.ProductRepository,
) PriceHistoryService {
	return &priceHistoryService{prices: prices, products: products}
}

func (s *priceHistoryService) Create(ctx context.Context, req *model.CreatePriceHistoryRequest) (*model.PriceHistory, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.products.ExistsByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrProductNotFound
	}

	now := time.Now()
	valuationAt := now
	if req.ValuationAt != nil {
		valuationAt = *req.ValuationAt
	}

	entry := &model.PriceHistory{
		ID:          uuid.New(),
		ProductID:   req.ProductID,
		MarketPrice: req.MarketPrice,
		SalePrice:   req.SalePrice,
		ValuationAt: valuationAt,
		CreatedAt:   now,
	}

	if err := s.prices.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *priceHistoryService) FindAll(ctx context.Context) ([]model.PriceHistory, error) {
	return s.prices.FindAll(ctx)
}

func (s *priceHistoryService) FindOne(ctx context.Context, id uuid.UUID) (*model.PriceHistory, error) {
	return s.prices.FindByID(ctx, id)
}

func (s *priceHistoryService) FindAllByProduct(ctx context.Context, productID uuid.UUID) ([]model.PriceHistory, error) {
	exists, err := s.products.ExistsByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrProductNotFound
	}
	return s.prices.FindAllByProduct(ctx, productID)
}
