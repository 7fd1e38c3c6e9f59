package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"grocery-backend/internal/domains/product/model"
	"grocery-backend/pkg/database"
)

type priceHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewPriceHistoryRepository(pool *pgxpool.Pool) PriceHistoryRepository {
	return &priceHistoryRepository{pool: pool}
}

const priceHistoryColumns = "id, product_id, market_price, sale_price, valuation_at, created_at"

func (r *priceHistoryRepository) Create(ctx context.Context, ph *model.PriceHistory) error {
	q := database.Querier(ctx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO price_histories (id, product_id, market_price, sale_price, valuation_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ph.ID, ph.ProductID, ph.MarketPrice, ph.SalePrice, ph.ValuationAt, ph.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert price history: %w", err)
	}
	return nil
}

func (r *priceHistoryRepository) FindAll(ctx context.Context) ([]model.PriceHistory, error) {
	q := database.Querier(ctx, r.pool)

	rows, err := q.Query(ctx,
		"SELECT "+priceHistoryColumns+" FROM price_histories ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list price histories: %w", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.PriceHistory])
	if err != nil {
		return nil, fmt.Errorf("collect price histories: %w", err)
	}
	return entries, nil
}

func (r *priceHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PriceHistory, error) {
	q := database.Querier(ctx, r.pool)

	var ph model.PriceHistory
	err := q.QueryRow(ctx,
		"SELECT "+priceHistoryColumns+" FROM price_histories WHERE id = $1", id,
	).Scan(&ph.ID, &ph.ProductID, &ph.MarketPrice, &ph.SalePrice, &ph.ValuationAt, &ph.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrPriceHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find price history: %w", err)
	}
	return &ph, nil
}

func (r *priceHistoryRepository) FindAllByProduct(ctx context.Context, productID uuid.UUID) ([]model.PriceHistory, error) {
	q := database.Querier(ctx, r.pool)

	rows, err := q.Query(ctx,
		"SELECT "+priceHistoryColumns+" FROM price_histories WHERE product_id = $1 ORDER BY created_at ASC",
		productID)
	if err != nil {
		return nil, fmt.Errorf("list product price histories: %w", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.PriceHistory])
	if err != nil {
		return nil, fmt.Errorf("collect product price histories: %w", err)
	}
	return entries, nil
}

func (r *priceHistoryRepository) FindLatestByProduct(ctx context.Context, productID uuid.UUID) (*model.PriceHistory, error) {
	q := database.Querier(ctx, r.pool)

	var ph model.PriceHistory
	err := q.QueryRow(ctx,
		"SELECT "+priceHistoryColumns+" FROM price_histories WHERE product_id = $1 ORDER BY created_at DESC LIMIT 1",
		productID,
	).Scan(&ph.ID, &ph.ProductID, &ph.MarketPrice, &ph.SalePrice, &ph.ValuationAt, &ph.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest price: %w", err)
	}
	return &ph, nil
}
