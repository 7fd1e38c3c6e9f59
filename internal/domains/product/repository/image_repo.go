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

type productImageRepository struct {
	pool *pgxpool.Pool
}

func NewProductImageRepository(pool *pgxpool.Pool) ProductImageRepository {
	return &productImageRepository{pool: pool}
}

const imageColumns = `id, product_id, public_id, original_path, medium_path, small_path,
	display_name, bytes, format, created_at, updated_at`

func (r *productImageRepository) Create(ctx context.Context, img *model.ProductImage) error {
	q := database.Querier(ctx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO product_images (id, product_id, public_id, original_path, medium_path,
			small_path, display_name, bytes, format, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		img.ID, img.ProductID, img.PublicID, img.OriginalPath, img.MediumPath,
		img.SmallPath, img.DisplayName, img.Bytes, img.Format, img.CreatedAt, img.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product image: %w", err)
	}
	return nil
}

func (r *productImageRepository) findOne(ctx context.Context, where string, arg any) (*model.ProductImage, error) {
	q := database.Querier(ctx, r.pool)

	var img model.ProductImage
	err := q.QueryRow(ctx,
		"SELECT "+imageColumns+" FROM product_images WHERE "+where, arg,
	).Scan(&img.ID, &img.ProductID, &img.PublicID, &img.OriginalPath, &img.MediumPath,
		&img.SmallPath, &img.DisplayName, &img.Bytes, &img.Format, &img.CreatedAt, &img.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product image: %w", err)
	}
	return &img, nil
}

func (r *productImageRepository) FindByProductID(ctx context.Context, productID uuid.UUID) (*model.ProductImage, error) {
	return r.findOne(ctx, "product_id = $1", productID)
}

func (r *productImageRepository) FindByPublicID(ctx context.Context, publicID string) (*model.ProductImage, error) {
	return r.findOne(ctx, "public_id = $1", publicID)
}

func (r *productImageRepository) DeleteByPublicID(ctx context.Context, publicID string) error {
	q := database.Querier(ctx, r.pool)

	tag, err := q.Exec(ctx, "DELETE FROM product_images WHERE public_id = $1", publicID)
	if err != nil {
		return fmt.Errorf("delete product image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrImageNotFound
	}
	return nil
}
