package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"grocery-backend/internal/domains/product/model"
	"grocery-backend/pkg/database"
)

type productRepository struct {
	pool *pgxpool.Pool
}

// isUniqueViolation reports a Postgres 23505, raised when a concurrent
// writer wins the race between the existence check and the insert.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// escapeLike neutralizes LIKE metacharacters in user input so a search
// for "100%" matches the literal text instead of acting as a wildcard.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

// Every read joins the latest ledger entry and the live image so list
// and detail responses come back populated in one round trip.
const selectProduct = `
	SELECT p.id, p.name, p.normalize_name, p.slug, p.status, p.hidden_at,
	       p.created_at, p.updated_at,
	       ph.id, ph.market_price, ph.sale_price, ph.valuation_at, ph.created_at,
	       pi.id, pi.public_id, pi.original_path, pi.medium_path, pi.small_path,
	       pi.display_name, pi.bytes, pi.format, pi.created_at, pi.updated_at
	FROM products p
	LEFT JOIN LATERAL (
		SELECT id, market_price, sale_price, valuation_at, created_at
		FROM price_histories
		WHERE product_id = p.id
		ORDER BY created_at DESC
		LIMIT 1
	) ph ON true
	LEFT JOIN product_images pi ON pi.product_id = p.id`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	var (
		phID          *uuid.UUID
		phMarketPrice *int64
		phSalePrice   *int64
		phValuationAt *time.Time
		phCreatedAt   *time.Time

		imgID          *uuid.UUID
		imgPublicID    *string
		imgOriginal    *string
		imgMedium      *string
		imgSmall       *string
		imgDisplayName *string
		imgBytes       *int64
		imgFormat      *string
		imgCreatedAt   *time.Time
		imgUpdatedAt   *time.Time
	)

	err := row.Scan(
		&p.ID, &p.Name, &p.NormalizeName, &p.Slug, &p.Status, &p.HiddenAt,
		&p.CreatedAt, &p.UpdatedAt,
		&phID, &phMarketPrice, &phSalePrice, &phValuationAt, &phCreatedAt,
		&imgID, &imgPublicID, &imgOriginal, &imgMedium, &imgSmall,
		&imgDisplayName, &imgBytes, &imgFormat, &imgCreatedAt, &imgUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if phID != nil {
		p.LatestPrice = &model.PriceHistory{
			ID:          *phID,
			ProductID:   p.ID,
			MarketPrice: *phMarketPrice,
			SalePrice:   *phSalePrice,
			ValuationAt: *phValuationAt,
			CreatedAt:   *phCreatedAt,
		}
	}

	if imgID != nil {
		p.Image = &model.ProductImage{
			ID:           *imgID,
			ProductID:    p.ID,
			PublicID:     *imgPublicID,
			OriginalPath: *imgOriginal,
			MediumPath:   *imgMedium,
			SmallPath:    *imgSmall,
			DisplayName:  *imgDisplayName,
			Bytes:        *imgBytes,
			Format:       *imgFormat,
			CreatedAt:    *imgCreatedAt,
			UpdatedAt:    *imgUpdatedAt,
		}
	}

	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	q := database.Querier(ctx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO products (id, name, normalize_name, slug, status, hidden_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Name, p.NormalizeName, p.Slug, p.Status, p.HiddenAt, p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return model.ErrProductNameTaken
	}
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *productRepository) findOne(ctx context.Context, where string, arg any) (*model.Product, error) {
	q := database.Querier(ctx, r.pool)

	row := q.QueryRow(ctx, selectProduct+" WHERE p.deleted_at IS NULL AND "+where, arg)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.findOne(ctx, "p.id = $1", id)
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.findOne(ctx, "p.slug = $1", slug)
}

func (r *productRepository) FindByName(ctx context.Context, name string) (*model.Product, error) {
	return r.findOne(ctx, "p.name = $1", name)
}

func (r *productRepository) List(ctx context.Context, filter ListFilter) ([]model.Product, int64, error) {
	q := database.Querier(ctx, r.pool)

	conditions := []string{"p.deleted_at IS NULL"}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%", "%"+escapeLike(filter.NormalizedQuery)+"%")
		conditions = append(conditions, fmt.Sprintf(
			"(p.name ILIKE $%d OR p.normalize_name LIKE $%d)", len(args)-1, len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if filter.IsHidden != nil {
		if *filter.IsHidden {
			conditions = append(conditions, "p.hidden_at IS NOT NULL")
		} else {
			conditions = append(conditions, "p.hidden_at IS NULL")
		}
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM products p" + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	// Limit <= 0 means no pagination (used by the export).
	listQuery := selectProduct + where + " ORDER BY p.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		listQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := q.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	q := database.Querier(ctx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE products
		SET name = $2, normalize_name = $3, slug = $4, status = $5,
		    hidden_at = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL`,
		p.ID, p.Name, p.NormalizeName, p.Slug, p.Status, p.HiddenAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return model.ErrProductNameTaken
	}
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := database.Querier(ctx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE products SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	q := database.Querier(ctx, r.pool)

	var exists bool
	err := q.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM products WHERE id = $1 AND deleted_at IS NULL)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product exists: %w", err)
	}
	return exists, nil
}

func (r *productRepository) ExistsByNameOrSlug(ctx context.Context, name, slug string, excludeID *uuid.UUID) (bool, error) {
	q := database.Querier(ctx, r.pool)

	query := "SELECT EXISTS(SELECT 1 FROM products WHERE (name = $1 OR slug = $2) AND deleted_at IS NULL"
	args := []any{name, slug}
	if excludeID != nil {
		query += " AND id <> $3"
		args = append(args, *excludeID)
	}
	query += ")"

	var exists bool
	if err := q.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check name taken: %w", err)
	}
	return exists, nil
}
