package product

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"popup-checkout/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("product_repo")}
}

const productColumns = `id, popup_city_id, slug, name, COALESCE(description, ''), category, COALESCE(attendee_category, ''),
    price_cents, compare_price_cents, min_price_cents, insurance_percentage::bigint, is_active, start_date, end_date, created_at`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var category, audience string
	err := row.Scan(
		&p.ID,
		&p.PopupCityID,
		&p.Slug,
		&p.Name,
		&p.Description,
		&category,
		&audience,
		&p.PriceCents,
		&p.ComparePriceCents,
		&p.MinPriceCents,
		&p.InsurancePercentage,
		&p.IsActive,
		&p.StartDate,
		&p.EndDate,
		&p.CreatedAt,
	)
	p.Category = domain.ProductCategory(category)
	p.Audience = domain.AttendeeCategory(audience)
	return p, err
}

// ListByCity returns the whole catalog of a city, inactive products included,
// ordered by category and price.
func (r *postgresRepo) ListByCity(ctx context.Context, popupCityID int64) ([]domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
WHERE popup_city_id = $1
ORDER BY category, price_cents, id
`
	rows, err := r.pool.Query(ctx, q, popupCityID)
	if err != nil {
		r.logger.Error("list products", zap.Int64("popup_city_id", popupCityID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list products rows", zap.Int64("popup_city_id", popupCityID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("list products", zap.Int64("popup_city_id", popupCityID), zap.Int("count", len(result)))
	return result, nil
}

// Upsert writes a product keyed by (popup city, slug).
func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if !product.Category.Valid() {
		return nil, domain.ErrValidation
	}
	const q = `
INSERT INTO products (popup_city_id, slug, name, description, category, attendee_category, price_cents,
    compare_price_cents, min_price_cents, insurance_percentage, is_active, start_date, end_date)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (popup_city_id, slug) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    category = EXCLUDED.category,
    attendee_category = EXCLUDED.attendee_category,
    price_cents = EXCLUDED.price_cents,
    compare_price_cents = EXCLUDED.compare_price_cents,
    min_price_cents = EXCLUDED.min_price_cents,
    insurance_percentage = EXCLUDED.insurance_percentage,
    is_active = EXCLUDED.is_active,
    start_date = EXCLUDED.start_date,
    end_date = EXCLUDED.end_date
RETURNING id, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.PopupCityID,
		product.Slug,
		product.Name,
		product.Description,
		string(product.Category),
		string(product.Audience),
		product.PriceCents,
		product.ComparePriceCents,
		product.MinPriceCents,
		product.InsurancePercentage,
		product.IsActive,
		product.StartDate,
		product.EndDate,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("upsert product", zap.String("slug", product.Slug), zap.Int64("popup_city_id", product.PopupCityID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("upserted product", zap.String("slug", res.Slug), zap.Int64("id", res.ID))
	return &res, nil
}
