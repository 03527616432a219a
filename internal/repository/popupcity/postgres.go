package popupcity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"popup-checkout/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.PopupCity, error) {
	const q = `
SELECT id, slug, name, currency, created_at
FROM popup_cities
WHERE slug = $1
`
	var c domain.PopupCity
	err := r.pool.QueryRow(ctx, q, slug).Scan(&c.ID, &c.Slug, &c.Name, &c.Currency, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a city. A taken slug yields domain.ErrAlreadyExists.
func (r *postgresRepo) Create(ctx context.Context, city *domain.PopupCity) (*domain.PopupCity, error) {
	const q = `
INSERT INTO popup_cities (slug, name, currency)
VALUES ($1, $2, $3)
RETURNING id, created_at
`
	out := *city
	if out.Currency == "" {
		out.Currency = "USD"
	}
	if err := r.pool.QueryRow(ctx, q, out.Slug, out.Name, out.Currency).Scan(&out.ID, &out.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &out, nil
}
