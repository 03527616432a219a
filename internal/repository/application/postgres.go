package application

import (
	"context"
	"errors"

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
	return &postgresRepo{pool: pool, logger: logger.Named("application_repo")}
}

// GetByID loads an application with its attendees and the products they
// already own.
func (r *postgresRepo) GetByID(ctx context.Context, popupCityID, id int64) (*domain.Application, error) {
	const appQuery = `
SELECT id, popup_city_id, status, credit_cents, discount_percent::bigint, created_at
FROM applications
WHERE popup_city_id = $1 AND id = $2
`
	var app domain.Application
	err := r.pool.QueryRow(ctx, appQuery, popupCityID, id).Scan(
		&app.ID,
		&app.PopupCityID,
		&app.Status,
		&app.CreditCents,
		&app.DiscountPercent,
		&app.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get application", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	const attendeeQuery = `
SELECT id, name, COALESCE(email, ''), category
FROM attendees
WHERE application_id = $1
ORDER BY id
`
	rows, err := r.pool.Query(ctx, attendeeQuery, app.ID)
	if err != nil {
		return nil, err
	}
	index := map[int64]int{}
	for rows.Next() {
		var at domain.Attendee
		var category string
		if err := rows.Scan(&at.ID, &at.Name, &at.Email, &category); err != nil {
			rows.Close()
			return nil, err
		}
		at.Category = domain.AttendeeCategory(category)
		index[at.ID] = len(app.Attendees)
		app.Attendees = append(app.Attendees, at)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const ownedQuery = `
SELECT ap.attendee_id, ap.product_id, ap.quantity, ap.price_cents
FROM attendee_products ap
JOIN attendees a ON a.id = ap.attendee_id
WHERE a.application_id = $1
ORDER BY ap.attendee_id, ap.product_id
`
	rows, err = r.pool.Query(ctx, ownedQuery, app.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var attendeeID int64
		var owned domain.PurchasedProduct
		if err := rows.Scan(&attendeeID, &owned.ProductID, &owned.Quantity, &owned.PriceCents); err != nil {
			return nil, err
		}
		if i, ok := index[attendeeID]; ok {
			app.Attendees[i].Products = append(app.Attendees[i].Products, owned)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("loaded application", zap.Int64("id", app.ID), zap.Int("attendees", len(app.Attendees)))
	return &app, nil
}

// Create stores an application, its attendees and their owned products in one
// transaction. Generated ids are returned on the copy.
func (r *postgresRepo) Create(ctx context.Context, app domain.Application) (*domain.Application, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	status := app.Status
	if status == "" {
		status = "accepted"
	}
	const appInsert = `
INSERT INTO applications (popup_city_id, status, credit_cents, discount_percent)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at
`
	out := app
	out.Status = status
	out.Attendees = make([]domain.Attendee, len(app.Attendees))
	if err := tx.QueryRow(ctx, appInsert, app.PopupCityID, status, app.CreditCents, app.DiscountPercent).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, err
	}

	const attendeeInsert = `
INSERT INTO attendees (application_id, name, email, category)
VALUES ($1, $2, NULLIF($3, ''), $4)
RETURNING id
`
	const ownedInsert = `
INSERT INTO attendee_products (attendee_id, product_id, quantity, price_cents)
VALUES ($1, $2, $3, $4)
`
	for i, at := range app.Attendees {
		if err := tx.QueryRow(ctx, attendeeInsert, out.ID, at.Name, at.Email, string(at.Category)).Scan(&at.ID); err != nil {
			return nil, err
		}
		for _, owned := range at.Products {
			qty := owned.Quantity
			if qty <= 0 {
				qty = 1
			}
			if _, err := tx.Exec(ctx, ownedInsert, at.ID, owned.ProductID, qty, owned.PriceCents); err != nil {
				return nil, err
			}
		}
		out.Attendees[i] = at
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}
