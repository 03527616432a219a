package product

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popup-checkout/internal/domain"
	"popup-checkout/internal/migrate"
)

func TestPostgres_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	require.NoError(t, migrate.Apply(ctx, pool, nil))
	resetTables(ctx, t, pool)

	var cityID int64
	err := pool.QueryRow(ctx, `INSERT INTO popup_cities (slug, name) VALUES ('edge-test', 'Edge Test') RETURNING id`).Scan(&cityID)
	require.NoError(t, err)

	repo := NewPostgres(pool, nil)
	minPrice := int64(5000)
	patron, err := repo.Upsert(ctx, domain.Product{
		PopupCityID:   cityID,
		Slug:          "patron",
		Name:          "Patron",
		Category:      domain.CategoryPatron,
		PriceCents:    25000,
		MinPriceCents: &minPrice,
		IsActive:      true,
	})
	require.NoError(t, err)
	require.NotZero(t, patron.ID)

	pct := int64(10)
	_, err = repo.Upsert(ctx, domain.Product{
		PopupCityID:         cityID,
		Slug:                "month",
		Name:                "Month pass",
		Category:            domain.CategoryPass,
		Audience:            domain.AttendeeMain,
		PriceCents:          50000,
		InsurancePercentage: &pct,
		IsActive:            false,
	})
	require.NoError(t, err)

	list, err := repo.ListByCity(ctx, cityID)
	require.NoError(t, err)
	require.Len(t, list, 2, "inactive products are listed too")

	var got domain.Product
	for _, p := range list {
		if p.ID == patron.ID {
			got = p
		}
	}
	assert.True(t, got.VariablePrice())
	assert.Equal(t, int64(5000), *got.MinPriceCents)
	assert.Equal(t, domain.CategoryPatron, got.Category)

	patron.PriceCents = 30000
	updated, err := repo.Upsert(ctx, *patron)
	require.NoError(t, err)
	assert.Equal(t, patron.ID, updated.ID)
	assert.Equal(t, int64(30000), updated.PriceCents)
}

func TestUpsertRejectsUnknownCategory(t *testing.T) {
	repo := NewPostgres(nil, nil)
	_, err := repo.Upsert(context.Background(), domain.Product{Category: "ticket"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "connect db")
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(ctx, `TRUNCATE attendee_products, attendees, applications, products, popup_cities RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "truncate tables")
}
