// Package seed loads a demo village for manual testing.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"popup-checkout/internal/domain"
	"popup-checkout/internal/repository/application"
	"popup-checkout/internal/repository/popupcity"
	"popup-checkout/internal/repository/product"
)

const CitySlug = "demo-village"

func ptr[T any](v T) *T { return &v }

func demoProducts(cityID int64) []domain.Product {
	return []domain.Product{
		{Slug: "month-pass", Name: "Month pass", Category: domain.CategoryPass, Audience: domain.AttendeeMain, PriceCents: 120000, ComparePriceCents: ptr(int64(150000)), InsurancePercentage: ptr(int64(8))},
		{Slug: "week-pass", Name: "Week pass", Category: domain.CategoryPass, Audience: domain.AttendeeMain, PriceCents: 45000, InsurancePercentage: ptr(int64(8))},
		{Slug: "spouse-month-pass", Name: "Spouse month pass", Category: domain.CategoryPass, Audience: domain.AttendeeSpouse, PriceCents: 100000},
		{Slug: "kid-month-pass", Name: "Kid month pass", Category: domain.CategoryPass, Audience: domain.AttendeeKid, PriceCents: 20000},
		{Slug: "day-pass", Name: "Day pass", Category: domain.CategoryPass, PriceCents: 6000},
		{Slug: "shared-room", Name: "Shared room", Category: domain.CategoryHousing, PriceCents: 4500, InsurancePercentage: ptr(int64(5))},
		{Slug: "private-room", Name: "Private room", Category: domain.CategoryHousing, PriceCents: 9500, InsurancePercentage: ptr(int64(5))},
		{Slug: "tee", Name: "Village tee", Category: domain.CategoryMerch, PriceCents: 2500},
		{Slug: "mug", Name: "Village mug", Category: domain.CategoryMerch, PriceCents: 1500},
		{Slug: "supporter", Name: "Supporter", Category: domain.CategoryPatron, PriceCents: 25000},
		{Slug: "patron", Name: "Patron", Category: domain.CategoryPatron, PriceCents: 100000, MinPriceCents: ptr(int64(50000))},
	}
}

// Apply inserts the demo city, its catalog and one accepted application.
// An existing city is reused and products are upserted by slug; a new
// application is created on every run.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	cities := popupcity.NewPostgres(pool)
	city, err := cities.Create(ctx, &domain.PopupCity{Slug: CitySlug, Name: "Demo Village", Currency: "USD"})
	if errors.Is(err, domain.ErrAlreadyExists) {
		logger.Info("demo city already exists", zap.String("slug", CitySlug))
		city, err = cities.GetBySlug(ctx, CitySlug)
	}
	if err != nil {
		return fmt.Errorf("ensure city: %w", err)
	}

	products := product.NewPostgres(pool, logger)
	bySlug := make(map[string]int64)
	for _, p := range demoProducts(city.ID) {
		p.PopupCityID = city.ID
		p.IsActive = true
		saved, err := products.Upsert(ctx, p)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
		bySlug[saved.Slug] = saved.ID
	}

	app, err := application.NewPostgres(pool, logger).Create(ctx, domain.Application{
		PopupCityID:     city.ID,
		Status:          "accepted",
		CreditCents:     10000,
		DiscountPercent: 10,
		Attendees: []domain.Attendee{
			{Name: "Ada Main", Email: "ada@example.com", Category: domain.AttendeeMain,
				Products: []domain.PurchasedProduct{{ProductID: bySlug["week-pass"], Quantity: 1, PriceCents: 45000}}},
			{Name: "Sam Spouse", Email: "sam@example.com", Category: domain.AttendeeSpouse},
			{Name: "Kit Kid", Category: domain.AttendeeKid},
		},
	})
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}

	logger.Info("seed applied",
		zap.String("city", city.Slug),
		zap.Int64("city_id", city.ID),
		zap.Int("products", len(bySlug)),
		zap.Int64("application_id", app.ID))
	return nil
}
