package product

import (
	"context"

	"popup-checkout/internal/domain"
)

type Repository interface {
	ListByCity(ctx context.Context, popupCityID int64) ([]domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
