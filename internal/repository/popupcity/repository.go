package popupcity

import (
	"context"

	"popup-checkout/internal/domain"
)

type Repository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.PopupCity, error)
	Create(ctx context.Context, city *domain.PopupCity) (*domain.PopupCity, error)
}
