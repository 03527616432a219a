package application

import (
	"context"

	"popup-checkout/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, popupCityID, id int64) (*domain.Application, error)
	Create(ctx context.Context, app domain.Application) (*domain.Application, error)
}
