// Package session persists live checkout sessions and the idempotency keys
// that guard payment submission.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"popup-checkout/internal/checkout"
)

// Session is one applicant's checkout in progress.
type Session struct {
	ID            uuid.UUID      `json:"id"`
	PopupCityID   int64          `json:"popupCityId"`
	CitySlug      string         `json:"citySlug"`
	Currency      string         `json:"currency"`
	ApplicationID int64          `json:"applicationId"`
	Cart          *checkout.Cart `json:"cart"`
	LastPayment   *PaymentRef    `json:"lastPayment,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// PaymentRef records the last payment created for a session.
type PaymentRef struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkoutUrl,omitempty"`
	AmountCents int64  `json:"amountCents"`
}

type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// IdempotencyStore hands out short-lived locks keyed by scope and key.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}
