// Package events publishes checkout lifecycle events for downstream consumers.
package events

import (
	"context"
	"time"
)

const (
	TypePaymentCreated = "checkout.payment_created"
	TypeCompleted      = "checkout.completed"
)

// Event is the message body published for every checkout lifecycle change.
type Event struct {
	Type          string    `json:"type"`
	SessionID     string    `json:"sessionId"`
	PopupCityID   int64     `json:"popupCityId"`
	ApplicationID int64     `json:"applicationId"`
	PaymentID     int64     `json:"paymentId,omitempty"`
	Status        string    `json:"status,omitempty"`
	AmountCents   int64     `json:"amountCents"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
