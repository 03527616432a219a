package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"

	cart "popup-checkout/internal/checkout"
	"popup-checkout/internal/domain"
	"popup-checkout/internal/repository/session"
)

// TogglePass adds or removes a pass. Ineligible combinations leave the cart as is.
func (s *Service) TogglePass(ctx context.Context, id uuid.UUID, attendeeID, productID int64) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		sess.Cart.TogglePass(attendeeID, productID)
		return nil
	})
}

func (s *Service) UpdatePassQuantity(ctx context.Context, id uuid.UUID, attendeeID, productID int64, quantity int) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		sess.Cart.UpdatePassQuantity(attendeeID, productID, quantity)
		return nil
	})
}

func (s *Service) SelectHousing(ctx context.Context, id uuid.UUID, productID int64, checkIn, checkOut time.Time) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		return sess.Cart.SelectHousing(productID, checkIn, checkOut)
	})
}

func (s *Service) ClearHousing(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		sess.Cart.ClearHousing()
		return nil
	})
}

func (s *Service) UpdateMerchQuantity(ctx context.Context, id uuid.UUID, productID int64, quantity int) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		return sess.Cart.UpdateMerchQuantity(productID, quantity)
	})
}

// PatronInput selects a contribution. Exactly one of AmountCents and
// CustomAmount is expected; Preset gives AmountCents checkbox semantics.
type PatronInput struct {
	ProductID    int64
	AmountCents  *int64
	CustomAmount *string
	Preset       bool
}

func (s *Service) SetPatron(ctx context.Context, id uuid.UUID, in PatronInput) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		switch {
		case in.CustomAmount != nil:
			return sess.Cart.SetPatronCustomAmount(in.ProductID, *in.CustomAmount)
		case in.AmountCents == nil, *in.AmountCents > cart.MaxPatronAmountCents:
			return cart.ErrInvalidAmount
		case in.Preset:
			return sess.Cart.SelectPatronPreset(in.ProductID, *in.AmountCents)
		default:
			if _, ok := sess.Cart.Catalog().Offered(in.ProductID, domain.CategoryPatron); !ok {
				return cart.ErrUnknownProduct
			}
			if !sess.Cart.SetPatronAmount(in.ProductID, *in.AmountCents, false) {
				return cart.ErrPatronBelowMinimum
			}
			return nil
		}
	})
}

func (s *Service) ClearPatron(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		sess.Cart.ClearPatron()
		return nil
	})
}

func (s *Service) ClearPromoCode(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		sess.Cart.ClearPromoCode()
		return nil
	})
}

func (s *Service) ToggleInsurance(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		sess.Cart.ToggleInsurance()
		return nil
	})
}

func (s *Service) RemoveItem(ctx context.Context, id uuid.UUID, ref cart.ItemRef) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		return sess.Cart.RemoveItem(ref)
	})
}

func (s *Service) ClearCart(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		sess.Cart.ClearCart()
		return nil
	})
}

func (s *Service) Next(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		return sess.Cart.Next()
	})
}

func (s *Service) Back(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutate(ctx, id, func(sess *session.Session) error {
		return sess.Cart.Back()
	})
}

func (s *Service) GoTo(ctx context.Context, id uuid.UUID, step string) (*View, error) {
	target, ok := cart.ParseStep(step)
	if !ok {
		return nil, cart.ErrUnknownStep
	}
	return s.mutate(ctx, id, func(sess *session.Session) error {
		return sess.Cart.GoTo(target)
	})
}
