package checkout

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cart "popup-checkout/internal/checkout"
	"popup-checkout/internal/domain"
	"popup-checkout/internal/events"
	"popup-checkout/internal/oracle"
)

const returnURL = "https://village.example/checkout?city=lisbon"

func TestApplyPromoCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.open(t)
	_, err := f.svc.TogglePass(ctx, id, mainID, passMain)
	require.NoError(t, err)

	f.oracle.On("ValidateCoupon", mock.Anything, "SAVE10", cityID).
		Return(oracle.Coupon{Code: "SAVE10", DiscountCents: 5000}, nil).Twice()

	applied, view, err := f.svc.ApplyPromoCode(ctx, id, " save10 ")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "SAVE10", view.Promo.Code)
	assert.Equal(t, cart.PromoApplied, view.Promo.Status)
	assert.Equal(t, int64(5000), view.Summary.DiscountCents)
	assert.Equal(t, int64(45000), view.Summary.GrandTotalCents)

	applied, view, err = f.svc.ApplyPromoCode(ctx, id, "SAVE10")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(5000), view.Summary.DiscountCents, "re-applying does not stack")
}

func TestApplyPromoCodeInvalidFormatNeverReachesOracle(t *testing.T) {
	f := newFixture(t)
	id := f.open(t)

	applied, view, err := f.svc.ApplyPromoCode(context.Background(), id, "no spaces!")
	assert.False(t, applied)
	assert.Nil(t, view)
	assert.ErrorIs(t, err, cart.ErrInvalidPromoFormat)
	assert.ErrorIs(t, err, domain.ErrValidation)
	f.oracle.AssertNotCalled(t, "ValidateCoupon", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyPromoCodeFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		failure cart.PromoFailure
		message string
	}{
		{
			name:    "rejected",
			err:     &oracle.RejectedError{Op: "coupon", StatusCode: 404, Message: "Coupon not found"},
			failure: cart.PromoInvalid,
			message: "Coupon not found",
		},
		{
			name:    "rejected without message",
			err:     &oracle.RejectedError{Op: "coupon", StatusCode: 400},
			failure: cart.PromoInvalid,
			message: "promo code is not valid",
		},
		{
			name:    "unavailable",
			err:     &oracle.TransportError{Op: "coupon", Err: errors.New("connection refused")},
			failure: cart.PromoUnavailable,
			message: "promo code could not be checked, please try again",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			id := f.open(t)
			_, err := f.svc.TogglePass(ctx, id, mainID, passMain)
			require.NoError(t, err)

			f.oracle.On("ValidateCoupon", mock.Anything, "BOGUS", cityID).Return(oracle.Coupon{}, tt.err).Once()

			applied, view, err := f.svc.ApplyPromoCode(ctx, id, "bogus")
			require.NoError(t, err)
			assert.False(t, applied)
			assert.Equal(t, cart.PromoRejected, view.Promo.Status)
			assert.Equal(t, tt.failure, view.Promo.Failure)
			assert.Equal(t, tt.message, view.Promo.Message)
			assert.Zero(t, view.Summary.DiscountCents)
			assert.Equal(t, int64(50000), view.Summary.GrandTotalCents)
		})
	}
}

func TestApplyPromoCodeClearedWhileValidating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.open(t)

	f.oracle.On("ValidateCoupon", mock.Anything, "SAVE10", cityID).
		Run(func(mock.Arguments) {
			_, err := f.svc.ClearPromoCode(context.Background(), id)
			assert.NoError(t, err)
		}).
		Return(oracle.Coupon{DiscountCents: 5000}, nil).Once()

	applied, view, err := f.svc.ApplyPromoCode(ctx, id, "SAVE10")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, cart.PromoIdle, view.Promo.Status)
	assert.Zero(t, view.Summary.DiscountCents)
}

func TestPreviewPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.open(t)
	_, err := f.svc.TogglePass(ctx, id, mainID, passMain)
	require.NoError(t, err)

	quote := domain.Quote{SubtotalCents: 50000, CreditCents: 1000, TotalCents: 49000}
	f.oracle.On("Preview", mock.Anything, mock.MatchedBy(func(req oracle.PaymentRequest) bool {
		return req.ApplicationID == appID && len(req.Products) == 1 &&
			req.Products[0].ProductID == passMain && req.Products[0].AttendeeID == mainID
	})).Return(quote, nil).Once()

	view, err := f.svc.PreviewPayment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cart.PricingConfirmed, view.Pricing.Status)
	require.NotNil(t, view.Pricing.Confirmed)
	assert.Equal(t, int64(49000), view.PayableCents)
	assert.Equal(t, int64(50000), view.Summary.GrandTotalCents)
}

func TestPreviewPaymentRequiresPass(t *testing.T) {
	f := newFixture(t)
	id := f.open(t)

	_, err := f.svc.PreviewPayment(context.Background(), id)
	assert.ErrorIs(t, err, cart.ErrNoPassesSelected)
	f.oracle.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything)
}

func TestPreviewPaymentFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.open(t)
	before, err := f.svc.TogglePass(ctx, id, mainID, passMain)
	require.NoError(t, err)

	f.oracle.On("Preview", mock.Anything, mock.Anything).
		Return(domain.Quote{}, &oracle.TransportError{Op: "preview", StatusCode: 503, Err: errors.New("bad gateway")}).Once()

	view, err := f.svc.PreviewPayment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cart.PricingFailed, view.Pricing.Status)
	assert.Equal(t, "pricing is temporarily unavailable", view.Pricing.Failure)
	assert.Equal(t, before.Summary, view.Summary)
	assert.Equal(t, before.Passes, view.Passes)
	assert.Equal(t, int64(50000), view.PayableCents)
}

func TestPreviewPaymentDropsStaleQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.open(t)
	_, err := f.svc.TogglePass(ctx, id, mainID, passMain)
	require.NoError(t, err)

	f.oracle.On("Preview", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			_, err := f.svc.UpdateMerchQuantity(context.Background(), id, merchMug, 1)
			assert.NoError(t, err)
		}).
		Return(domain.Quote{TotalCents: 1}, nil).Once()

	view, err := f.svc.PreviewPayment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cart.PricingEstimated, view.Pricing.Status)
	assert.Nil(t, view.Pricing.Confirmed)
	assert.Equal(t, int64(51200), view.PayableCents)
}

func TestPreviewPaymentCallerGone(t *testing.T) {
	f := newFixture(t)
	id := f.open(t)
	_, err := f.svc.TogglePass(context.Background(), id, mainID, passMain)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	f.oracle.On("Preview", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(domain.Quote{TotalCents: 1}, nil).Once()

	_, err = f.svc.PreviewPayment(ctx, id)
	assert.ErrorIs(t, err, context.Canceled)

	view, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, cart.PricingEstimated, view.Pricing.Status)
}

func TestSubmitPaymentPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.atConfirm(t)

	f.oracle.On("CreatePayment", mock.Anything, mock.MatchedBy(func(req oracle.PaymentRequest) bool {
		return req.AmountCents == 50000 && req.ApplicationID == appID && !req.EditPasses
	})).Return(oracle.Payment{ID: 9, Status: oracle.StatusPending, CheckoutURL: "https://pay.example/x", AmountCents: 50000}, nil).Once()

	res, err := f.svc.SubmitPayment(ctx, id, returnURL)
	require.NoError(t, err)
	assert.Equal(t, oracle.StatusPending, res.Status)
	assert.Equal(t, int64(9), res.PaymentID)
	assert.False(t, res.Completed)
	assert.Equal(t, "https://pay.example/x?redirect_url="+url.QueryEscape(returnURL), res.RedirectURL)
	assert.Equal(t, cart.StepConfirm, res.Checkout.Step, "success waits for the processor return")
	require.NotNil(t, res.Checkout.LastPayment)
	assert.Equal(t, int64(9), res.Checkout.LastPayment.ID)
	assert.Equal(t, []string{events.TypePaymentCreated}, f.published.types())

	again, err := f.svc.SubmitPayment(ctx, id, returnURL)
	require.NoError(t, err)
	assert.Equal(t, res.RedirectURL, again.RedirectURL, "unchanged cart reuses the pending payment")
	assert.Equal(t, int64(9), again.PaymentID)
}

func TestSubmitPaymentApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.atConfirm(t)

	f.oracle.On("CreatePayment", mock.Anything, mock.Anything).
		Return(oracle.Payment{ID: 10, Status: oracle.StatusApproved, AmountCents: 0}, nil).Once()

	res, err := f.svc.SubmitPayment(ctx, id, returnURL)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Empty(t, res.RedirectURL)
	assert.Equal(t, cart.StepSuccess, res.Checkout.Step)
	assert.Empty(t, res.Checkout.Passes)
	assert.Equal(t, []string{events.TypePaymentCreated, events.TypeCompleted}, f.published.types())

	_, err = f.svc.Next(ctx, id)
	assert.ErrorIs(t, err, cart.ErrTerminalStep)
}

func TestSubmitPaymentUnrecognizedStatus(t *testing.T) {
	for _, p := range []oracle.Payment{
		{ID: 11, Status: "failed"},
		{ID: 12, Status: oracle.StatusPending},
	} {
		t.Run(p.Status, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			id := f.atConfirm(t)

			f.oracle.On("CreatePayment", mock.Anything, mock.Anything).Return(p, nil).Once()

			_, err := f.svc.SubmitPayment(ctx, id, returnURL)
			assert.ErrorIs(t, err, ErrUnrecognizedPaymentStatus)

			view, err := f.svc.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, cart.StepConfirm, view.Step)
			assert.Len(t, view.Passes, 1)
			assert.Empty(t, f.published.types())
		})
	}
}

func TestSubmitPaymentIgnoresStaleApproval(t *testing.T) {
	for _, p := range []oracle.Payment{
		{ID: 13, Status: oracle.StatusApproved, AmountCents: 50000},
		{ID: 14, Status: oracle.StatusPending, CheckoutURL: "https://pay.example/x", AmountCents: 50000},
	} {
		t.Run(p.Status, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			id := f.atConfirm(t)

			f.oracle.On("CreatePayment", mock.Anything, mock.Anything).
				Run(func(mock.Arguments) {
					_, err := f.svc.TogglePass(ctx, id, kidID, passKid)
					require.NoError(t, err)
				}).
				Return(p, nil).Once()

			_, err := f.svc.SubmitPayment(ctx, id, returnURL)
			assert.ErrorIs(t, err, ErrCheckoutChanged)

			view, err := f.svc.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, cart.StepConfirm, view.Step)
			assert.Len(t, view.Passes, 2, "the pass added mid-flight is kept")
			assert.Nil(t, view.LastPayment)
			assert.Empty(t, f.published.types())

			res, err := f.svc.CompleteReturn(ctx, id, "https://village.example/checkout?checkout=success")
			require.NoError(t, err)
			assert.False(t, res.Completed)
		})
	}
}

func TestUnrecognizedPendingNeverCompletesOnReturn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.atConfirm(t)

	f.oracle.On("CreatePayment", mock.Anything, mock.Anything).
		Return(oracle.Payment{ID: 15, Status: oracle.StatusPending}, nil).Once()

	_, err := f.svc.SubmitPayment(ctx, id, returnURL)
	require.ErrorIs(t, err, ErrUnrecognizedPaymentStatus)

	res, err := f.svc.CompleteReturn(ctx, id, "https://village.example/checkout?checkout=success")
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Equal(t, cart.StepConfirm, res.Checkout.Step)
	assert.Nil(t, res.Checkout.LastPayment)
}

func TestSubmitPaymentOracleFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.atConfirm(t)

	f.oracle.On("CreatePayment", mock.Anything, mock.Anything).
		Return(oracle.Payment{}, &oracle.RejectedError{Op: "payment", StatusCode: 422, Message: "pass sold out"}).Once()

	_, err := f.svc.SubmitPayment(ctx, id, returnURL)
	require.Error(t, err)
	assert.True(t, IsOracleRejection(err))
	assert.Equal(t, "pass sold out", oracle.Message(err))

	view, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cart.StepConfirm, view.Step)
	assert.Len(t, view.Passes, 1)
	assert.Nil(t, view.LastPayment)
}

func TestSubmitPaymentGuards(t *testing.T) {
	t.Run("not at confirm", func(t *testing.T) {
		f := newFixture(t)
		id := f.open(t)
		_, err := f.svc.TogglePass(context.Background(), id, mainID, passMain)
		require.NoError(t, err)

		_, err = f.svc.SubmitPayment(context.Background(), id, returnURL)
		assert.ErrorIs(t, err, ErrNotAtConfirm)
	})

	t.Run("relative return url", func(t *testing.T) {
		f := newFixture(t)
		id := f.atConfirm(t)
		_, err := f.svc.SubmitPayment(context.Background(), id, "/checkout")
		assert.ErrorIs(t, err, ErrInvalidReturnURL)
	})

	t.Run("missing return url", func(t *testing.T) {
		f := newFixture(t)
		id := f.atConfirm(t)
		_, err := f.svc.SubmitPayment(context.Background(), id, "")
		assert.ErrorIs(t, err, ErrInvalidReturnURL)
	})

	t.Run("submission in progress", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		id := f.atConfirm(t)
		locked, err := f.idem.TryLock(ctx, submitScope, id.String())
		require.NoError(t, err)
		require.True(t, locked)

		_, err = f.svc.SubmitPayment(ctx, id, returnURL)
		assert.ErrorIs(t, err, ErrSubmitInProgress)
	})
}

func TestCompleteReturn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.atConfirm(t)

	f.oracle.On("CreatePayment", mock.Anything, mock.Anything).
		Return(oracle.Payment{ID: 9, Status: oracle.StatusPending, CheckoutURL: "https://pay.example/x"}, nil).Once()
	_, err := f.svc.SubmitPayment(ctx, id, returnURL)
	require.NoError(t, err)

	raw := "https://village.example/checkout?checkout=success&city=lisbon"
	res, err := f.svc.CompleteReturn(ctx, id, raw)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, "https://village.example/checkout?city=lisbon", res.URL)
	assert.Equal(t, cart.StepSuccess, res.Checkout.Step)
	assert.Equal(t, oracle.StatusApproved, res.Checkout.LastPayment.Status)

	replay, err := f.svc.CompleteReturn(ctx, id, raw)
	require.NoError(t, err)
	assert.False(t, replay.Completed)
	assert.Equal(t, cart.StepSuccess, replay.Checkout.Step)
	assert.Equal(t, []string{events.TypePaymentCreated, events.TypeCompleted}, f.published.types())
}

func TestCompleteReturnWithoutPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.atConfirm(t)

	res, err := f.svc.CompleteReturn(ctx, id, "https://village.example/checkout?checkout=success")
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Equal(t, "https://village.example/checkout", res.URL)
	assert.Equal(t, cart.StepConfirm, res.Checkout.Step)

	res, err = f.svc.CompleteReturn(ctx, id, "https://village.example/checkout?city=lisbon")
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Equal(t, "https://village.example/checkout?city=lisbon", res.URL)
}
