package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cart "popup-checkout/internal/checkout"
	"popup-checkout/internal/events"
	"popup-checkout/internal/oracle"
	"popup-checkout/internal/repository/session"
)

const (
	submitScope  = "submit"
	paymentScope = "payment"
)

func paymentRequest(sess *session.Session) oracle.PaymentRequest {
	c := sess.Cart
	return oracle.PaymentRequest{
		ApplicationID: sess.ApplicationID,
		Products:      c.ProductList(),
		CouponCode:    c.PromoCode(),
		Insurance:     c.InsuranceEnabled(),
		EditPasses:    c.EditMode(),
		AmountCents:   c.PayableCents(),
	}
}

// ApplyPromoCode validates code with the oracle and commits the discount.
// It reports whether the code is now applied. An invalid format is returned
// as an error and never reaches the oracle; oracle refusals and outages are
// recorded on the promo state and reported as false.
func (s *Service) ApplyPromoCode(ctx context.Context, id uuid.UUID, code string) (bool, *View, error) {
	var (
		tok    cart.Token
		cityID int64
	)
	code = cart.NormalizePromoCode(code)
	if _, err := s.mutate(ctx, id, func(sess *session.Session) error {
		var err error
		tok, err = sess.Cart.BeginPromo(code)
		cityID = sess.PopupCityID
		return err
	}); err != nil {
		return false, nil, err
	}

	coupon, oerr := s.oracle.ValidateCoupon(ctx, code, cityID)

	applied := false
	view, err := s.mutate(context.WithoutCancel(ctx), id, func(sess *session.Session) error {
		switch {
		case oerr == nil:
			applied = sess.Cart.CompletePromo(tok, coupon.DiscountCents)
		case oracle.IsRejected(oerr):
			msg := oracle.Message(oerr)
			if msg == "" {
				msg = "promo code is not valid"
			}
			sess.Cart.FailPromo(tok, cart.PromoInvalid, msg)
		default:
			sess.Cart.FailPromo(tok, cart.PromoUnavailable, "promo code could not be checked, please try again")
		}
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	if oerr != nil {
		s.logger.Info("promo code not applied", zap.String("session_id", id.String()), zap.String("code", code), zap.Error(oerr))
	}
	return applied, view, nil
}

// PreviewPayment asks the oracle for the authoritative total. Oracle failures
// end in the failed pricing state and are not returned as errors; a caller
// that goes away abandons the preview.
func (s *Service) PreviewPayment(ctx context.Context, id uuid.UUID) (*View, error) {
	var (
		tok cart.Token
		req oracle.PaymentRequest
	)
	if _, err := s.mutate(ctx, id, func(sess *session.Session) error {
		if len(sess.Cart.Passes()) == 0 {
			return cart.ErrNoPassesSelected
		}
		tok = sess.Cart.BeginPreview()
		req = paymentRequest(sess)
		return nil
	}); err != nil {
		return nil, err
	}

	quote, oerr := s.oracle.Preview(ctx, req)
	if ctx.Err() != nil {
		_, _ = s.mutate(context.WithoutCancel(ctx), id, func(sess *session.Session) error {
			sess.Cart.CancelPreview(tok)
			return nil
		})
		return nil, ctx.Err()
	}

	return s.mutate(ctx, id, func(sess *session.Session) error {
		if oerr == nil {
			if !sess.Cart.CompletePreview(tok, quote) {
				s.logger.Debug("stale preview dropped", zap.String("session_id", id.String()))
			}
			return nil
		}
		reason := "pricing is temporarily unavailable"
		if oracle.IsRejected(oerr) {
			if reason = oracle.Message(oerr); reason == "" {
				reason = "pricing request was rejected"
			}
		}
		s.logger.Warn("preview failed", zap.String("session_id", id.String()), zap.Error(oerr))
		sess.Cart.FailPreview(tok, reason)
		return nil
	})
}

// SubmitResult describes what the client should do after a submission.
type SubmitResult struct {
	Status      string `json:"status"`
	PaymentID   int64  `json:"paymentId"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Completed   bool   `json:"completed"`
	Checkout    *View  `json:"checkout"`
}

// SubmitPayment creates a payment for the current selection. A pending
// payment yields a redirect to the processor that returns to returnURL; an
// approved one completes the checkout. Any other status is an error and the
// cart is left as it was. A cart edited while the payment was being created
// is never completed by that payment.
func (s *Service) SubmitPayment(ctx context.Context, id uuid.UUID, returnURL string) (*SubmitResult, error) {
	if u, err := url.Parse(returnURL); returnURL == "" || err != nil || !u.IsAbs() {
		return nil, ErrInvalidReturnURL
	}

	locked, err := s.idem.TryLock(ctx, submitScope, id.String())
	if err != nil {
		return nil, fmt.Errorf("lock submission: %w", err)
	}
	if !locked {
		return nil, ErrSubmitInProgress
	}
	defer func() {
		if err := s.idem.Unlock(context.WithoutCancel(ctx), submitScope, id.String()); err != nil {
			s.logger.Warn("release submit lock", zap.String("session_id", id.String()), zap.Error(err))
		}
	}()

	unlock := s.locks.Lock(id)
	sess, err := s.sessions.Get(ctx, id)
	unlock()
	if err != nil {
		return nil, err
	}
	if sess.Cart.Step() != cart.StepConfirm {
		return nil, ErrNotAtConfirm
	}
	if len(sess.Cart.Passes()) == 0 {
		return nil, cart.ErrNoPassesSelected
	}

	revision := sess.Cart.Revision()
	replayKey := fmt.Sprintf("%s:%d", id, revision)
	if ref, ok := s.recallPayment(ctx, replayKey); ok && ref.Status == oracle.StatusPending {
		return &SubmitResult{
			Status:      ref.Status,
			PaymentID:   ref.ID,
			RedirectURL: processorURL(ref.CheckoutURL, returnURL),
			Checkout:    newView(sess),
		}, nil
	}

	payment, err := s.oracle.CreatePayment(ctx, paymentRequest(sess))
	if err != nil {
		s.logger.Warn("create payment failed", zap.String("session_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("create payment: %w", err)
	}

	ref := &session.PaymentRef{
		ID:          payment.ID,
		Status:      payment.Status,
		CheckoutURL: payment.CheckoutURL,
		AmountCents: payment.AmountCents,
	}
	recognized := payment.Status == oracle.StatusApproved ||
		(payment.Status == oracle.StatusPending && payment.CheckoutURL != "")
	if !recognized {
		s.logger.Error("unrecognized payment status",
			zap.String("session_id", id.String()),
			zap.Int64("payment_id", payment.ID),
			zap.String("status", payment.Status))
		return nil, fmt.Errorf("%w: %q", ErrUnrecognizedPaymentStatus, payment.Status)
	}

	var saved *session.Session
	view, err := s.mutate(context.WithoutCancel(ctx), id, func(cur *session.Session) error {
		if cur.Cart.Revision() != revision {
			return ErrCheckoutChanged
		}
		cur.LastPayment = ref
		if payment.Status == oracle.StatusApproved {
			cur.Cart.MarkSuccess()
		}
		saved = cur
		return nil
	})
	if errors.Is(err, ErrCheckoutChanged) {
		s.logger.Error("payment created for a stale checkout",
			zap.String("session_id", id.String()),
			zap.Int64("payment_id", payment.ID),
			zap.String("status", payment.Status),
			zap.Uint64("revision", revision))
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, saved, events.TypePaymentCreated, ref)
	s.logger.Info("payment created",
		zap.String("session_id", id.String()),
		zap.Int64("payment_id", payment.ID),
		zap.String("status", payment.Status),
		zap.Int64("amount_cents", payment.AmountCents))

	res := &SubmitResult{Status: payment.Status, PaymentID: payment.ID, Checkout: view}
	if payment.Status == oracle.StatusApproved {
		res.Completed = true
		s.publish(ctx, saved, events.TypeCompleted, ref)
		return res, nil
	}
	res.RedirectURL = processorURL(payment.CheckoutURL, returnURL)
	s.rememberPayment(ctx, replayKey, ref)
	return res, nil
}

// processorURL appends the return address to the processor checkout URL.
func processorURL(checkoutURL, returnURL string) string {
	u, err := url.Parse(checkoutURL)
	if err != nil {
		return checkoutURL
	}
	q := u.Query()
	q.Set("redirect_url", returnURL)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Service) rememberPayment(ctx context.Context, key string, ref *session.PaymentRef) {
	raw, err := json.Marshal(ref)
	if err == nil {
		err = s.idem.Remember(ctx, paymentScope, key, string(raw))
	}
	if err != nil {
		s.logger.Warn("remember payment", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) recallPayment(ctx context.Context, key string) (*session.PaymentRef, bool) {
	raw, found, err := s.idem.Recall(ctx, paymentScope, key)
	if err != nil || !found {
		return nil, false
	}
	var ref session.PaymentRef
	if err := json.Unmarshal([]byte(raw), &ref); err != nil {
		return nil, false
	}
	return &ref, true
}

// ReturnResult is the outcome of a return from the payment processor.
type ReturnResult struct {
	Completed bool   `json:"completed"`
	URL       string `json:"url"`
	Checkout  *View  `json:"checkout"`
}

// CompleteReturn handles the processor's return. A checkout=success query
// parameter completes a checkout with a pending payment; URL is rawURL with
// that parameter removed so reloading it cannot complete anything again.
func (s *Service) CompleteReturn(ctx context.Context, id uuid.UUID, rawURL string) (*ReturnResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, ErrInvalidReturnURL
	}
	q := u.Query()
	success := q.Get("checkout") == "success"
	q.Del("checkout")
	u.RawQuery = q.Encode()
	res := &ReturnResult{URL: u.String()}

	if !success {
		view, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		res.Checkout = view
		return res, nil
	}

	var saved *session.Session
	view, err := s.mutate(ctx, id, func(sess *session.Session) error {
		if sess.Cart.Step() == cart.StepSuccess || sess.LastPayment == nil || sess.LastPayment.Status != oracle.StatusPending {
			return nil
		}
		sess.Cart.MarkSuccess()
		sess.LastPayment.Status = oracle.StatusApproved
		saved = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Checkout = view
	if saved != nil {
		res.Completed = true
		s.publish(ctx, saved, events.TypeCompleted, saved.LastPayment)
		s.logger.Info("checkout completed on return", zap.String("session_id", id.String()))
	}
	return res, nil
}

// IsOracleRejection and IsOracleUnavailable classify errors for transports.
func IsOracleRejection(err error) bool { return oracle.IsRejected(err) }

func IsOracleUnavailable(err error) bool {
	return oracle.IsTransport(err) && !errors.Is(err, context.Canceled)
}
