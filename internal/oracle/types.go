package oracle

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"popup-checkout/internal/domain"
)

// Payment statuses reported by the oracle. Anything else is unrecognised.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// Coupon is a validated promo code.
type Coupon struct {
	Code          string
	DiscountCents int64
	Message       string
}

// PaymentRequest is the body shared by preview and payment creation.
type PaymentRequest struct {
	ApplicationID int64
	Products      []domain.PaymentProduct
	CouponCode    string
	Insurance     bool
	EditPasses    bool
	// AmountCents is only sent when creating a payment.
	AmountCents int64
}

// Payment is the oracle's answer to a payment creation.
type Payment struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkoutUrl,omitempty"`
	AmountCents int64  `json:"amountCents"`
}

type couponResponse struct {
	DiscountValue decimal.Decimal `json:"discount_value"`
	Message       string          `json:"message"`
}

type wireProduct struct {
	ProductID    int64       `json:"product_id"`
	AttendeeID   int64       `json:"attendee_id"`
	Quantity     int         `json:"quantity"`
	CustomAmount json.Number `json:"custom_amount,omitempty"`
}

type wirePaymentRequest struct {
	ApplicationID int64         `json:"application_id"`
	Products      []wireProduct `json:"products"`
	CouponCode    string        `json:"coupon_code,omitempty"`
	Insurance     bool          `json:"insurance,omitempty"`
	EditPasses    bool          `json:"edit_passes,omitempty"`
	Amount        json.Number   `json:"amount,omitempty"`
}

type wireQuoteItem struct {
	ProductID  int64           `json:"product_id"`
	AttendeeID int64           `json:"attendee_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Total      decimal.Decimal `json:"total"`
}

type wirePreviewResponse struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Credit          decimal.Decimal `json:"credit"`
	Total           decimal.Decimal `json:"total"`
	InsuranceAmount decimal.Decimal `json:"insurance_amount"`
	Items           []wireQuoteItem `json:"items"`
}

type wirePaymentResponse struct {
	ID          int64           `json:"id"`
	Status      string          `json:"status"`
	CheckoutURL string          `json:"checkout_url"`
	Amount      decimal.Decimal `json:"amount"`
}

// errorBody covers the error payload shapes the oracle is known to return.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

var hundred = decimal.NewFromInt(100)

// ToCents converts a currency amount to integer cents, rounding half away from zero.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromCents renders cents as a JSON number in currency units.
func FromCents(cents int64) json.Number {
	return json.Number(decimal.New(cents, -2).StringFixed(2))
}

func toWireRequest(in PaymentRequest, withAmount bool) wirePaymentRequest {
	out := wirePaymentRequest{
		ApplicationID: in.ApplicationID,
		Products:      make([]wireProduct, 0, len(in.Products)),
		CouponCode:    in.CouponCode,
		Insurance:     in.Insurance,
		EditPasses:    in.EditPasses,
	}
	for _, p := range in.Products {
		wp := wireProduct{ProductID: p.ProductID, AttendeeID: p.AttendeeID, Quantity: p.Quantity}
		if p.CustomAmountCents != nil {
			wp.CustomAmount = FromCents(*p.CustomAmountCents)
		}
		out.Products = append(out.Products, wp)
	}
	if withAmount {
		out.Amount = FromCents(in.AmountCents)
	}
	return out
}

func (r wirePreviewResponse) quote() domain.Quote {
	q := domain.Quote{
		SubtotalCents:  ToCents(r.Subtotal),
		DiscountCents:  ToCents(r.Discount),
		CreditCents:    ToCents(r.Credit),
		InsuranceCents: ToCents(r.InsuranceAmount),
		TotalCents:     ToCents(r.Total),
		Items:          make([]domain.QuoteItem, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		q.Items = append(q.Items, domain.QuoteItem{
			ProductID:      it.ProductID,
			AttendeeID:     it.AttendeeID,
			Quantity:       it.Quantity,
			UnitPriceCents: ToCents(it.UnitPrice),
			TotalCents:     ToCents(it.Total),
		})
	}
	return q
}
