package checkout

import (
	"strings"
)

// PromoStatus is the position of the promo code sub-flow.
type PromoStatus string

const (
	PromoIdle       PromoStatus = "idle"
	PromoValidating PromoStatus = "validating"
	PromoApplied    PromoStatus = "applied"
	PromoRejected   PromoStatus = "rejected"
)

// PromoFailure tells an invalid code apart from an oracle that could not answer.
type PromoFailure string

const (
	PromoInvalid     PromoFailure = "invalid"
	PromoUnavailable PromoFailure = "unavailable"
)

// Promo holds the committed code (what the summary uses) separately from
// the last validation attempt.
type Promo struct {
	Code          string       `json:"code,omitempty"`
	Valid         bool         `json:"valid"`
	DiscountCents int64        `json:"discountCents"`
	Status        PromoStatus  `json:"status"`
	PendingCode   string       `json:"pendingCode,omitempty"`
	Failure       PromoFailure `json:"failure,omitempty"`
	Message       string       `json:"message,omitempty"`
	pendingSeq    uint64
}

// NormalizePromoCode trims and upper-cases a code.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidPromoFormat rejects codes that should never be sent to the oracle.
func ValidPromoFormat(code string) bool {
	if code == "" || len(code) > 64 {
		return false
	}
	for _, r := range code {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// BeginPromo starts validating code. The committed promo is left alone until
// CompletePromo or FailPromo is called with the returned token.
func (c *Cart) BeginPromo(code string) (Token, error) {
	code = NormalizePromoCode(code)
	if !ValidPromoFormat(code) {
		return Token{}, ErrInvalidPromoFormat
	}
	tok := c.nextToken()
	c.promo.Status = PromoValidating
	c.promo.PendingCode = code
	c.promo.Failure = ""
	c.promo.Message = ""
	c.promo.pendingSeq = tok.Seq
	return tok, nil
}

// CompletePromo commits an oracle-approved discount. A token superseded by a
// newer attempt or a clear is ignored and false is returned. The discount
// replaces any previous one, so re-applying the same code is idempotent.
func (c *Cart) CompletePromo(tok Token, discountCents int64) bool {
	if tok.Seq == 0 || tok.Seq != c.promo.pendingSeq {
		return false
	}
	if discountCents < 0 {
		discountCents = 0
	}
	c.promo.Code = c.promo.PendingCode
	c.promo.Valid = true
	c.promo.DiscountCents = discountCents
	c.promo.Status = PromoApplied
	c.promo.PendingCode = ""
	c.promo.pendingSeq = 0
	c.touch()
	return true
}

// FailPromo records a rejected attempt without touching the committed promo.
func (c *Cart) FailPromo(tok Token, failure PromoFailure, message string) bool {
	if tok.Seq == 0 || tok.Seq != c.promo.pendingSeq {
		return false
	}
	c.promo.Status = PromoRejected
	c.promo.Failure = failure
	c.promo.Message = message
	c.promo.PendingCode = ""
	c.promo.pendingSeq = 0
	return true
}

// ClearPromoCode drops the committed code and abandons any in-flight attempt.
func (c *Cart) ClearPromoCode() {
	c.promo = Promo{Status: PromoIdle}
	c.touch()
}

// Promo returns a copy of the promo state.
func (c *Cart) Promo() Promo {
	return c.promo
}
