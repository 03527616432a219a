package checkout

import "popup-checkout/internal/domain"

// PricingStatus says which price is authoritative right now.
type PricingStatus string

const (
	PricingEstimated  PricingStatus = "estimated"
	PricingPreviewing PricingStatus = "previewing"
	PricingConfirmed  PricingStatus = "confirmed"
	PricingFailed     PricingStatus = "failed"
)

// Token ties an asynchronous oracle response to the request that produced it.
type Token struct {
	Seq      uint64 `json:"seq"`
	Revision uint64 `json:"revision"`
}

// Pricing keeps the oracle quote apart from the local estimate.
type Pricing struct {
	Status     PricingStatus `json:"status"`
	Confirmed  *domain.Quote `json:"confirmed,omitempty"`
	Failure    string        `json:"failure,omitempty"`
	pendingSeq uint64
}

// BeginPreview marks a preview request in flight for the current revision.
func (c *Cart) BeginPreview() Token {
	tok := c.nextToken()
	c.pricing.Status = PricingPreviewing
	c.pricing.Failure = ""
	c.pricing.pendingSeq = tok.Seq
	return tok
}

// CompletePreview stores the oracle quote when tok is still current: no newer
// preview was started and the cart has not changed since.
func (c *Cart) CompletePreview(tok Token, q domain.Quote) bool {
	if !c.previewCurrent(tok) {
		return false
	}
	c.pricing.Status = PricingConfirmed
	c.pricing.Confirmed = &q
	c.pricing.Failure = ""
	c.pricing.pendingSeq = 0
	return true
}

// FailPreview surfaces an oracle failure. Local cart state is untouched.
func (c *Cart) FailPreview(tok Token, reason string) bool {
	if !c.previewCurrent(tok) {
		return false
	}
	c.pricing.Status = PricingFailed
	c.pricing.Confirmed = nil
	c.pricing.Failure = reason
	c.pricing.pendingSeq = 0
	return true
}

// CancelPreview drops an in-flight preview whose caller went away, so the
// cart never stays in the previewing state.
func (c *Cart) CancelPreview(tok Token) bool {
	if !c.previewCurrent(tok) {
		return false
	}
	c.abandonPreview()
	return true
}

func (c *Cart) previewCurrent(tok Token) bool {
	return tok.Seq != 0 && tok.Seq == c.pricing.pendingSeq && tok.Revision == c.revision
}

// abandonPreview drops the confirmed quote and any in-flight preview.
func (c *Cart) abandonPreview() {
	c.pricing = Pricing{Status: PricingEstimated}
}

// Pricing returns a copy of the pricing state.
func (c *Cart) Pricing() Pricing {
	return c.pricing
}

// PayableCents is the amount a payment should be created for: the confirmed
// quote when it is current, the local estimate otherwise.
func (c *Cart) PayableCents() int64 {
	if c.pricing.Status == PricingConfirmed && c.pricing.Confirmed != nil {
		return c.pricing.Confirmed.TotalCents
	}
	return c.summary.GrandTotalCents
}
