package checkout

import (
	"strconv"
	"strings"

	"popup-checkout/internal/domain"
)

// MaxPatronAmountCents caps a single contribution.
const MaxPatronAmountCents int64 = 1_000_000_000

// patronMinimum is the smallest accepted contribution for a patron product.
func patronMinimum(p domain.Product) int64 {
	if p.MinPriceCents != nil {
		return *p.MinPriceCents
	}
	return p.PriceCents
}

// SetPatronAmount commits a contribution. Amounts below the product minimum
// are not committed and false is returned.
func (c *Cart) SetPatronAmount(productID, amountCents int64, isCustom bool) bool {
	p, ok := c.catalog.Offered(productID, domain.CategoryPatron)
	if !ok || amountCents < patronMinimum(p) {
		return false
	}
	if c.patron != nil && *c.patron == (PatronItem{ProductID: p.ID, AmountCents: amountCents, IsCustom: isCustom}) {
		return true
	}
	c.patron = &PatronItem{ProductID: p.ID, AmountCents: amountCents, IsCustom: isCustom}
	c.touch()
	return true
}

// SelectPatronPreset behaves like a checkbox: choosing the preset that is
// already active clears the contribution.
func (c *Cart) SelectPatronPreset(productID, amountCents int64) error {
	if c.patron != nil && !c.patron.IsCustom &&
		c.patron.ProductID == productID && c.patron.AmountCents == amountCents {
		c.ClearPatron()
		return nil
	}
	if _, ok := c.catalog.Offered(productID, domain.CategoryPatron); !ok {
		return ErrUnknownProduct
	}
	if !c.SetPatronAmount(productID, amountCents, false) {
		return ErrPatronBelowMinimum
	}
	return nil
}

// SetPatronCustomAmount parses a whole-unit amount typed by the user.
func (c *Cart) SetPatronCustomAmount(productID int64, raw string) error {
	units, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || units < 0 || units > MaxPatronAmountCents/100 {
		return ErrInvalidAmount
	}
	if _, ok := c.catalog.Offered(productID, domain.CategoryPatron); !ok {
		return ErrUnknownProduct
	}
	if !c.SetPatronAmount(productID, units*100, true) {
		return ErrPatronBelowMinimum
	}
	return nil
}

// ClearPatron removes the contribution.
func (c *Cart) ClearPatron() {
	c.patron = nil
	c.touch()
}
