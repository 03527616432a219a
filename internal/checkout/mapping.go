package checkout

import "popup-checkout/internal/domain"

// PurchaserID is the attendee that housing, merch and patron lines are
// attributed to: the attendee of the first selected pass, or the primary
// applicant when no pass is selected.
func (c *Cart) PurchaserID() int64 {
	if len(c.passes) > 0 {
		return c.passes[0].AttendeeID
	}
	return c.primaryID
}

// ProductList maps the selection to the product list the pricing oracle
// expects for both preview and payment creation.
func (c *Cart) ProductList() []domain.PaymentProduct {
	out := make([]domain.PaymentProduct, 0, c.summary.ItemCount)
	for _, p := range c.passes {
		out = append(out, domain.PaymentProduct{
			ProductID:  p.ProductID,
			AttendeeID: p.AttendeeID,
			Quantity:   p.Quantity,
		})
	}
	purchaser := c.PurchaserID()
	if c.housing != nil {
		out = append(out, domain.PaymentProduct{
			ProductID:  c.housing.ProductID,
			AttendeeID: purchaser,
			Quantity:   c.housing.Nights,
		})
	}
	for _, m := range c.merch {
		out = append(out, domain.PaymentProduct{
			ProductID:  m.ProductID,
			AttendeeID: purchaser,
			Quantity:   m.Quantity,
		})
	}
	if c.patron != nil {
		pp := domain.PaymentProduct{ProductID: c.patron.ProductID, AttendeeID: purchaser, Quantity: 1}
		if p, ok := c.catalog.Product(c.patron.ProductID); ok && p.VariablePrice() {
			amount := c.patron.AmountCents
			pp.CustomAmountCents = &amount
		}
		out = append(out, pp)
	}
	return out
}

// PromoCode is the committed code to send along with a payment request.
func (c *Cart) PromoCode() string {
	if !c.promo.Valid {
		return ""
	}
	return c.promo.Code
}
