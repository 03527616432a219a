// Package checkout holds the cart aggregate of the purchase wizard: selection
// state, the derived price summary, step navigation and the promo and
// pricing sub-states that wait on the pricing oracle.
//
// A Cart is owned by a single checkout session. Every mutation goes through
// its methods, which bump the revision and recompute the summary.
package checkout

import (
	"time"

	"popup-checkout/internal/domain"
)

type Cart struct {
	catalog   *Catalog
	app       domain.Application
	primaryID int64

	passes    []PassItem
	housing   *HousingItem
	merch     []MerchItem
	patron    *PatronItem
	promo     Promo
	insurance bool

	editMode   bool
	editCredit int64

	step     Step
	pricing  Pricing
	revision uint64
	seq      uint64
	summary  Summary
}

// New creates an empty cart for an application.
func New(catalog *Catalog, app domain.Application) *Cart {
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	c := &Cart{
		catalog: catalog,
		app:     app,
		step:    StepPasses,
		promo:   Promo{Status: PromoIdle},
		pricing: Pricing{Status: PricingEstimated},
	}
	if primary, ok := app.PrimaryAttendee(); ok {
		c.primaryID = primary.ID
	}
	c.recompute()
	return c
}

// NewForEdit creates a cart pre-populated with the passes the attendees
// already own. Those items carry the Edit marker and their paid value is
// credited against the new total.
func NewForEdit(catalog *Catalog, app domain.Application) *Cart {
	c := New(catalog, app)
	c.editMode = true
	for _, at := range app.Attendees {
		for _, owned := range at.Products {
			p, ok := c.catalog.Product(owned.ProductID)
			if !ok || p.Category != domain.CategoryPass {
				continue
			}
			qty := owned.Quantity
			if qty <= 0 {
				qty = 1
			}
			c.passes = append(c.passes, PassItem{
				ProductID:      p.ID,
				AttendeeID:     at.ID,
				Quantity:       qty,
				UnitPriceCents: owned.PriceCents,
				Edit:           true,
			})
			c.editCredit += owned.PriceCents * int64(qty)
		}
	}
	c.recompute()
	return c
}

func (c *Cart) touch() {
	c.revision++
	c.abandonPreview()
	c.recompute()
}

func (c *Cart) recompute() {
	ins := insuranceCents(c.catalog, c.passes, c.housing, c.merch)
	c.summary = ComputeSummary(SummaryInput{
		Passes:             c.passes,
		Housing:            c.housing,
		Merch:              c.merch,
		Patron:             c.patron,
		InsuranceEnabled:   c.insurance,
		InsuranceCents:     ins,
		PromoValid:         c.promo.Valid,
		PromoDiscountCents: c.promo.DiscountCents,
		AccountCreditCents: c.app.CreditCents,
		EditCreditCents:    c.editCredit,
	})
}

func (c *Cart) nextToken() Token {
	c.seq++
	return Token{Seq: c.seq, Revision: c.revision}
}

// Summary returns the locally estimated summary.
func (c *Cart) Summary() Summary {
	return c.summary
}

// Revision increases on every mutation that can change the price.
func (c *Cart) Revision() uint64 {
	return c.revision
}

func (c *Cart) Application() domain.Application {
	return c.app
}

func (c *Cart) Catalog() *Catalog {
	return c.catalog
}

func (c *Cart) EditMode() bool {
	return c.editMode
}

func (c *Cart) Passes() []PassItem {
	return append([]PassItem(nil), c.passes...)
}

func (c *Cart) Housing() *HousingItem {
	if c.housing == nil {
		return nil
	}
	h := *c.housing
	return &h
}

func (c *Cart) Merch() []MerchItem {
	return append([]MerchItem(nil), c.merch...)
}

func (c *Cart) Patron() *PatronItem {
	if c.patron == nil {
		return nil
	}
	p := *c.patron
	return &p
}

func (c *Cart) InsuranceEnabled() bool {
	return c.insurance
}

func (c *Cart) passIndex(attendeeID, productID int64) int {
	for i, p := range c.passes {
		if p.AttendeeID == attendeeID && p.ProductID == productID {
			return i
		}
	}
	return -1
}

// eligiblePass resolves a pass product for an attendee. Audience mismatches,
// unknown attendees and products that are not offered all resolve to false.
func (c *Cart) eligiblePass(attendeeID, productID int64) (domain.Attendee, domain.Product, bool) {
	at, ok := c.app.Attendee(attendeeID)
	if !ok {
		return domain.Attendee{}, domain.Product{}, false
	}
	p, ok := c.catalog.Offered(productID, domain.CategoryPass)
	if !ok || !p.AppliesTo(at.Category) {
		return domain.Attendee{}, domain.Product{}, false
	}
	return at, p, true
}

func ownedPass(at domain.Attendee, productID int64) (domain.PurchasedProduct, bool) {
	for _, owned := range at.Products {
		if owned.ProductID == productID {
			return owned, true
		}
	}
	return domain.PurchasedProduct{}, false
}

func (c *Cart) newPassItem(at domain.Attendee, p domain.Product, qty int) (PassItem, bool) {
	if owned, ok := ownedPass(at, p.ID); ok {
		if !c.editMode {
			return PassItem{}, false
		}
		oq := owned.Quantity
		if oq <= 0 {
			oq = 1
		}
		return PassItem{ProductID: p.ID, AttendeeID: at.ID, Quantity: oq, UnitPriceCents: owned.PriceCents, Edit: true}, true
	}
	unit, original := passPrice(p, c.app.DiscountPercent)
	return PassItem{
		ProductID:          p.ID,
		AttendeeID:         at.ID,
		Quantity:           qty,
		UnitPriceCents:     unit,
		OriginalPriceCents: original,
	}, true
}

// TogglePass adds a pass for an attendee at quantity one, or removes it when
// already selected. Ineligible combinations are ignored.
func (c *Cart) TogglePass(attendeeID, productID int64) bool {
	if i := c.passIndex(attendeeID, productID); i >= 0 {
		c.passes = append(c.passes[:i], c.passes[i+1:]...)
		c.touch()
		return true
	}
	at, p, ok := c.eligiblePass(attendeeID, productID)
	if !ok {
		return false
	}
	item, ok := c.newPassItem(at, p, 1)
	if !ok {
		return false
	}
	c.passes = append(c.passes, item)
	c.touch()
	return true
}

// UpdatePassQuantity sets the quantity of a pass. Zero or less removes it; a
// positive quantity creates the line at the current catalog price if needed.
func (c *Cart) UpdatePassQuantity(attendeeID, productID int64, quantity int) bool {
	i := c.passIndex(attendeeID, productID)
	if quantity <= 0 {
		if i < 0 {
			return false
		}
		c.passes = append(c.passes[:i], c.passes[i+1:]...)
		c.touch()
		return true
	}
	if i >= 0 {
		if c.passes[i].Edit || c.passes[i].Quantity == quantity {
			return false
		}
		c.passes[i].Quantity = quantity
		c.touch()
		return true
	}
	at, p, ok := c.eligiblePass(attendeeID, productID)
	if !ok {
		return false
	}
	item, ok := c.newPassItem(at, p, quantity)
	if !ok {
		return false
	}
	c.passes = append(c.passes, item)
	c.touch()
	return true
}

// SelectHousing replaces the housing booking.
func (c *Cart) SelectHousing(productID int64, checkIn, checkOut time.Time) error {
	p, ok := c.catalog.Offered(productID, domain.CategoryHousing)
	if !ok {
		return ErrUnknownProduct
	}
	h := newHousingItem(p, checkIn, checkOut)
	c.housing = &h
	c.touch()
	return nil
}

// ClearHousing removes the housing booking.
func (c *Cart) ClearHousing() {
	c.housing = nil
	c.touch()
}

// UpdateMerchQuantity sets a merch line. Zero or less deletes it.
func (c *Cart) UpdateMerchQuantity(productID int64, quantity int) error {
	idx := -1
	for i, m := range c.merch {
		if m.ProductID == productID {
			idx = i
			break
		}
	}
	if quantity <= 0 {
		if idx >= 0 {
			c.merch = append(c.merch[:idx], c.merch[idx+1:]...)
			c.touch()
		}
		return nil
	}
	if idx >= 0 {
		m := &c.merch[idx]
		m.Quantity = quantity
		m.TotalCents = m.UnitPriceCents * int64(quantity)
		c.touch()
		return nil
	}
	p, ok := c.catalog.Offered(productID, domain.CategoryMerch)
	if !ok {
		return ErrUnknownProduct
	}
	c.merch = append(c.merch, MerchItem{
		ProductID:      p.ID,
		Quantity:       quantity,
		UnitPriceCents: p.PriceCents,
		TotalCents:     p.PriceCents * int64(quantity),
	})
	c.touch()
	return nil
}

// ToggleInsurance flips the insurance opt-in.
func (c *Cart) ToggleInsurance() bool {
	c.insurance = !c.insurance
	c.touch()
	return c.insurance
}

// RemoveItem drops a single line.
func (c *Cart) RemoveItem(ref ItemRef) error {
	switch ref.Kind {
	case domain.ItemPass:
		c.UpdatePassQuantity(ref.AttendeeID, ref.ProductID, 0)
	case domain.ItemHousing:
		if c.housing != nil && (ref.ProductID == 0 || c.housing.ProductID == ref.ProductID) {
			c.ClearHousing()
		}
	case domain.ItemMerch:
		return c.UpdateMerchQuantity(ref.ProductID, 0)
	case domain.ItemPatron:
		if c.patron != nil && (ref.ProductID == 0 || c.patron.ProductID == ref.ProductID) {
			c.ClearPatron()
		}
	default:
		return ErrUnknownItemKind
	}
	return nil
}

// ClearCart removes every selected line. Promo and insurance choices stay.
func (c *Cart) ClearCart() {
	c.clearSelection()
	c.touch()
}

func (c *Cart) clearSelection() {
	c.passes = nil
	c.housing = nil
	c.merch = nil
	c.patron = nil
}

// Cancel discards the whole checkout and starts over at passes.
func (c *Cart) Cancel() {
	c.clearSelection()
	c.promo = Promo{Status: PromoIdle}
	c.insurance = false
	c.step = StepPasses
	c.touch()
}
