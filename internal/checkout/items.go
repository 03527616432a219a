package checkout

import (
	"math"
	"time"

	"popup-checkout/internal/domain"
)

// PassItem is a pass selected for one attendee. Edit marks a pass the
// attendee already owns, hydrated from a previous purchase.
type PassItem struct {
	ProductID          int64  `json:"productId"`
	AttendeeID         int64  `json:"attendeeId"`
	Quantity           int    `json:"quantity"`
	UnitPriceCents     int64  `json:"unitPriceCents"`
	OriginalPriceCents *int64 `json:"originalPriceCents,omitempty"`
	Edit               bool   `json:"edit,omitempty"`
}

func (p PassItem) TotalCents() int64 {
	return p.UnitPriceCents * int64(p.Quantity)
}

// HousingItem is the single housing booking of a cart.
type HousingItem struct {
	ProductID          int64     `json:"productId"`
	CheckIn            time.Time `json:"checkIn"`
	CheckOut           time.Time `json:"checkOut"`
	Nights             int       `json:"nights"`
	PricePerNightCents int64     `json:"pricePerNightCents"`
	TotalCents         int64     `json:"totalCents"`
}

type MerchItem struct {
	ProductID      int64 `json:"productId"`
	Quantity       int   `json:"quantity"`
	UnitPriceCents int64 `json:"unitPriceCents"`
	TotalCents     int64 `json:"totalCents"`
}

type PatronItem struct {
	ProductID   int64 `json:"productId"`
	AmountCents int64 `json:"amountCents"`
	IsCustom    bool  `json:"isCustom"`
}

// ItemRef addresses a cart line for RemoveItem. AttendeeID is only used for passes.
type ItemRef struct {
	Kind       domain.ItemKind `json:"kind"`
	ProductID  int64           `json:"productId"`
	AttendeeID int64           `json:"attendeeId"`
}

// Nights counts the charged nights between two dates: partial days round up
// and at least one night is always charged, even for inverted input.
func Nights(checkIn, checkOut time.Time) int {
	days := math.Ceil(checkOut.Sub(checkIn).Hours() / 24)
	if days < 1 {
		return 1
	}
	return int(days)
}

func newHousingItem(p domain.Product, checkIn, checkOut time.Time) HousingItem {
	nights := Nights(checkIn, checkOut)
	return HousingItem{
		ProductID:          p.ID,
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		Nights:             nights,
		PricePerNightCents: p.PriceCents,
		TotalCents:         int64(nights) * p.PriceCents,
	}
}

// passPrice resolves the unit and display prices of a pass for an application.
func passPrice(p domain.Product, discountPercent int64) (int64, *int64) {
	if discountPercent > 0 && discountPercent <= 100 {
		unit := (p.PriceCents*(100-discountPercent) + 50) / 100
		if unit < p.PriceCents {
			original := p.PriceCents
			return unit, &original
		}
		return unit, nil
	}
	if p.ComparePriceCents != nil && *p.ComparePriceCents > p.PriceCents {
		original := *p.ComparePriceCents
		return p.PriceCents, &original
	}
	return p.PriceCents, nil
}

// insuranceCents sums the insurance surcharge of every line whose product
// carries a percentage.
func insuranceCents(catalog *Catalog, passes []PassItem, housing *HousingItem, merch []MerchItem) int64 {
	rate := func(productID int64) int64 {
		p, ok := catalog.Product(productID)
		if !ok || p.InsurancePercentage == nil {
			return 0
		}
		return *p.InsurancePercentage
	}
	var total int64
	for _, it := range passes {
		total += percentOf(it.TotalCents(), rate(it.ProductID))
	}
	if housing != nil {
		total += percentOf(housing.TotalCents, rate(housing.ProductID))
	}
	for _, it := range merch {
		total += percentOf(it.TotalCents, rate(it.ProductID))
	}
	return total
}

func percentOf(cents, pct int64) int64 {
	if pct <= 0 {
		return 0
	}
	return (cents*pct + 50) / 100
}
