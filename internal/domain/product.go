package domain

import "time"

// ProductCategory groups catalog entries into checkout steps.
type ProductCategory string

const (
	CategoryPass    ProductCategory = "pass"
	CategoryHousing ProductCategory = "housing"
	CategoryMerch   ProductCategory = "merch"
	CategoryPatron  ProductCategory = "patreon"
)

// Valid reports whether c is a known category.
func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryPass, CategoryHousing, CategoryMerch, CategoryPatron:
		return true
	}
	return false
}

type Product struct {
	ID                  int64            `json:"id"`
	PopupCityID         int64            `json:"popupCityId"`
	Slug                string           `json:"slug"`
	Name                string           `json:"name"`
	Description         string           `json:"description,omitempty"`
	Category            ProductCategory  `json:"category"`
	Audience            AttendeeCategory `json:"audience,omitempty"`
	PriceCents          int64            `json:"priceCents"`
	ComparePriceCents   *int64           `json:"comparePriceCents,omitempty"`
	MinPriceCents       *int64           `json:"minPriceCents,omitempty"`
	InsurancePercentage *int64           `json:"insurancePercentage,omitempty"`
	IsActive            bool             `json:"isActive"`
	StartDate           *time.Time       `json:"startDate,omitempty"`
	EndDate             *time.Time       `json:"endDate,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
}

// VariablePrice reports whether the product accepts a custom amount.
func (p Product) VariablePrice() bool {
	return p.MinPriceCents != nil
}

// AppliesTo reports whether the product can be bought for an attendee category.
// An empty audience means the product is open to everyone.
func (p Product) AppliesTo(c AttendeeCategory) bool {
	return p.Audience == "" || p.Audience == c
}
