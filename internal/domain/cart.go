package domain

// ItemKind names a cart line family.
type ItemKind string

const (
	ItemPass    ItemKind = "pass"
	ItemHousing ItemKind = "housing"
	ItemMerch   ItemKind = "merch"
	ItemPatron  ItemKind = "patron"
)

// PaymentProduct is one entry of the normalized product list sent to the
// pricing oracle for preview and payment creation.
type PaymentProduct struct {
	ProductID         int64  `json:"productId"`
	AttendeeID        int64  `json:"attendeeId"`
	Quantity          int    `json:"quantity"`
	CustomAmountCents *int64 `json:"customAmountCents,omitempty"`
}

// QuoteItem is one priced line returned by the oracle preview.
type QuoteItem struct {
	ProductID      int64 `json:"productId"`
	AttendeeID     int64 `json:"attendeeId"`
	Quantity       int   `json:"quantity"`
	UnitPriceCents int64 `json:"unitPriceCents"`
	TotalCents     int64 `json:"totalCents"`
}

// Quote is the authoritative price summary computed by the oracle.
type Quote struct {
	SubtotalCents  int64       `json:"subtotalCents"`
	DiscountCents  int64       `json:"discountCents"`
	CreditCents    int64       `json:"creditCents"`
	InsuranceCents int64       `json:"insuranceCents"`
	TotalCents     int64       `json:"totalCents"`
	Items          []QuoteItem `json:"items"`
}
