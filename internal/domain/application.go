package domain

import "time"

// AttendeeCategory is the kind of person covered by an application.
type AttendeeCategory string

const (
	AttendeeMain   AttendeeCategory = "main"
	AttendeeSpouse AttendeeCategory = "spouse"
	AttendeeKid    AttendeeCategory = "kid"
)

// PurchasedProduct is a product already paid for on behalf of an attendee.
type PurchasedProduct struct {
	ProductID  int64 `json:"productId"`
	Quantity   int   `json:"quantity"`
	PriceCents int64 `json:"priceCents"`
}

type Attendee struct {
	ID       int64              `json:"id"`
	Name     string             `json:"name"`
	Email    string             `json:"email,omitempty"`
	Category AttendeeCategory   `json:"category"`
	Products []PurchasedProduct `json:"products,omitempty"`
}

// Application is the purchasing unit. Attendees are read-only for checkout.
type Application struct {
	ID              int64      `json:"id"`
	PopupCityID     int64      `json:"popupCityId"`
	Status          string     `json:"status"`
	CreditCents     int64      `json:"creditCents"`
	DiscountPercent int64      `json:"discountPercent"`
	Attendees       []Attendee `json:"attendees"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// PrimaryAttendee returns the main applicant, or the first attendee when no
// attendee is tagged main.
func (a Application) PrimaryAttendee() (Attendee, bool) {
	for _, at := range a.Attendees {
		if at.Category == AttendeeMain {
			return at, true
		}
	}
	if len(a.Attendees) > 0 {
		return a.Attendees[0], true
	}
	return Attendee{}, false
}

// Attendee looks up an attendee by id.
func (a Application) Attendee(id int64) (Attendee, bool) {
	for _, at := range a.Attendees {
		if at.ID == id {
			return at, true
		}
	}
	return Attendee{}, false
}
