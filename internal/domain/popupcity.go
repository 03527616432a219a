package domain

import "time"

// PopupCity is the tenant every catalog, application and checkout belongs to.
type PopupCity struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}
