package types

import "time"

// BasketItem is a helper's staged (need, quantity) selection. The
// (username, need_id) pair is unique, so re-adding a need replaces the
// quantity rather than creating a second row.
type BasketItem struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"-"`
	NeedID    string    `db:"need_id" json:"need_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// BasketLine is a basket item joined with the fields of the need it
// references, shaped for the basket listing endpoint.
type BasketLine struct {
	ID              string    `db:"id" json:"id"`
	NeedID          string    `db:"need_id" json:"-"`
	Quantity        int       `db:"quantity" json:"quantity"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	Cost            float64   `db:"cost" json:"cost"`
	Category        Category  `db:"category" json:"category"`
	Priority        Priority  `db:"priority" json:"priority"`
	IsTimeSensitive bool      `db:"is_time_sensitive" json:"is_time_sensitive"`
	FrequencyCount  int       `db:"frequency_count" json:"frequency_count"`
}
