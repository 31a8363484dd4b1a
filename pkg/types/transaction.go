package types

import "time"

// Transaction is an append-only record of a funded basket item. Rows
// are never updated or deleted; funding progress is derived from them.
type Transaction struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	NeedID    string    `db:"need_id" json:"need_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	TotalCost float64   `db:"total_cost" json:"total_cost"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
