package models

import "time"

// Account is the handle the ledger hands out for an account id.
// System accounts may go into deficit (they mint or burn funds).
type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	System    bool      `json:"system"`
	CreatedAt time.Time `json:"created_at"`
}
