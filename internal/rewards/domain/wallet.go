package domain

import "time"

// Wallet holds the locally known points balance of a user.
type Wallet struct {
	UserID    string
	Balance   int64
	UpdatedAt time.Time
}
