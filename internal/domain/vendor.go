package domain

import "time"

// Vendor is the read model of the external vendor directory: just enough to
// resolve a vendor profile to its user account.
type Vendor struct {
	ID           string
	UserID       string
	BusinessName string
	CreatedAt    time.Time
}
