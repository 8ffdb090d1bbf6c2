package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusInactive ListingStatus = "inactive"
)

// Listing is the sellable inventory unit. The engine only mutates Quantity
// (reserve on checkout, restore on refund); everything else belongs to the
// catalog.
type Listing struct {
	ID       string
	VendorID string
	// VendorUserID is the user account behind the vendor profile. Ownership
	// checks and balance credits are keyed by it.
	VendorUserID string
	Title        string
	Price        decimal.Decimal
	Quantity     int
	Status       ListingStatus
	CreatedAt    time.Time
}
