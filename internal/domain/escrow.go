package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EscrowState string

const (
	EscrowStateHeld     EscrowState = "held"
	EscrowStateReleased EscrowState = "released"
	EscrowStateDisputed EscrowState = "disputed"
	EscrowStateRefunded EscrowState = "refunded"
)

// EscrowTransaction tracks fund custody for one escrow-paid order (1:1).
// COD orders never have one. The amount is copied from the order total at
// capture time and never changes.
type EscrowTransaction struct {
	ID         string
	OrderID    string
	BuyerID    string
	VendorID   string
	Amount     decimal.Decimal
	State      EscrowState
	HeldAt     time.Time
	ReleasedAt *time.Time
	RefundedAt *time.Time
	UpdatedAt  time.Time
}
