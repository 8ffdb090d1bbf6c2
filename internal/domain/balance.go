package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VendorBalance is a vendor's settled balance, keyed by the vendor's user
// account. Created lazily on first credit. A refund after release can drive
// it negative; the ledger records the debt rather than hiding it.
type VendorBalance struct {
	UserID    string
	Balance   decimal.Decimal
	Currency  string
	UpdatedAt time.Time
}
