package domain

import "errors"

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrEscrowNotFound  = errors.New("escrow transaction not found")
	ErrVendorNotFound  = errors.New("vendor not found")

	ErrUnauthorized = errors.New("caller does not own this order or listing")

	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrSelfPurchase       = errors.New("cannot purchase your own listing")
	ErrPaymentDeclined    = errors.New("payment gateway declined the transaction")
	ErrNotEscrowOrder     = errors.New("order is not an escrow order")
	ErrNotCODOrder        = errors.New("order is not a cash-on-delivery order")
	ErrOrderNotEscrowed   = errors.New("order payment is not in escrow")
	ErrOrderNotShipped    = errors.New("order has not been shipped")
	ErrEscrowDisputed     = errors.New("escrow is disputed and cannot be released by the buyer")
	ErrEscrowNotDisputed  = errors.New("escrow is not disputed")
	ErrOrderNotRefundable = errors.New("order cannot be refunded from its current state")

	ErrOrderNotPayable     = errors.New("order payment cannot be captured from its current state")
	ErrOrderAlreadyShipped = errors.New("order has already been shipped")
	ErrOrderCancelled      = errors.New("order is cancelled")

	ErrNoItems              = errors.New("checkout requires at least one item")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidID       = errors.New("invalid id")
	ErrCallerRequired  = errors.New("caller identity required")
	ErrReasonRequired  = errors.New("reason required")
	ErrInvalidOutcome  = errors.New("invalid dispute outcome")
)
