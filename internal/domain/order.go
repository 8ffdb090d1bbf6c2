package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodEscrow PaymentMethod = "escrow"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusEscrowed PaymentStatus = "escrowed"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type DeliveryStatus string

const (
	DeliveryStatusUnshipped DeliveryStatus = "unshipped"
	DeliveryStatusShipped   DeliveryStatus = "shipped"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is a single line item purchased at checkout. Created once with its
// quantity already reserved; every later mutation is a status transition.
// Orders are never deleted; cancellation is a terminal status.
type Order struct {
	ID                  string
	BuyerID             string
	ListingID           string
	Quantity            int
	TotalAmount         decimal.Decimal
	ShippingAddress     string
	PaymentMethod       PaymentMethod
	PaymentStatus       PaymentStatus
	DeliveryStatus      DeliveryStatus
	Status              OrderStatus
	FailureReason       string
	DeliveryConfirmedBy string
	DeliveryConfirmedAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
