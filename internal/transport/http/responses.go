package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

type orderResponse struct {
	ID                  string          `json:"id"`
	BuyerID             string          `json:"buyer_id"`
	ListingID           string          `json:"listing_id"`
	Quantity            int             `json:"quantity"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	ShippingAddress     string          `json:"shipping_address"`
	PaymentMethod       string          `json:"payment_method"`
	PaymentStatus       string          `json:"payment_status"`
	DeliveryStatus      string          `json:"delivery_status"`
	Status              string          `json:"status"`
	FailureReason       string          `json:"failure_reason,omitempty"`
	DeliveryConfirmedBy string          `json:"delivery_confirmed_by,omitempty"`
	DeliveryConfirmedAt *time.Time      `json:"delivery_confirmed_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:                  o.ID,
		BuyerID:             o.BuyerID,
		ListingID:           o.ListingID,
		Quantity:            o.Quantity,
		TotalAmount:         o.TotalAmount,
		ShippingAddress:     o.ShippingAddress,
		PaymentMethod:       string(o.PaymentMethod),
		PaymentStatus:       string(o.PaymentStatus),
		DeliveryStatus:      string(o.DeliveryStatus),
		Status:              string(o.Status),
		FailureReason:       o.FailureReason,
		DeliveryConfirmedBy: o.DeliveryConfirmedBy,
		DeliveryConfirmedAt: o.DeliveryConfirmedAt,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

type escrowResponse struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"order_id"`
	BuyerID    string          `json:"buyer_id"`
	VendorID   string          `json:"vendor_id"`
	Amount     decimal.Decimal `json:"amount"`
	State      string          `json:"state"`
	HeldAt     time.Time       `json:"held_at"`
	ReleasedAt *time.Time      `json:"released_at,omitempty"`
	RefundedAt *time.Time      `json:"refunded_at,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func toEscrowResponse(e domain.EscrowTransaction) escrowResponse {
	return escrowResponse{
		ID:         e.ID,
		OrderID:    e.OrderID,
		BuyerID:    e.BuyerID,
		VendorID:   e.VendorID,
		Amount:     e.Amount,
		State:      string(e.State),
		HeldAt:     e.HeldAt,
		ReleasedAt: e.ReleasedAt,
		RefundedAt: e.RefundedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
