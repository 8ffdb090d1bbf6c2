package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/clock"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

type CheckoutRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetListing(ctx context.Context, listingID string) (domain.Listing, error)
	ReserveStock(ctx context.Context, listingID string, quantity int) error
	CreateOrder(ctx context.Context, order domain.Order) error
}

// CheckoutService turns a cart into durable orders, reserving stock for
// every line item in one transaction. Any failing item aborts the whole
// request; no partial orders or reservations survive.
type CheckoutService struct {
	repo  CheckoutRepository
	clock clock.Clock
}

func NewCheckoutService(repo CheckoutRepository, clk clock.Clock) *CheckoutService {
	return &CheckoutService{
		repo:  repo,
		clock: clk,
	}
}

type CheckoutItem struct {
	ListingID string
	Quantity  int
	UnitPrice decimal.Decimal
}

type CheckoutInput struct {
	BuyerID         string
	Items           []CheckoutItem
	ShippingAddress string
	PaymentMethod   domain.PaymentMethod
}

func (in CheckoutInput) validate() error {
	if in.BuyerID == "" {
		return domain.ErrCallerRequired
	}
	if len(in.Items) == 0 {
		return domain.ErrNoItems
	}
	if in.PaymentMethod != domain.PaymentMethodCOD && in.PaymentMethod != domain.PaymentMethodEscrow {
		return domain.ErrInvalidPaymentMethod
	}
	for _, item := range in.Items {
		if item.ListingID == "" {
			return domain.ErrInvalidID
		}
		if item.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return domain.ErrInvalidAmount
		}
	}
	return nil
}

func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) ([]domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var orders []domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		orders = orders[:0]
		for _, item := range in.Items {
			listing, err := s.repo.GetListing(txCtx, item.ListingID)
			if err != nil {
				return fmt.Errorf("listing %s: %w", item.ListingID, err)
			}
			if listing.VendorUserID == in.BuyerID {
				return fmt.Errorf("listing %s: %w", item.ListingID, domain.ErrSelfPurchase)
			}

			if err := s.repo.ReserveStock(txCtx, item.ListingID, item.Quantity); err != nil {
				return fmt.Errorf("listing %s: %w", item.ListingID, err)
			}

			order := domain.Order{
				ID:              newID(),
				BuyerID:         in.BuyerID,
				ListingID:       item.ListingID,
				Quantity:        item.Quantity,
				TotalAmount:     item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
				ShippingAddress: in.ShippingAddress,
				PaymentMethod:   in.PaymentMethod,
				PaymentStatus:   domain.PaymentStatusPending,
				DeliveryStatus:  domain.DeliveryStatusUnshipped,
				Status:          domain.OrderStatusPending,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := s.repo.CreateOrder(txCtx, order); err != nil {
				return fmt.Errorf("listing %s: %w", item.ListingID, err)
			}
			orders = append(orders, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}
