package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/clock"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

type FulfillmentRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetListing(ctx context.Context, listingID string) (domain.Listing, error)
	MarkOrderShipped(ctx context.Context, orderID string, now time.Time) error
	MarkOrderDelivered(ctx context.Context, orderID, confirmedBy string, now time.Time) error
	AddToBalance(ctx context.Context, userID string, delta decimal.Decimal, currency string, now time.Time) error
}

// FulfillmentService covers the vendor side of an order: shipment and
// cash-on-delivery settlement. COD settlement trusts the vendor's
// attestation that cash changed hands, unlike escrow which is
// buyer-confirmed.
type FulfillmentService struct {
	repo     FulfillmentRepository
	clock    clock.Clock
	currency string
}

func NewFulfillmentService(repo FulfillmentRepository, clk clock.Clock, currency string) *FulfillmentService {
	return &FulfillmentService{
		repo:     repo,
		clock:    clk,
		currency: currency,
	}
}

func (s *FulfillmentService) MarkShipped(ctx context.Context, orderID, callerID string) (domain.Order, error) {
	if callerID == "" {
		return domain.Order{}, domain.ErrCallerRequired
	}

	now := s.clock.Now()
	var result domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}

		listing, err := s.repo.GetListing(txCtx, order.ListingID)
		if err != nil {
			return err
		}
		if listing.VendorUserID != callerID {
			return domain.ErrUnauthorized
		}
		if order.Status == domain.OrderStatusCancelled {
			return domain.ErrOrderCancelled
		}
		if order.DeliveryStatus != domain.DeliveryStatusUnshipped {
			return domain.ErrOrderAlreadyShipped
		}

		if err := s.repo.MarkOrderShipped(txCtx, order.ID, now); err != nil {
			return err
		}

		result, err = s.repo.GetOrder(txCtx, order.ID)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}
	return result, nil
}

func (s *FulfillmentService) ConfirmCOD(ctx context.Context, orderID, callerID string) (domain.Order, error) {
	if callerID == "" {
		return domain.Order{}, domain.ErrCallerRequired
	}

	now := s.clock.Now()
	var result domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}

		listing, err := s.repo.GetListing(txCtx, order.ListingID)
		if err != nil {
			return err
		}
		if listing.VendorUserID != callerID {
			return domain.ErrUnauthorized
		}
		if order.PaymentMethod != domain.PaymentMethodCOD {
			return domain.ErrNotCODOrder
		}
		if order.DeliveryStatus != domain.DeliveryStatusShipped {
			return domain.ErrOrderNotShipped
		}

		if err := s.repo.AddToBalance(txCtx, listing.VendorUserID, order.TotalAmount, s.currency, now); err != nil {
			return err
		}
		if err := s.repo.MarkOrderDelivered(txCtx, order.ID, callerID, now); err != nil {
			return err
		}

		result, err = s.repo.GetOrder(txCtx, order.ID)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}
	return result, nil
}
