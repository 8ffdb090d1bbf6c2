package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/clock"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

type RefundRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetListing(ctx context.Context, listingID string) (domain.Listing, error)
	GetEscrowByOrderID(ctx context.Context, orderID string) (*domain.EscrowTransaction, error)
	RefundOrder(ctx context.Context, orderID, reason string, now time.Time) (bool, error)
	RefundEscrow(ctx context.Context, escrowID string, now time.Time) error
	AddToBalance(ctx context.Context, userID string, delta decimal.Decimal, currency string, now time.Time) error
	RestoreStock(ctx context.Context, listingID string, quantity int) error
}

// RefundService reverses a settled or in-flight payment: it restores stock,
// reverses a released escrow's vendor credit, and cancels the order. The
// order transition is guarded, so running the workflow twice fails instead
// of double-restoring stock or double-debiting the vendor.
type RefundService struct {
	repo     RefundRepository
	clock    clock.Clock
	currency string
}

func NewRefundService(repo RefundRepository, clk clock.Clock, currency string) *RefundService {
	return &RefundService{
		repo:     repo,
		clock:    clk,
		currency: currency,
	}
}

func (s *RefundService) Refund(ctx context.Context, orderID, reason string) (domain.Order, error) {
	if reason == "" {
		return domain.Order{}, domain.ErrReasonRequired
	}

	now := s.clock.Now()
	var result domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}

		// The guard is the idempotency barrier: zero rows means the order
		// was not escrowed or paid, so nothing below may run.
		transitioned, err := s.repo.RefundOrder(txCtx, order.ID, reason, now)
		if err != nil {
			return err
		}
		if !transitioned {
			return domain.ErrOrderNotRefundable
		}

		escrow, err := s.repo.GetEscrowByOrderID(txCtx, order.ID)
		if err != nil {
			return err
		}
		if escrow != nil {
			if escrow.State == domain.EscrowStateReleased {
				listing, err := s.repo.GetListing(txCtx, order.ListingID)
				if err != nil {
					return err
				}
				if err := s.repo.AddToBalance(txCtx, listing.VendorUserID, order.TotalAmount.Neg(), s.currency, now); err != nil {
					return err
				}
			}
			if err := s.repo.RefundEscrow(txCtx, escrow.ID, now); err != nil {
				return err
			}
		}

		if err := s.repo.RestoreStock(txCtx, order.ListingID, order.Quantity); err != nil {
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
