package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/clock"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/gateway"
)

type EscrowRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	GetListing(ctx context.Context, listingID string) (domain.Listing, error)
	GetEscrowByOrderID(ctx context.Context, orderID string) (*domain.EscrowTransaction, error)
	CreateEscrow(ctx context.Context, escrow domain.EscrowTransaction) error
	MarkOrderEscrowed(ctx context.Context, orderID string, now time.Time) error
	MarkOrderFailed(ctx context.Context, orderID, reason string, now time.Time) error
	MarkOrderDelivered(ctx context.Context, orderID, confirmedBy string, now time.Time) error
	RecordFailureReason(ctx context.Context, orderID, reason string, now time.Time) error
	ReleaseEscrow(ctx context.Context, escrowID string, from domain.EscrowState, now time.Time) error
	DisputeEscrow(ctx context.Context, escrowID string, now time.Time) error
	AddToBalance(ctx context.Context, userID string, delta decimal.Decimal, currency string, now time.Time) error
}

// Refunder is the slice of the refund workflow that dispute resolution
// delegates to.
type Refunder interface {
	Refund(ctx context.Context, orderID, reason string) (domain.Order, error)
}

// EscrowService owns the escrow side of settlement: capture, buyer delivery
// confirmation (the only path that moves held funds into a vendor balance),
// dispute, and dispute resolution.
type EscrowService struct {
	repo     EscrowRepository
	gateway  gateway.Gateway
	refunder Refunder
	clock    clock.Clock
	currency string
	logger   zerolog.Logger
}

func NewEscrowService(repo EscrowRepository, gw gateway.Gateway, refunder Refunder, clk clock.Clock, currency string, logger zerolog.Logger) *EscrowService {
	return &EscrowService{
		repo:     repo,
		gateway:  gw,
		refunder: refunder,
		clock:    clk,
		currency: currency,
		logger:   logger,
	}
}

type CaptureResult struct {
	Order  domain.Order
	Escrow domain.EscrowTransaction
	// AlreadyProcessed is true when a prior capture succeeded and this call
	// returned the existing state instead of charging again.
	AlreadyProcessed bool
}

// Capture charges the buyer through the payment gateway and records the
// funds as held. The gateway call happens outside the recording transaction
// so no row locks are held across network latency; the gateway is keyed by
// order ID, so a retry after a crash between charge and record replays the
// earlier outcome instead of charging twice.
func (s *EscrowService) Capture(ctx context.Context, orderID, callerID string) (CaptureResult, error) {
	if callerID == "" {
		return CaptureResult{}, domain.ErrCallerRequired
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return CaptureResult{}, err
	}
	if order.BuyerID != callerID {
		return CaptureResult{}, domain.ErrUnauthorized
	}
	if order.PaymentMethod != domain.PaymentMethodEscrow {
		return CaptureResult{}, domain.ErrNotEscrowOrder
	}
	if res, done, err := s.existingCapture(ctx, order); done || err != nil {
		return res, err
	}
	if order.PaymentStatus != domain.PaymentStatusPending && order.PaymentStatus != domain.PaymentStatusFailed {
		return CaptureResult{}, domain.ErrOrderNotPayable
	}

	listing, err := s.repo.GetListing(ctx, order.ListingID)
	if err != nil {
		return CaptureResult{}, err
	}
	if listing.VendorUserID == callerID {
		return CaptureResult{}, domain.ErrSelfPurchase
	}

	charge, err := s.gateway.Capture(ctx, gateway.CaptureRequest{
		OrderID:  order.ID,
		BuyerID:  order.BuyerID,
		Amount:   order.TotalAmount,
		Currency: s.currency,
	})
	if err != nil {
		s.recordFailure(ctx, order.ID, "payment gateway unavailable")
		return CaptureResult{}, fmt.Errorf("gateway capture: %w", err)
	}
	if charge.Declined {
		s.recordFailure(ctx, order.ID, charge.DeclineReason)
		return CaptureResult{}, fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, charge.DeclineReason)
	}

	now := s.clock.Now()
	var result CaptureResult

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		locked, err := s.repo.GetOrderForUpdate(txCtx, order.ID)
		if err != nil {
			return err
		}
		// A concurrent capture may have recorded between our read and the
		// lock; the charge itself was deduplicated by the gateway.
		if res, done, err := s.existingCapture(txCtx, locked); err != nil {
			return err
		} else if done {
			result = res
			return nil
		}
		if locked.PaymentStatus != domain.PaymentStatusPending && locked.PaymentStatus != domain.PaymentStatusFailed {
			return domain.ErrOrderNotPayable
		}

		escrow := domain.EscrowTransaction{
			ID:        newID(),
			OrderID:   locked.ID,
			BuyerID:   locked.BuyerID,
			VendorID:  listing.VendorID,
			Amount:    locked.TotalAmount,
			State:     domain.EscrowStateHeld,
			HeldAt:    now,
			UpdatedAt: now,
		}
		if err := s.repo.CreateEscrow(txCtx, escrow); err != nil {
			return err
		}
		if err := s.repo.MarkOrderEscrowed(txCtx, locked.ID, now); err != nil {
			return err
		}

		updated, err := s.repo.GetOrder(txCtx, locked.ID)
		if err != nil {
			return err
		}
		result = CaptureResult{Order: updated, Escrow: escrow}
		return nil
	})
	if err != nil {
		// The charge succeeded but recording did not; persist the reason so
		// the buyer can see why payment did not proceed.
		s.recordFailure(ctx, order.ID, fmt.Sprintf("payment recording failed: %v", err))
		return CaptureResult{}, err
	}
	return result, nil
}

// existingCapture short-circuits repeated captures: an already escrowed or
// paid order returns its current state unchanged.
func (s *EscrowService) existingCapture(ctx context.Context, order domain.Order) (CaptureResult, bool, error) {
	if order.PaymentStatus != domain.PaymentStatusEscrowed && order.PaymentStatus != domain.PaymentStatusPaid {
		return CaptureResult{}, false, nil
	}
	escrow, err := s.repo.GetEscrowByOrderID(ctx, order.ID)
	if err != nil {
		return CaptureResult{}, false, err
	}
	if escrow == nil {
		return CaptureResult{}, false, domain.ErrEscrowNotFound
	}
	return CaptureResult{Order: order, Escrow: *escrow, AlreadyProcessed: true}, true, nil
}

// recordFailure is the best-effort compensating write: it runs outside any
// transaction and its own failure is logged, not propagated, because the
// caller already holds the primary error.
func (s *EscrowService) recordFailure(ctx context.Context, orderID, reason string) {
	if err := s.repo.MarkOrderFailed(ctx, orderID, reason, s.clock.Now()); err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_id", orderID).
			Str("reason", reason).
			Msg("failed to record payment failure on order")
	}
}

// ConfirmDelivery is the buyer's attestation that the goods arrived. It
// releases the escrow and credits the vendor in the same transaction.
func (s *EscrowService) ConfirmDelivery(ctx context.Context, orderID, callerID string) (domain.Order, error) {
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
		if order.BuyerID != callerID {
			return domain.ErrUnauthorized
		}
		if order.PaymentStatus != domain.PaymentStatusEscrowed {
			return domain.ErrOrderNotEscrowed
		}

		escrow, err := s.repo.GetEscrowByOrderID(txCtx, order.ID)
		if err != nil {
			return err
		}
		if escrow == nil {
			return domain.ErrEscrowNotFound
		}
		if escrow.State == domain.EscrowStateDisputed {
			return domain.ErrEscrowDisputed
		}
		if escrow.State != domain.EscrowStateHeld {
			return domain.ErrOrderNotEscrowed
		}

		listing, err := s.repo.GetListing(txCtx, order.ListingID)
		if err != nil {
			return err
		}

		if err := s.repo.ReleaseEscrow(txCtx, escrow.ID, domain.EscrowStateHeld, now); err != nil {
			return err
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

// Dispute freezes a held escrow. Funds stay in custody until an admin
// refunds or resolves the dispute.
func (s *EscrowService) Dispute(ctx context.Context, orderID, callerID, reason string) (domain.Order, error) {
	if callerID == "" {
		return domain.Order{}, domain.ErrCallerRequired
	}
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
		if order.BuyerID != callerID {
			return domain.ErrUnauthorized
		}
		if order.PaymentStatus != domain.PaymentStatusEscrowed {
			return domain.ErrOrderNotEscrowed
		}

		escrow, err := s.repo.GetEscrowByOrderID(txCtx, order.ID)
		if err != nil {
			return err
		}
		if escrow == nil {
			return domain.ErrEscrowNotFound
		}
		if escrow.State != domain.EscrowStateHeld {
			return domain.ErrEscrowDisputed
		}

		if err := s.repo.DisputeEscrow(txCtx, escrow.ID, now); err != nil {
			return err
		}
		if err := s.repo.RecordFailureReason(txCtx, order.ID, "Disputed by buyer: "+reason, now); err != nil {
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

type DisputeOutcome string

const (
	// DisputeOutcomeRelease settles in the vendor's favor: funds move to
	// the vendor balance exactly as a buyer confirmation would.
	DisputeOutcomeRelease DisputeOutcome = "release"
	// DisputeOutcomeRefund settles in the buyer's favor via the refund
	// workflow.
	DisputeOutcomeRefund DisputeOutcome = "refund"
)

// ResolveDispute is the privileged escape hatch for disputed escrows.
func (s *EscrowService) ResolveDispute(ctx context.Context, orderID, callerID string, outcome DisputeOutcome, note string) (domain.Order, error) {
	if callerID == "" {
		return domain.Order{}, domain.ErrCallerRequired
	}

	switch outcome {
	case DisputeOutcomeRefund:
		escrow, err := s.repo.GetEscrowByOrderID(ctx, orderID)
		if err != nil {
			return domain.Order{}, err
		}
		if escrow == nil {
			return domain.Order{}, domain.ErrEscrowNotFound
		}
		if escrow.State != domain.EscrowStateDisputed {
			return domain.Order{}, domain.ErrEscrowNotDisputed
		}
		reason := note
		if reason == "" {
			reason = "dispute resolved in buyer's favor"
		}
		return s.refunder.Refund(ctx, orderID, reason)

	case DisputeOutcomeRelease:
		now := s.clock.Now()
		var result domain.Order

		err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
			order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
			if err != nil {
				return err
			}
			if order.PaymentStatus != domain.PaymentStatusEscrowed {
				return domain.ErrOrderNotEscrowed
			}

			escrow, err := s.repo.GetEscrowByOrderID(txCtx, order.ID)
			if err != nil {
				return err
			}
			if escrow == nil {
				return domain.ErrEscrowNotFound
			}
			if escrow.State != domain.EscrowStateDisputed {
				return domain.ErrEscrowNotDisputed
			}

			listing, err := s.repo.GetListing(txCtx, order.ListingID)
			if err != nil {
				return err
			}

			if err := s.repo.ReleaseEscrow(txCtx, escrow.ID, domain.EscrowStateDisputed, now); err != nil {
				return err
			}
			if err := s.repo.AddToBalance(txCtx, listing.VendorUserID, order.TotalAmount, s.currency, now); err != nil {
				return err
			}
			if err := s.repo.MarkOrderDelivered(txCtx, order.ID, callerID, now); err != nil {
				return err
			}
			if note != "" {
				if err := s.repo.RecordFailureReason(txCtx, order.ID, "Dispute resolved in vendor's favor: "+note, now); err != nil {
					return err
				}
			}

			result, err = s.repo.GetOrder(txCtx, order.ID)
			return err
		})
		if err != nil {
			return domain.Order{}, err
		}
		return result, nil

	default:
		return domain.Order{}, domain.ErrInvalidOutcome
	}
}
