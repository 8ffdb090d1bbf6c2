package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/clock"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

func TestRefundService_Refund(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC)

	fixture := func(paymentStatus domain.PaymentStatus, escrowState domain.EscrowState, withEscrow bool) (*RefundService, *fakeMarketRepo) {
		repo := newFakeMarketRepo()
		repo.addListing(domain.Listing{
			ID: "listing-1", VendorID: "vendor-1", VendorUserID: "vu-1",
			Price: decimal.NewFromInt(30), Quantity: 3,
		})
		repo.addOrder(domain.Order{
			ID: "order-1", BuyerID: "buyer-1", ListingID: "listing-1", Quantity: 2,
			TotalAmount:    decimal.NewFromInt(60),
			PaymentMethod:  domain.PaymentMethodEscrow,
			PaymentStatus:  paymentStatus,
			DeliveryStatus: domain.DeliveryStatusUnshipped,
			Status:         domain.OrderStatusProcessing,
		})
		if withEscrow {
			repo.addEscrow(domain.EscrowTransaction{
				ID: "escrow-1", OrderID: "order-1", BuyerID: "buyer-1", VendorID: "vendor-1",
				Amount: decimal.NewFromInt(60), State: escrowState, HeldAt: now,
			})
		}
		return NewRefundService(repo, clock.NewFixed(now), "USD"), repo
	}

	t.Run("refunds escrowed order and restores stock", func(t *testing.T) {
		svc, repo := fixture(domain.PaymentStatusEscrowed, domain.EscrowStateHeld, true)

		order, err := svc.Refund(context.Background(), "order-1", "buyer never received item")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if order.PaymentStatus != domain.PaymentStatusRefunded {
			t.Fatalf("expected refunded, got %s", order.PaymentStatus)
		}
		if order.Status != domain.OrderStatusCancelled {
			t.Fatalf("expected cancelled, got %s", order.Status)
		}
		if order.FailureReason != "buyer never received item" {
			t.Fatalf("expected reason stored, got %q", order.FailureReason)
		}
		if repo.escrows["order-1"].State != domain.EscrowStateRefunded {
			t.Fatalf("expected refunded escrow")
		}
		if got := repo.listings["listing-1"].Quantity; got != 5 {
			t.Fatalf("expected stock restored to 5, got %d", got)
		}
		if b, ok := repo.balances["vu-1"]; ok && !b.Balance.IsZero() {
			t.Fatalf("expected no vendor debit for held escrow, got %s", b.Balance)
		}
	})

	t.Run("refund after release debits the vendor", func(t *testing.T) {
		svc, repo := fixture(domain.PaymentStatusPaid, domain.EscrowStateReleased, true)
		// Simulate the earlier release credit.
		if err := repo.AddToBalance(context.Background(), "vu-1", decimal.NewFromInt(60), "USD", now); err != nil {
			t.Fatalf("seed balance: %v", err)
		}

		if _, err := svc.Refund(context.Background(), "order-1", "admin reversal"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !repo.balances["vu-1"].Balance.IsZero() {
			t.Fatalf("expected vendor balance clawed back to 0, got %s", repo.balances["vu-1"].Balance)
		}
		if repo.escrows["order-1"].State != domain.EscrowStateRefunded {
			t.Fatalf("expected refunded escrow")
		}
	})

	t.Run("second refund is rejected", func(t *testing.T) {
		svc, repo := fixture(domain.PaymentStatusEscrowed, domain.EscrowStateHeld, true)

		if _, err := svc.Refund(context.Background(), "order-1", "first"); err != nil {
			t.Fatalf("first refund: %v", err)
		}
		if _, err := svc.Refund(context.Background(), "order-1", "second"); !errors.Is(err, domain.ErrOrderNotRefundable) {
			t.Fatalf("expected ErrOrderNotRefundable, got %v", err)
		}
		if got := repo.listings["listing-1"].Quantity; got != 5 {
			t.Fatalf("expected stock restored once, got %d", got)
		}
	})

	t.Run("cod refund skips balance debit when no escrow exists", func(t *testing.T) {
		svc, repo := fixture(domain.PaymentStatusPaid, "", false)
		// COD settlement credited the vendor on delivery.
		if err := repo.AddToBalance(context.Background(), "vu-1", decimal.NewFromInt(60), "USD", now); err != nil {
			t.Fatalf("seed balance: %v", err)
		}

		if _, err := svc.Refund(context.Background(), "order-1", "goods returned"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !repo.balances["vu-1"].Balance.Equal(decimal.NewFromInt(60)) {
			t.Fatalf("expected balance untouched without escrow, got %s", repo.balances["vu-1"].Balance)
		}
		if got := repo.listings["listing-1"].Quantity; got != 5 {
			t.Fatalf("expected stock restored, got %d", got)
		}
	})

	t.Run("pending order is not refundable", func(t *testing.T) {
		svc, _ := fixture(domain.PaymentStatusPending, "", false)

		if _, err := svc.Refund(context.Background(), "order-1", "nothing captured"); !errors.Is(err, domain.ErrOrderNotRefundable) {
			t.Fatalf("expected ErrOrderNotRefundable, got %v", err)
		}
	})

	t.Run("requires reason", func(t *testing.T) {
		svc, _ := fixture(domain.PaymentStatusEscrowed, domain.EscrowStateHeld, true)

		if _, err := svc.Refund(context.Background(), "order-1", ""); !errors.Is(err, domain.ErrReasonRequired) {
			t.Fatalf("expected ErrReasonRequired, got %v", err)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, _ := fixture(domain.PaymentStatusEscrowed, domain.EscrowStateHeld, true)

		if _, err := svc.Refund(context.Background(), "order-missing", "reason"); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}
