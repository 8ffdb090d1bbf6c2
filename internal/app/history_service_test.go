package app

import (
	"context"
	"errors"
	"testing"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

func TestHistoryService(t *testing.T) {
	t.Parallel()

	repo := newFakeMarketRepo()
	repo.addListing(domain.Listing{ID: "listing-1", VendorID: "vendor-1", VendorUserID: "vu-1", Quantity: 5})
	repo.addListing(domain.Listing{ID: "listing-2", VendorID: "vendor-2", VendorUserID: "vu-2", Quantity: 5})
	repo.addOrder(domain.Order{ID: "order-1", BuyerID: "buyer-1", ListingID: "listing-1"})
	repo.addOrder(domain.Order{ID: "order-2", BuyerID: "buyer-1", ListingID: "listing-2"})
	repo.addOrder(domain.Order{ID: "order-3", BuyerID: "buyer-2", ListingID: "listing-1"})
	repo.addEscrow(domain.EscrowTransaction{ID: "e-1", OrderID: "order-1", VendorID: "vendor-1", State: domain.EscrowStateHeld})

	svc := NewHistoryService(repo)

	t.Run("buyer orders", func(t *testing.T) {
		orders, err := svc.BuyerOrders(context.Background(), "buyer-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(orders))
		}
	})

	t.Run("vendor orders span only own listings", func(t *testing.T) {
		orders, err := svc.VendorOrders(context.Background(), "vu-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(orders))
		}
		for _, o := range orders {
			if o.ListingID != "listing-1" {
				t.Fatalf("unexpected order %s for listing %s", o.ID, o.ListingID)
			}
		}
	})

	t.Run("escrow listing", func(t *testing.T) {
		escrows, err := svc.EscrowTransactions(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(escrows) != 1 {
			t.Fatalf("expected 1 escrow, got %d", len(escrows))
		}
	})

	t.Run("requires caller", func(t *testing.T) {
		if _, err := svc.BuyerOrders(context.Background(), ""); !errors.Is(err, domain.ErrCallerRequired) {
			t.Fatalf("expected ErrCallerRequired, got %v", err)
		}
		if _, err := svc.VendorOrders(context.Background(), ""); !errors.Is(err, domain.ErrCallerRequired) {
			t.Fatalf("expected ErrCallerRequired, got %v", err)
		}
	})
}
