package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

// fakeMarketRepo backs the service tests with in-memory state. WithTx runs
// the function directly; real transactional atomicity is covered by the
// Postgres integration tests.
type fakeMarketRepo struct {
	listings map[string]domain.Listing
	orders   map[string]domain.Order
	escrows  map[string]domain.EscrowTransaction // keyed by order ID
	balances map[string]domain.VendorBalance     // keyed by user ID
	vendors  map[string]domain.Vendor            // keyed by user ID
}

func newFakeMarketRepo() *fakeMarketRepo {
	return &fakeMarketRepo{
		listings: make(map[string]domain.Listing),
		orders:   make(map[string]domain.Order),
		escrows:  make(map[string]domain.EscrowTransaction),
		balances: make(map[string]domain.VendorBalance),
		vendors:  make(map[string]domain.Vendor),
	}
}

func (f *fakeMarketRepo) addListing(l domain.Listing) {
	f.listings[l.ID] = l
	if _, ok := f.vendors[l.VendorUserID]; !ok && l.VendorUserID != "" {
		f.vendors[l.VendorUserID] = domain.Vendor{ID: l.VendorID, UserID: l.VendorUserID}
	}
}

func (f *fakeMarketRepo) addOrder(o domain.Order) {
	f.orders[o.ID] = o
}

func (f *fakeMarketRepo) addEscrow(e domain.EscrowTransaction) {
	f.escrows[e.OrderID] = e
}

func (f *fakeMarketRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeMarketRepo) GetListing(_ context.Context, listingID string) (domain.Listing, error) {
	l, ok := f.listings[listingID]
	if !ok {
		return domain.Listing{}, domain.ErrListingNotFound
	}
	return l, nil
}

func (f *fakeMarketRepo) ReserveStock(_ context.Context, listingID string, quantity int) error {
	l, ok := f.listings[listingID]
	if !ok {
		return domain.ErrListingNotFound
	}
	if l.Quantity < quantity {
		return domain.ErrInsufficientStock
	}
	l.Quantity -= quantity
	f.listings[listingID] = l
	return nil
}

func (f *fakeMarketRepo) RestoreStock(_ context.Context, listingID string, quantity int) error {
	l, ok := f.listings[listingID]
	if !ok {
		return domain.ErrListingNotFound
	}
	l.Quantity += quantity
	f.listings[listingID] = l
	return nil
}

func (f *fakeMarketRepo) CreateOrder(_ context.Context, order domain.Order) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeMarketRepo) GetOrder(_ context.Context, orderID string) (domain.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeMarketRepo) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	return f.GetOrder(ctx, orderID)
}

func (f *fakeMarketRepo) GetEscrowByOrderID(_ context.Context, orderID string) (*domain.EscrowTransaction, error) {
	e, ok := f.escrows[orderID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (f *fakeMarketRepo) CreateEscrow(_ context.Context, escrow domain.EscrowTransaction) error {
	if _, ok := f.escrows[escrow.OrderID]; ok {
		return fmt.Errorf("create escrow: order %s already recorded", escrow.OrderID)
	}
	if _, ok := f.orders[escrow.OrderID]; !ok {
		return domain.ErrOrderNotFound
	}
	f.escrows[escrow.OrderID] = escrow
	return nil
}

func (f *fakeMarketRepo) MarkOrderEscrowed(_ context.Context, orderID string, now time.Time) error {
	o, ok := f.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.PaymentStatus != domain.PaymentStatusPending && o.PaymentStatus != domain.PaymentStatusFailed {
		return fmt.Errorf("mark order escrowed: order %s not pending", orderID)
	}
	o.PaymentStatus = domain.PaymentStatusEscrowed
	o.FailureReason = ""
	o.UpdatedAt = now
	f.orders[orderID] = o
	return nil
}

func (f *fakeMarketRepo) MarkOrderFailed(_ context.Context, orderID, reason string, now time.Time) error {
	o, ok := f.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.PaymentStatus = domain.PaymentStatusFailed
	o.FailureReason = reason
	o.UpdatedAt = now
	f.orders[orderID] = o
	return nil
}

func (f *fakeMarketRepo) MarkOrderShipped(_ context.Context, orderID string, now time.Time) error {
	o, ok := f.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.DeliveryStatus = domain.DeliveryStatusShipped
	o.Status = domain.OrderStatusShipped
	o.UpdatedAt = now
	f.orders[orderID] = o
	return nil
}

func (f *fakeMarketRepo) MarkOrderDelivered(_ context.Context, orderID, confirmedBy string, now time.Time) error {
	o, ok := f.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.PaymentStatus = domain.PaymentStatusPaid
	o.DeliveryStatus = domain.DeliveryStatusDelivered
	o.Status = domain.OrderStatusDelivered
	o.DeliveryConfirmedBy = confirmedBy
	at := now
	o.DeliveryConfirmedAt = &at
	o.UpdatedAt = now
	f.orders[orderID] = o
	return nil
}

func (f *fakeMarketRepo) RecordFailureReason(_ context.Context, orderID, reason string, now time.Time) error {
	o, ok := f.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.FailureReason = reason
	o.UpdatedAt = now
	f.orders[orderID] = o
	return nil
}

func (f *fakeMarketRepo) RefundOrder(_ context.Context, orderID, reason string, now time.Time) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return false, nil
	}
	if o.PaymentStatus != domain.PaymentStatusEscrowed && o.PaymentStatus != domain.PaymentStatusPaid {
		return false, nil
	}
	o.PaymentStatus = domain.PaymentStatusRefunded
	o.Status = domain.OrderStatusCancelled
	o.FailureReason = reason
	o.UpdatedAt = now
	f.orders[orderID] = o
	return true, nil
}

func (f *fakeMarketRepo) escrowByID(escrowID string) (domain.EscrowTransaction, bool) {
	for _, e := range f.escrows {
		if e.ID == escrowID {
			return e, true
		}
	}
	return domain.EscrowTransaction{}, false
}

func (f *fakeMarketRepo) ReleaseEscrow(_ context.Context, escrowID string, from domain.EscrowState, now time.Time) error {
	e, ok := f.escrowByID(escrowID)
	if !ok {
		return domain.ErrEscrowNotFound
	}
	if e.State != from {
		return errors.New("release escrow: state changed")
	}
	e.State = domain.EscrowStateReleased
	at := now
	e.ReleasedAt = &at
	e.UpdatedAt = now
	f.escrows[e.OrderID] = e
	return nil
}

func (f *fakeMarketRepo) DisputeEscrow(_ context.Context, escrowID string, now time.Time) error {
	e, ok := f.escrowByID(escrowID)
	if !ok {
		return domain.ErrEscrowNotFound
	}
	if e.State != domain.EscrowStateHeld {
		return errors.New("dispute escrow: not held")
	}
	e.State = domain.EscrowStateDisputed
	e.UpdatedAt = now
	f.escrows[e.OrderID] = e
	return nil
}

func (f *fakeMarketRepo) RefundEscrow(_ context.Context, escrowID string, now time.Time) error {
	e, ok := f.escrowByID(escrowID)
	if !ok {
		return domain.ErrEscrowNotFound
	}
	if e.State == domain.EscrowStateRefunded {
		return errors.New("refund escrow: already refunded")
	}
	e.State = domain.EscrowStateRefunded
	at := now
	e.RefundedAt = &at
	e.UpdatedAt = now
	f.escrows[e.OrderID] = e
	return nil
}

func (f *fakeMarketRepo) AddToBalance(_ context.Context, userID string, delta decimal.Decimal, currency string, now time.Time) error {
	b, ok := f.balances[userID]
	if !ok {
		b = domain.VendorBalance{UserID: userID, Balance: decimal.Zero, Currency: currency}
	}
	b.Balance = b.Balance.Add(delta)
	b.UpdatedAt = now
	f.balances[userID] = b
	return nil
}

func (f *fakeMarketRepo) GetBalance(_ context.Context, userID string) (*domain.VendorBalance, error) {
	b, ok := f.balances[userID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeMarketRepo) GetVendorByUserID(_ context.Context, userID string) (domain.Vendor, error) {
	v, ok := f.vendors[userID]
	if !ok {
		return domain.Vendor{}, domain.ErrVendorNotFound
	}
	return v, nil
}

func (f *fakeMarketRepo) SumHeldEscrow(_ context.Context, vendorID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range f.escrows {
		if e.VendorID == vendorID && e.State == domain.EscrowStateHeld {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (f *fakeMarketRepo) ListOrdersByBuyer(_ context.Context, buyerID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeMarketRepo) ListOrdersByVendorUser(_ context.Context, vendorUserID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		l, ok := f.listings[o.ListingID]
		if ok && l.VendorUserID == vendorUserID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeMarketRepo) ListEscrows(_ context.Context) ([]domain.EscrowTransaction, error) {
	var out []domain.EscrowTransaction
	for _, e := range f.escrows {
		out = append(out, e)
	}
	return out, nil
}
