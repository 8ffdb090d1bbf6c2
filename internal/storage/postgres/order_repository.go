package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

const listingColumns = `
l.id, l.vendor_id, v.user_id, l.title, l.price, l.quantity, l.status, l.created_at`

func (r *Repository) scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	var status string
	err := row.Scan(&l.ID, &l.VendorID, &l.VendorUserID, &l.Title, &l.Price, &l.Quantity, &status, &l.CreatedAt)
	if err != nil {
		return domain.Listing{}, err
	}
	l.Status = domain.ListingStatus(status)
	return l, nil
}

func (r *Repository) GetListing(ctx context.Context, listingID string) (domain.Listing, error) {
	const query = `
SELECT` + listingColumns + `
FROM listings l
JOIN vendors v ON v.id = l.vendor_id
WHERE l.id = $1`

	l, err := r.scanListing(r.queryRow(ctx, query, listingID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Listing{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Listing{}, domain.ErrListingNotFound
		}
		return domain.Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

// ReserveStock decrements quantity only when enough stock remains. The
// conditional update is what keeps concurrent checkouts from overselling:
// zero matched rows means another buyer got there first.
func (r *Repository) ReserveStock(ctx context.Context, listingID string, quantity int) error {
	const stmt = `
UPDATE listings
SET quantity = quantity - $2
WHERE id = $1 AND quantity >= $2`

	tag, err := r.exec(ctx, stmt, listingID, quantity)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("reserve stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *Repository) RestoreStock(ctx context.Context, listingID string, quantity int) error {
	const stmt = `UPDATE listings SET quantity = quantity + $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, listingID, quantity)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

const orderColumns = `
id, buyer_id, listing_id, quantity, total_amount, shipping_address,
payment_method, payment_status, delivery_status, status, failure_reason,
delivery_confirmed_by, delivery_confirmed_at, created_at, updated_at`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var method, payment, delivery, status string
	var failureReason, confirmedBy *string
	err := row.Scan(
		&o.ID, &o.BuyerID, &o.ListingID, &o.Quantity, &o.TotalAmount, &o.ShippingAddress,
		&method, &payment, &delivery, &status, &failureReason,
		&confirmedBy, &o.DeliveryConfirmedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	o.PaymentMethod = domain.PaymentMethod(method)
	o.PaymentStatus = domain.PaymentStatus(payment)
	o.DeliveryStatus = domain.DeliveryStatus(delivery)
	o.Status = domain.OrderStatus(status)
	if failureReason != nil {
		o.FailureReason = *failureReason
	}
	if confirmedBy != nil {
		o.DeliveryConfirmedBy = *confirmedBy
	}
	return o, nil
}

func (r *Repository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (
	id, buyer_id, listing_id, quantity, total_amount, shipping_address,
	payment_method, payment_status, delivery_status, status, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.exec(ctx, stmt,
		order.ID,
		order.BuyerID,
		order.ListingID,
		order.Quantity,
		order.TotalAmount,
		order.ShippingAddress,
		order.PaymentMethod,
		order.PaymentStatus,
		order.DeliveryStatus,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrListingNotFound
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidQuantity
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *Repository) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return r.getOrder(ctx, orderID, false)
}

// GetOrderForUpdate locks the order row for the rest of the transaction.
// Every status transition starts here so adjacent workflows serialize on
// the order instead of interleaving.
func (r *Repository) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	return r.getOrder(ctx, orderID, true)
}

func (r *Repository) getOrder(ctx context.Context, orderID string, forUpdate bool) (domain.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	o, err := scanOrder(r.queryRow(ctx, query, orderID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// MarkOrderEscrowed transitions a pending (or previously failed) escrow
// order to escrowed. Guarded so a concurrent capture that already recorded
// cannot be overwritten.
func (r *Repository) MarkOrderEscrowed(ctx context.Context, orderID string, now time.Time) error {
	const stmt = `
UPDATE orders
SET payment_status = 'escrowed', failure_reason = NULL, updated_at = $2
WHERE id = $1 AND payment_status IN ('pending', 'failed')`

	tag, err := r.exec(ctx, stmt, orderID, now)
	if err != nil {
		return fmt.Errorf("mark order escrowed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark order escrowed: order %s not pending", orderID)
	}
	return nil
}

// MarkOrderFailed records why payment did not proceed. Used as the
// compensating write after a declined or failed capture, so it runs outside
// the rolled-back transaction.
func (r *Repository) MarkOrderFailed(ctx context.Context, orderID, reason string, now time.Time) error {
	const stmt = `
UPDATE orders
SET payment_status = 'failed', failure_reason = $2, updated_at = $3
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, orderID, reason, now)
	if err != nil {
		return fmt.Errorf("mark order failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// RecordFailureReason stores a reason without touching payment status, used
// for dispute annotations.
func (r *Repository) RecordFailureReason(ctx context.Context, orderID, reason string, now time.Time) error {
	const stmt = `UPDATE orders SET failure_reason = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, orderID, reason, now)
	if err != nil {
		return fmt.Errorf("record failure reason: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *Repository) MarkOrderShipped(ctx context.Context, orderID string, now time.Time) error {
	const stmt = `
UPDATE orders
SET delivery_status = 'shipped', status = 'shipped', updated_at = $2
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, orderID, now)
	if err != nil {
		return fmt.Errorf("mark order shipped: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *Repository) MarkOrderDelivered(ctx context.Context, orderID, confirmedBy string, now time.Time) error {
	const stmt = `
UPDATE orders
SET payment_status = 'paid',
    delivery_status = 'delivered',
    status = 'delivered',
    delivery_confirmed_by = $2,
    delivery_confirmed_at = $3,
    updated_at = $3
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, orderID, confirmedBy, now)
	if err != nil {
		return fmt.Errorf("mark order delivered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// RefundOrder performs the transition-guarded refund update. It reports
// whether a row transitioned; zero rows means the order was not in a
// refundable state, which is what makes a second refund a no-op instead of
// a double restore.
func (r *Repository) RefundOrder(ctx context.Context, orderID, reason string, now time.Time) (bool, error) {
	const stmt = `
UPDATE orders
SET payment_status = 'refunded', status = 'cancelled', failure_reason = $2, updated_at = $3
WHERE id = $1 AND payment_status IN ('escrowed', 'paid')`

	tag, err := r.exec(ctx, stmt, orderID, reason, now)
	if err != nil {
		return false, fmt.Errorf("refund order: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	const query = `SELECT` + orderColumns + ` FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`
	return r.listOrders(ctx, query, buyerID)
}

// ListOrdersByVendorUser returns orders against any listing owned by the
// vendor behind the given user account.
func (r *Repository) ListOrdersByVendorUser(ctx context.Context, vendorUserID string) ([]domain.Order, error) {
	const query = `
SELECT` + orderColumns + `
FROM orders
WHERE listing_id IN (
	SELECT l.id FROM listings l JOIN vendors v ON v.id = l.vendor_id WHERE v.user_id = $1
)
ORDER BY created_at DESC`
	return r.listOrders(ctx, query, vendorUserID)
}

func (r *Repository) listOrders(ctx context.Context, query string, arg any) ([]domain.Order, error) {
	rows, err := r.query(ctx, query, arg)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if rows.Err() != nil {
		if isInvalidUUID(rows.Err()) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate orders: %w", rows.Err())
	}
	return orders, nil
}
