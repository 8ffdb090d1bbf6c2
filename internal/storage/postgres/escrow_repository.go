package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

const escrowColumns = `
id, order_id, buyer_id, vendor_id, amount, state, held_at, released_at, refunded_at, updated_at`

func scanEscrow(row pgx.Row) (domain.EscrowTransaction, error) {
	var e domain.EscrowTransaction
	var state string
	err := row.Scan(
		&e.ID, &e.OrderID, &e.BuyerID, &e.VendorID, &e.Amount,
		&state, &e.HeldAt, &e.ReleasedAt, &e.RefundedAt, &e.UpdatedAt,
	)
	if err != nil {
		return domain.EscrowTransaction{}, err
	}
	e.State = domain.EscrowState(state)
	return e, nil
}

func (r *Repository) CreateEscrow(ctx context.Context, escrow domain.EscrowTransaction) error {
	const stmt = `
INSERT INTO escrow_transactions (
	id, order_id, buyer_id, vendor_id, amount, state, held_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.exec(ctx, stmt,
		escrow.ID,
		escrow.OrderID,
		escrow.BuyerID,
		escrow.VendorID,
		escrow.Amount,
		escrow.State,
		escrow.HeldAt,
		escrow.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isUniqueViolation(err) {
			// One escrow per order; a duplicate means a concurrent capture won.
			return fmt.Errorf("create escrow: already recorded for order %s", escrow.OrderID)
		}
		if isForeignKeyViolation(err) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("create escrow: %w", err)
	}
	return nil
}

// GetEscrowByOrderID returns nil when the order has no escrow transaction
// (every COD order, and escrow orders before capture).
func (r *Repository) GetEscrowByOrderID(ctx context.Context, orderID string) (*domain.EscrowTransaction, error) {
	const query = `SELECT` + escrowColumns + ` FROM escrow_transactions WHERE order_id = $1`

	e, err := scanEscrow(r.queryRow(ctx, query, orderID))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get escrow: %w", err)
	}
	return &e, nil
}

// ReleaseEscrow moves an escrow from the given state to released. The state
// guard means a transition observed under the order row lock cannot be
// re-applied by a competing workflow.
func (r *Repository) ReleaseEscrow(ctx context.Context, escrowID string, from domain.EscrowState, now time.Time) error {
	const stmt = `
UPDATE escrow_transactions
SET state = 'released', released_at = $3, updated_at = $3
WHERE id = $1 AND state = $2`

	tag, err := r.exec(ctx, stmt, escrowID, from, now)
	if err != nil {
		return fmt.Errorf("release escrow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("release escrow: %s is no longer %s", escrowID, from)
	}
	return nil
}

func (r *Repository) DisputeEscrow(ctx context.Context, escrowID string, now time.Time) error {
	const stmt = `
UPDATE escrow_transactions
SET state = 'disputed', updated_at = $2
WHERE id = $1 AND state = 'held'`

	tag, err := r.exec(ctx, stmt, escrowID, now)
	if err != nil {
		return fmt.Errorf("dispute escrow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dispute escrow: %s is not held", escrowID)
	}
	return nil
}

func (r *Repository) RefundEscrow(ctx context.Context, escrowID string, now time.Time) error {
	const stmt = `
UPDATE escrow_transactions
SET state = 'refunded', refunded_at = $2, updated_at = $2
WHERE id = $1 AND state <> 'refunded'`

	tag, err := r.exec(ctx, stmt, escrowID, now)
	if err != nil {
		return fmt.Errorf("refund escrow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("refund escrow: %s already refunded", escrowID)
	}
	return nil
}

// AddToBalance credits (or debits, with a negative delta) a vendor balance
// in a single statement. The upsert-with-add avoids the read-then-write
// lost-update hazard when release and refund touch the same vendor at once.
func (r *Repository) AddToBalance(ctx context.Context, userID string, delta decimal.Decimal, currency string, now time.Time) error {
	const stmt = `
INSERT INTO user_balances (user_id, balance, currency, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE
SET balance = user_balances.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at`

	_, err := r.exec(ctx, stmt, userID, delta, currency, now)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("add to balance: %w", err)
	}
	return nil
}

// GetBalance returns nil when the vendor has never been credited.
func (r *Repository) GetBalance(ctx context.Context, userID string) (*domain.VendorBalance, error) {
	const query = `SELECT user_id, balance, currency, updated_at FROM user_balances WHERE user_id = $1`

	var b domain.VendorBalance
	err := r.queryRow(ctx, query, userID).Scan(&b.UserID, &b.Balance, &b.Currency, &b.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

func (r *Repository) GetVendorByUserID(ctx context.Context, userID string) (domain.Vendor, error) {
	const query = `SELECT id, user_id, business_name, created_at FROM vendors WHERE user_id = $1`

	var v domain.Vendor
	err := r.queryRow(ctx, query, userID).Scan(&v.ID, &v.UserID, &v.BusinessName, &v.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Vendor{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Vendor{}, domain.ErrVendorNotFound
		}
		return domain.Vendor{}, fmt.Errorf("get vendor: %w", err)
	}
	return v, nil
}

// SumHeldEscrow totals the funds currently held for a vendor.
func (r *Repository) SumHeldEscrow(ctx context.Context, vendorID string) (decimal.Decimal, error) {
	const query = `
SELECT COALESCE(SUM(amount), 0)
FROM escrow_transactions
WHERE vendor_id = $1 AND state = 'held'`

	var total decimal.Decimal
	if err := r.queryRow(ctx, query, vendorID).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return decimal.Zero, domain.ErrInvalidID
		}
		return decimal.Zero, fmt.Errorf("sum held escrow: %w", err)
	}
	return total, nil
}

// ListEscrows returns every escrow transaction, newest first, for the admin
// reporting surface.
func (r *Repository) ListEscrows(ctx context.Context) ([]domain.EscrowTransaction, error) {
	const query = `SELECT` + escrowColumns + ` FROM escrow_transactions ORDER BY held_at DESC`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list escrows: %w", err)
	}
	defer rows.Close()

	var escrows []domain.EscrowTransaction
	for rows.Next() {
		e, err := scanEscrow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan escrow: %w", err)
		}
		escrows = append(escrows, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate escrows: %w", rows.Err())
	}
	return escrows, nil
}
