package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

type EarningsRepository interface {
	GetVendorByUserID(ctx context.Context, userID string) (domain.Vendor, error)
	GetBalance(ctx context.Context, userID string) (*domain.VendorBalance, error)
	SumHeldEscrow(ctx context.Context, vendorID string) (decimal.Decimal, error)
}

// EarningsService is the read-only earnings view: settled balance plus
// whatever is still held in escrow.
type EarningsService struct {
	repo     EarningsRepository
	currency string
}

func NewEarningsService(repo EarningsRepository, currency string) *EarningsService {
	return &EarningsService{
		repo:     repo,
		currency: currency,
	}
}

type Earnings struct {
	Available       decimal.Decimal
	PendingInEscrow decimal.Decimal
	Currency        string
}

func (s *EarningsService) VendorEarnings(ctx context.Context, vendorUserID string) (Earnings, error) {
	if vendorUserID == "" {
		return Earnings{}, domain.ErrCallerRequired
	}

	vendor, err := s.repo.GetVendorByUserID(ctx, vendorUserID)
	if err != nil {
		return Earnings{}, err
	}

	earnings := Earnings{
		Available: decimal.Zero,
		Currency:  s.currency,
	}

	balance, err := s.repo.GetBalance(ctx, vendorUserID)
	if err != nil {
		return Earnings{}, err
	}
	if balance != nil {
		earnings.Available = balance.Balance
		earnings.Currency = balance.Currency
	}

	pending, err := s.repo.SumHeldEscrow(ctx, vendor.ID)
	if err != nil {
		return Earnings{}, err
	}
	earnings.PendingInEscrow = pending

	return earnings, nil
}
