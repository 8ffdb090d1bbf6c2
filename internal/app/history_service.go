package app

import (
	"context"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

type HistoryRepository interface {
	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	ListOrdersByVendorUser(ctx context.Context, vendorUserID string) ([]domain.Order, error)
	ListEscrows(ctx context.Context) ([]domain.EscrowTransaction, error)
}

// HistoryService serves the reporting reads: a buyer's orders, a vendor's
// incoming orders, and the admin escrow listing.
type HistoryService struct {
	repo HistoryRepository
}

func NewHistoryService(repo HistoryRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

func (s *HistoryService) BuyerOrders(ctx context.Context, buyerID string) ([]domain.Order, error) {
	if buyerID == "" {
		return nil, domain.ErrCallerRequired
	}
	return s.repo.ListOrdersByBuyer(ctx, buyerID)
}

func (s *HistoryService) VendorOrders(ctx context.Context, vendorUserID string) ([]domain.Order, error) {
	if vendorUserID == "" {
		return nil, domain.ErrCallerRequired
	}
	return s.repo.ListOrdersByVendorUser(ctx, vendorUserID)
}

func (s *HistoryService) EscrowTransactions(ctx context.Context) ([]domain.EscrowTransaction, error) {
	return s.repo.ListEscrows(ctx)
}
