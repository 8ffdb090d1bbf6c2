package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/app"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

// VendorOrderLister is the minimal interface needed to list a vendor's sales.
type VendorOrderLister interface {
	VendorOrders(ctx context.Context, vendorUserID string) ([]domain.Order, error)
}

// HandleVendorOrders returns an HTTP handler listing orders against the
// caller's listings.
func HandleVendorOrders(svc VendorOrderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orders, err := svc.VendorOrders(r.Context(), callerID(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ordersResponse{Orders: toOrderResponses(orders)})
	}
}

// EarningsReporter is the minimal interface needed to report vendor earnings.
type EarningsReporter interface {
	VendorEarnings(ctx context.Context, vendorUserID string) (app.Earnings, error)
}

// HandleVendorEarnings returns an HTTP handler for the caller's settled
// balance and funds still held in escrow.
func HandleVendorEarnings(svc EarningsReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		earnings, err := svc.VendorEarnings(r.Context(), callerID(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(earningsResponse{
			Available:       earnings.Available,
			PendingInEscrow: earnings.PendingInEscrow,
			Currency:        earnings.Currency,
		})
	}
}

type earningsResponse struct {
	Available       decimal.Decimal `json:"available"`
	PendingInEscrow decimal.Decimal `json:"pending_in_escrow"`
	Currency        string          `json:"currency"`
}
