package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/app"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

// OrderRefunder is the minimal interface needed to refund an order.
type OrderRefunder interface {
	Refund(ctx context.Context, orderID, reason string) (domain.Order, error)
}

// DisputeResolver is the minimal interface needed to settle a dispute.
type DisputeResolver interface {
	ResolveDispute(ctx context.Context, orderID, callerID string, outcome app.DisputeOutcome, note string) (domain.Order, error)
}

// HandleAdminOrders returns an HTTP handler dispatching
// POST /admin/orders/{id}/{refund|resolve-dispute}. Admin authorization is
// enforced upstream, like the rest of authentication.
func HandleAdminOrders(refunder OrderRefunder, resolver DisputeResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orderID, action, ok := parseAdminOrderPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch action {
		case "refund":
			var req refundRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			order, err := refunder.Refund(r.Context(), orderID, req.Reason)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeOrder(w, order)

		case "resolve-dispute":
			var req resolveDisputeRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			order, err := resolver.ResolveDispute(r.Context(), orderID, callerID(r), app.DisputeOutcome(req.Outcome), req.Note)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeOrder(w, order)

		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func parseAdminOrderPath(path string) (orderID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", "", false
	}
	if parts[0] != "admin" || parts[1] != "orders" || parts[2] == "" || parts[3] == "" {
		return "", "", false
	}
	return parts[2], parts[3], true
}

// EscrowLister is the minimal interface needed to list escrow transactions.
type EscrowLister interface {
	EscrowTransactions(ctx context.Context) ([]domain.EscrowTransaction, error)
}

// HandleAdminEscrows returns an HTTP handler listing all escrow transactions.
func HandleAdminEscrows(svc EscrowLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		escrows, err := svc.EscrowTransactions(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]escrowResponse, 0, len(escrows))
		for _, e := range escrows {
			out = append(out, toEscrowResponse(e))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(escrowsResponse{Escrows: out})
	}
}

type refundRequest struct {
	Reason string `json:"reason"`
}

type resolveDisputeRequest struct {
	Outcome string `json:"outcome"`
	Note    string `json:"note"`
}

type escrowsResponse struct {
	Escrows []escrowResponse `json:"escrows"`
}
