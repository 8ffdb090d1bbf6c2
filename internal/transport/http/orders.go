package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/app"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

// BuyerOrderLister is the minimal interface needed to list a buyer's orders.
type BuyerOrderLister interface {
	BuyerOrders(ctx context.Context, buyerID string) ([]domain.Order, error)
}

// HandleBuyerOrders returns an HTTP handler listing the caller's purchases.
func HandleBuyerOrders(svc BuyerOrderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orders, err := svc.BuyerOrders(r.Context(), callerID(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ordersResponse{Orders: toOrderResponses(orders)})
	}
}

// EscrowWorkflow covers the buyer-facing escrow operations on an order.
type EscrowWorkflow interface {
	Capture(ctx context.Context, orderID, callerID string) (app.CaptureResult, error)
	ConfirmDelivery(ctx context.Context, orderID, callerID string) (domain.Order, error)
	Dispute(ctx context.Context, orderID, callerID, reason string) (domain.Order, error)
}

// FulfillmentWorkflow covers the vendor-facing shipping operations.
type FulfillmentWorkflow interface {
	MarkShipped(ctx context.Context, orderID, callerID string) (domain.Order, error)
	ConfirmCOD(ctx context.Context, orderID, callerID string) (domain.Order, error)
}

// HandleOrderActions returns an HTTP handler dispatching
// POST /orders/{id}/{action} for the order lifecycle actions.
func HandleOrderActions(escrow EscrowWorkflow, fulfillment FulfillmentWorkflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orderID, action, ok := parseOrderActionPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		caller := callerID(r)

		switch action {
		case "capture":
			res, err := escrow.Capture(r.Context(), orderID, caller)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if res.AlreadyProcessed {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusCreated)
			}
			_ = json.NewEncoder(w).Encode(captureResponse{
				Order:  toOrderResponse(res.Order),
				Escrow: toEscrowResponse(res.Escrow),
			})

		case "confirm-delivery":
			order, err := escrow.ConfirmDelivery(r.Context(), orderID, caller)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeOrder(w, order)

		case "dispute":
			var req disputeRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			order, err := escrow.Dispute(r.Context(), orderID, caller, req.Reason)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeOrder(w, order)

		case "ship":
			order, err := fulfillment.MarkShipped(r.Context(), orderID, caller)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeOrder(w, order)

		case "confirm-cod":
			order, err := fulfillment.ConfirmCOD(r.Context(), orderID, caller)
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

func parseOrderActionPath(path string) (orderID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	if parts[0] != "orders" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func writeOrder(w http.ResponseWriter, order domain.Order) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toOrderResponse(order))
}

type ordersResponse struct {
	Orders []orderResponse `json:"orders"`
}

type disputeRequest struct {
	Reason string `json:"reason"`
}

type captureResponse struct {
	Order  orderResponse  `json:"order"`
	Escrow escrowResponse `json:"escrow"`
}
