package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/app"
	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

// CheckoutRunner is the minimal interface needed to place an order.
type CheckoutRunner interface {
	Checkout(ctx context.Context, in app.CheckoutInput) ([]domain.Order, error)
}

// HandleCheckout returns an HTTP handler for atomic multi-item checkout.
func HandleCheckout(svc CheckoutRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		buyerID := callerID(r)
		if buyerID == "" {
			writeError(w, http.StatusBadRequest, codeCallerRequired, domain.ErrCallerRequired.Error())
			return
		}

		var req checkoutRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		items := make([]app.CheckoutItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, app.CheckoutItem{
				ListingID: it.ListingID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
			})
		}

		orders, err := svc.Checkout(r.Context(), app.CheckoutInput{
			BuyerID:         buyerID,
			Items:           items,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(checkoutResponse{Orders: toOrderResponses(orders)})
	}
}

type checkoutItemRequest struct {
	ListingID string          `json:"listing_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type checkoutRequest struct {
	Items           []checkoutItemRequest `json:"items"`
	ShippingAddress string                `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method"`
}

type checkoutResponse struct {
	Orders []orderResponse `json:"orders"`
}
