package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/thekbbohara/culturelense-ideax-sub000/internal/domain"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidID            = "invalid_id"
	codeInvalidQuantity      = "invalid_quantity"
	codeInvalidAmount        = "invalid_amount"
	codeNoItems              = "no_items"
	codeInvalidPaymentMethod = "invalid_payment_method"
	codeCallerRequired       = "caller_required"
	codeReasonRequired       = "reason_required"
	codeInvalidOutcome       = "invalid_outcome"
	codeOrderNotFound        = "order_not_found"
	codeListingNotFound      = "listing_not_found"
	codeEscrowNotFound       = "escrow_not_found"
	codeVendorNotFound       = "vendor_not_found"
	codeUnauthorized         = "unauthorized"
	codeInsufficientStock    = "insufficient_stock"
	codeSelfPurchase         = "self_purchase_forbidden"
	codePaymentDeclined      = "payment_declined"
	codeNotEscrowOrder       = "not_escrow_order"
	codeNotCODOrder          = "not_cod_order"
	codeOrderNotEscrowed     = "order_not_escrowed"
	codeOrderNotShipped      = "order_not_shipped"
	codeOrderAlreadyShipped  = "order_already_shipped"
	codeOrderCancelled       = "order_cancelled"
	codeOrderNotPayable      = "order_not_payable"
	codeOrderNotRefundable   = "order_not_refundable"
	codeEscrowDisputed       = "escrow_disputed"
	codeEscrowNotDisputed    = "escrow_not_disputed"
	codeForbidden            = "forbidden"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// sentinelStatus maps each domain sentinel to its HTTP status and stable
// machine-readable code.
var sentinelStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrOrderNotFound, http.StatusNotFound, codeOrderNotFound},
	{domain.ErrListingNotFound, http.StatusNotFound, codeListingNotFound},
	{domain.ErrEscrowNotFound, http.StatusNotFound, codeEscrowNotFound},
	{domain.ErrVendorNotFound, http.StatusNotFound, codeVendorNotFound},
	{domain.ErrUnauthorized, http.StatusForbidden, codeUnauthorized},
	{domain.ErrInsufficientStock, http.StatusConflict, codeInsufficientStock},
	{domain.ErrSelfPurchase, http.StatusConflict, codeSelfPurchase},
	{domain.ErrPaymentDeclined, http.StatusPaymentRequired, codePaymentDeclined},
	{domain.ErrNotEscrowOrder, http.StatusConflict, codeNotEscrowOrder},
	{domain.ErrNotCODOrder, http.StatusConflict, codeNotCODOrder},
	{domain.ErrOrderNotEscrowed, http.StatusConflict, codeOrderNotEscrowed},
	{domain.ErrOrderNotShipped, http.StatusConflict, codeOrderNotShipped},
	{domain.ErrOrderAlreadyShipped, http.StatusConflict, codeOrderAlreadyShipped},
	{domain.ErrOrderCancelled, http.StatusConflict, codeOrderCancelled},
	{domain.ErrOrderNotPayable, http.StatusConflict, codeOrderNotPayable},
	{domain.ErrOrderNotRefundable, http.StatusConflict, codeOrderNotRefundable},
	{domain.ErrEscrowDisputed, http.StatusConflict, codeEscrowDisputed},
	{domain.ErrEscrowNotDisputed, http.StatusConflict, codeEscrowNotDisputed},
	{domain.ErrNoItems, http.StatusBadRequest, codeNoItems},
	{domain.ErrInvalidPaymentMethod, http.StatusBadRequest, codeInvalidPaymentMethod},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, codeInvalidQuantity},
	{domain.ErrInvalidAmount, http.StatusBadRequest, codeInvalidAmount},
	{domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
	{domain.ErrCallerRequired, http.StatusBadRequest, codeCallerRequired},
	{domain.ErrReasonRequired, http.StatusBadRequest, codeReasonRequired},
	{domain.ErrInvalidOutcome, http.StatusBadRequest, codeInvalidOutcome},
}

// writeServiceError translates a workflow error into the JSON error envelope.
// Sentinels may arrive wrapped (checkout annotates them with the failing
// listing), so matching uses errors.Is and the message keeps the wrapping.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, m := range sentinelStatus {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
