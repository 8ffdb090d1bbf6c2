package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CaptureRequest asks the payment provider to capture funds for one order.
// OrderID doubles as the idempotency key: capturing the same order twice
// must return the first result, not charge again.
type CaptureRequest struct {
	OrderID  string
	BuyerID  string
	Amount   decimal.Decimal
	Currency string
}

type CaptureResult struct {
	ConfirmationID string
	Declined       bool
	DeclineReason  string
}

// Gateway is the boundary to the external payment provider. Implementations
// must be safe to call outside a database transaction and idempotent per
// order: a retry after a crash re-reads the prior outcome instead of
// re-charging.
type Gateway interface {
	Capture(ctx context.Context, req CaptureRequest) (CaptureResult, error)
}

// Simulated is an in-process Gateway for local runs and tests. It remembers
// every capture by order ID so repeated calls replay the original result.
type Simulated struct {
	mu      sync.Mutex
	results map[string]CaptureResult

	declineAll bool
	declined   map[string]string
}

type SimulatedOption func(*Simulated)

// DeclineAll makes every first-time capture fail.
func DeclineAll() SimulatedOption {
	return func(g *Simulated) {
		g.declineAll = true
	}
}

// DeclineOrder makes the first capture of a specific order fail with reason.
func DeclineOrder(orderID, reason string) SimulatedOption {
	return func(g *Simulated) {
		g.declined[orderID] = reason
	}
}

func NewSimulated(opts ...SimulatedOption) *Simulated {
	g := &Simulated{
		results:  make(map[string]CaptureResult),
		declined: make(map[string]string),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Simulated) Capture(_ context.Context, req CaptureRequest) (CaptureResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if res, ok := g.results[req.OrderID]; ok {
		return res, nil
	}

	var res CaptureResult
	switch {
	case g.declineAll:
		res = CaptureResult{Declined: true, DeclineReason: "declined by gateway"}
	default:
		if reason, ok := g.declined[req.OrderID]; ok {
			res = CaptureResult{Declined: true, DeclineReason: reason}
		} else {
			res = CaptureResult{ConfirmationID: uuid.NewString()}
		}
	}

	g.results[req.OrderID] = res
	return res, nil
}
