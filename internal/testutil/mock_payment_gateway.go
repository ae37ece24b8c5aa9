package testutil

import (
	"context"
	"sync"

	"github.com/yellowpin/yellowpin/internal/domain/payment"
	"github.com/yellowpin/yellowpin/internal/types"
)

var _ payment.Gateway = (*MockPaymentGateway)(nil)

// MockPaymentGateway is a scriptable payment.Gateway for testing. By default
// every charge succeeds with a generated transaction reference.
type MockPaymentGateway struct {
	mu sync.Mutex

	// ChargeFn, when set, handles the charge entirely
	ChargeFn func(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error)

	// DeclineReason, when non-empty, makes every charge fail with this reason
	DeclineReason string

	// Err, when set, is returned from every charge
	Err error

	// BlockUntilCancelled makes Charge wait for ctx cancellation, simulating
	// a gateway that never responds
	BlockUntilCancelled bool

	requests []payment.ChargeRequest
}

// NewMockPaymentGateway creates a gateway that approves every charge
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{}
}

func (g *MockPaymentGateway) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	chargeFn := g.ChargeFn
	declineReason := g.DeclineReason
	err := g.Err
	block := g.BlockUntilCancelled
	g.mu.Unlock()

	if chargeFn != nil {
		return chargeFn(ctx, req)
	}
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if declineReason != "" {
		return &payment.ChargeResult{
			Success: false,
			Reason:  declineReason,
		}, nil
	}

	return &payment.ChargeResult{
		Success:              true,
		TransactionReference: types.GenerateUUIDWithPrefix("txn"),
	}, nil
}

// Requests returns every charge request seen so far
func (g *MockPaymentGateway) Requests() []payment.ChargeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]payment.ChargeRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

// Reset clears recorded requests and scripted behaviour
func (g *MockPaymentGateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ChargeFn = nil
	g.DeclineReason = ""
	g.Err = nil
	g.BlockUntilCancelled = false
	g.requests = nil
}
