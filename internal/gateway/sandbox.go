// Package gateway holds payment gateway integrations. Only the sandbox
// gateway ships here; real provider integrations plug in behind
// payment.Gateway.
package gateway

import (
	"context"

	"github.com/yellowpin/yellowpin/internal/config"
	"github.com/yellowpin/yellowpin/internal/domain/payment"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/types"
)

const GatewaySandbox = "sandbox"

// NewGateway selects the configured gateway implementation
func NewGateway(cfg *config.Configuration, logger *logger.Logger) (payment.Gateway, error) {
	switch cfg.Payment.Gateway {
	case GatewaySandbox, "":
		return NewSandboxGateway(logger), nil
	default:
		return nil, ierr.NewErrorf("unknown payment gateway %q", cfg.Payment.Gateway).
			WithHint("Check the payment gateway configuration").
			Mark(ierr.ErrValidation)
	}
}

// sandboxGateway approves every charge. It exists for local development and
// demo environments where no real provider is wired.
type sandboxGateway struct {
	logger *logger.Logger
}

// NewSandboxGateway creates a gateway that approves every charge
func NewSandboxGateway(logger *logger.Logger) payment.Gateway {
	return &sandboxGateway{logger: logger}
}

func (g *sandboxGateway) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref := types.GenerateUUIDWithPrefix("txn")
	g.logger.Infow("sandbox gateway approved charge",
		"subscriber_id", req.SubscriberID,
		"invoice_id", req.InvoiceID,
		"amount", req.Amount,
		"currency", req.Currency,
		"transaction_reference", ref,
	)

	return &payment.ChargeResult{
		Success:              true,
		TransactionReference: ref,
	}, nil
}
