package service

import (
	"context"

	"github.com/yellowpin/yellowpin/internal/domain/proration"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
)

// ProrationService computes the amount owed for a mid-cycle tier change
type ProrationService interface {
	CalculateProration(ctx context.Context, params proration.Params) (*proration.Result, error)
}

type prorationService struct {
	serviceParams ServiceParams
}

// NewProrationService creates a new proration service
func NewProrationService(serviceParams ServiceParams) ProrationService {
	return &prorationService{
		serviceParams: serviceParams,
	}
}

// CalculateProration delegates to the underlying calculator.
func (s *prorationService) CalculateProration(ctx context.Context, params proration.Params) (*proration.Result, error) {
	calculator := s.serviceParams.ProrationCalculator

	result, err := calculator.Calculate(ctx, params)
	if err != nil {
		s.serviceParams.Logger.Errorw("proration calculation failed",
			"error", err,
			"subscriber_id", params.Subscription.SubscriberID,
		)
		return nil, ierr.WithError(err).
			WithHint("Check if the subscription and tier details are valid").
			Error()
	}

	s.serviceParams.Logger.Debugw("proration calculation completed",
		"subscriber_id", params.Subscription.SubscriberID,
		"change_type", result.ChangeType,
		"amount", result.Amount.String(),
		"is_prorated", result.IsProrated,
	)

	return result, nil
}
