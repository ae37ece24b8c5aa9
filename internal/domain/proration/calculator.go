package proration

import (
	"context"
	"time"

	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
	"github.com/shopspring/decimal"
)

// Calculator computes the amount owed when a subscriber switches tiers
// mid-cycle. Implementations are pure functions of their inputs plus the
// clock; no side effects.
type Calculator interface {
	Calculate(ctx context.Context, params Params) (*Result, error)
}

// NewCalculator creates the default day-based proration calculator.
func NewCalculator() Calculator {
	return &dayBasedCalculator{now: time.Now}
}

// NewCalculatorAt creates a calculator with a fixed clock, for tests.
func NewCalculatorAt(now func() time.Time) Calculator {
	return &dayBasedCalculator{now: now}
}

// dayBasedCalculator prorates against fixed 30/365-day cycle lengths rather
// than actual calendar month lengths. The approximation is intentional and
// must be preserved: stored subscription terms were priced against it.
type dayBasedCalculator struct {
	now func() time.Time
}

func (c *dayBasedCalculator) Calculate(ctx context.Context, params Params) (*Result, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	sub := params.Subscription
	newPrice := params.NewTier.PriceFor(params.NewBillingCycle)

	// No prior tier means this is a first purchase, priced in full
	if !sub.HasPriorTier() || params.CurrentTier == nil {
		return &Result{
			Amount:     newPrice.Round(2),
			IsProrated: false,
			ChangeType: types.PlanChangeTypeNew,
			Breakdown: Breakdown{
				NewPrice: newPrice.Round(2),
			},
		}, nil
	}

	changeType, err := params.CurrentTier.Name.Compare(params.NewTier.Name)
	if err != nil {
		return nil, err
	}

	currentPrice := params.CurrentTier.PriceFor(sub.BillingCycle)

	// No active paid term: nothing to credit, charge the full new price
	if sub.SubscriptionEndsAt == nil {
		return &Result{
			Amount:     newPrice.Round(2),
			IsProrated: false,
			ChangeType: changeType,
			Breakdown: Breakdown{
				CurrentPrice: currentPrice.Round(2),
				NewPrice:     newPrice.Round(2),
			},
		}, nil
	}

	totalDays := sub.BillingCycle.Days()
	remainingDays := wholeDaysBetween(c.now().UTC(), *sub.SubscriptionEndsAt)
	if remainingDays <= 0 {
		return &Result{
			Amount:     newPrice.Round(2),
			IsProrated: false,
			ChangeType: changeType,
			Breakdown: Breakdown{
				RemainingDays:           0,
				TotalDaysInCurrentCycle: totalDays,
				CurrentPrice:            currentPrice.Round(2),
				NewPrice:                newPrice.Round(2),
			},
		}, nil
	}

	remainingValue := currentPrice.
		Div(decimal.NewFromInt(int64(totalDays))).
		Mul(decimal.NewFromInt(int64(remainingDays)))

	var amount decimal.Decimal
	switch changeType {
	case types.PlanChangeTypeDowngrade:
		amount = decimal.Max(decimal.Zero, newPrice.Sub(remainingValue))
	case types.PlanChangeTypeUpgrade:
		// May be negative when the remaining value exceeds the new price;
		// callers clamp before charging
		amount = newPrice.Sub(remainingValue)
	default:
		// Cycle-only change on the same tier: full new price, no credit
		amount = newPrice
	}

	return &Result{
		Amount:     amount.Round(2),
		IsProrated: true,
		ChangeType: changeType,
		Breakdown: Breakdown{
			RemainingDays:           remainingDays,
			TotalDaysInCurrentCycle: totalDays,
			RemainingValue:          remainingValue.Round(2),
			CurrentPrice:            currentPrice.Round(2),
			NewPrice:                newPrice.Round(2),
		},
	}, nil
}

// wholeDaysBetween returns the number of whole days from start to end,
// never negative.
func wholeDaysBetween(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}

func validateParams(params Params) error {
	if params.Subscription == nil {
		return ierr.NewError("subscription is required").
			WithHint("Provide a valid subscription").
			Mark(ierr.ErrValidation)
	}
	if params.NewTier == nil {
		return ierr.NewError("new tier is required").
			WithHint("Provide a valid target tier").
			Mark(ierr.ErrValidation)
	}
	if err := params.NewBillingCycle.Validate(); err != nil {
		return err
	}
	if params.Subscription.HasPriorTier() && params.CurrentTier != nil {
		if err := params.Subscription.BillingCycle.Validate(); err != nil {
			return err
		}
	}
	return nil
}
