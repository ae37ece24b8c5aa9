package proration

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yellowpin/yellowpin/internal/domain/subscription"
	"github.com/yellowpin/yellowpin/internal/domain/tier"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
)

var testNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestCalculator() Calculator {
	return NewCalculatorAt(func() time.Time { return testNow })
}

func newTestTier(name types.TierName, monthly, annual float64) *tier.Tier {
	return &tier.Tier{
		ID:           "tier_" + string(name),
		Name:         name,
		PriceMonthly: decimal.NewFromFloat(monthly),
		PriceAnnual:  decimal.NewFromFloat(annual),
		AdvertQuota:  10,
		ProductQuota: 100,
		BaseModel:    types.BaseModel{Status: types.StatusActive},
	}
}

func newTestSubscription(t *tier.Tier, cycle types.BillingCycle, endsAt *time.Time) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:                 "subs_test",
		SubscriberID:       "subscriber_test",
		BillingCycle:       cycle,
		SubscriptionEndsAt: endsAt,
		BaseModel:          types.BaseModel{Status: types.StatusActive},
	}
	if t != nil {
		sub.TierID = t.ID
		sub.TierName = t.Name
	}
	return sub
}

func TestUpgradeMidCycle(t *testing.T) {
	calc := newTestCalculator()
	silver := newTestTier(types.TierSilver, 200, 2000)
	gold := newTestTier(types.TierGold, 500, 5000)

	endsAt := testNow.AddDate(0, 0, 10)
	sub := newTestSubscription(silver, types.BillingCycleMonthly, &endsAt)

	result, err := calc.Calculate(context.Background(), Params{
		Subscription:    sub,
		CurrentTier:     silver,
		NewTier:         gold,
		NewBillingCycle: types.BillingCycleMonthly,
	})
	require.NoError(t, err)

	// 10 of 30 days remain on a R200 cycle: credit 66.67, charge 433.33
	assert.True(t, result.IsProrated)
	assert.Equal(t, types.PlanChangeTypeUpgrade, result.ChangeType)
	assert.Equal(t, "433.33", result.Amount.StringFixed(2))
	assert.Equal(t, 10, result.Breakdown.RemainingDays)
	assert.Equal(t, 30, result.Breakdown.TotalDaysInCurrentCycle)
	assert.Equal(t, "66.67", result.Breakdown.RemainingValue.StringFixed(2))
	assert.Equal(t, "200.00", result.Breakdown.CurrentPrice.StringFixed(2))
	assert.Equal(t, "500.00", result.Breakdown.NewPrice.StringFixed(2))
}

func TestUpgradeAmountCanGoNegative(t *testing.T) {
	calc := newTestCalculator()
	// Annual silver with most of the term left is worth more than monthly gold
	silver := newTestTier(types.TierSilver, 200, 2000)
	gold := newTestTier(types.TierGold, 500, 5000)

	endsAt := testNow.AddDate(0, 0, 300)
	sub := newTestSubscription(silver, types.BillingCycleAnnual, &endsAt)

	result, err := calc.Calculate(context.Background(), Params{
		Subscription:    sub,
		CurrentTier:     silver,
		NewTier:         gold,
		NewBillingCycle: types.BillingCycleMonthly,
	})
	require.NoError(t, err)

	// remaining value 2000/365*300 = 1643.84 exceeds the 500 new price
	assert.True(t, result.Amount.IsNegative())
	assert.Equal(t, types.PlanChangeTypeUpgrade, result.ChangeType)
}

func TestDowngradeClampsAtZero(t *testing.T) {
	calc := newTestCalculator()
	gold := newTestTier(types.TierGold, 500, 5000)
	bronze := newTestTier(types.TierBronze, 100, 1000)

	endsAt := testNow.AddDate(0, 0, 20)
	sub := newTestSubscription(gold, types.BillingCycleMonthly, &endsAt)

	result, err := calc.Calculate(context.Background(), Params{
		Subscription:    sub,
		CurrentTier:     gold,
		NewTier:         bronze,
		NewBillingCycle: types.BillingCycleMonthly,
	})
	require.NoError(t, err)

	// remaining value 500/30*20 = 333.33 exceeds the 100 new price
	assert.True(t, result.Amount.IsZero())
	assert.True(t, result.IsProrated)
	assert.Equal(t, types.PlanChangeTypeDowngrade, result.ChangeType)
}

func TestDowngradeCharged(t *testing.T) {
	calc := newTestCalculator()
	gold := newTestTier(types.TierGold, 500, 5000)
	silver := newTestTier(types.TierSilver, 200, 2000)

	endsAt := testNow.AddDate(0, 0, 3)
	sub := newTestSubscription(gold, types.BillingCycleMonthly, &endsAt)

	result, err := calc.Calculate(context.Background(), Params{
		Subscription:    sub,
		CurrentTier:     gold,
		NewTier:         silver,
		NewBillingCycle: types.BillingCycleMonthly,
	})
	require.NoError(t, err)

	// remaining value 500/30*3 = 50, so 200 - 50 = 150
	assert.Equal(t, "150.00", result.Amount.StringFixed(2))
	assert.Equal(t, types.PlanChangeTypeDowngrade, result.ChangeType)
}

func TestSameTierCycleChange(t *testing.T) {
	calc := newTestCalculator()
	silver := newTestTier(types.TierSilver, 200, 2000)

	endsAt := testNow.AddDate(0, 0, 10)
	sub := newTestSubscription(silver, types.BillingCycleMonthly, &endsAt)

	result, err := calc.Calculate(context.Background(), Params{
		Subscription:    sub,
		CurrentTier:     silver,
		NewTier:         silver,
		NewBillingCycle: types.BillingCycleAnnual,
	})
	require.NoError(t, err)

	// Same tier gets no credit: full annual price
	assert.Equal(t, "2000.00", result.Amount.StringFixed(2))
	assert.Equal(t, types.PlanChangeTypeSame, result.ChangeType)
}

func TestFirstPurchaseNotProrated(t *testing.T) {
	calc := newTestCalculator()
	gold := newTestTier(types.TierGold, 500, 5000)

	sub := newTestSubscription(nil, types.BillingCycleMonthly, nil)

	result, err := calc.Calculate(context.Background(), Params{
		Subscription:    sub,
		NewTier:         gold,
		NewBillingCycle: types.BillingCycleAnnual,
	})
	require.NoError(t, err)

	assert.False(t, result.IsProrated)
	assert.Equal(t, types.PlanChangeTypeNew, result.ChangeType)
	assert.Equal(t, "5000.00", result.Amount.StringFixed(2))
}

func TestExpiredTermChargedInFull(t *testing.T) {
	calc := newTestCalculator()
	silver := newTestTier(types.TierSilver, 200, 2000)
	gold := newTestTier(types.TierGold, 500, 5000)

	tests := []struct {
		name   string
		endsAt *time.Time
	}{
		{"no term end", nil},
		{"term already over", lo.ToPtr(testNow.AddDate(0, 0, -5))},
		{"term ends today", lo.ToPtr(testNow)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := newTestSubscription(silver, types.BillingCycleMonthly, tt.endsAt)

			result, err := calc.Calculate(context.Background(), Params{
				Subscription:    sub,
				CurrentTier:     silver,
				NewTier:         gold,
				NewBillingCycle: types.BillingCycleMonthly,
			})
			require.NoError(t, err)

			assert.False(t, result.IsProrated)
			assert.Equal(t, "500.00", result.Amount.StringFixed(2))
			assert.Equal(t, types.PlanChangeTypeUpgrade, result.ChangeType)
		})
	}
}

func TestPartialDayRemainderRoundsDown(t *testing.T) {
	calc := newTestCalculator()
	silver := newTestTier(types.TierSilver, 200, 2000)
	gold := newTestTier(types.TierGold, 500, 5000)

	// 10 days and 6 hours left counts as 10 whole days
	endsAt := testNow.Add(10*24*time.Hour + 6*time.Hour)
	sub := newTestSubscription(silver, types.BillingCycleMonthly, &endsAt)

	result, err := calc.Calculate(context.Background(), Params{
		Subscription:    sub,
		CurrentTier:     silver,
		NewTier:         gold,
		NewBillingCycle: types.BillingCycleMonthly,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, result.Breakdown.RemainingDays)
}

// Larger upgrades never cost less than smaller ones from the same position.
func TestUpgradeChargeMonotonicInTargetPrice(t *testing.T) {
	calc := newTestCalculator()
	bronze := newTestTier(types.TierBronze, 100, 1000)
	silver := newTestTier(types.TierSilver, 200, 2000)
	gold := newTestTier(types.TierGold, 500, 5000)

	endsAt := testNow.AddDate(0, 0, 12)
	sub := newTestSubscription(bronze, types.BillingCycleMonthly, &endsAt)

	toSilver, err := calc.Calculate(context.Background(), Params{
		Subscription:    sub,
		CurrentTier:     bronze,
		NewTier:         silver,
		NewBillingCycle: types.BillingCycleMonthly,
	})
	require.NoError(t, err)

	toGold, err := calc.Calculate(context.Background(), Params{
		Subscription:    sub,
		CurrentTier:     bronze,
		NewTier:         gold,
		NewBillingCycle: types.BillingCycleMonthly,
	})
	require.NoError(t, err)

	assert.True(t, toGold.Amount.GreaterThan(toSilver.Amount))
}

func TestUnknownTierRejected(t *testing.T) {
	calc := newTestCalculator()
	rogue := newTestTier(types.TierName("platinum"), 900, 9000)
	gold := newTestTier(types.TierGold, 500, 5000)

	endsAt := testNow.AddDate(0, 0, 10)
	sub := newTestSubscription(rogue, types.BillingCycleMonthly, &endsAt)

	_, err := calc.Calculate(context.Background(), Params{
		Subscription:    sub,
		CurrentTier:     rogue,
		NewTier:         gold,
		NewBillingCycle: types.BillingCycleMonthly,
	})
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.ErrUnknownTier))
}

func TestMissingInputsRejected(t *testing.T) {
	calc := newTestCalculator()
	gold := newTestTier(types.TierGold, 500, 5000)

	_, err := calc.Calculate(context.Background(), Params{
		NewTier:         gold,
		NewBillingCycle: types.BillingCycleMonthly,
	})
	require.Error(t, err)

	_, err = calc.Calculate(context.Background(), Params{
		Subscription:    newTestSubscription(nil, types.BillingCycleMonthly, nil),
		NewBillingCycle: types.BillingCycleMonthly,
	})
	require.Error(t, err)

	_, err = calc.Calculate(context.Background(), Params{
		Subscription:    newTestSubscription(nil, types.BillingCycleMonthly, nil),
		NewTier:         gold,
		NewBillingCycle: types.BillingCycle("WEEKLY"),
	})
	require.Error(t, err)
}
