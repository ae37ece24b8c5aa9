package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTierName(t *testing.T) {
	for _, name := range []string{"basic", "bronze", "silver", "gold"} {
		parsed, err := ParseTierName(name)
		require.NoError(t, err)
		assert.Equal(t, TierName(name), parsed)
	}

	_, err := ParseTierName("platinum")
	require.Error(t, err)

	_, err = ParseTierName("")
	require.Error(t, err)
}

func TestTierCompare(t *testing.T) {
	tests := []struct {
		current TierName
		target  TierName
		want    PlanChangeType
	}{
		{TierBasic, TierGold, PlanChangeTypeUpgrade},
		{TierBronze, TierSilver, PlanChangeTypeUpgrade},
		{TierGold, TierBasic, PlanChangeTypeDowngrade},
		{TierSilver, TierBronze, PlanChangeTypeDowngrade},
		{TierSilver, TierSilver, PlanChangeTypeSame},
	}

	for _, tt := range tests {
		got, err := tt.current.Compare(tt.target)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.current, tt.target)
	}

	_, err := TierName("platinum").Compare(TierGold)
	require.Error(t, err)

	_, err = TierGold.Compare(TierName("platinum"))
	require.Error(t, err)
}

func TestSocialFeatureCredits(t *testing.T) {
	assert.Equal(t, 2, TierGold.SocialFeatureCredits())
	assert.Equal(t, 1, TierSilver.SocialFeatureCredits())
	assert.Equal(t, 0, TierBronze.SocialFeatureCredits())
	assert.Equal(t, 0, TierBasic.SocialFeatureCredits())
}

func TestBillingCycleDays(t *testing.T) {
	assert.Equal(t, 30, BillingCycleMonthly.Days())
	assert.Equal(t, 365, BillingCycleAnnual.Days())

	require.NoError(t, BillingCycleMonthly.Validate())
	require.NoError(t, BillingCycleAnnual.Validate())
	require.Error(t, BillingCycle("WEEKLY").Validate())
}

func TestNextPeriodEnd(t *testing.T) {
	start := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	monthly := BillingCycleMonthly.NextPeriodEnd(start)
	assert.Equal(t, start.AddDate(0, 0, 30), monthly)

	annual := BillingCycleAnnual.NextPeriodEnd(start)
	assert.Equal(t, start.AddDate(0, 0, 365), annual)
}
