package proration

import (
	"github.com/yellowpin/yellowpin/internal/domain/subscription"
	"github.com/yellowpin/yellowpin/internal/domain/tier"
	"github.com/yellowpin/yellowpin/internal/types"
	"github.com/shopspring/decimal"
)

// Params holds all necessary input for calculating proration.
type Params struct {
	// Subscription is the subscriber's current ledger row
	Subscription *subscription.Subscription
	// CurrentTier is the tier the subscriber currently holds, nil when the
	// subscriber has no prior tier
	CurrentTier *tier.Tier
	// NewTier is the tier being switched to
	NewTier *tier.Tier
	// NewBillingCycle is the requested cycle for the new term
	NewBillingCycle types.BillingCycle
}

// Breakdown exposes the intermediate values of a proration calculation for
// invoice transparency and testability.
type Breakdown struct {
	RemainingDays           int             `json:"remaining_days"`
	TotalDaysInCurrentCycle int             `json:"total_days_in_current_cycle"`
	RemainingValue          decimal.Decimal `json:"remaining_value"`
	CurrentPrice            decimal.Decimal `json:"current_price"`
	NewPrice                decimal.Decimal `json:"new_price"`
}

// Result holds the output of a proration calculation. Amount is the signed
// net amount: for upgrades it may be negative when the remaining value of the
// current term exceeds the new price, and callers must clamp before charging.
type Result struct {
	Amount     decimal.Decimal      `json:"amount"`
	IsProrated bool                 `json:"is_prorated"`
	ChangeType types.PlanChangeType `json:"change_type"`
	Breakdown  Breakdown            `json:"breakdown"`
}
