package types

import (
	"time"

	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/samber/lo"
)

// BillingCycle is the recurrence period for a subscription ex MONTHLY, ANNUAL
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "MONTHLY"
	BillingCycleAnnual  BillingCycle = "ANNUAL"
)

// DefaultCurrency is the platform's single settlement currency
const DefaultCurrency = "ZAR"

// Fixed cycle lengths in days. These are deliberately not calendar-accurate;
// prorated amounts are computed against these constants for all subscribers.
const (
	DaysInMonthlyCycle = 30
	DaysInAnnualCycle  = 365
)

func (c BillingCycle) String() string {
	return string(c)
}

func (c BillingCycle) Validate() error {
	allowed := []BillingCycle{
		BillingCycleMonthly,
		BillingCycleAnnual,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid billing cycle").
			WithHint("Billing cycle must be MONTHLY or ANNUAL").
			WithReportableDetails(map[string]any{
				"allowed_values": allowed,
				"provided_value": c,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Days returns the fixed number of days in one cycle
func (c BillingCycle) Days() int {
	if c == BillingCycleAnnual {
		return DaysInAnnualCycle
	}
	return DaysInMonthlyCycle
}

// NextPeriodEnd returns the end of a term starting at from. Terms run for
// the fixed cycle length, not to the same calendar day next month.
func (c BillingCycle) NextPeriodEnd(from time.Time) time.Time {
	return from.AddDate(0, 0, c.Days())
}
