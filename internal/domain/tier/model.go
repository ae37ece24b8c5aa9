package tier

import (
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
	"github.com/shopspring/decimal"
)

// Tier is an immutable catalog entry describing a subscription level.
// Exactly one active row exists per tier name; edits replace the row.
type Tier struct {
	ID           string           `db:"id" json:"id"`
	Name         types.TierName   `db:"name" json:"name"`
	PriceMonthly decimal.Decimal  `db:"price_monthly" json:"price_monthly"`
	PriceAnnual  decimal.Decimal  `db:"price_annual" json:"price_annual"`
	AdvertQuota  int              `db:"advert_quota" json:"advert_quota"`
	ProductQuota int              `db:"product_quota" json:"product_quota"`
	Features     types.FeatureSet `db:"features" json:"features"`
	types.BaseModel
}

// PriceFor returns the tier's price for the given billing cycle
func (t *Tier) PriceFor(cycle types.BillingCycle) decimal.Decimal {
	if cycle == types.BillingCycleAnnual {
		return t.PriceAnnual
	}
	return t.PriceMonthly
}

// Quota returns the named quota value
func (t *Tier) Quota(kind types.QuotaKind) (int, error) {
	switch kind {
	case types.QuotaKindAdverts:
		return t.AdvertQuota, nil
	case types.QuotaKindProducts:
		return t.ProductQuota, nil
	default:
		return 0, ierr.NewErrorf("unknown quota kind %s", kind).
			WithHintf("Quota kind %s is not supported", kind).
			Mark(ierr.ErrUnknownQuotaKind)
	}
}

// IsActive reports whether the tier can be subscribed to
func (t *Tier) IsActive() bool {
	return t.Status == types.StatusActive
}

func (t *Tier) Validate() error {
	if err := t.Name.Validate(); err != nil {
		return err
	}
	if t.PriceMonthly.IsNegative() {
		return ierr.NewError("monthly price must be non-negative").
			WithHint("Tier prices cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if t.PriceAnnual.IsNegative() {
		return ierr.NewError("annual price must be non-negative").
			WithHint("Tier prices cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if t.AdvertQuota < 0 {
		return ierr.NewError("advert quota must be non-negative").
			WithHint("Tier quotas cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if t.ProductQuota < 0 {
		return ierr.NewError("product quota must be non-negative").
			WithHint("Tier quotas cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
