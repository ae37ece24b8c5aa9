package types

import (
	"strings"

	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/samber/lo"
)

// TierName identifies a subscription tier. The set is closed and totally
// ordered; TierHierarchy defines the order from lowest to highest.
type TierName string

const (
	TierBasic  TierName = "basic"
	TierBronze TierName = "bronze"
	TierSilver TierName = "silver"
	TierGold   TierName = "gold"
)

// TierHierarchy orders tiers from lowest to highest. Comparisons between
// tiers are index comparisons against this slice.
var TierHierarchy = []TierName{
	TierBasic,
	TierBronze,
	TierSilver,
	TierGold,
}

func (t TierName) String() string {
	return string(t)
}

func (t TierName) Validate() error {
	if !lo.Contains(TierHierarchy, t) {
		return ierr.NewError("unknown tier").
			WithHintf("Tier %s is not a known tier", t).
			WithReportableDetails(map[string]any{
				"allowed_values": TierHierarchy,
				"provided_value": t,
			}).
			Mark(ierr.ErrUnknownTier)
	}
	return nil
}

// ParseTierName normalizes and validates a tier name
func ParseTierName(s string) (TierName, error) {
	t := TierName(strings.ToLower(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// Compare classifies a transition from t to target
func (t TierName) Compare(target TierName) (PlanChangeType, error) {
	currentIdx := lo.IndexOf(TierHierarchy, t)
	targetIdx := lo.IndexOf(TierHierarchy, target)
	if currentIdx < 0 {
		return "", ierr.NewErrorf("unknown tier %s", t).
			WithHintf("Tier %s is not part of the tier hierarchy", t).
			Mark(ierr.ErrUnknownTier)
	}
	if targetIdx < 0 {
		return "", ierr.NewErrorf("unknown tier %s", target).
			WithHintf("Tier %s is not part of the tier hierarchy", target).
			Mark(ierr.ErrUnknownTier)
	}

	switch {
	case targetIdx > currentIdx:
		return PlanChangeTypeUpgrade, nil
	case targetIdx < currentIdx:
		return PlanChangeTypeDowngrade, nil
	default:
		return PlanChangeTypeSame, nil
	}
}

// SocialFeatureCredits returns the number of social feature credits granted
// per billing period for the tier
func (t TierName) SocialFeatureCredits() int {
	switch t {
	case TierGold:
		return 2
	case TierSilver:
		return 1
	default:
		return 0
	}
}

// QuotaKind names a numeric quota carried by a tier
type QuotaKind string

const (
	QuotaKindAdverts  QuotaKind = "advert_quota"
	QuotaKindProducts QuotaKind = "product_quota"
)

func (k QuotaKind) String() string {
	return string(k)
}

func (k QuotaKind) Validate() error {
	allowed := []QuotaKind{
		QuotaKindAdverts,
		QuotaKindProducts,
	}
	if !lo.Contains(allowed, k) {
		return ierr.NewError("unknown quota kind").
			WithHintf("Quota kind %s is not supported", k).
			WithReportableDetails(map[string]any{
				"allowed_values": allowed,
				"provided_value": k,
			}).
			Mark(ierr.ErrUnknownQuotaKind)
	}
	return nil
}

// FeatureSet is the typed set of capabilities a tier grants. Adding a
// capability means adding a field here; unknown keys cannot exist.
type FeatureSet struct {
	Analytics       bool `db:"feature_analytics" json:"analytics"`
	PrioritySupport bool `db:"feature_priority_support" json:"priority_support"`
	SocialFeatures  bool `db:"feature_social" json:"social_features"`
	FeaturedListing bool `db:"feature_featured_listing" json:"featured_listing"`
}
