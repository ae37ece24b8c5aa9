package subscription

import (
	"time"

	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
)

// Subscription is the authoritative record of a subscriber's current tier,
// billing cycle and quota counters. One row per subscriber; created at
// registration and never deleted while the subscriber exists.
type Subscription struct {
	ID           string `db:"id" json:"id"`
	SubscriberID string `db:"subscriber_id" json:"subscriber_id"`
	// TierID is empty until the subscriber's first plan change
	TierID       string             `db:"tier_id" json:"tier_id"`
	TierName     types.TierName     `db:"tier_name" json:"tier_name"`
	BillingCycle types.BillingCycle `db:"billing_cycle" json:"billing_cycle"`
	// SubscriptionEndsAt is nil when the subscriber has no active paid term
	SubscriptionEndsAt *time.Time `db:"subscription_ends_at" json:"subscription_ends_at,omitempty"`
	AdvertsRemaining   int        `db:"adverts_remaining" json:"adverts_remaining"`
	// SocialCreditsRemaining is the count of social feature credits left in
	// the current period
	SocialCreditsRemaining int `db:"social_credits_remaining" json:"social_credits_remaining"`
	// Version backs the optimistic concurrency check on updates
	Version int `db:"version" json:"version"`
	types.BaseModel
}

// HasActiveTerm reports whether the subscriber currently holds a paid term
func (s *Subscription) HasActiveTerm(now time.Time) bool {
	return s.SubscriptionEndsAt != nil && s.SubscriptionEndsAt.After(now)
}

// HasPriorTier reports whether the subscriber has ever been placed on a tier
func (s *Subscription) HasPriorTier() bool {
	return s.TierID != ""
}

func (s *Subscription) Validate() error {
	if s.SubscriberID == "" {
		return ierr.NewError("subscriber ID is required").
			WithHint("Provide a valid subscriber ID").
			Mark(ierr.ErrValidation)
	}
	if s.AdvertsRemaining < 0 {
		return ierr.NewError("adverts remaining must be non-negative").
			WithHint("Quota counters cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if s.SocialCreditsRemaining < 0 {
		return ierr.NewError("social credits remaining must be non-negative").
			WithHint("Quota counters cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if s.TierName != "" {
		if err := s.TierName.Validate(); err != nil {
			return err
		}
	}
	return nil
}
