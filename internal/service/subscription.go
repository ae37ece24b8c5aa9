package service

import (
	"context"
	"time"

	"github.com/yellowpin/yellowpin/internal/cache"
	"github.com/yellowpin/yellowpin/internal/domain/subscription"
	"github.com/yellowpin/yellowpin/internal/domain/tier"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
	"github.com/samber/lo"
)

// SubscriptionService is the single writer of the subscription ledger.
// CommitPlanChange updates the five plan fields together; no partial write
// is ever observable.
type SubscriptionService interface {
	// GetCurrent returns the subscriber's ledger row
	GetCurrent(ctx context.Context, subscriberID string) (*subscription.Subscription, error)
	// CreateDefault creates the basic-tier ledger row for a newly registered
	// subscriber
	CreateDefault(ctx context.Context, subscriberID string) (*subscription.Subscription, error)
	// CommitPlanChange moves the subscriber to the new tier and resets the
	// quota counters. Invoked exactly once per successful plan change, after
	// payment success (or immediately when the amount is zero).
	CommitPlanChange(ctx context.Context, sub *subscription.Subscription, newTier *tier.Tier, newCycle types.BillingCycle) (*subscription.Subscription, error)
}

type subscriptionService struct {
	serviceParams ServiceParams
}

// NewSubscriptionService creates a new subscription ledger service
func NewSubscriptionService(serviceParams ServiceParams) SubscriptionService {
	return &subscriptionService{
		serviceParams: serviceParams,
	}
}

func (s *subscriptionService) GetCurrent(ctx context.Context, subscriberID string) (*subscription.Subscription, error) {
	if subscriberID == "" {
		return nil, ierr.NewError("subscriber ID is required").
			WithHint("Provide a valid subscriber ID").
			Mark(ierr.ErrValidation)
	}

	sub, err := s.serviceParams.SubRepo.GetBySubscriber(ctx, subscriberID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewErrorf("subscriber %s not found", subscriberID).
				WithHintf("No subscription exists for subscriber %s", subscriberID).
				Mark(ierr.ErrSubscriberNotFound)
		}
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) CreateDefault(ctx context.Context, subscriberID string) (*subscription.Subscription, error) {
	if subscriberID == "" {
		return nil, ierr.NewError("subscriber ID is required").
			WithHint("Provide a valid subscriber ID").
			Mark(ierr.ErrValidation)
	}

	sub := &subscription.Subscription{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		SubscriberID: subscriberID,
		BillingCycle: types.BillingCycleMonthly,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}

	if err := s.serviceParams.SubRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.serviceParams.Logger.Infow("created default subscription",
		"subscription_id", sub.ID,
		"subscriber_id", subscriberID,
	)

	return sub, nil
}

func (s *subscriptionService) CommitPlanChange(ctx context.Context, sub *subscription.Subscription, newTier *tier.Tier, newCycle types.BillingCycle) (*subscription.Subscription, error) {
	if err := newCycle.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	updated := *sub
	updated.TierID = newTier.ID
	updated.TierName = newTier.Name
	updated.BillingCycle = newCycle
	updated.SubscriptionEndsAt = lo.ToPtr(newCycle.NextPeriodEnd(now))
	updated.AdvertsRemaining = newTier.AdvertQuota
	updated.SocialCreditsRemaining = newTier.Name.SocialFeatureCredits()
	updated.UpdatedAt = now
	updated.UpdatedBy = types.GetUserID(ctx)

	// The repository enforces the optimistic version check; a concurrent
	// writer surfaces here as a version conflict and nothing is written
	if err := s.serviceParams.SubRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	if s.serviceParams.Cache != nil {
		s.serviceParams.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixSubscription, sub.SubscriberID))
	}

	s.serviceParams.Logger.Infow("committed plan change",
		"subscription_id", updated.ID,
		"subscriber_id", updated.SubscriberID,
		"tier", updated.TierName,
		"billing_cycle", updated.BillingCycle,
		"subscription_ends_at", updated.SubscriptionEndsAt,
	)

	return &updated, nil
}
