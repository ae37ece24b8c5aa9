package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
)

type SubscriptionServiceSuite struct {
	baseServiceSuite
	service SubscriptionService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.baseServiceSuite.SetupTest()
	s.service = NewSubscriptionService(s.newServiceParams())
}

func (s *SubscriptionServiceSuite) TestCreateDefault() {
	sub, err := s.service.CreateDefault(s.GetContext(), "subscriber_1")
	s.NoError(err)

	s.Equal("subscriber_1", sub.SubscriberID)
	s.Equal(types.BillingCycleMonthly, sub.BillingCycle)
	s.False(sub.HasPriorTier())
	s.Nil(sub.SubscriptionEndsAt)
	s.Zero(sub.AdvertsRemaining)
	s.Zero(sub.SocialCreditsRemaining)

	got, err := s.service.GetCurrent(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Equal(sub.ID, got.ID)
}

func (s *SubscriptionServiceSuite) TestCreateDefaultRequiresSubscriberID() {
	_, err := s.service.CreateDefault(s.GetContext(), "")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestGetCurrentUnknownSubscriber() {
	_, err := s.service.GetCurrent(s.GetContext(), "subscriber_missing")
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrSubscriberNotFound))
}

func (s *SubscriptionServiceSuite) TestCommitPlanChange() {
	silver := s.createTier(types.TierSilver, 200, 2000, 10, 100)
	gold := s.createTier(types.TierGold, 500, 5000, 25, 500)

	endsAt := time.Now().UTC().AddDate(0, 0, 10)
	sub := s.createSubscription("subscriber_1", silver, types.BillingCycleMonthly, lo.ToPtr(endsAt))
	sub.AdvertsRemaining = 2
	sub.SocialCreditsRemaining = 0

	before := time.Now().UTC()
	updated, err := s.service.CommitPlanChange(s.GetContext(), sub, gold, types.BillingCycleAnnual)
	s.NoError(err)

	s.Equal(gold.ID, updated.TierID)
	s.Equal(types.TierGold, updated.TierName)
	s.Equal(types.BillingCycleAnnual, updated.BillingCycle)

	// Quota counters reset to the new tier's allowances, never carried over
	s.Equal(gold.AdvertQuota, updated.AdvertsRemaining)
	s.Equal(2, updated.SocialCreditsRemaining)

	// New term runs a full annual cycle from commit time
	s.NotNil(updated.SubscriptionEndsAt)
	s.WithinDuration(before.AddDate(0, 0, 365), *updated.SubscriptionEndsAt, time.Minute)

	s.Equal(sub.Version+1, updated.Version)

	got, err := s.service.GetCurrent(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Equal(gold.ID, got.TierID)
	s.Equal(updated.Version, got.Version)
}

func (s *SubscriptionServiceSuite) TestCommitPlanChangeInvalidCycle() {
	gold := s.createTier(types.TierGold, 500, 5000, 25, 500)
	sub := s.createSubscription("subscriber_1", nil, types.BillingCycleMonthly, nil)

	_, err := s.service.CommitPlanChange(s.GetContext(), sub, gold, types.BillingCycle("weekly"))
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestCommitPlanChangeStaleVersion() {
	silver := s.createTier(types.TierSilver, 200, 2000, 10, 100)
	gold := s.createTier(types.TierGold, 500, 5000, 25, 500)
	sub := s.createSubscription("subscriber_1", silver, types.BillingCycleMonthly, nil)

	_, err := s.service.CommitPlanChange(s.GetContext(), sub, gold, types.BillingCycleMonthly)
	s.NoError(err)

	// The caller still holds the pre-commit version; a second commit from it
	// must lose the optimistic check and write nothing
	_, err = s.service.CommitPlanChange(s.GetContext(), sub, silver, types.BillingCycleMonthly)
	s.Error(err)
	s.True(ierr.IsVersionConflict(err))

	got, err := s.service.GetCurrent(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Equal(gold.ID, got.TierID)
}
