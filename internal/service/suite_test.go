package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yellowpin/yellowpin/internal/domain/proration"
	"github.com/yellowpin/yellowpin/internal/domain/subscription"
	"github.com/yellowpin/yellowpin/internal/domain/tier"
	"github.com/yellowpin/yellowpin/internal/testutil"
	"github.com/yellowpin/yellowpin/internal/types"
)

// baseServiceSuite extends the shared test suite with service wiring and
// fixture helpers used across the service tests.
type baseServiceSuite struct {
	testutil.BaseServiceTestSuite
}

func (s *baseServiceSuite) newServiceParams() ServiceParams {
	return ServiceParams{
		Logger:              s.GetLogger(),
		Config:              s.GetConfig(),
		DB:                  s.GetDB(),
		Cache:               s.GetCache(),
		TierRepo:            s.GetStores().TierRepo,
		SubRepo:             s.GetStores().SubscriptionRepo,
		InvoiceRepo:         s.GetStores().InvoiceRepo,
		PaymentRepo:         s.GetStores().PaymentRepo,
		ProrationCalculator: proration.NewCalculator(),
		PaymentGateway:      s.GetGateway(),
		WebhookPublisher:    s.GetWebhookPublisher(),
	}
}

func (s *baseServiceSuite) createTier(name types.TierName, monthly, annual float64, advertQuota, productQuota int) *tier.Tier {
	t := &tier.Tier{
		ID:           "tier_" + string(name),
		Name:         name,
		PriceMonthly: decimal.NewFromFloat(monthly),
		PriceAnnual:  decimal.NewFromFloat(annual),
		AdvertQuota:  advertQuota,
		ProductQuota: productQuota,
		Features: types.FeatureSet{
			Analytics:      name == types.TierSilver || name == types.TierGold,
			SocialFeatures: name == types.TierSilver || name == types.TierGold,
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().TierRepo.Create(s.GetContext(), t))
	return t
}

func (s *baseServiceSuite) createSubscription(subscriberID string, t *tier.Tier, cycle types.BillingCycle, endsAt *time.Time) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		SubscriberID:       subscriberID,
		BillingCycle:       cycle,
		SubscriptionEndsAt: endsAt,
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	if t != nil {
		sub.TierID = t.ID
		sub.TierName = t.Name
		sub.AdvertsRemaining = t.AdvertQuota
		sub.SocialCreditsRemaining = t.Name.SocialFeatureCredits()
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}
