package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/yellowpin/yellowpin/internal/api/dto"
	"github.com/yellowpin/yellowpin/internal/domain/payment"
	"github.com/yellowpin/yellowpin/internal/domain/proration"
	"github.com/yellowpin/yellowpin/internal/domain/tier"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/testutil"
	"github.com/yellowpin/yellowpin/internal/types"
)

type PlanChangeServiceSuite struct {
	baseServiceSuite
	service  PlanChangeService
	now      time.Time
	testData struct {
		bronze *tier.Tier
		silver *tier.Tier
		gold   *tier.Tier
	}
}

func TestPlanChangeService(t *testing.T) {
	suite.Run(t, new(PlanChangeServiceSuite))
}

func (s *PlanChangeServiceSuite) SetupTest() {
	s.baseServiceSuite.SetupTest()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	params := s.newServiceParams()
	params.ProrationCalculator = proration.NewCalculatorAt(func() time.Time { return s.now })
	s.service = NewPlanChangeService(params)

	s.testData.bronze = s.createTier(types.TierBronze, 100, 1000, 5, 50)
	s.testData.silver = s.createTier(types.TierSilver, 200, 2000, 10, 100)
	s.testData.gold = s.createTier(types.TierGold, 500, 5000, 25, 500)
}

func (s *PlanChangeServiceSuite) request(target string, cycle types.BillingCycle) dto.PlanChangeRequest {
	return dto.PlanChangeRequest{
		SubscriberID:  "subscriber_1",
		TargetTier:    target,
		BillingCycle:  cycle,
		PaymentMethod: types.PaymentMethodTypeCard,
	}
}

func (s *PlanChangeServiceSuite) lastEvent() *types.WebhookEvent {
	events := s.GetWebhookPublisher().Events()
	s.Require().NotEmpty(events)
	return events[len(events)-1]
}

// Upgrade from silver to gold with ten days left on the monthly term. The
// unused remainder of the silver term discounts the gold price.
func (s *PlanChangeServiceSuite) TestUpgradeMidCycle() {
	sub := s.createSubscription("subscriber_1", s.testData.silver, types.BillingCycleMonthly,
		lo.ToPtr(s.now.AddDate(0, 0, 10)))

	resp, err := s.service.RequestPlanChange(s.GetContext(), s.request("gold", types.BillingCycleMonthly))
	s.NoError(err)
	s.Require().NotNil(resp)

	s.True(resp.Success)
	s.Equal(types.PlanChangeTypeUpgrade, resp.ChangeType)
	s.Equal("433.33", resp.Amount.StringFixed(2))
	s.Equal("498.33", resp.TotalAmount.StringFixed(2))
	s.Equal(types.DefaultCurrency, resp.Currency)
	s.Require().NotNil(resp.TransactionReference)

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), resp.InvoiceID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.Equal("65.00", inv.TaxAmount.StringFixed(2))
	s.Equal(*resp.TransactionReference, *inv.PaymentReference)

	payments, err := s.GetStores().PaymentRepo.ListByInvoice(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Require().Len(payments, 1)
	s.Equal(types.PaymentStatusSucceeded, payments[0].Status)
	s.Equal(types.PaymentMethodTypeCard, payments[0].Method)
	s.Equal("433.33", payments[0].Amount.StringFixed(2))

	got, err := s.GetStores().SubscriptionRepo.GetBySubscriber(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Equal(s.testData.gold.ID, got.TierID)
	s.Equal(s.testData.gold.AdvertQuota, got.AdvertsRemaining)
	s.Equal(2, got.SocialCreditsRemaining)
	s.Equal(sub.Version+1, got.Version)

	event := s.lastEvent()
	s.Equal(types.WebhookEventPlanChangeCommitted, event.EventName)
	s.Equal("subscriber_1", event.SubscriberID)
}

// Downgrade where the remaining term value exceeds the new price. The charge
// clamps at zero, so the gateway is never called and the change settles on
// credits.
func (s *PlanChangeServiceSuite) TestDowngradeSettlesWithoutGateway() {
	s.createSubscription("subscriber_1", s.testData.gold, types.BillingCycleMonthly,
		lo.ToPtr(s.now.AddDate(0, 0, 20)))

	resp, err := s.service.RequestPlanChange(s.GetContext(), s.request("bronze", types.BillingCycleMonthly))
	s.NoError(err)

	s.Equal(types.PlanChangeTypeDowngrade, resp.ChangeType)
	s.True(resp.Amount.IsZero())
	s.True(resp.TotalAmount.IsZero())
	s.Nil(resp.TransactionReference)
	s.Empty(s.GetGateway().Requests())

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), resp.InvoiceID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.Equal(types.PaymentMethodTypeCredits, *inv.PaymentMethod)

	got, err := s.GetStores().SubscriptionRepo.GetBySubscriber(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Equal(s.testData.bronze.ID, got.TierID)
	s.Equal(s.testData.bronze.AdvertQuota, got.AdvertsRemaining)
	s.Zero(got.SocialCreditsRemaining)
}

// A subscriber with no active term pays the full price of the target tier.
func (s *PlanChangeServiceSuite) TestNoActiveTermChargedInFull() {
	s.createSubscription("subscriber_1", s.testData.silver, types.BillingCycleMonthly, nil)

	resp, err := s.service.RequestPlanChange(s.GetContext(), s.request("gold", types.BillingCycleMonthly))
	s.NoError(err)

	s.Equal("500.00", resp.Amount.StringFixed(2))
	s.Equal("575.00", resp.TotalAmount.StringFixed(2))
}

// First purchase for a subscriber that was never on a tier.
func (s *PlanChangeServiceSuite) TestFirstPurchase() {
	s.createSubscription("subscriber_1", nil, types.BillingCycleMonthly, nil)

	resp, err := s.service.RequestPlanChange(s.GetContext(), s.request("gold", types.BillingCycleAnnual))
	s.NoError(err)

	s.Equal(types.PlanChangeTypeNew, resp.ChangeType)
	s.Equal("5000.00", resp.Amount.StringFixed(2))

	got, err := s.GetStores().SubscriptionRepo.GetBySubscriber(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Equal(types.BillingCycleAnnual, got.BillingCycle)
	s.NotNil(got.SubscriptionEndsAt)
}

// A declined charge leaves a failed invoice, a failed payment record and an
// untouched ledger.
func (s *PlanChangeServiceSuite) TestDeclinedCharge() {
	sub := s.createSubscription("subscriber_1", s.testData.silver, types.BillingCycleMonthly,
		lo.ToPtr(s.now.AddDate(0, 0, 10)))
	s.GetGateway().DeclineReason = "insufficient_funds"

	resp, err := s.service.RequestPlanChange(s.GetContext(), s.request("gold", types.BillingCycleMonthly))
	s.Nil(resp)
	s.Require().Error(err)
	s.True(ierr.Is(err, ierr.ErrPaymentDeclined))

	invoices, err := s.GetStores().InvoiceRepo.ListBySubscriber(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Require().Len(invoices, 1)
	s.Equal(types.InvoiceStatusFailed, invoices[0].InvoiceStatus)
	s.Contains(invoices[0].Notes, "insufficient_funds")

	payments, err := s.GetStores().PaymentRepo.ListByInvoice(s.GetContext(), invoices[0].ID)
	s.NoError(err)
	s.Require().Len(payments, 1)
	s.Equal(types.PaymentStatusFailed, payments[0].Status)
	s.Require().NotNil(payments[0].FailureReason)
	s.Contains(*payments[0].FailureReason, "insufficient_funds")

	got, err := s.GetStores().SubscriptionRepo.GetBySubscriber(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Equal(s.testData.silver.ID, got.TierID)
	s.Equal(sub.Version, got.Version)

	event := s.lastEvent()
	s.Equal(types.WebhookEventPlanChangeFailed, event.EventName)
}

// A gateway that never answers trips the charge timeout.
func (s *PlanChangeServiceSuite) TestGatewayTimeout() {
	s.createSubscription("subscriber_1", s.testData.silver, types.BillingCycleMonthly,
		lo.ToPtr(s.now.AddDate(0, 0, 10)))
	s.GetGateway().BlockUntilCancelled = true

	_, err := s.service.RequestPlanChange(s.GetContext(), s.request("gold", types.BillingCycleMonthly))
	s.Require().Error(err)
	s.True(ierr.Is(err, ierr.ErrPaymentTimeout))

	invoices, err := s.GetStores().InvoiceRepo.ListBySubscriber(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Require().Len(invoices, 1)
	s.Equal(types.InvoiceStatusFailed, invoices[0].InvoiceStatus)
}

func (s *PlanChangeServiceSuite) TestGatewayUnreachable() {
	s.createSubscription("subscriber_1", s.testData.silver, types.BillingCycleMonthly,
		lo.ToPtr(s.now.AddDate(0, 0, 10)))
	s.GetGateway().Err = errors.New("connection refused")

	_, err := s.service.RequestPlanChange(s.GetContext(), s.request("gold", types.BillingCycleMonthly))
	s.Require().Error(err)
	s.True(ierr.Is(err, ierr.ErrGatewayUnreachable))
}

// A second plan change for the same subscriber fails fast while the first is
// still collecting payment.
func (s *PlanChangeServiceSuite) TestConcurrentChangeRejected() {
	s.createSubscription("subscriber_1", s.testData.silver, types.BillingCycleMonthly,
		lo.ToPtr(s.now.AddDate(0, 0, 10)))

	started := make(chan struct{})
	release := make(chan struct{})
	s.GetGateway().ChargeFn = func(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
		close(started)
		<-release
		return &payment.ChargeResult{
			Success:              true,
			TransactionReference: "txn_held",
		}, nil
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := s.service.RequestPlanChange(s.GetContext(), s.request("gold", types.BillingCycleMonthly))
		firstDone <- err
	}()

	<-started
	_, err := s.service.RequestPlanChange(s.GetContext(), s.request("bronze", types.BillingCycleMonthly))
	s.Require().Error(err)
	s.True(ierr.Is(err, ierr.ErrConcurrentChange))

	close(release)
	s.NoError(<-firstDone)

	got, err := s.GetStores().SubscriptionRepo.GetBySubscriber(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Equal(s.testData.gold.ID, got.TierID)
}

// A ledger commit failure after a successful charge surfaces as a system
// error, rolls back the payment row, leaves the subscription untouched and
// marks the invoice failed with the gateway reference noted.
func (s *PlanChangeServiceSuite) TestLedgerCommitFailureAfterCharge() {
	sub := s.createSubscription("subscriber_1", s.testData.silver, types.BillingCycleMonthly,
		lo.ToPtr(s.now.AddDate(0, 0, 10)))

	store := s.GetStores().SubscriptionRepo.(*testutil.InMemorySubscriptionStore)
	store.FailNextUpdate(ierr.NewError("write failed").Mark(ierr.ErrDatabase))

	resp, err := s.service.RequestPlanChange(s.GetContext(), s.request("gold", types.BillingCycleMonthly))
	s.Nil(resp)
	s.Require().Error(err)
	s.True(ierr.Is(err, ierr.ErrSystem))

	got, err := s.GetStores().SubscriptionRepo.GetBySubscriber(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Equal(s.testData.silver.ID, got.TierID)
	s.Equal(sub.Version, got.Version)

	// The transaction rolled back, so the invoice ends up clearly failed
	// with the gateway reference in its notes, and no payment row survives
	invoices, err := s.GetStores().InvoiceRepo.ListBySubscriber(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Require().Len(invoices, 1)
	s.Equal(types.InvoiceStatusFailed, invoices[0].InvoiceStatus)
	s.Contains(invoices[0].Notes, "commit failed after charge txn")
	s.Nil(invoices[0].PaidAt)
	s.Nil(invoices[0].PaymentReference)

	payments, err := s.GetStores().PaymentRepo.ListByInvoice(s.GetContext(), invoices[0].ID)
	s.NoError(err)
	s.Empty(payments)

	event := s.lastEvent()
	s.Equal(types.WebhookEventPlanChangeFailed, event.EventName)
}

// The same commit failure on a zero-amount change: no gateway involved, but
// the invoice still ends up failed rather than stuck pending or paid.
func (s *PlanChangeServiceSuite) TestFreeChangeCommitFailure() {
	sub := s.createSubscription("subscriber_1", s.testData.gold, types.BillingCycleMonthly,
		lo.ToPtr(s.now.AddDate(0, 0, 20)))

	store := s.GetStores().SubscriptionRepo.(*testutil.InMemorySubscriptionStore)
	store.FailNextUpdate(ierr.NewError("write failed").Mark(ierr.ErrDatabase))

	resp, err := s.service.RequestPlanChange(s.GetContext(), s.request("bronze", types.BillingCycleMonthly))
	s.Nil(resp)
	s.Require().Error(err)
	s.Empty(s.GetGateway().Requests())

	invoices, err := s.GetStores().InvoiceRepo.ListBySubscriber(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Require().Len(invoices, 1)
	s.Equal(types.InvoiceStatusFailed, invoices[0].InvoiceStatus)
	s.Nil(invoices[0].PaidAt)

	got, err := s.GetStores().SubscriptionRepo.GetBySubscriber(s.GetContext(), "subscriber_1")
	s.NoError(err)
	s.Equal(s.testData.gold.ID, got.TierID)
	s.Equal(sub.Version, got.Version)

	event := s.lastEvent()
	s.Equal(types.WebhookEventPlanChangeFailed, event.EventName)
}

func (s *PlanChangeServiceSuite) TestUnknownTargetTier() {
	s.createSubscription("subscriber_1", s.testData.silver, types.BillingCycleMonthly, nil)

	_, err := s.service.RequestPlanChange(s.GetContext(), s.request("platinum", types.BillingCycleMonthly))
	s.Require().Error(err)
	s.True(ierr.Is(err, ierr.ErrUnknownTier))
	s.Empty(s.GetWebhookPublisher().Events())
}

func (s *PlanChangeServiceSuite) TestUnknownSubscriber() {
	_, err := s.service.RequestPlanChange(s.GetContext(), s.request("gold", types.BillingCycleMonthly))
	s.Require().Error(err)
	s.True(ierr.Is(err, ierr.ErrSubscriberNotFound))
}
