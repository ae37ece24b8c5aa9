package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/yellowpin/yellowpin/internal/api/dto"
	"github.com/yellowpin/yellowpin/internal/domain/invoice"
	"github.com/yellowpin/yellowpin/internal/domain/payment"
	"github.com/yellowpin/yellowpin/internal/domain/proration"
	"github.com/yellowpin/yellowpin/internal/domain/subscription"
	"github.com/yellowpin/yellowpin/internal/domain/tier"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// PlanChangeService orchestrates a plan change end to end: validate the
// target tier, price the change, invoice it, collect payment when owed, and
// commit the ledger update. The sequence from payment success to ledger
// commit runs inside one transaction.
type PlanChangeService interface {
	RequestPlanChange(ctx context.Context, req dto.PlanChangeRequest) (*dto.PlanChangeResponse, error)
}

type planChangeService struct {
	serviceParams       ServiceParams
	tierService         TierService
	prorationService    ProrationService
	subscriptionService SubscriptionService
	invoiceService      InvoiceService

	// inflight serializes plan changes per subscriber; the second request
	// for the same subscriber fails fast instead of queueing
	inflight sync.Map
}

// NewPlanChangeService creates a new plan change orchestrator
func NewPlanChangeService(serviceParams ServiceParams) PlanChangeService {
	return &planChangeService{
		serviceParams:       serviceParams,
		tierService:         NewTierService(serviceParams),
		prorationService:    NewProrationService(serviceParams),
		subscriptionService: NewSubscriptionService(serviceParams),
		invoiceService:      NewInvoiceService(serviceParams),
	}
}

func (s *planChangeService) RequestPlanChange(ctx context.Context, req dto.PlanChangeRequest) (*dto.PlanChangeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, loaded := s.inflight.LoadOrStore(req.SubscriberID, struct{}{}); loaded {
		return nil, ierr.NewErrorf("a plan change is already in progress for subscriber %s", req.SubscriberID).
			WithHint("Retry after the in-flight plan change completes").
			Mark(ierr.ErrConcurrentChange)
	}
	defer s.inflight.Delete(req.SubscriberID)

	logger := s.serviceParams.Logger
	logger.Infow("plan change requested",
		"subscriber_id", req.SubscriberID,
		"target_tier", req.TargetTier,
		"billing_cycle", req.BillingCycle,
	)

	// Validated: the target tier must exist and be active, the subscriber
	// must exist. Nothing is written before both checks pass.
	newTier, err := s.tierService.GetTier(ctx, req.TargetTier)
	if err != nil {
		return nil, err
	}

	sub, err := s.subscriptionService.GetCurrent(ctx, req.SubscriberID)
	if err != nil {
		return nil, err
	}

	var currentTier *tier.Tier
	if sub.HasPriorTier() {
		// Fetched by id rather than through the catalog: a tier retired from
		// sale still prices the remainder of an existing term
		currentTier, err = s.serviceParams.TierRepo.Get(ctx, sub.TierID)
		if err != nil {
			return nil, err
		}
	}

	// Priced
	result, err := s.prorationService.CalculateProration(ctx, proration.Params{
		Subscription:    sub,
		CurrentTier:     currentTier,
		NewTier:         newTier,
		NewBillingCycle: req.BillingCycle,
	})
	if err != nil {
		return nil, err
	}

	// The raw upgrade formula may go negative; a negative charge must never
	// reach the gateway or be stored on an invoice
	chargeAmount := decimal.Max(decimal.Zero, result.Amount)

	// Invoiced. The invoice is created outside the commit transaction so a
	// failed payment leaves an auditable failed invoice behind.
	inv, err := s.invoiceService.CreateInvoice(ctx, req.SubscriberID, newTier, req.BillingCycle, chargeAmount, result.ChangeType)
	if err != nil {
		return nil, err
	}

	if chargeAmount.IsZero() {
		return s.commitFree(ctx, req, sub, newTier, inv, result)
	}

	return s.commitCharged(ctx, req, sub, newTier, inv, result, chargeAmount)
}

// commitFree settles a zero-amount change with a synthetic credits payment
// and no gateway call
func (s *planChangeService) commitFree(
	ctx context.Context,
	req dto.PlanChangeRequest,
	sub *subscription.Subscription,
	newTier *tier.Tier,
	inv *invoice.Invoice,
	result *proration.Result,
) (*dto.PlanChangeResponse, error) {
	pay := s.newPayment(ctx, inv, decimal.Zero, types.PaymentMethodTypeCredits)
	pay.Status = types.PaymentStatusSucceeded
	pay.SucceededAt = lo.ToPtr(time.Now().UTC())

	var updated *subscription.Subscription
	err := s.serviceParams.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.serviceParams.PaymentRepo.Create(txCtx, pay); err != nil {
			return err
		}
		if err := s.invoiceService.MarkPaid(txCtx, inv, pay); err != nil {
			return err
		}
		var commitErr error
		updated, commitErr = s.subscriptionService.CommitPlanChange(txCtx, sub, newTier, req.BillingCycle)
		return commitErr
	})
	if err != nil {
		// The transaction rolled back the settlement; the in-memory invoice
		// must follow before it can be marked failed
		inv.RevertSettlement()
		if markErr := s.invoiceService.MarkFailed(ctx, inv, err.Error()); markErr != nil {
			s.serviceParams.Logger.Errorw("failed to mark invoice failed",
				"error", markErr,
				"invoice_id", inv.ID,
			)
		}
		s.notifyFailed(ctx, req.SubscriberID, inv, err)
		return nil, err
	}

	resp := s.newResponse(inv, result, updated, nil)
	s.notifyCommitted(ctx, req.SubscriberID, inv, resp)
	return resp, nil
}

// commitCharged collects payment from the gateway and commits the ledger
// change in one transaction with the invoice settlement
func (s *planChangeService) commitCharged(
	ctx context.Context,
	req dto.PlanChangeRequest,
	sub *subscription.Subscription,
	newTier *tier.Tier,
	inv *invoice.Invoice,
	result *proration.Result,
	chargeAmount decimal.Decimal,
) (*dto.PlanChangeResponse, error) {
	pay := s.newPayment(ctx, inv, chargeAmount, req.PaymentMethod)

	chargeCtx, cancel := context.WithTimeout(ctx, s.serviceParams.Config.Payment.Timeout)
	defer cancel()

	chargeResult, chargeErr := s.serviceParams.PaymentGateway.Charge(chargeCtx, payment.ChargeRequest{
		SubscriberID: req.SubscriberID,
		InvoiceID:    inv.ID,
		Amount:       chargeAmount,
		Currency:     types.DefaultCurrency,
		Method:       req.PaymentMethod,
	})

	if failure := s.classifyChargeFailure(chargeCtx, chargeResult, chargeErr); failure != nil {
		return nil, s.failPlanChange(ctx, req.SubscriberID, inv, pay, failure)
	}

	now := time.Now().UTC()
	pay.Status = types.PaymentStatusSucceeded
	pay.TransactionReference = lo.ToPtr(chargeResult.TransactionReference)
	pay.SucceededAt = lo.ToPtr(now)

	var updated *subscription.Subscription
	err := s.serviceParams.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.serviceParams.PaymentRepo.Create(txCtx, pay); err != nil {
			return err
		}
		// Invoice state reflects payment before the ledger is touched: a
		// crash between the two leaves an auditable paid-but-not-applied
		// invoice, never an applied-but-unpaid subscription
		if err := s.invoiceService.MarkPaid(txCtx, inv, pay); err != nil {
			return err
		}
		var commitErr error
		updated, commitErr = s.subscriptionService.CommitPlanChange(txCtx, sub, newTier, req.BillingCycle)
		return commitErr
	})
	if err != nil {
		// The charge went through but the commit did not. The transaction
		// has rolled back the invoice settlement; record the gateway
		// reference on the failed invoice so reconciliation can find it.
		s.serviceParams.Logger.Errorw("ledger commit failed after successful charge",
			"error", err,
			"subscriber_id", req.SubscriberID,
			"invoice_id", inv.ID,
			"transaction_reference", chargeResult.TransactionReference,
		)
		inv.RevertSettlement()
		markErr := s.invoiceService.MarkFailed(ctx, inv,
			"plan change commit failed after charge "+chargeResult.TransactionReference)
		if markErr != nil {
			s.serviceParams.Logger.Errorw("failed to mark invoice failed",
				"error", markErr,
				"invoice_id", inv.ID,
			)
		}
		s.notifyFailed(ctx, req.SubscriberID, inv, err)
		return nil, ierr.WithError(err).
			WithHint("The plan change could not be applied").
			Mark(ierr.ErrSystem)
	}

	resp := s.newResponse(inv, result, updated, pay.TransactionReference)
	s.notifyCommitted(ctx, req.SubscriberID, inv, resp)
	return resp, nil
}

// classifyChargeFailure maps a gateway outcome to a marked error, or nil on
// success
func (s *planChangeService) classifyChargeFailure(chargeCtx context.Context, result *payment.ChargeResult, chargeErr error) error {
	if chargeErr != nil {
		if ierr.Is(chargeErr, context.DeadlineExceeded) || chargeCtx.Err() == context.DeadlineExceeded {
			return ierr.WithError(chargeErr).
				WithHint("The payment gateway did not respond in time").
				Mark(ierr.ErrPaymentTimeout)
		}
		return ierr.WithError(chargeErr).
			WithHint("The payment gateway could not be reached").
			Mark(ierr.ErrGatewayUnreachable)
	}
	if !result.Success {
		return ierr.NewErrorf("payment declined: %s", result.Reason).
			WithHintf("Payment was declined: %s", result.Reason).
			WithReportableDetails(map[string]any{
				"reason": result.Reason,
			}).
			Mark(ierr.ErrPaymentDeclined)
	}
	return nil
}

// failPlanChange records the failed attempt, marks the invoice failed and
// reports the failure. The ledger is never touched on this path.
func (s *planChangeService) failPlanChange(ctx context.Context, subscriberID string, inv *invoice.Invoice, pay *payment.Payment, cause error) error {
	now := time.Now().UTC()
	pay.Status = types.PaymentStatusFailed
	pay.FailureReason = lo.ToPtr(cause.Error())
	pay.FailedAt = lo.ToPtr(now)

	if err := s.serviceParams.PaymentRepo.Create(ctx, pay); err != nil {
		s.serviceParams.Logger.Errorw("failed to record payment attempt",
			"error", err,
			"invoice_id", inv.ID,
		)
	}

	if err := s.invoiceService.MarkFailed(ctx, inv, cause.Error()); err != nil {
		s.serviceParams.Logger.Errorw("failed to mark invoice failed",
			"error", err,
			"invoice_id", inv.ID,
		)
	}

	s.serviceParams.Logger.Warnw("plan change failed",
		"subscriber_id", subscriberID,
		"invoice_id", inv.ID,
		"error", cause,
	)

	s.notifyFailed(ctx, subscriberID, inv, cause)
	return cause
}

func (s *planChangeService) newPayment(ctx context.Context, inv *invoice.Invoice, amount decimal.Decimal, method types.PaymentMethodType) *payment.Payment {
	return &payment.Payment{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID:    inv.ID,
		SubscriberID: inv.SubscriberID,
		Amount:       amount,
		Currency:     types.DefaultCurrency,
		Method:       method,
		Status:       types.PaymentStatusPending,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

func (s *planChangeService) newResponse(inv *invoice.Invoice, result *proration.Result, sub *subscription.Subscription, transactionRef *string) *dto.PlanChangeResponse {
	return &dto.PlanChangeResponse{
		Success:              true,
		InvoiceID:            inv.ID,
		InvoiceNumber:        inv.InvoiceNumber,
		Amount:               inv.Amount,
		TotalAmount:          inv.TotalAmount,
		Currency:             types.DefaultCurrency,
		ChangeType:           result.ChangeType,
		TransactionReference: transactionRef,
		Breakdown:            result.Breakdown,
		Subscription:         dto.NewSubscriptionResponse(sub),
	}
}

// notifyCommitted fires the committed webhook. Notification failures never
// roll back a committed plan change.
func (s *planChangeService) notifyCommitted(ctx context.Context, subscriberID string, inv *invoice.Invoice, resp *dto.PlanChangeResponse) {
	s.publishWebhook(ctx, types.WebhookEventPlanChangeCommitted, subscriberID, map[string]any{
		"invoice_id":     inv.ID,
		"invoice_number": inv.InvoiceNumber,
		"amount":         inv.Amount,
		"total_amount":   inv.TotalAmount,
		"change_type":    resp.ChangeType,
		"tier":           resp.Subscription.TierName,
	})
}

func (s *planChangeService) notifyFailed(ctx context.Context, subscriberID string, inv *invoice.Invoice, cause error) {
	s.publishWebhook(ctx, types.WebhookEventPlanChangeFailed, subscriberID, map[string]any{
		"invoice_id":     inv.ID,
		"invoice_number": inv.InvoiceNumber,
		"error_code":     ierr.Code(cause),
		"message":        cause.Error(),
	})
}

func (s *planChangeService) publishWebhook(ctx context.Context, eventName, subscriberID string, payload map[string]any) {
	if s.serviceParams.WebhookPublisher == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		s.serviceParams.Logger.Errorw("failed to marshal webhook payload",
			"error", err,
			"event_name", eventName,
		)
		return
	}

	event := &types.WebhookEvent{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_EVENT),
		EventName:    eventName,
		SubscriberID: subscriberID,
		UserID:       types.GetUserID(ctx),
		Timestamp:    time.Now().UTC(),
		Payload:      raw,
	}

	if err := s.serviceParams.WebhookPublisher.PublishWebhook(ctx, event); err != nil {
		s.serviceParams.Logger.Errorw("failed to publish webhook",
			"error", err,
			"event_name", eventName,
			"subscriber_id", subscriberID,
		)
	}
}
