package invoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yellowpin/yellowpin/internal/types"
)

func validInvoice() *Invoice {
	now := time.Now().UTC()
	return &Invoice{
		ID:            "inv_test",
		InvoiceNumber: "INV-2026-000001",
		SubscriberID:  "subscriber_test",
		TierID:        "tier_gold",
		BillingCycle:  types.BillingCycleMonthly,
		ChangeType:    types.PlanChangeTypeUpgrade,
		Amount:        decimal.NewFromFloat(433.33),
		TaxAmount:     decimal.NewFromFloat(65),
		TotalAmount:   decimal.NewFromFloat(498.33),
		InvoiceStatus: types.InvoiceStatusPending,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, types.InvoiceDueDays),
		BaseModel:     types.BaseModel{Status: types.StatusActive},
	}
}

func TestInvoiceStatusTransitions(t *testing.T) {
	tests := []struct {
		from  types.InvoiceStatus
		to    types.InvoiceStatus
		allow bool
	}{
		{types.InvoiceStatusPending, types.InvoiceStatusPaid, true},
		{types.InvoiceStatusPending, types.InvoiceStatusFailed, true},
		{types.InvoiceStatusFailed, types.InvoiceStatusPaid, true},
		{types.InvoiceStatusPaid, types.InvoiceStatusFailed, false},
		{types.InvoiceStatusPaid, types.InvoiceStatusPending, false},
		{types.InvoiceStatusFailed, types.InvoiceStatusPending, false},
		{types.InvoiceStatusRefunded, types.InvoiceStatusPaid, false},
		{types.InvoiceStatusRefunded, types.InvoiceStatusFailed, false},
	}

	for _, tt := range tests {
		inv := validInvoice()
		inv.InvoiceStatus = tt.from
		assert.Equal(t, tt.allow, inv.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestInvoiceValidate(t *testing.T) {
	require.NoError(t, validInvoice().Validate())

	inv := validInvoice()
	inv.Amount = decimal.NewFromFloat(-1)
	require.Error(t, inv.Validate())

	inv = validInvoice()
	inv.TotalAmount = decimal.NewFromFloat(999)
	require.Error(t, inv.Validate())

	inv = validInvoice()
	inv.DueDate = inv.IssueDate.AddDate(0, 0, -1)
	require.Error(t, inv.Validate())

	inv = validInvoice()
	inv.InvoiceStatus = types.InvoiceStatus("SETTLED")
	require.Error(t, inv.Validate())
}
