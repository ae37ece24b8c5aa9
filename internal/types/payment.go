package types

import (
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/samber/lo"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusSucceeded,
		PaymentStatusFailed,
		PaymentStatusRefunded,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewErrorf("invalid payment status: %s", s).
			WithHint("Payment status must be PENDING, SUCCEEDED, FAILED, or REFUNDED").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentMethodType represents the type of payment method
type PaymentMethodType string

const (
	PaymentMethodTypeCard    PaymentMethodType = "CARD"
	PaymentMethodTypeACH     PaymentMethodType = "ACH"
	PaymentMethodTypeOffline PaymentMethodType = "OFFLINE"
	// PaymentMethodTypeCredits is the synthetic method recorded for
	// zero-amount plan changes settled without a gateway call
	PaymentMethodTypeCredits PaymentMethodType = "CREDITS"
)

func (s PaymentMethodType) String() string {
	return string(s)
}

func (s PaymentMethodType) Validate() error {
	allowed := []PaymentMethodType{
		PaymentMethodTypeCard,
		PaymentMethodTypeACH,
		PaymentMethodTypeOffline,
		PaymentMethodTypeCredits,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewErrorf("invalid payment method type: %s", s).
			WithHint("Payment method must be CARD, ACH, OFFLINE, or CREDITS").
			Mark(ierr.ErrValidation)
	}
	return nil
}
