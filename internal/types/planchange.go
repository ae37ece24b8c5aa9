package types

import (
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/samber/lo"
)

// PlanChangeType classifies a plan change relative to the subscriber's
// current tier
type PlanChangeType string

const (
	PlanChangeTypeUpgrade   PlanChangeType = "upgrade"
	PlanChangeTypeDowngrade PlanChangeType = "downgrade"
	PlanChangeTypeSame      PlanChangeType = "same"
	PlanChangeTypeNew       PlanChangeType = "new"
)

var PlanChangeTypeValues = []PlanChangeType{
	PlanChangeTypeUpgrade,
	PlanChangeTypeDowngrade,
	PlanChangeTypeSame,
	PlanChangeTypeNew,
}

func (t PlanChangeType) String() string {
	return string(t)
}

func (t PlanChangeType) Validate() error {
	if !lo.Contains(PlanChangeTypeValues, t) {
		return ierr.NewError("invalid plan change type").
			WithHint("Plan change type must be upgrade, downgrade, same, or new").
			WithReportableDetails(map[string]any{
				"allowed_values": PlanChangeTypeValues,
				"provided_value": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
