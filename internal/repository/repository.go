package repository

import (
	"github.com/shopspring/decimal"

	ierr "github.com/yellowpin/yellowpin/internal/errors"
)

// parseDecimal converts a numeric column scanned as text back to a decimal.
func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHint("Stored amount is not a valid decimal").
			Mark(ierr.ErrDatabase)
	}
	return d, nil
}
