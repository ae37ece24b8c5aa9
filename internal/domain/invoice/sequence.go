package invoice

import (
	"time"
)

// InvoiceSequence tracks the last issued invoice number for a year. Numbers
// are monotonic within a year and reset each January.
type InvoiceSequence struct {
	ID        string
	Year      int
	LastValue int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
