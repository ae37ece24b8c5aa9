package invoice

import (
	"context"
)

// Repository defines the interface for invoice persistence
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	// ListBySubscriber returns the subscriber's invoices, most recent first
	ListBySubscriber(ctx context.Context, subscriberID string) ([]*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	// NextSequence atomically increments and returns the invoice sequence
	// for the given year
	NextSequence(ctx context.Context, year int) (int64, error)
}
