package subscription

import (
	"context"
)

// Repository defines the interface for subscription persistence
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	GetBySubscriber(ctx context.Context, subscriberID string) (*Subscription, error)
	// Update persists the subscription if and only if the stored row still
	// carries sub.Version; on success the version is incremented. A stale
	// version fails with a version conflict.
	Update(ctx context.Context, sub *Subscription) error
}
