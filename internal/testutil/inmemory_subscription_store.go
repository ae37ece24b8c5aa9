package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/yellowpin/yellowpin/internal/domain/subscription"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
	mu sync.Mutex
	// updateErr, when set, is returned by the next Update call
	updateErr error
}

// NewInMemorySubscriptionStore creates a new in-memory subscription repository
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

// FailNextUpdate makes the next Update call return the given error
func (s *InMemorySubscriptionStore) FailNextUpdate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateErr = err
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, sub.ID, sub)
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("subscription not found").
			WithHintf("Subscription %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return sub, nil
}

func (s *InMemorySubscriptionStore) GetBySubscriber(ctx context.Context, subscriberID string) (*subscription.Subscription, error) {
	subs, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, sub *subscription.Subscription, _ interface{}) bool {
		return sub.SubscriberID == subscriberID && sub.Status != types.StatusDeleted
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, ierr.NewError("subscription not found").
			WithHintf("Subscriber %s has no subscription", subscriberID).
			Mark(ierr.ErrNotFound)
	}
	return subs[0], nil
}

// Update enforces the same optimistic version check as the real repository.
func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	if s.updateErr != nil {
		err := s.updateErr
		s.updateErr = nil
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	current, err := s.Get(ctx, sub.ID)
	if err != nil {
		return err
	}
	if current.Version != sub.Version {
		return ierr.NewError("subscription was modified concurrently").
			WithHintf("Subscription %s changed since it was read", sub.ID).
			Mark(ierr.ErrVersionConflict)
	}

	sub.Version++
	sub.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, sub.ID, sub)
}
