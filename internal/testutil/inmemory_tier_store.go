package testutil

import (
	"context"

	"github.com/yellowpin/yellowpin/internal/domain/tier"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
)

// InMemoryTierStore implements tier.Repository
type InMemoryTierStore struct {
	*InMemoryStore[*tier.Tier]
}

// NewInMemoryTierStore creates a new in-memory tier repository
func NewInMemoryTierStore() *InMemoryTierStore {
	return &InMemoryTierStore{
		InMemoryStore: NewInMemoryStore[*tier.Tier](),
	}
}

func (s *InMemoryTierStore) Create(ctx context.Context, t *tier.Tier) error {
	if t == nil {
		return ierr.NewError("tier cannot be nil").
			WithHint("Tier cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, t.ID, t)
}

func (s *InMemoryTierStore) Get(ctx context.Context, id string) (*tier.Tier, error) {
	t, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("tier not found").
			WithHintf("Tier %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return t, nil
}

func (s *InMemoryTierStore) GetByName(ctx context.Context, name types.TierName) (*tier.Tier, error) {
	tiers, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, t *tier.Tier, _ interface{}) bool {
		return t.Name == name && t.Status != types.StatusDeleted
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		return nil, ierr.NewError("tier not found").
			WithHintf("No tier named %s", name).
			Mark(ierr.ErrNotFound)
	}
	return tiers[0], nil
}

func (s *InMemoryTierStore) ListActive(ctx context.Context) ([]*tier.Tier, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, t *tier.Tier, _ interface{}) bool {
		return t.Status == types.StatusActive
	}, func(i, j *tier.Tier) bool {
		return i.PriceMonthly.LessThan(j.PriceMonthly)
	})
}

func (s *InMemoryTierStore) Update(ctx context.Context, t *tier.Tier) error {
	if t == nil {
		return ierr.NewError("tier cannot be nil").
			WithHint("Tier cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, t.ID, t)
}
