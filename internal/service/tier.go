package service

import (
	"context"

	"github.com/yellowpin/yellowpin/internal/api/dto"
	"github.com/yellowpin/yellowpin/internal/cache"
	"github.com/yellowpin/yellowpin/internal/domain/tier"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
	"github.com/samber/lo"
)

// TierService exposes the read-only tier catalog plus tier comparison
type TierService interface {
	// GetTier resolves a tier by id or by name; fails when no active tier
	// matches
	GetTier(ctx context.Context, idOrName string) (*tier.Tier, error)
	// ListActiveTiers returns active tiers ordered by ascending monthly price
	ListActiveTiers(ctx context.Context) (*dto.ListTiersResponse, error)
	// GetQuota returns the named quota for a tier
	GetQuota(ctx context.Context, name types.TierName, kind types.QuotaKind) (int, error)
	// CompareTiers classifies the transition between two tier names
	CompareTiers(currentTier, newTier types.TierName) (types.PlanChangeType, error)
}

type tierService struct {
	serviceParams ServiceParams
}

// NewTierService creates a new tier catalog service
func NewTierService(serviceParams ServiceParams) TierService {
	return &tierService{
		serviceParams: serviceParams,
	}
}

func (s *tierService) GetTier(ctx context.Context, idOrName string) (*tier.Tier, error) {
	if idOrName == "" {
		return nil, ierr.NewError("tier id or name is required").
			WithHint("Provide a tier id or name").
			Mark(ierr.ErrValidation)
	}

	cacheKey := cache.GenerateKey(cache.PrefixTier, idOrName)
	if s.serviceParams.Cache != nil {
		if cached, found := s.serviceParams.Cache.Get(ctx, cacheKey); found {
			if t, ok := cached.(*tier.Tier); ok {
				return t, nil
			}
		}
	}

	t, err := s.lookupTier(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	if !t.IsActive() {
		return nil, ierr.NewErrorf("tier %s is not available", idOrName).
			WithHintf("Tier %s is not currently offered", t.Name).
			Mark(ierr.ErrTierUnavailable)
	}

	if s.serviceParams.Cache != nil {
		s.serviceParams.Cache.Set(ctx, cacheKey, t, cache.DefaultExpiration)
	}

	return t, nil
}

func (s *tierService) lookupTier(ctx context.Context, idOrName string) (*tier.Tier, error) {
	// Names are the common lookup path; fall back to id for callers holding
	// a tier id
	if name, err := types.ParseTierName(idOrName); err == nil {
		t, err := s.serviceParams.TierRepo.GetByName(ctx, name)
		if err == nil {
			return t, nil
		}
		if !ierr.IsNotFound(err) {
			return nil, err
		}
	}

	t, err := s.serviceParams.TierRepo.Get(ctx, idOrName)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewErrorf("tier %s not found", idOrName).
				WithHintf("No active tier matches %s", idOrName).
				Mark(ierr.ErrTierUnavailable)
		}
		return nil, err
	}
	return t, nil
}

func (s *tierService) ListActiveTiers(ctx context.Context) (*dto.ListTiersResponse, error) {
	tiers, err := s.serviceParams.TierRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.ListTiersResponse{
		Items: lo.Map(tiers, func(t *tier.Tier, _ int) *dto.TierResponse {
			return dto.NewTierResponse(t)
		}),
	}, nil
}

func (s *tierService) GetQuota(ctx context.Context, name types.TierName, kind types.QuotaKind) (int, error) {
	if err := kind.Validate(); err != nil {
		return 0, err
	}

	t, err := s.GetTier(ctx, name.String())
	if err != nil {
		return 0, err
	}

	return t.Quota(kind)
}

func (s *tierService) CompareTiers(currentTier, newTier types.TierName) (types.PlanChangeType, error) {
	return currentTier.Compare(newTier)
}
