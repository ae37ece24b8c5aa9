package tier

import (
	"context"

	"github.com/yellowpin/yellowpin/internal/types"
)

// Repository defines the interface for tier catalog persistence.
// The catalog is read-mostly; writes happen through admin tooling outside
// the billing core.
type Repository interface {
	Create(ctx context.Context, tier *Tier) error
	Get(ctx context.Context, id string) (*Tier, error)
	GetByName(ctx context.Context, name types.TierName) (*Tier, error)
	// ListActive returns active tiers ordered by ascending monthly price
	ListActive(ctx context.Context) ([]*Tier, error)
	Update(ctx context.Context, tier *Tier) error
}
