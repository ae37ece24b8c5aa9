package dto

import (
	"github.com/yellowpin/yellowpin/internal/domain/tier"
	"github.com/yellowpin/yellowpin/internal/types"
	"github.com/shopspring/decimal"
)

// TierResponse represents a catalog tier
type TierResponse struct {
	ID           string           `json:"id"`
	Name         types.TierName   `json:"name"`
	PriceMonthly decimal.Decimal  `json:"price_monthly"`
	PriceAnnual  decimal.Decimal  `json:"price_annual"`
	AdvertQuota  int              `json:"advert_quota"`
	ProductQuota int              `json:"product_quota"`
	Features     types.FeatureSet `json:"features"`
}

// NewTierResponse creates a tier response from the domain model
func NewTierResponse(t *tier.Tier) *TierResponse {
	return &TierResponse{
		ID:           t.ID,
		Name:         t.Name,
		PriceMonthly: t.PriceMonthly,
		PriceAnnual:  t.PriceAnnual,
		AdvertQuota:  t.AdvertQuota,
		ProductQuota: t.ProductQuota,
		Features:     t.Features,
	}
}

// ListTiersResponse represents the active tier catalog
type ListTiersResponse struct {
	Items []*TierResponse `json:"items"`
}
