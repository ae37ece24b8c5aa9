package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/yellowpin/yellowpin/internal/domain/tier"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
)

type TierServiceSuite struct {
	baseServiceSuite
	service  TierService
	testData struct {
		bronze *tier.Tier
		silver *tier.Tier
		gold   *tier.Tier
	}
}

func TestTierService(t *testing.T) {
	suite.Run(t, new(TierServiceSuite))
}

func (s *TierServiceSuite) SetupTest() {
	s.baseServiceSuite.SetupTest()
	s.service = NewTierService(s.newServiceParams())
	s.setupTestData()
}

func (s *TierServiceSuite) setupTestData() {
	s.testData.bronze = s.createTier(types.TierBronze, 100, 1000, 5, 50)
	s.testData.silver = s.createTier(types.TierSilver, 200, 2000, 10, 100)
	s.testData.gold = s.createTier(types.TierGold, 500, 5000, 25, 500)
}

func (s *TierServiceSuite) TestGetTierByName() {
	t, err := s.service.GetTier(s.GetContext(), "silver")
	s.NoError(err)
	s.Equal(types.TierSilver, t.Name)
	s.True(t.PriceMonthly.Equal(decimal.NewFromInt(200)))
}

func (s *TierServiceSuite) TestGetTierByID() {
	t, err := s.service.GetTier(s.GetContext(), s.testData.gold.ID)
	s.NoError(err)
	s.Equal(types.TierGold, t.Name)
}

func (s *TierServiceSuite) TestGetTierCached() {
	first, err := s.service.GetTier(s.GetContext(), "gold")
	s.NoError(err)

	// A second lookup comes from cache and returns the same value
	second, err := s.service.GetTier(s.GetContext(), "gold")
	s.NoError(err)
	s.Equal(first.ID, second.ID)
}

func (s *TierServiceSuite) TestGetTierUnknown() {
	_, err := s.service.GetTier(s.GetContext(), "platinum")
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrTierUnavailable))
}

func (s *TierServiceSuite) TestGetTierInactive() {
	retired := s.createTier(types.TierBasic, 0, 0, 1, 10)
	retired.BaseModel.Status = types.StatusInactive
	s.NoError(s.GetStores().TierRepo.Update(s.GetContext(), retired))

	_, err := s.service.GetTier(s.GetContext(), "basic")
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrTierUnavailable))
}

func (s *TierServiceSuite) TestListActiveTiersOrdered() {
	resp, err := s.service.ListActiveTiers(s.GetContext())
	s.NoError(err)
	s.Len(resp.Items, 3)

	// Ascending monthly price
	s.Equal(types.TierBronze, resp.Items[0].Name)
	s.Equal(types.TierSilver, resp.Items[1].Name)
	s.Equal(types.TierGold, resp.Items[2].Name)
}

func (s *TierServiceSuite) TestListActiveTiersSkipsInactive() {
	s.testData.silver.BaseModel.Status = types.StatusInactive
	s.NoError(s.GetStores().TierRepo.Update(s.GetContext(), s.testData.silver))

	resp, err := s.service.ListActiveTiers(s.GetContext())
	s.NoError(err)
	s.Len(resp.Items, 2)
}

func (s *TierServiceSuite) TestGetQuota() {
	adverts, err := s.service.GetQuota(s.GetContext(), types.TierSilver, types.QuotaKindAdverts)
	s.NoError(err)
	s.Equal(10, adverts)

	products, err := s.service.GetQuota(s.GetContext(), types.TierSilver, types.QuotaKindProducts)
	s.NoError(err)
	s.Equal(100, products)
}

func (s *TierServiceSuite) TestGetQuotaUnknownKind() {
	_, err := s.service.GetQuota(s.GetContext(), types.TierSilver, types.QuotaKind("bandwidth_quota"))
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrUnknownQuotaKind))
}

func (s *TierServiceSuite) TestCompareTiers() {
	changeType, err := s.service.CompareTiers(types.TierBronze, types.TierGold)
	s.NoError(err)
	s.Equal(types.PlanChangeTypeUpgrade, changeType)

	changeType, err = s.service.CompareTiers(types.TierGold, types.TierBronze)
	s.NoError(err)
	s.Equal(types.PlanChangeTypeDowngrade, changeType)

	changeType, err = s.service.CompareTiers(types.TierGold, types.TierGold)
	s.NoError(err)
	s.Equal(types.PlanChangeTypeSame, changeType)

	_, err = s.service.CompareTiers(types.TierGold, types.TierName("platinum"))
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrUnknownTier))
}
