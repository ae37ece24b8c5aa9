package repository

import (
	"context"
	"database/sql"

	"github.com/yellowpin/yellowpin/internal/domain/tier"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/postgres"
	"github.com/yellowpin/yellowpin/internal/types"
	"github.com/jmoiron/sqlx"
)

type tierRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewTierRepository creates a postgres-backed tier repository
func NewTierRepository(db postgres.IClient, logger *logger.Logger) tier.Repository {
	return &tierRepository{
		db:     db,
		logger: logger,
	}
}

const tierColumns = `id, name, price_monthly, price_annual, advert_quota, product_quota,
	feature_analytics, feature_priority_support, feature_social, feature_featured_listing,
	status, created_at, updated_at, created_by, updated_by`

type tierRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	PriceMonthly string `db:"price_monthly"`
	PriceAnnual  string `db:"price_annual"`
	AdvertQuota  int    `db:"advert_quota"`
	ProductQuota int    `db:"product_quota"`
	types.FeatureSet
	types.BaseModel
}

func (r *tierRepository) Create(ctx context.Context, t *tier.Tier) error {
	if err := t.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO tiers (` + tierColumns + `)
		VALUES (:id, :name, :price_monthly, :price_annual, :advert_quota, :product_quota,
			:feature_analytics, :feature_priority_support, :feature_social, :feature_featured_listing,
			:status, :created_at, :updated_at, :created_by, :updated_by)`

	if _, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, toTierRow(t)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create tier").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *tierRepository) Get(ctx context.Context, id string) (*tier.Tier, error) {
	query := `SELECT ` + tierColumns + ` FROM tiers WHERE id = $1 AND status != 'deleted'`
	return r.getOne(ctx, query, id)
}

func (r *tierRepository) GetByName(ctx context.Context, name types.TierName) (*tier.Tier, error) {
	query := `SELECT ` + tierColumns + ` FROM tiers WHERE name = $1 AND status != 'deleted'`
	return r.getOne(ctx, query, name.String())
}

func (r *tierRepository) getOne(ctx context.Context, query string, arg any) (*tier.Tier, error) {
	var row tierRow
	if err := sqlx.GetContext(ctx, r.db.Querier(ctx), &row, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("tier not found").
				WithHint("No tier matches the given identifier").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch tier").
			Mark(ierr.ErrDatabase)
	}
	return fromTierRow(&row)
}

func (r *tierRepository) ListActive(ctx context.Context) ([]*tier.Tier, error) {
	query := `SELECT ` + tierColumns + ` FROM tiers
		WHERE status = 'active' ORDER BY price_monthly ASC`

	var rows []tierRow
	if err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &rows, query); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list tiers").
			Mark(ierr.ErrDatabase)
	}

	tiers := make([]*tier.Tier, 0, len(rows))
	for i := range rows {
		t, err := fromTierRow(&rows[i])
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, nil
}

func (r *tierRepository) Update(ctx context.Context, t *tier.Tier) error {
	if err := t.Validate(); err != nil {
		return err
	}

	query := `UPDATE tiers SET
		price_monthly = :price_monthly, price_annual = :price_annual,
		advert_quota = :advert_quota, product_quota = :product_quota,
		feature_analytics = :feature_analytics, feature_priority_support = :feature_priority_support,
		feature_social = :feature_social, feature_featured_listing = :feature_featured_listing,
		status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id`

	res, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, toTierRow(t))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update tier").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("tier not found").
			WithHint("No tier matches the given identifier").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func toTierRow(t *tier.Tier) *tierRow {
	return &tierRow{
		ID:           t.ID,
		Name:         t.Name.String(),
		PriceMonthly: t.PriceMonthly.String(),
		PriceAnnual:  t.PriceAnnual.String(),
		AdvertQuota:  t.AdvertQuota,
		ProductQuota: t.ProductQuota,
		FeatureSet:   t.Features,
		BaseModel:    t.BaseModel,
	}
}

func fromTierRow(row *tierRow) (*tier.Tier, error) {
	priceMonthly, err := parseDecimal(row.PriceMonthly)
	if err != nil {
		return nil, err
	}
	priceAnnual, err := parseDecimal(row.PriceAnnual)
	if err != nil {
		return nil, err
	}

	return &tier.Tier{
		ID:           row.ID,
		Name:         types.TierName(row.Name),
		PriceMonthly: priceMonthly,
		PriceAnnual:  priceAnnual,
		AdvertQuota:  row.AdvertQuota,
		ProductQuota: row.ProductQuota,
		Features:     row.FeatureSet,
		BaseModel:    row.BaseModel,
	}, nil
}
