package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yellowpin/yellowpin/internal/domain/subscription"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/postgres"
	"github.com/yellowpin/yellowpin/internal/types"
)

type subscriptionRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewSubscriptionRepository creates a postgres-backed subscription repository
func NewSubscriptionRepository(db postgres.IClient, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

const subscriptionColumns = `id, subscriber_id, tier_id, tier_name, billing_cycle,
	subscription_ends_at, adverts_remaining, social_credits_remaining, version,
	status, created_at, updated_at, created_by, updated_by`

type subscriptionRow struct {
	ID                     string     `db:"id"`
	SubscriberID           string     `db:"subscriber_id"`
	TierID                 string     `db:"tier_id"`
	TierName               string     `db:"tier_name"`
	BillingCycle           string     `db:"billing_cycle"`
	SubscriptionEndsAt     *time.Time `db:"subscription_ends_at"`
	AdvertsRemaining       int        `db:"adverts_remaining"`
	SocialCreditsRemaining int        `db:"social_credits_remaining"`
	Version                int        `db:"version"`
	types.BaseModel
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES (:id, :subscriber_id, :tier_id, :tier_name, :billing_cycle,
			:subscription_ends_at, :adverts_remaining, :social_credits_remaining, :version,
			:status, :created_at, :updated_at, :created_by, :updated_by)`

	if _, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, toSubscriptionRow(sub)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE id = $1 AND status != 'deleted'`
	return r.getOne(ctx, query, id)
}

func (r *subscriptionRepository) GetBySubscriber(ctx context.Context, subscriberID string) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE subscriber_id = $1 AND status != 'deleted'`
	return r.getOne(ctx, query, subscriberID)
}

func (r *subscriptionRepository) getOne(ctx context.Context, query string, arg any) (*subscription.Subscription, error) {
	var row subscriptionRow
	if err := sqlx.GetContext(ctx, r.db.Querier(ctx), &row, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("subscription not found").
				WithHint("No subscription matches the given identifier").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch subscription").
			Mark(ierr.ErrDatabase)
	}
	return fromSubscriptionRow(&row), nil
}

// Update applies the change only when the stored version matches the
// caller's copy, then bumps the version on both sides.
func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	query := `UPDATE subscriptions SET
		tier_id = :tier_id, tier_name = :tier_name, billing_cycle = :billing_cycle,
		subscription_ends_at = :subscription_ends_at,
		adverts_remaining = :adverts_remaining, social_credits_remaining = :social_credits_remaining,
		version = :version + 1,
		status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND version = :version`

	res, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, toSubscriptionRow(sub))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("subscription was modified concurrently").
			WithHintf("Subscription %s changed since it was read", sub.ID).
			Mark(ierr.ErrVersionConflict)
	}

	sub.Version++
	return nil
}

func toSubscriptionRow(sub *subscription.Subscription) *subscriptionRow {
	return &subscriptionRow{
		ID:                     sub.ID,
		SubscriberID:           sub.SubscriberID,
		TierID:                 sub.TierID,
		TierName:               sub.TierName.String(),
		BillingCycle:           string(sub.BillingCycle),
		SubscriptionEndsAt:     sub.SubscriptionEndsAt,
		AdvertsRemaining:       sub.AdvertsRemaining,
		SocialCreditsRemaining: sub.SocialCreditsRemaining,
		Version:                sub.Version,
		BaseModel:              sub.BaseModel,
	}
}

func fromSubscriptionRow(row *subscriptionRow) *subscription.Subscription {
	return &subscription.Subscription{
		ID:                     row.ID,
		SubscriberID:           row.SubscriberID,
		TierID:                 row.TierID,
		TierName:               types.TierName(row.TierName),
		BillingCycle:           types.BillingCycle(row.BillingCycle),
		SubscriptionEndsAt:     row.SubscriptionEndsAt,
		AdvertsRemaining:       row.AdvertsRemaining,
		SocialCreditsRemaining: row.SocialCreditsRemaining,
		Version:                row.Version,
		BaseModel:              row.BaseModel,
	}
}
