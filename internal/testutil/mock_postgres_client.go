package testutil

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/postgres"
	"github.com/yellowpin/yellowpin/internal/types"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// TxSnapshotter captures a store's contents so a failed WithTx can restore
// them, mimicking a rolled-back transaction
type TxSnapshotter interface {
	Snapshot() func()
}

type mockTxKey struct{}

// MockPostgresClient is a mock implementation of postgres client for testing.
// WithTx snapshots the registered stores up front and restores them when the
// closure errors, so writes made inside a failed transaction do not survive.
type MockPostgresClient struct {
	db           *sqlx.DB
	logger       *logger.Logger
	snapshotters []TxSnapshotter
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) *MockPostgresClient {
	return &MockPostgresClient{
		logger: logger,
	}
}

// SetSnapshotters replaces the stores rolled back on transaction failure
func (c *MockPostgresClient) SetSnapshotters(snapshotters ...TxSnapshotter) {
	c.snapshotters = snapshotters
}

// WithTx executes the given function, restoring the registered stores if it
// fails. Nested calls join the outer transaction.
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if ctx.Value(mockTxKey{}) != nil {
		return fn(ctx)
	}

	restores := make([]func(), 0, len(c.snapshotters))
	for _, snapshotter := range c.snapshotters {
		restores = append(restores, snapshotter.Snapshot())
	}

	err := fn(context.WithValue(ctx, mockTxKey{}, struct{}{}))
	if err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
	}
	return err
}

// TxFromContext returns the transaction from context if it exists
func (c *MockPostgresClient) TxFromContext(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(types.CtxDBTransaction).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}

// Querier returns the underlying database handle
func (c *MockPostgresClient) Querier(ctx context.Context) sqlx.ExtContext {
	if tx := c.TxFromContext(ctx); tx != nil {
		return tx
	}
	return c.db
}
