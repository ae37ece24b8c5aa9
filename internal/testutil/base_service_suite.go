package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/yellowpin/yellowpin/internal/cache"
	"github.com/yellowpin/yellowpin/internal/config"
	"github.com/yellowpin/yellowpin/internal/domain/invoice"
	"github.com/yellowpin/yellowpin/internal/domain/payment"
	"github.com/yellowpin/yellowpin/internal/domain/subscription"
	"github.com/yellowpin/yellowpin/internal/domain/tier"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/postgres"
	"github.com/yellowpin/yellowpin/internal/types"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	TierRepo         tier.Repository
	SubscriptionRepo subscription.Repository
	InvoiceRepo      invoice.Repository
	PaymentRepo      payment.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx              context.Context
	stores           Stores
	gateway          *MockPaymentGateway
	webhookPublisher *InMemoryWebhookPublisher
	db               postgres.IClient
	cache            cache.Cache
	logger           *logger.Logger
	config           *config.Configuration
	now              time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := &config.Configuration{
		Logging: config.LoggingConfig{
			Level: types.LogLevelInfo,
		},
		Payment: config.PaymentConfig{
			Gateway: "mock",
			Timeout: 2 * time.Second,
		},
		Webhook: config.WebhookConfig{
			Topic:   "billing_webhooks",
			Enabled: true,
		},
	}

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	s.db = NewMockPostgresClient(s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.gateway = NewMockPaymentGateway()
	s.webhookPublisher = NewInMemoryWebhookPublisher()
	s.cache = cache.NewInMemoryCache()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		TierRepo:         NewInMemoryTierStore(),
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		InvoiceRepo:      NewInMemoryInvoiceStore(),
		PaymentRepo:      NewInMemoryPaymentStore(),
	}

	// Failed transactions must roll back, so the commit-failure paths can
	// assert on post-rollback state
	s.db.(*MockPostgresClient).SetSnapshotters(
		s.stores.TierRepo.(*InMemoryTierStore),
		s.stores.SubscriptionRepo.(*InMemorySubscriptionStore),
		s.stores.InvoiceRepo.(*InMemoryInvoiceStore),
		s.stores.PaymentRepo.(*InMemoryPaymentStore),
	)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.TierRepo.(*InMemoryTierStore).Clear()
	s.stores.SubscriptionRepo.(*InMemorySubscriptionStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetGateway returns the scriptable payment gateway
func (s *BaseServiceTestSuite) GetGateway() *MockPaymentGateway {
	return s.gateway
}

// GetWebhookPublisher returns the capturing webhook publisher
func (s *BaseServiceTestSuite) GetWebhookPublisher() *InMemoryWebhookPublisher {
	return s.webhookPublisher
}

// GetDB returns the mock postgres client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
