package service

import (
	"github.com/yellowpin/yellowpin/internal/cache"
	"github.com/yellowpin/yellowpin/internal/config"
	"github.com/yellowpin/yellowpin/internal/domain/invoice"
	"github.com/yellowpin/yellowpin/internal/domain/payment"
	"github.com/yellowpin/yellowpin/internal/domain/proration"
	"github.com/yellowpin/yellowpin/internal/domain/subscription"
	"github.com/yellowpin/yellowpin/internal/domain/tier"
	"github.com/yellowpin/yellowpin/internal/logger"
	"github.com/yellowpin/yellowpin/internal/postgres"
	webhookPublisher "github.com/yellowpin/yellowpin/internal/webhook/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	// Repositories
	TierRepo    tier.Repository
	SubRepo     subscription.Repository
	InvoiceRepo invoice.Repository
	PaymentRepo payment.Repository

	// Proration
	ProrationCalculator proration.Calculator

	// External collaborators
	PaymentGateway   payment.Gateway
	WebhookPublisher webhookPublisher.WebhookPublisher
}

// NewServiceParams bundles the common service dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	tierRepo tier.Repository,
	subRepo subscription.Repository,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
	prorationCalculator proration.Calculator,
	paymentGateway payment.Gateway,
	webhookPublisher webhookPublisher.WebhookPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:              logger,
		Config:              config,
		DB:                  db,
		Cache:               cache,
		TierRepo:            tierRepo,
		SubRepo:             subRepo,
		InvoiceRepo:         invoiceRepo,
		PaymentRepo:         paymentRepo,
		ProrationCalculator: prorationCalculator,
		PaymentGateway:      paymentGateway,
		WebhookPublisher:    webhookPublisher,
	}
}
