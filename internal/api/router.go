package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/yellowpin/yellowpin/internal/api/v1"
	"github.com/yellowpin/yellowpin/internal/rest/middleware"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Tier         *v1.TierHandler
	Subscription *v1.SubscriptionHandler
	Invoice      *v1.InvoiceHandler
	PlanChange   *v1.PlanChangeHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	tiers := router.Group("/tiers")
	{
		tiers.GET("", handlers.Tier.ListTiers)
		tiers.GET("/:id", handlers.Tier.GetTier)
	}

	subscribers := router.Group("/subscribers")
	{
		subscribers.GET("/:subscriber_id/subscription", handlers.Subscription.GetSubscription)
		subscribers.POST("/:subscriber_id/subscription", handlers.Subscription.CreateSubscription)
	}

	invoices := router.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
	}

	router.POST("/plan-changes", handlers.PlanChange.RequestPlanChange)
}
