package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"donate/internal/handler"
	"donate/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	DonationHandler *handler.DonationHandler
	GatewayHandler  *handler.GatewayHandler
	AdminAPIKey     string
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Donation routes.
		donations := v1.Group("/donations")
		{
			donations.POST("", middleware.RequirePayer(), deps.DonationHandler.Create)
			donations.GET("", middleware.RequirePayer(), deps.DonationHandler.History)
			// Manual update path carries elevated trust; the GET sibling is
			// the public polling endpoint.
			donations.POST("/status", middleware.RequireAdmin(deps.AdminAPIKey), deps.DonationHandler.UpdateStatus)
			donations.GET("/status", deps.DonationHandler.GetStatus)
		}

		// Gateway routes.
		gw := v1.Group("/gateway")
		{
			gw.POST("/checkout", middleware.RequirePayer(), deps.GatewayHandler.Checkout)
			// The webhook must stay reachable without authentication: the
			// gateway cannot present a session token.
			gw.POST("/notify", deps.GatewayHandler.Notify)
		}
	}

	return router
}
