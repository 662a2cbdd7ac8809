package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"pitboss-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router over the handler's
// dependencies.
func NewRouter(handler *Handler) *gin.Engine {
	r := gin.Default()

	// Rate limit: 10 requests per second with a burst of 5
	rateLimiter := mw.RateLimiter(rate.Limit(10), 5)

	// Short cache on the read endpoints; floor state changes every few
	// seconds, so anything longer shows stale tables.
	cacheStore := cache.New(5*time.Second, time.Minute)
	caching := mw.Cache(cacheStore, 5*time.Second)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/commands", handler.PostCommand)

		api.GET("/dealers", caching, handler.GetDealers)
		api.GET("/tables", caching, handler.GetTables)

		api.POST("/assignments", handler.PostAssignment)
		api.POST("/tables/:table_id/push", handler.PostPush)
		api.POST("/swap", handler.PostSwap)

		api.POST("/dealers/:dealer_id/break", handler.PostBreak)
		api.POST("/dealers/:dealer_id/return", handler.PostReturn)
		api.POST("/dealers/:dealer_id/home", handler.PostHome)

		api.POST("/sweep", handler.PostSweep)

		api.GET("/alerts", handler.GetAlerts)
		api.POST("/alerts/:assignment_id/dismiss", handler.PostDismissAlert)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
