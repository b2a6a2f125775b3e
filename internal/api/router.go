package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"waitlist-backend/config"
	"waitlist-backend/internal/mw"
	"waitlist-backend/internal/notification"
	"waitlist-backend/internal/store"
)

// NewRouter creates and configures a new Gin router around the engine.
func NewRouter(s store.Store, cfg *config.ServerConfig, webpushOptions *webpush.Options, pool *notification.WorkerPool) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, webpushOptions, pool)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	api := r.Group("/api")
	api.Use(rateLimiter, mw.Invalidate(cacheStore))
	{
		// Customer intake
		api.POST("/queue", handler.JoinQueue)

		// Admin push subscriptions
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)

		admin := api.Group("/admin")
		{
			admin.GET("/queue", caching, handler.GetQueue)
			admin.GET("/tables", caching, handler.GetTables)
			admin.POST("/tables", handler.AddTable)
			admin.PUT("/tables/:id", handler.UpdateTable)
			admin.DELETE("/tables/:id", handler.DeleteTable)
			admin.POST("/allocate_table", handler.AllocateTables)
		}
	}

	return r
}
