package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/castpass/castpass/internal/interfaces/http/handlers"
	"github.com/castpass/castpass/internal/interfaces/http/middleware"
)

// PremiumRouteConfig holds dependencies for premium routes.
type PremiumRouteConfig struct {
	PremiumHandler    *handlers.PremiumHandler
	AuthMiddleware    *middleware.AuthMiddleware
	VerifyRateLimiter *middleware.RateLimiter
}

// SetupPremiumRoutes configures premium routes. Without an auth middleware
// any caller may act for any fid.
func SetupPremiumRoutes(engine *gin.Engine, cfg *PremiumRouteConfig) {
	premium := engine.Group("/api/v1/premium")
	if cfg.AuthMiddleware != nil {
		premium.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		premium.POST("/verify", cfg.VerifyRateLimiter.Limit(), cfg.PremiumHandler.Verify)
		premium.GET("/status", cfg.PremiumHandler.Status)
	}
}
