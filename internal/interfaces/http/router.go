package http

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/castpass/castpass/internal/infrastructure/config"
	"github.com/castpass/castpass/internal/interfaces/http/middleware"
	"github.com/castpass/castpass/internal/interfaces/http/routes"
	"github.com/castpass/castpass/internal/shared/logger"
	"github.com/castpass/castpass/internal/shared/utils"
)

// Router represents the HTTP router configuration
type Router struct {
	*Container
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Router, error) {
	utils.RegisterValidators()

	c, err := NewContainer(db, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Router{Container: c}, nil
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger(r.log))
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())

	r.engine.GET("/health", r.healthHandler.HealthCheck)
	r.engine.GET("/version", r.healthHandler.Version)

	routes.SetupPremiumRoutes(r.engine, &routes.PremiumRouteConfig{
		PremiumHandler:    r.premiumHandler,
		AuthMiddleware:    r.authMiddleware,
		VerifyRateLimiter: r.verifyRateLimiter,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Shutdown releases router resources after the HTTP server has stopped.
func (r *Router) Shutdown() {
	r.Close()
}
