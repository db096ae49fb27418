package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/auth"
)

// NewRouter creates the API router. The returned controller must be
// stopped on shutdown to release the rate limiter's cleanup goroutine.
func NewRouter(cfg RouterConfig) (*gin.Engine, *auth.AuthController) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.HSTSMaxAge > 0 {
		router.Use(auth.StrictTransportSecurityMiddleware(cfg.HSTSMaxAge))
	}

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	var checks []Check
	if cfg.Database != nil {
		checks = append(checks, Check{Name: "database", Pinger: cfg.Database})
	}
	if cfg.TaskQueue != nil {
		checks = append(checks, Check{Name: "tasks", Pinger: cfg.TaskQueue})
	}
	health := NewHealthController(cfg.Version, checks...)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	middleware := auth.NewMiddleware(cfg.AuthService)
	authController := auth.NewAuthController(cfg.AuthService, middleware, cfg.RateLimiter)
	if cfg.Metrics != nil {
		authController.OnLogin(cfg.Metrics.ObserveLogin)
	}

	api := router.Group("/api")
	authController.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.RequireBearer())
	NewBooksController(cfg.Books, cfg.Metrics).RegisterRoutes(protected)

	return router, authController
}
