package http

import (
	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/library"
	"github.com/mrlokans/library/internal/metrics"
)

// RouterConfig contains all dependencies needed to create the API router.
type RouterConfig struct {
	Database    *database.Database
	// TaskQueue is optional; when set, /health checks it as "tasks".
	TaskQueue   Pinger
	Books       *library.Service
	AuthService *auth.Service
	RateLimiter *auth.RateLimiter

	// Metrics is optional; nil disables /metrics and request instrumentation.
	Metrics *metrics.Metrics

	// HSTSMaxAge enables Strict-Transport-Security when positive.
	HSTSMaxAge int

	Version string
}
