package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const checkTimeout = 2 * time.Second

// Pinger is a dependency /health can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check names one dependency in the /health report.
type Check struct {
	Name   string
	Pinger Pinger
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController answers 503 as soon as any check fails. With no
// checks the service is reported healthy.
type HealthController struct {
	version string
	checks  []Check
}

func NewHealthController(version string, checks ...Check) *HealthController {
	return &HealthController{version: version, checks: checks}
}

func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: h.version,
		Checks:  make(map[string]string, len(h.checks)),
	}
	for _, ch := range h.checks {
		if err := ch.Pinger.Ping(ctx); err != nil {
			resp.Checks[ch.Name] = "error: " + err.Error()
			resp.Status = "unhealthy"
			continue
		}
		resp.Checks[ch.Name] = "ok"
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, resp)
}

func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
