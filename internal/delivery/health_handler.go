package delivery

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthCheck reports whether one dependency answers.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
	log    *logrus.Logger
}

func NewHealthHandler(checks map[string]HealthCheck, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, log: logger}
}

func (h *HealthHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/healthz", h.Health)
}

// Run executes every check and returns the per-dependency result.
func (h *HealthHandler) Run(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.log.Warnf("Health: %s check failed: %v", name, err)
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}
	return results, healthy
}

func (h *HealthHandler) Health(c *gin.Context) {
	results, healthy := h.Run(c.Request.Context())
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, Response{Status: "Fail", Message: "Service degraded", Data: results})
		return
	}
	SuccessResponse(c, http.StatusOK, "Service healthy", results)
}
