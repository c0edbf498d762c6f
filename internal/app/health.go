package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

const (
	statusPass = "pass"
	statusFail = "fail"
)

type HealthChecker struct {
	infra Infrastructure
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return &HealthChecker{
		infra: infra,
	}
}

// check pings dependencies in parallel. Only Postgres decides overall health.
func (h *HealthChecker) check(ctx context.Context) (bool, map[string]string) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	pgErr := make(chan error, 1)
	redisErr := make(chan error, 1)

	go func() {
		pgErr <- h.infra.Postgres().Ping(ctx)
	}()

	go func() {
		redisErr <- h.infra.Redis().Ping(ctx)
	}()

	checks := map[string]string{
		"postgres": describe(<-pgErr),
		"redis":    describe(<-redisErr),
	}

	return checks["postgres"] == statusPass, checks
}

func describe(err error) string {
	if err != nil {
		return statusFail + ": " + err.Error()
	}
	return statusPass
}

func (h *HealthChecker) Handler(c *gin.Context) {
	healthy, checks := h.check(c.Request.Context())
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": statusFail,
			"checks": checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": statusPass,
		"checks": checks,
	})
}
