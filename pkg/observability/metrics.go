package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/prperemyshlev/autoimport"

// Metrics holds the domain counters exported on /metrics
type Metrics struct {
	logins        metric.Int64Counter
	refreshes     metric.Int64Counter
	tokensCleaned metric.Int64Counter
	statusChanges metric.Int64Counter
}

// NewMetrics registers the domain counters on the given provider
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)

	logins, err := meter.Int64Counter("auth_logins_total",
		metric.WithDescription("Login attempts by result"))
	if err != nil {
		return nil, fmt.Errorf("failed to create logins counter: %w", err)
	}

	refreshes, err := meter.Int64Counter("auth_refreshes_total",
		metric.WithDescription("Refresh token rotations by result"))
	if err != nil {
		return nil, fmt.Errorf("failed to create refreshes counter: %w", err)
	}

	tokensCleaned, err := meter.Int64Counter("auth_tokens_cleaned_total",
		metric.WithDescription("Expired refresh tokens removed by the cleaner"))
	if err != nil {
		return nil, fmt.Errorf("failed to create tokens cleaned counter: %w", err)
	}

	statusChanges, err := meter.Int64Counter("order_status_changes_total",
		metric.WithDescription("Applied order status changes by target status"))
	if err != nil {
		return nil, fmt.Errorf("failed to create status changes counter: %w", err)
	}

	return &Metrics{
		logins:        logins,
		refreshes:     refreshes,
		tokensCleaned: tokensCleaned,
		statusChanges: statusChanges,
	}, nil
}

// The record methods are no-ops on a nil receiver so tests can pass nil.

func (m *Metrics) RecordLogin(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) RecordRefresh(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) RecordTokensCleaned(ctx context.Context, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.tokensCleaned.Add(ctx, n)
}

func (m *Metrics) RecordStatusChange(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler != nil {
			handler.ServeHTTP(c.Writer, c.Request)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
		}
	}
}
