package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessCheck reports whether one dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// MetricsHandler provides the Prometheus endpoint and health probes
type MetricsHandler struct {
	service  string
	gatherer prometheus.Gatherer
	checks   map[string]ReadinessCheck
	timeout  time.Duration
}

// NewMetricsHandler creates a metrics handler over the default registry,
// where promauto registers the application metrics.
func NewMetricsHandler(service string) *MetricsHandler {
	return &MetricsHandler{
		service:  service,
		gatherer: prometheus.DefaultGatherer,
		checks:   make(map[string]ReadinessCheck),
		timeout:  2 * time.Second,
	}
}

// AddReadinessCheck registers a dependency probe for /ready
func (h *MetricsHandler) AddReadinessCheck(name string, check ReadinessCheck) {
	h.checks[name] = check
}

// MetricsEndpoint returns the Prometheus metrics handler
func (h *MetricsHandler) MetricsEndpoint() gin.HandlerFunc {
	handler := promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})

	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// HealthEndpoint provides health check
func (h *MetricsHandler) HealthEndpoint() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   h.service,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadinessEndpoint runs every registered check. Any failure reports 503.
func (h *MetricsHandler) ReadinessEndpoint() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		results := make(gin.H, len(h.checks))
		ready := true
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				ready = false
				continue
			}
			results[name] = "ok"
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status": status,
			"checks": results,
		})
	}
}

// LivenessEndpoint provides liveness check
func (h *MetricsHandler) LivenessEndpoint() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "alive",
		})
	}
}
