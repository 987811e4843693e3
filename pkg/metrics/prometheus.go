package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code", "user_role"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// Offline queue metrics
	offlineQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "offline_queue_size",
			Help: "Number of mutations waiting in the offline queue",
		},
	)

	kvOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kv_operations_total",
			Help: "Total number of key-value store operations backing the queue",
		},
		[]string{"backend", "operation", "status"},
	)

	// Sync metrics
	syncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Total number of sync runs by outcome",
		},
		[]string{"outcome"},
	)

	syncRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_run_duration_seconds",
			Help:    "Sync run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	syncRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_records_total",
			Help: "Total number of queued records replayed",
		},
		[]string{"intent", "status"},
	)

	// Gateway metrics
	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Remote gateway call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	gatewayErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_errors_total",
			Help: "Total number of failed remote gateway calls",
		},
		[]string{"operation", "table"},
	)

	// Domain write metrics
	domainWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_writes_total",
			Help: "Total number of domain writes by path taken",
		},
		[]string{"service", "mode"},
	)

	connectivityState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "connectivity_connected",
			Help: "1 when the remote backend is reachable, 0 otherwise",
		},
	)

	// Authentication metrics
	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"method", "status"},
	)

	systemErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "system_errors_total",
			Help: "Total number of system errors",
		},
		[]string{"error_type", "component"},
	)
)

// HTTP Metrics
func RecordHTTPRequest(method, endpoint, statusCode, userRole string, duration float64) {
	httpRequestsTotal.WithLabelValues(method, endpoint, statusCode, userRole).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, statusCode).Observe(duration)
}

// Queue Metrics
func SetOfflineQueueSize(size int) {
	offlineQueueSize.Set(float64(size))
}

func RecordKVOperation(backend, operation, status string) {
	kvOperationsTotal.WithLabelValues(backend, operation, status).Inc()
}

// Sync Metrics
func RecordSyncRun(outcome string, duration float64) {
	syncRunsTotal.WithLabelValues(outcome).Inc()
	syncRunDuration.Observe(duration)
}

func RecordSyncRecord(intent, status string) {
	syncRecordsTotal.WithLabelValues(intent, status).Inc()
}

// Gateway Metrics
func RecordGatewayRequest(operation, table string, duration float64, err error) {
	gatewayRequestDuration.WithLabelValues(operation, table).Observe(duration)
	if err != nil {
		gatewayErrorsTotal.WithLabelValues(operation, table).Inc()
	}
}

// Domain Metrics
func RecordDomainWrite(service string, offline bool) {
	mode := "direct"
	if offline {
		mode = "queued"
	}
	domainWritesTotal.WithLabelValues(service, mode).Inc()
}

func SetConnectivity(connected bool) {
	if connected {
		connectivityState.Set(1)
		return
	}
	connectivityState.Set(0)
}

// Authentication Metrics
func RecordAuthAttempt(method, status string) {
	authAttemptsTotal.WithLabelValues(method, status).Inc()
}

func RecordSystemError(errorType, component string) {
	systemErrorsTotal.WithLabelValues(errorType, component).Inc()
}
