package observability

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/metrics"
)

// TraceIDHeader carries the trace id in both directions.
const TraceIDHeader = "X-Trace-ID"

const traceIDKey = "trace_id"

// probePaths are polled constantly and only logged at debug.
var probePaths = []string{"/metrics", "/health", "/ready", "/live", "/api/v1/sync/status"}

// ObservabilityMiddleware assigns a trace id, records request metrics and
// logs each completed request.
func ObservabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		c.Header(TraceIDHeader, traceID)
		c.Set(traceIDKey, traceID)
		c.Request = c.Request.WithContext(logger.ContextWithTraceID(c.Request.Context(), traceID))

		c.Next()

		// set by the auth middleware further down the chain
		userRole := c.GetString("user_role")
		if userRole == "" {
			userRole = "anonymous"
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		elapsed := time.Since(start)
		statusCode := strconv.Itoa(c.Writer.Status())
		metrics.RecordHTTPRequest(c.Request.Method, route, statusCode, userRole, elapsed.Seconds())

		fields := []zap.Field{
			logger.String("trace_id", traceID),
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.String("status", statusCode),
			logger.Duration("duration", elapsed),
			logger.String("user_role", userRole),
		}
		if isProbe(c.Request.URL.Path) {
			logger.Debug("Request completed", fields...)
			return
		}
		logger.Info("Request completed", fields...)
	}
}

func isProbe(path string) bool {
	for _, p := range probePaths {
		if strings.EqualFold(path, p) {
			return true
		}
	}
	return false
}

// GetTraceID extracts trace ID from gin context
func GetTraceID(c *gin.Context) string {
	return c.GetString(traceIDKey)
}

// LogWithFields logs with trace ID and custom fields
func LogWithFields(c *gin.Context, message string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("trace_id", GetTraceID(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	}, fields...)

	logger.Warn(message, allFields...)
}

// RecordSystemError counts the error and logs it with the request's trace id
func RecordSystemError(c *gin.Context, errorType, component string, err error) {
	metrics.RecordSystemError(errorType, component)

	logger.Error("System error occurred",
		logger.String("trace_id", GetTraceID(c)),
		logger.String("error_type", errorType),
		logger.String("component", component),
		logger.ErrorField(err),
		logger.String("path", c.Request.URL.Path),
	)
}
