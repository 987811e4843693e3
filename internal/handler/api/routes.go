package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alfanzaky/sitecomply/internal/domain"
	authpkg "github.com/alfanzaky/sitecomply/pkg/auth"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/metrics"
	"github.com/alfanzaky/sitecomply/pkg/xresponse"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Assets      *AssetHandler
	Incidents   *IncidentHandler
	Contractors *ContractorHandler
	Settings    *SettingsHandler
	WorkOrders  *WorkOrderHandler
	Sync        *SyncHandler
	Events      *EventHub
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, h Handlers, tokens domain.TokenValidator, maxBodyBytes int64) {
	guard := NewRoleGuard()

	v1 := router.Group("/api/v1")
	v1.Use(bodyLimitMiddleware(maxBodyBytes), authMiddleware(tokens))
	{
		configureAssetRoutes(v1, h.Assets, guard)
		configureReportRoutes(v1, h.Incidents)
		configureContractorRoutes(v1, h.Contractors, guard)
		configureSettingsRoutes(v1, h.Settings, guard)
		configureWorkOrderRoutes(v1, h.WorkOrders)
		configureSyncRoutes(v1, h.Sync, guard)
	}

	ws := router.Group("/ws")
	ws.Use(authMiddleware(tokens))
	ws.GET("/sync", h.Events.Stream)

	logger.Info("API routes configured successfully")
}

func configureAssetRoutes(group *gin.RouterGroup, assets *AssetHandler, guard *RoleGuard) {
	routes := group.Group("/assets")
	{
		routes.POST("", assets.CreateAsset)
		routes.PUT("/:id", assets.UpdateAsset)
		routes.DELETE("/:id", guard.RequireManager(), assets.DeleteAsset)
	}
}

func configureReportRoutes(group *gin.RouterGroup, incidents *IncidentHandler) {
	group.POST("/incidents", incidents.LogIncident)
	group.POST("/accidents", incidents.LogAccident)
}

func configureContractorRoutes(group *gin.RouterGroup, contractors *ContractorHandler, guard *RoleGuard) {
	routes := group.Group("/contractors/:id")
	{
		routes.PATCH("/specialism", contractors.UpdateSpecialism)
		routes.PATCH("/competence", contractors.UpdateCompetence)
		routes.PATCH("/status", guard.RequireManager(), contractors.UpdateStatus)
	}
}

func configureSettingsRoutes(group *gin.RouterGroup, settings *SettingsHandler, guard *RoleGuard) {
	group.PUT("/settings/:id", guard.RequireManager(), settings.UpdateSiteSettings)
}

func configureWorkOrderRoutes(group *gin.RouterGroup, workOrders *WorkOrderHandler) {
	group.POST("/work-orders/:id/resolve", workOrders.ResolveTask)
}

func configureSyncRoutes(group *gin.RouterGroup, syncH *SyncHandler, guard *RoleGuard) {
	routes := group.Group("/sync")
	{
		routes.POST("", syncH.Drain)
		routes.GET("/status", syncH.Status)
		routes.GET("/queue", syncH.Pending)
		routes.DELETE("/queue/:id", guard.RequireManager(), syncH.Drop)
	}

	group.POST("/connectivity", syncH.ReportConnectivity)
	group.POST("/app/active", syncH.AppActive)
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// websocket upgrades, so the access_token query parameter is accepted too.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(c.Query("access_token"))
}

// authMiddleware validates the identity provider token and sets user context
func authMiddleware(tokens domain.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			xresponse.InternalServerError(c, "Auth service not available")
			c.Abort()
			return
		}

		token := bearerToken(c)
		if token == "" {
			metrics.RecordAuthAttempt("bearer", "missing")
			xresponse.Unauthorized(c, "Authorization header with Bearer token required")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			switch {
			case errors.Is(err, authpkg.ErrExpiredToken):
				metrics.RecordAuthAttempt("bearer", "expired")
				xresponse.Unauthorized(c, "Token expired")
			case errors.Is(err, authpkg.ErrInvalidToken):
				metrics.RecordAuthAttempt("bearer", "invalid")
				xresponse.Unauthorized(c, "Invalid token")
			default:
				metrics.RecordAuthAttempt("bearer", "error")
				logger.Error("Token validation failed", logger.ErrorField(err))
				xresponse.InternalServerError(c, "Failed to validate token")
			}
			c.Abort()
			return
		}

		role := strings.ToUpper(strings.TrimSpace(claims.Role))
		level := domain.MapRoleToLevel(role)

		c.Set("user_id", claims.UserID)
		c.Set("user_role", role)
		c.Set("user_level", level)
		c.Set("token_expires_at", claims.ExpiresAt)
		metrics.RecordAuthAttempt("bearer", "success")

		logger.Debug("User authenticated via middleware",
			logger.String("user_id", claims.UserID),
			logger.String("role", role),
			logger.String("token_ttl", time.Until(claims.ExpiresAt).Round(time.Second).String()),
		)

		c.Next()
	}
}

// bodyLimitMiddleware caps request bodies; certificates arrive inline.
func bodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// CORSMiddleware handles CORS for the configured origins
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Trace-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RecoveryMiddleware handles panics
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			logger.String("error", fmt.Sprintf("%v", recovered)),
			logger.String("path", c.Request.URL.Path),
			logger.String("method", c.Request.Method),
		)
		metrics.RecordSystemError("panic", "api")

		xresponse.InternalServerError(c, "Internal server error")
		c.Abort()
	})
}
