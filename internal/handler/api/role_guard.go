package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/xresponse"
)

// RoleGuard provides helper functions for role-based access control in handlers
type RoleGuard struct{}

// NewRoleGuard creates a new role guard instance
func NewRoleGuard() *RoleGuard {
	return &RoleGuard{}
}

// GetCurrentUser extracts user information from context
func (rg *RoleGuard) GetCurrentUser(c *gin.Context) (userID, role string, userLevel int, exists bool) {
	userID = c.GetString("user_id")
	role = c.GetString("user_role")
	if userID == "" || role == "" {
		return "", "", 0, false
	}

	levelVal, ok := c.Get("user_level")
	if !ok {
		return "", "", 0, false
	}
	userLevel, ok = levelVal.(int)
	if !ok {
		return "", "", 0, false
	}

	return userID, role, userLevel, true
}

// RequireMinimumLevel checks if user has minimum required level
func (rg *RoleGuard) RequireMinimumLevel(minLevel int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, userLevel, exists := rg.GetCurrentUser(c)
		if !exists {
			logger.Warn("Access denied - user not authenticated",
				logger.String("required_level", strconv.Itoa(minLevel)),
				logger.String("ip", c.ClientIP()),
			)
			xresponse.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		if userLevel < minLevel {
			logger.Warn("Access denied - insufficient level",
				logger.String("user_id", userID),
				logger.String("user_role", role),
				logger.String("required_role", domain.MapLevelToRole(minLevel)),
				logger.String("path", c.FullPath()),
			)
			xresponse.Forbidden(c, domain.MapLevelToRole(minLevel)+" role required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireManager restricts a route to site managers
func (rg *RoleGuard) RequireManager() gin.HandlerFunc {
	return rg.RequireMinimumLevel(domain.LevelManager)
}

// LogAccess logs access with user information
func (rg *RoleGuard) LogAccess(c *gin.Context, action string, resource string) {
	userID, role, _, exists := rg.GetCurrentUser(c)
	if !exists {
		return
	}
	logger.Info("User action",
		logger.String("user_id", userID),
		logger.String("role", role),
		logger.String("action", action),
		logger.String("resource", resource),
		logger.String("ip", c.ClientIP()),
	)
}
