package domain

import (
	"strings"
	"time"
)

const (
	RoleOperative = "OPERATIVE"
	RoleManager   = "MANAGER"
)

// Role levels, higher grants more
const (
	LevelOperative = 1
	LevelManager   = 2
)

// AuthClaims represents validated identity provider claims
type AuthClaims struct {
	UserID    string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// MapRoleToLevel converts role string to level constant
func MapRoleToLevel(role string) int {
	switch strings.ToUpper(role) {
	case RoleManager:
		return LevelManager
	default:
		return LevelOperative
	}
}

// MapLevelToRole converts level to role string
func MapLevelToRole(level int) string {
	if level >= LevelManager {
		return RoleManager
	}
	return RoleOperative
}

// TokenValidator validates bearer tokens issued by the identity provider
type TokenValidator interface {
	ValidateToken(token string) (*AuthClaims, error)
}
