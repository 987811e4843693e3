package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alfanzaky/sitecomply/config"
	"github.com/alfanzaky/sitecomply/internal/domain"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrNotConfigured = errors.New("token validation not configured")
)

// Claims is the subset of identity provider claims the app reads.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuthService validates HS256 bearer tokens issued by the identity provider.
// It never issues tokens itself.
type JWTAuthService struct {
	cfg config.AuthConfig
}

// NewJWTAuthService creates a new auth service instance
func NewJWTAuthService(cfg config.AuthConfig) *JWTAuthService {
	return &JWTAuthService{cfg: cfg}
}

var _ domain.TokenValidator = (*JWTAuthService)(nil)

// ValidateToken parses and validates the token and returns AuthClaims
func (s *JWTAuthService) ValidateToken(token string) (*domain.AuthClaims, error) {
	if s.cfg.Secret == "" {
		return nil, ErrNotConfigured
	}
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	options := []jwt.ParserOption{
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.cfg.Leeway),
	}
	if iss := strings.TrimSpace(s.cfg.Issuer); iss != "" {
		options = append(options, jwt.WithIssuer(iss))
	}
	if aud := strings.TrimSpace(s.cfg.Audience); aud != "" {
		options = append(options, jwt.WithAudience(aud))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, options...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	role := strings.ToUpper(claims.Role)
	if role != domain.RoleManager {
		role = domain.RoleOperative
	}

	result := &domain.AuthClaims{
		UserID: claims.Subject,
		Role:   role,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}
