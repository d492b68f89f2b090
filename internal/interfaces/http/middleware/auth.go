package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	appshared "github.com/treeofhope/backend/internal/application/shared"
	"github.com/treeofhope/backend/internal/infrastructure/auth"
	"github.com/treeofhope/backend/internal/infrastructure/logger"
	"github.com/treeofhope/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// ActorKey is the gin context key holding the authenticated appshared.Actor
const ActorKey = "actor"

// TokenVerifier verifies bearer tokens issued by the auth provider
type TokenVerifier interface {
	Verify(token string) (*auth.Principal, error)
}

// AuthConfig holds configuration for the auth middlewares
type AuthConfig struct {
	Verifier TokenVerifier
	Logger   *zap.Logger
}

// OptionalAuth attaches the caller when a valid bearer token is presented.
// Missing or invalid tokens leave the request anonymous.
func OptionalAuth(cfg AuthConfig) gin.HandlerFunc {
	log := loggerOrNop(cfg.Logger)
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		principal, err := cfg.Verifier.Verify(token)
		if err != nil {
			log.Debug("Ignoring invalid bearer token on public route",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			c.Next()
			return
		}
		setActor(c, principal)
		c.Next()
	}
}

// RequireAuth rejects requests without a valid bearer token with 401
func RequireAuth(cfg AuthConfig) gin.HandlerFunc {
	log := loggerOrNop(cfg.Logger)
	return func(c *gin.Context) {
		if !authenticate(c, cfg.Verifier, log) {
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anonymous requests with 401 and non-admin callers with 403
func RequireAdmin(cfg AuthConfig) gin.HandlerFunc {
	log := loggerOrNop(cfg.Logger)
	return func(c *gin.Context) {
		if !authenticate(c, cfg.Verifier, log) {
			return
		}
		if !GetActor(c).Admin {
			log.Warn("Admin route denied",
				zap.String("path", c.Request.URL.Path),
				zap.String("user_id", GetActor(c).UserID.String()))
			abortWithError(c, dto.ErrCodeForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, verifier TokenVerifier, log *zap.Logger) bool {
	token := extractBearerToken(c)
	if token == "" {
		abortWithError(c, dto.ErrCodeUnauthenticated, "Authorization required")
		return false
	}
	principal, err := verifier.Verify(token)
	if err != nil {
		handleAuthError(c, err, log)
		return false
	}
	setActor(c, principal)
	return true
}

func handleAuthError(c *gin.Context, err error, log *zap.Logger) {
	log.Debug("Bearer token rejected",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		abortWithError(c, dto.ErrCodeTokenExpired, "Token has expired")
	default:
		abortWithError(c, dto.ErrCodeTokenInvalid, "Invalid token")
	}
}

func setActor(c *gin.Context, p *auth.Principal) {
	actor := appshared.Actor{UserID: p.ID, Email: p.Email, Admin: p.Admin}
	c.Set(ActorKey, actor)

	ctx := c.Request.Context()
	ctx = logger.WithUserID(ctx, logger.FromContext(ctx), p.ID.String())
	c.Request = c.Request.WithContext(ctx)
}

// GetActor returns the caller attached by the auth middlewares, or an
// anonymous actor
func GetActor(c *gin.Context) appshared.Actor {
	if v, ok := c.Get(ActorKey); ok {
		if actor, ok := v.(appshared.Actor); ok {
			return actor
		}
	}
	return appshared.Anonymous()
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortWithError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(logger.RequestIDKey)))
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
