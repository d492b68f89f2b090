// Package auth verifies bearer tokens issued by the hosted auth provider.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/treeofhope/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMissingUserID    = errors.New("missing subject in claims")
)

// Claims are the token claims the service relies on. The subject is the
// provider's user UUID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Principal is an authenticated caller
type Principal struct {
	ID    uuid.UUID
	Email string
	Admin bool
}

// JWTVerifier validates HS256 access tokens signed with the provider's secret
type JWTVerifier struct {
	secret      []byte
	issuer      string
	audience    string
	adminEmails map[string]struct{}
	now         func() time.Time
}

// NewJWTVerifier creates a verifier. Issuer and audience are checked only when set.
func NewJWTVerifier(cfg config.AuthConfig) *JWTVerifier {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		if email = normalizeEmail(email); email != "" {
			admins[email] = struct{}{}
		}
	}
	return &JWTVerifier{
		secret:      []byte(cfg.JWTSecret),
		issuer:      cfg.Issuer,
		audience:    cfg.Audience,
		adminEmails: admins,
		now:         time.Now,
	}
}

// Verify parses and validates a token and returns its principal
func (v *JWTVerifier) Verify(tokenString string) (*Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.Subject == "" {
		return nil, ErrMissingUserID
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidClaims
	}

	return &Principal{
		ID:    userID,
		Email: claims.Email,
		Admin: v.IsAdmin(claims.Email),
	}, nil
}

// IsAdmin reports whether email is on the configured admin list
func (v *JWTVerifier) IsAdmin(email string) bool {
	email = normalizeEmail(email)
	if email == "" {
		return false
	}
	_, ok := v.adminEmails[email]
	return ok
}

// Sign issues a token for userID. Used by tests and local tooling; production
// tokens come from the auth provider.
func (v *JWTVerifier) Sign(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	now := v.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Role:  "authenticated",
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
