package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treeofhope/backend/internal/infrastructure/auth"
	"github.com/treeofhope/backend/internal/infrastructure/config"
	"github.com/treeofhope/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const adminEmail = "gardener@treeofhope.org"

func newTestVerifier() *auth.JWTVerifier {
	return auth.NewJWTVerifier(config.AuthConfig{
		JWTSecret:   "test-secret-key-at-least-32-chars!",
		AdminEmails: []string{adminEmail},
	})
}

func signToken(t *testing.T, v *auth.JWTVerifier, email string, ttl time.Duration) (string, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	token, err := v.Sign(id, email, ttl)
	require.NoError(t, err)
	return token, id
}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), mw)
	r.GET("/whoami", func(c *gin.Context) {
		actor := GetActor(c)
		c.JSON(http.StatusOK, gin.H{
			"authenticated": actor.IsAuthenticated(),
			"user_id":       actor.UserID.String(),
			"admin":         actor.Admin,
		})
	})
	return r
}

func doGet(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestOptionalAuth(t *testing.T) {
	v := newTestVerifier()
	r := newAuthRouter(OptionalAuth(AuthConfig{Verifier: v}))

	t.Run("anonymous", func(t *testing.T) {
		w := doGet(r, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})

	t.Run("invalid token stays anonymous", func(t *testing.T) {
		w := doGet(r, "garbage")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})

	t.Run("valid token attaches caller", func(t *testing.T) {
		token, id := signToken(t, v, "visitor@example.org", time.Hour)
		w := doGet(r, token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), id.String())
		assert.Contains(t, w.Body.String(), `"admin":false`)
	})
}

func TestRequireAuth(t *testing.T) {
	v := newTestVerifier()
	r := newAuthRouter(RequireAuth(AuthConfig{Verifier: v}))

	w := doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	errInfo := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeUnauthenticated, errInfo.Code)
	assert.NotEmpty(t, errInfo.RequestID)

	expired, _ := signToken(t, v, "visitor@example.org", -time.Minute)
	w = doGet(r, expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenExpired, decodeError(t, w).Code)

	w = doGet(r, "not.a.token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenInvalid, decodeError(t, w).Code)

	token, _ := signToken(t, v, "visitor@example.org", time.Hour)
	w = doGet(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	v := newTestVerifier()
	r := newAuthRouter(RequireAdmin(AuthConfig{Verifier: v}))

	w := doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	visitor, _ := signToken(t, v, "visitor@example.org", time.Hour)
	w = doGet(r, visitor)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, w).Code)

	admin, _ := signToken(t, v, "Gardener@TreeOfHope.org", time.Hour)
	w = doGet(r, admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin":true`)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			c.Request.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, extractBearerToken(c), tt.header)
	}
}
