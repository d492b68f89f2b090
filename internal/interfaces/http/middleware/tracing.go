// Package middleware provides the gin middleware chain: request IDs, auth,
// tracing, metrics, limits and security headers.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/treeofhope/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig returns the otelgin server span middleware
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return otelgin.Middleware(cfg.ServiceName)
}

// SpanEnricher adds request and caller attributes to the otelgin span. It
// must be registered after TracingWithConfig.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}
		if id := c.GetString(logger.RequestIDKey); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}

		c.Next()

		if actor := GetActor(c); actor.IsAuthenticated() {
			span.SetAttributes(attribute.String("user_id", actor.UserID.String()))
		}
		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
