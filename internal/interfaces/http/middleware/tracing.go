package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	Enabled        bool
	ServiceName    string
	TracerProvider trace.TracerProvider // nil uses the global provider
}

// Tracing returns the otelgin server span middleware followed by one that
// tags the span with the request ID and the ledger resource of the route.
// Health checks are not traced. When disabled it returns nothing.
func Tracing(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}
	opts := []otelgin.Option{
		otelgin.WithGinFilter(func(c *gin.Context) bool {
			return !strings.Contains(c.FullPath(), "/health/")
		}),
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return []gin.HandlerFunc{otelgin.Middleware(cfg.ServiceName, opts...), tagSpan}
}

func tagSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}
	if requestID := GetRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	for _, p := range c.Params {
		switch p.Key {
		case "id":
			span.SetAttributes(attribute.String("ledger."+resourceOf(c.FullPath())+"_id", p.Value))
		case "variant_id":
			span.SetAttributes(attribute.String("ledger.variant_id", p.Value))
		}
	}
	c.Next()
}

// resourceOf names the resource an :id parameter refers to from the route,
// e.g. /api/v1/clients/:id/summary gives client
func resourceOf(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for i, part := range parts {
		if part == ":id" && i > 0 {
			return strings.TrimSuffix(parts[i-1], "s")
		}
	}
	return "resource"
}
