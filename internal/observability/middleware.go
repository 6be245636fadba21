// Package observability wires request logging and Sentry error reporting
// into the HTTP stack.
package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

const hubKey = "sentry_hub"

// USER_ID_KEY is the gin context key holding the authenticated user ID.
const USER_ID_KEY = "userID"

// Hub attaches a per-request Sentry hub so captures carry request data.
func Hub() gin.HandlerFunc {
	return func(c *gin.Context) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		c.Set(hubKey, hub)
		c.Next()
	}
}

func hubFrom(c *gin.Context) *sentry.Hub {
	if v, ok := c.Get(hubKey); ok {
		if hub, ok := v.(*sentry.Hub); ok {
			return hub
		}
	}
	return sentry.CurrentHub()
}

// CaptureError reports err to Sentry with the request's user attached.
func CaptureError(c *gin.Context, err error) {
	hub := hubFrom(c)
	hub.WithScope(func(scope *sentry.Scope) {
		if userID := c.GetString(USER_ID_KEY); userID != "" {
			scope.SetUser(sentry.User{ID: userID})
		}
		scope.SetTag("route", c.FullPath())
		hub.CaptureException(err)
	})
}

// Recovery turns panics into 500 responses and reports them.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				hub := hubFrom(c)
				hub.WithScope(func(scope *sentry.Scope) {
					scope.SetExtra("stack", string(debug.Stack()))
					hub.RecoverWithContext(c.Request.Context(), rec)
				})

				slog.Error("Panic recovered", "path", c.Request.URL.Path, "method", c.Request.Method, "panic", fmt.Sprint(rec))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"status":  "error",
					"message": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		)
	}
}
