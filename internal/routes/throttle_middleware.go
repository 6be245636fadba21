package routes

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"daybook/internal/throttle"
)

// Throttle limits requests per authenticated user, falling back to the
// client IP for anonymous routes. Store failures let the request through.
func Throttle(store throttle.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID := c.GetString(USER_ID_KEY); userID != "" {
			key = "user:" + userID
		}

		decision, err := store.Allow(c.Request.Context(), key)
		if err != nil {
			slog.Error("Throttle store failed, allowing request", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			retry := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			AbortWithError(c, fmt.Errorf("%w: %w", ErrRateLimited, &throttle.LimitExceededError{Key: key, RetryAfter: decision.RetryAfter}))
			return
		}
		c.Next()
	}
}
