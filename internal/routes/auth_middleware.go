// Authentication middleware.
// Accepts a bearer token from the Authorization header or the auth cookie.
// If valid, sets the user ID (the token subject) in the context.
package routes

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"daybook/internal/jwt"
	"daybook/internal/observability"
)

const USER_ID_KEY = observability.USER_ID_KEY

func GetUser(c *gin.Context) (string, error) {
	userID := c.GetString(USER_ID_KEY)
	if userID == "" {
		return "", ErrUserNotFound
	}
	return userID, nil
}

func bearerToken(c *gin.Context, cookieName string) string {
	header := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	if cookieName == "" {
		return ""
	}
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(verifier *jwt.Verifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c, cookieName)
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			slog.Warn("AuthMiddleware: Invalid auth token", "error", err)
			AbortWithError(c, fmt.Errorf("%w: %v", jwt.ErrNonValidToken, err))
			return
		}

		c.Set(USER_ID_KEY, claims.Subject)
		if claims.Email != "" {
			c.Set("email", claims.Email)
		}
		c.Next()
	}
}

// Me reports who the bearer token belongs to.
func Me(r *gin.RouterGroup) {
	r.GET("/me", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(200, gin.H{
			"id":    userID,
			"email": c.GetString("email"),
		})
	})
}
