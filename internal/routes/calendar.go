package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"daybook/internal/config"
	"daybook/internal/integrations/googlecal"
	"daybook/internal/utils"
)

// callbackErrorCodes are the error values the settings page understands.
var callbackErrorCodes = []struct {
	err  error
	code string
}{
	{googlecal.ErrInvalidState, "invalid_state"},
	{googlecal.ErrStateMismatch, "invalid_state"},
	{googlecal.ErrExchangeFailed, "exchange_failed"},
	{googlecal.ErrNoRefreshToken, "no_refresh_token"},
	{googlecal.ErrNotConfigured, "not_configured"},
}

func callbackErrorCode(err error) string {
	for _, known := range callbackErrorCodes {
		if errors.Is(err, known.err) {
			return known.code
		}
	}
	return "unknown_error"
}

func settingsRedirect(frontendURL string, query url.Values) string {
	return strings.TrimRight(frontendURL, "/") + "/settings?" + query.Encode()
}

func callbackFailed(c *gin.Context, frontendURL, code string) {
	c.Redirect(http.StatusFound, settingsRedirect(frontendURL, url.Values{
		"googleCalendar": {"error"},
		"error":          {code},
	}))
}

// requireCalendar rejects requests when the integration is not configured.
func requireCalendar(manager *googlecal.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil {
			AbortWithError(c, googlecal.ErrNotConfigured)
			return
		}
		c.Next()
	}
}

// CalendarCallback registers the public OAuth redirect target. The user is
// identified by the signed state, not by a bearer token.
func CalendarCallback(r *gin.RouterGroup, manager *googlecal.Manager, frontendURL string) {
	r.GET("/callback", func(c *gin.Context) {
		if oauthErr := c.Query("error"); oauthErr != "" {
			slog.Info("Google consent was not granted", "error", oauthErr)
			callbackFailed(c, frontendURL, oauthErr)
			return
		}
		if manager == nil {
			callbackFailed(c, frontendURL, "not_configured")
			return
		}

		code, state := c.Query("code"), c.Query("state")
		if code == "" || state == "" {
			callbackFailed(c, frontendURL, "missing_parameters")
			return
		}

		claims, err := manager.VerifyState(state)
		if err != nil {
			callbackFailed(c, frontendURL, "invalid_state")
			return
		}

		if err := manager.HandleCallback(c.Request.Context(), claims.UserID, code, state); err != nil {
			slog.Error("Google Calendar callback failed", "user_id", claims.UserID, "error", err)
			callbackFailed(c, frontendURL, callbackErrorCode(err))
			return
		}

		c.Redirect(http.StatusFound, settingsRedirect(frontendURL, url.Values{
			"googleCalendar": {"connected"},
		}))
	})
}

// CalendarRoutes registers the authenticated Google Calendar endpoints.
func CalendarRoutes(r *gin.RouterGroup, manager *googlecal.Manager) {
	r.Use(requireCalendar(manager))

	r.GET("/connect", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		authURL, err := manager.AuthURL(userID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"authUrl": authURL})
	})

	// Lets a user finish the consent flow on another device
	r.GET("/connect/qr.png", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		authURL, err := manager.AuthURL(userID)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		png, err := qrcode.Encode(authURL, qrcode.Medium, config.QR_IMAGE_SIZE)
		if err != nil {
			AbortWithError(c, fmt.Errorf("failed to generate QR code: %w", err))
			return
		}

		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "image/png", png)
	})

	r.GET("/status", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, manager.Status(c.Request.Context(), userID))
	})

	r.POST("/disconnect", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		if err := manager.Disconnect(c.Request.Context(), userID); err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	r.GET("/events", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		query, err := parseEventQuery(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		events, err := manager.ListEvents(c.Request.Context(), userID, query)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	})
}

func parseEventQuery(c *gin.Context) (googlecal.EventQuery, error) {
	var q googlecal.EventQuery

	rawMin, rawMax := c.Query("timeMin"), c.Query("timeMax")
	if rawMin == "" || rawMax == "" {
		return q, fmt.Errorf("%w: timeMin and timeMax are required", googlecal.ErrInvalidQuery)
	}

	var errMin, errMax error
	q.TimeMin, errMin = parseEventTime(rawMin)
	q.TimeMax, errMax = parseEventTime(rawMax)
	if errMin != nil || errMax != nil {
		return q, fmt.Errorf("%w: invalid date format for timeMin or timeMax", googlecal.ErrInvalidQuery)
	}
	if !q.TimeMin.Before(q.TimeMax) {
		return q, fmt.Errorf("%w: timeMin must be before timeMax", googlecal.ErrInvalidQuery)
	}

	if raw := c.Query("maxResults"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return q, fmt.Errorf("%w: maxResults must be a number", googlecal.ErrInvalidQuery)
		}
		if n < 1 || n > googlecal.MaxMaxResults {
			return q, fmt.Errorf("%w: maxResults must be between 1 and %d", googlecal.ErrInvalidQuery, googlecal.MaxMaxResults)
		}
		q.MaxResults = n
	}
	return q, nil
}

// parseEventTime accepts RFC 3339 timestamps and bare YYYY-MM-DD dates (UTC midnight).
func parseEventTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	return utils.ParseDay(raw)
}
