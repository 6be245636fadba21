package app

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"daybook/internal/activity"
	"daybook/internal/attendance"
	"daybook/internal/config"
	"daybook/internal/integrations/googlecal"
	"daybook/internal/journal"
	"daybook/internal/jwt"
	"daybook/internal/observability"
	"daybook/internal/routes"
	"daybook/internal/settings"
	"daybook/internal/throttle"
	"daybook/internal/todos"
	"daybook/internal/utils"
)

// Services are the collaborators the HTTP layer dispatches to. Calendar
// and Throttle may be nil.
type Services struct {
	Storage  routes.Pinger
	Verifier *jwt.Verifier
	Tracker  *attendance.Tracker
	Todos    *todos.Service
	Journal  *journal.Service
	Activity *activity.Service
	Settings *settings.Service
	Calendar *googlecal.Manager
	Throttle throttle.Store
}

func securityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-XSS-Protection", "1; mode=block")

	// Disable caching
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Next()
}

// allowedOrigins is the frontend URL plus any configured extra origins.
func allowedOrigins(cfg *config.Config) []string {
	seen := map[string]bool{}
	var origins []string

	add := func(origin string) {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" || seen[origin] {
			return
		}
		seen[origin] = true
		origins = append(origins, origin)
	}

	add(cfg.FrontendURL)
	for origin := range strings.SplitSeq(cfg.AllowedOrigins, ",") {
		add(origin)
	}
	return origins
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	origins := allowedOrigins(cfg)
	if len(origins) == 0 {
		origins = []string{config.DEFAULT_FRONTEND_URL}
	}
	slog.Debug("CORS origins", "origins", origins)

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func HTTPServer(cfg *config.Config, s *Services) *gin.Engine {
	r := gin.New()
	r.HTMLRender = routes.HTMLRenderer()

	r.Use(observability.Hub(), observability.RequestLogger(), observability.Recovery())
	r.Use(corsMiddleware(cfg))
	r.Use(securityHeaders)
	r.Use(func(c *gin.Context) {
		c.Set(routes.FRONTEND_URL_KEY, cfg.FrontendURL)
		c.Next()
	})
	r.Use(routes.ErrorHandler())

	r.NoRoute(func(c *gin.Context) {
		routes.AbortWithError(c, routes.ErrNotFoundRoute)
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "daybook",
			"version": utils.GetVersion(),
		})
	})
	routes.Health(r.Group(""), s.Storage)

	throttled := func(h ...gin.HandlerFunc) []gin.HandlerFunc {
		if s.Throttle != nil {
			h = append(h, routes.Throttle(s.Throttle))
		}
		return h
	}

	// The OAuth redirect target carries no bearer token
	routes.CalendarCallback(r.Group("/integrations/google-calendar", throttled()...), s.Calendar, cfg.FrontendURL)

	authed := r.Group("", throttled(routes.AuthMiddleware(s.Verifier, cfg.Auth.CookieName))...)

	routes.Me(authed)
	routes.CheckInOutRoutes(authed.Group("/check-in-out"), s.Tracker)
	routes.TodoRoutes(authed.Group("/todos"), s.Todos)
	routes.JournalRoutes(authed.Group("/journal"), s.Journal)
	routes.ActivityRoutes(authed.Group("/activity-logs"), s.Activity)
	routes.SettingsRoutes(authed.Group("/user-settings"), s.Settings)
	routes.CalendarRoutes(authed.Group("/integrations/google-calendar"), s.Calendar)

	return r
}
