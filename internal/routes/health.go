package routes

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"daybook/internal/utils"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func Health(r *gin.RouterGroup, db Pinger) {
	r.GET("/health", func(c *gin.Context) {
		msg := c.Query("ping")
		if msg == "" {
			msg = "pong"
		}

		status, code := "ok", http.StatusOK
		if db != nil {
			if err := db.Ping(c.Request.Context()); err != nil {
				slog.Error("Health check failed", "error", err)
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"message": msg,
			"status":  status,
			"version": utils.GetVersion(),
		})
	})
}
