package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"daybook/internal/attendance"
	"daybook/internal/storage"
	"daybook/internal/utils"
)

func withTodos(res *attendance.Result) *attendance.Result {
	if res.IncompleteTodos == nil {
		res.IncompleteTodos = []storage.Todo{}
	}
	return res
}

// CheckInOutRoutes registers attendance endpoints. The group must be
// behind AuthMiddleware.
func CheckInOutRoutes(r *gin.RouterGroup, tracker *attendance.Tracker) {
	r.POST("/check-in", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		res, err := tracker.CheckIn(c.Request.Context(), userID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, withTodos(res))
	})

	r.POST("/check-out", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		res, err := tracker.CheckOut(c.Request.Context(), userID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, withTodos(res))
	})

	r.GET("/status", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		date, err := dateQuery(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		status, err := tracker.Status(c.Request.Context(), userID, date)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, status)
	})

	r.GET("/incomplete-yesterday", func(c *gin.Context) {
		incompleteTodos(c, tracker.IncompleteYesterday)
	})

	r.GET("/incomplete-today", func(c *gin.Context) {
		incompleteTodos(c, tracker.IncompleteToday)
	})
}

func incompleteTodos(c *gin.Context, list func(ctx context.Context, userID string) ([]storage.Todo, error)) {
	userID, err := GetUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := list(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if items == nil {
		items = []storage.Todo{}
	}
	c.JSON(http.StatusOK, items)
}

// dateQuery reads the required ?date= parameter as a UTC day.
func dateQuery(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Time{}, ErrMissingDate
	}
	return utils.ParseDay(raw)
}
