package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daybook/internal/activity"
	"daybook/internal/storage"
)

func ActivityRoutes(r *gin.RouterGroup, service *activity.Service) {
	r.GET("", func(c *gin.Context) {
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

		logs, err := service.List(c.Request.Context(), userID, date)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if logs == nil {
			logs = []storage.ActivityLog{}
		}
		c.JSON(http.StatusOK, logs)
	})
}
