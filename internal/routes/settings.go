package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"daybook/internal/settings"
)

func SettingsRoutes(r *gin.RouterGroup, service *settings.Service) {
	r.GET("", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		s, err := service.Get(c.Request.Context(), userID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	})

	r.PATCH("", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		var in settings.UpdateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			AbortWithError(c, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
			return
		}

		s, err := service.Update(c.Request.Context(), userID, in)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	})
}
