package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"daybook/internal/storage"
	"daybook/internal/todos"
)

func TodoRoutes(r *gin.RouterGroup, service *todos.Service) {
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

		items, err := service.List(c.Request.Context(), userID, date)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if items == nil {
			items = []storage.Todo{}
		}
		c.JSON(http.StatusOK, items)
	})

	r.POST("", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		var in todos.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			AbortWithError(c, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
			return
		}

		todo, err := service.Create(c.Request.Context(), userID, in)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, todo)
	})

	r.PATCH("/:id", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		var in todos.UpdateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			AbortWithError(c, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
			return
		}

		todo, err := service.Update(c.Request.Context(), c.Param("id"), userID, in)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, todo)
	})
}
