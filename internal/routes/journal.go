package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"daybook/internal/journal"
	"daybook/internal/storage"
)

func JournalRoutes(r *gin.RouterGroup, service *journal.Service) {
	r.POST("", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		var in journal.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			AbortWithError(c, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
			return
		}

		entry, err := service.Create(c.Request.Context(), userID, in)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	})

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

		entries, err := service.List(c.Request.Context(), userID, date)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if entries == nil {
			entries = []storage.JournalEntry{}
		}
		c.JSON(http.StatusOK, entries)
	})

	r.DELETE("/:id", func(c *gin.Context) {
		userID, err := GetUser(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		if err := service.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Journal entry deleted successfully"})
	})
}
