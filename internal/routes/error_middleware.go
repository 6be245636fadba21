package routes

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"daybook/internal/observability"
)

type errorStruct struct {
	Succeed bool     `json:"success"`
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Code    []string `json:"code,omitempty"`
}

// ErrorHandler captures errors and returns a consistent JSON error response
// with appropriate HTTP status codes based on the error type
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		statusCode := GetErrorStatus(err)
		errorInfo := GetErrorInfo(err)

		if statusCode >= 500 {
			slog.Error("Request failed with server error",
				"error", err,
				"status", statusCode,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
			observability.CaptureError(c, err)
		} else if statusCode >= 400 {
			slog.Warn("Request failed with client error",
				"error", err,
				"status", statusCode,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
		}

		if c.Writer.Written() {
			return
		}

		response := errorStruct{
			Succeed: false,
			Status:  "error",
			Message: errorInfo.Message,
		}

		// Collect the stop codes from every error in the chain
		for _, e := range c.Errors {
			response.Code = append(response.Code, GetErrorInfo(e.Err).StopCodes...)
		}

		if wantsJSON(c) {
			c.AbortWithStatusJSON(statusCode, response)
			return
		}

		slog.Debug("Returning error page HTML", "code", statusCode, "message", errorInfo.Message)
		HTML(c, statusCode, "error.html.tmpl", gin.H{
			"StatusCode": statusCode,
			"Message":    response.Message,
			"Code":       response.Code,
		})
		c.Abort()
	}
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(c *gin.Context) bool {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return strings.HasPrefix(c.ContentType(), "application/json")
}

// AbortWithError is a helper function to abort the request with an error
// and add it to the Gin error chain for the ErrorHandler middleware
func AbortWithError(c *gin.Context, err error) {
	statusCode := GetErrorStatus(err)
	c.Error(err)
	c.Abort()
	// Set the status code so gin knows not to send 200
	c.Status(statusCode)
}

// AbortWithHTTPError is a helper to abort with a custom HTTPError
func AbortWithHTTPError(c *gin.Context, statusCode int, err error, message string, stopCodes ...string) {
	httpErr := NewHTTPError(statusCode, err, message, stopCodes...)
	c.Error(httpErr)
	c.Abort()
	c.Status(statusCode)
}
