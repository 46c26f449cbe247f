package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler recovers panics into a JSON 500 and turns errors attached with
// c.Error into a JSON body when the handler wrote nothing itself.
func ErrorHandler(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithFields(logrus.Fields{
					"panic":  rec,
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
				}).Error("recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last()
		log.WithError(err.Err).WithField("path", c.Request.URL.Path).Error("request failed")
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		c.JSON(status, ErrorResponse{Error: http.StatusText(status)})
	}
}
