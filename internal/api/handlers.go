package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/daypilot/backend/internal/middleware"
	"github.com/daypilot/backend/internal/service"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// respondError maps service errors onto status codes. Anything unrecognised
// is logged and answered with a generic 500.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Field: verr.Field, Message: verr.Message})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, service.ErrBlockLocked),
		errors.Is(err, service.ErrBlockNotEditable),
		errors.Is(err, service.ErrVersionConflict),
		errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: rootMessage(err)})
	case errors.Is(err, service.ErrUploadsDisabled):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: service.ErrUploadsDisabled.Error()})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// rootMessage returns the sentinel's text without the op prefixes added on
// the way up.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		service.ErrBlockLocked,
		service.ErrBlockNotEditable,
		service.ErrVersionConflict,
		service.ErrUserExists,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Message: err.Error()})
}

// currentUser reads the id AuthMiddleware stored. It answers 401 itself when
// the id is missing.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	return id, ok
}

// pathID parses the :id parameter. Malformed ids answer 404 like foreign
// ones do.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
		return uuid.Nil, false
	}
	return id, true
}
