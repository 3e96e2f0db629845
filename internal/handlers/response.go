package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkashyap/taskhub-backend/internal/apierr"
	"github.com/nkashyap/taskhub-backend/internal/logger"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps a service error onto the wire. Internal faults log
// with context and surface a generic message only.
func RespondError(c *gin.Context, log *logger.Logger, err error) {
	status := apierr.StatusOf(err)
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("Internal error handling request", "path", c.FullPath(), "error", err)
		}
		msg = "server error"
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    apierr.CodeOf(err),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
