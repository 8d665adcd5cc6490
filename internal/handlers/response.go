package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safestreets/safestreets-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps service-layer errors through the apierr
// taxonomy, falling back to a plain 500.
func RespondServiceError(c *gin.Context, err error) {
	status := apierr.StatusOf(err)
	code := apierr.CodeOf(err)
	if status == http.StatusInternalServerError {
		RespondError(c, status, "internal_error", err)
		return
	}
	RespondError(c, status, code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
