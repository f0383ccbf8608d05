package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/goldwen/matching-service/internal/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps a service error onto the HTTP status taxonomy
// (400/404/429/500) and writes the JSON error envelope. Internal faults are
// not echoed back verbatim.
func RespondError(c *gin.Context, err error) {
	status, code := svcErr.Map(err)

	msg := "internal error"
	if status != http.StatusInternalServerError && err != nil {
		msg = err.Error()
	}

	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondBadRequest writes a 400 envelope for malformed request payloads.
func RespondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    "validation_error",
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
