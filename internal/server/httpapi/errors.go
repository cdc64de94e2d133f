package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	msgTokenRequired    = "Access token required"
	msgTokenInvalid     = "Invalid or expired token"
	msgInvalidCreds     = "Invalid credentials"
	msgUsernameTaken    = "Username already exists"
	msgNoteNotFound     = "Note not found"
	msgAttachNotFound   = "Attachment not found"
	msgInvalidBody      = "Invalid request body"
	msgStorageDisabled  = "Attachment storage is not configured"
	msgInternal         = "Internal server error"
	validationMsgPrefix = "validation error: "
)

// writeError maps a service error onto a status code and a fixed message.
// notFound is the message used for common.ErrorNotFound.
func writeError(c *gin.Context, err error, notFound string) {
	status, msg := classify(err, notFound)
	c.JSON(status, gin.H{"error": msg})
}

func classify(err error, notFound string) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), validationMsgPrefix)
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, msgUsernameTaken
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, msgInvalidCreds
	case errors.Is(err, common.ErrMissingToken):
		return http.StatusUnauthorized, msgTokenRequired
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusForbidden, msgTokenInvalid
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, notFound
	case errors.Is(err, services.ErrStorageDisabled):
		return http.StatusServiceUnavailable, msgStorageDisabled
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
