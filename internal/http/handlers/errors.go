// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them. Generic
// codes mirror HTTP status semantics; the companion-specific ones name the
// input that was rejected.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "unknown_emotion",
//	  "message": "unknown emotion"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chat-companion/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Companion-specific:
	ErrCodeMissingUser     = "missing_user"
	ErrCodeEmptyMessage    = "empty_message"
	ErrCodeMessageTooLong  = "message_too_long"
	ErrCodeUnknownEmotion  = "unknown_emotion"
	ErrCodeInvalidUserName = "invalid_user_name"
	ErrCodeTurnFailed      = "turn_failed"
)

// failService maps a service error onto the envelope. Unknown errors are 500s.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingUser):
		fail(c, http.StatusBadRequest, ErrCodeMissingUser, "X-User-ID header is required")
	case errors.Is(err, services.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, ErrCodeEmptyMessage, "message must not be empty")
	case errors.Is(err, services.ErrTooLong):
		fail(c, http.StatusBadRequest, ErrCodeMessageTooLong, "message too long")
	case errors.Is(err, services.ErrUnknownEmotion):
		fail(c, http.StatusBadRequest, ErrCodeUnknownEmotion, "unknown emotion")
	case errors.Is(err, services.ErrInvalidUserName):
		fail(c, http.StatusBadRequest, ErrCodeInvalidUserName, "user name must be 1-64 characters")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
