// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file carries request correlation and identity:
//
//   - RequestID() reuses or mints an X-Request-ID and echoes it back.
//   - UserIdentity() lifts the caller's X-User-ID header into the Gin context
//     under "userID"; companion routes require it.
//   - Recovery() turns panics into the standard JSON 500 envelope.
//   - LoggerFrom() and UserIDFrom() read what the chain stored.
//
// Order: RequestID, UserIdentity, RedactingLogger, Recovery. The access log
// then carries both the request and user id.
package middleware

import (
	"net/http"
	"regexp"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	userIDKey       = "userID"
	loggerKey       = "logger"

	// HeaderUserID identifies the caller. There is no authentication layer;
	// an upstream gateway is expected to set it.
	HeaderUserID = "X-User-ID"

	maxQueryLogLength = 2048
	maxUserIDLength   = 128
)

// userIDRE admits opaque ids such as UUIDs, emails and slugs.
var userIDRE = regexp.MustCompile(`^[A-Za-z0-9._@:\-]+$`)

// RequestID attaches (or propagates) a correlation identifier per request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// UserIdentityOptions configures UserIdentity.
type UserIdentityOptions struct {
	// Required rejects requests without a usable X-User-ID with 400.
	Required bool
}

// UserIdentity validates X-User-ID and stores it under "userID". A malformed
// id is always rejected; a missing one only when opts.Required is set.
func UserIdentity(opts UserIdentityOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(HeaderUserID))
		switch {
		case uid == "":
			if opts.Required {
				abortJSON(c, http.StatusBadRequest, "missing_user", "X-User-ID header is required")
				return
			}
		case len(uid) > maxUserIDLength || !userIDRE.MatchString(uid):
			abortJSON(c, http.StatusBadRequest, "bad_request", "invalid X-User-ID header")
			return
		default:
			c.Set(userIDKey, uid)
		}
		c.Next()
	}
}

// UserIDFrom returns the caller id stored by UserIdentity, or "".
func UserIDFrom(c *gin.Context) string {
	v, _ := c.Get(userIDKey)
	return asString(v)
}

// RequestIDFrom returns the correlation id stored by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	v, _ := c.Get(requestIDKey)
	return asString(v)
}

// Recovery intercepts panics, logs a stack trace, and returns a JSON 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger attached by RedactingLogger,
// or the global logger when none was attached. Never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Str("request_id", RequestIDFrom(c)).Logger()
	return &l
}

// abortJSON writes the shared error envelope without importing handlers.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at max bytes, appending an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
