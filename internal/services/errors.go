// Package services holds the conversational core that sits above the pure
// classifier and generator: the per-user context manager, the proactive
// suggestion rules, the manager registry, and the turn orchestration used by
// the HTTP and CLI front ends.
//
// This file centralizes service-level error values. None of them is ever
// produced by the pipeline itself for a valid turn; they guard the inputs
// accepted from the outer surfaces, and translation into HTTP status codes
// happens in the handler layer.
package services

import "errors"

var (
	// ErrEmptyMessage is returned when a turn carries no text after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTooLong is returned when a message exceeds the configured rune limit.
	ErrTooLong = errors.New("message too long")

	// ErrUnknownEmotion is returned when an emotion value is outside the
	// fixed enumeration.
	ErrUnknownEmotion = errors.New("unknown emotion")

	// ErrInvalidUserName is returned for blank or oversized display names.
	ErrInvalidUserName = errors.New("invalid user name")

	// ErrMissingUser is returned when no user identity accompanies a request.
	ErrMissingUser = errors.New("missing user id")
)
