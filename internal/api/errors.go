package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/ngmaloney/weather-terminal/internal/models"
)

var (
	// ErrUnreachable matches any error where the service could not be contacted
	ErrUnreachable = errors.New("service unreachable")
	// ErrBadResponse matches non-success statuses and malformed payloads
	ErrBadResponse = errors.New("bad response from service")
)

// Error is returned by every Client call that fails
type Error struct {
	Kind   models.ErrorKind
	Op     string // e.g. "current weather"
	Status int    // HTTP status, 0 when no response was received
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: service returned status %d: %v", e.Op, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: service returned status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": " + e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match an *Error against the package sentinels
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnreachable:
		return e.Kind == models.ErrUnreachable
	case ErrBadResponse:
		return e.Kind == models.ErrBadResponse
	}
	return false
}

func unreachable(op string, err error) *Error {
	return &Error{Kind: models.ErrUnreachable, Op: op, Err: err}
}

func badResponse(op string, status int, err error) *Error {
	return &Error{Kind: models.ErrBadResponse, Op: op, Status: status, Err: err}
}

// KindOf classifies any error returned by this package. Deadline and
// cancellation errors count as unreachable, unknown errors as bad responses.
func KindOf(err error) models.ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.ErrUnreachable
	}
	return models.ErrBadResponse
}
