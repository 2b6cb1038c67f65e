package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidArgument    = errors.New("invalid argument")

	// Completion relay errors
	ErrUpstreamTimeout     = errors.New("completion request timed out")
	ErrUpstreamUnreachable = errors.New("completion endpoint unreachable")
)

// UpstreamError carries a non-success status returned by the completion
// endpoint so the gateway can pass it through to the caller.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: http %d: %s", e.Status, e.Message)
}
