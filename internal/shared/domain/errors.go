package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by every bounded context. Callers classify failures
// with errors.Is against these sentinels.
var (
	// ErrUnauthenticated means the operation needs a signed-in owner and none was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound means no record matched for the calling owner.
	ErrNotFound = errors.New("not found")
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrUpstream matches every *UpstreamError.
	ErrUpstream = errors.New("upstream failure")
)

// ValidationError reports one malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UpstreamError wraps a failure of a collaborator the core delegates to,
// such as the task store or the summarizer.
type UpstreamError struct {
	Source string
	Err    error
}

// NewUpstreamError wraps err. An error that already is an *UpstreamError
// keeps its original source.
func NewUpstreamError(source string, err error) error {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return err
	}
	return &UpstreamError{Source: source, Err: err}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
