package vision

import (
	"errors"
	"fmt"
)

// Common vision backend errors
var (
	// ErrMissingCredentials is returned when no usable credentials are
	// configured for the selected backend.
	ErrMissingCredentials = errors.New("missing credentials for vision backend")

	// ErrEmptyResponse is returned when the backend replied without any
	// text content.
	ErrEmptyResponse = errors.New("vision backend returned no text")

	// ErrImageTooLarge is returned when the encoded image exceeds the
	// backend's request size limit.
	ErrImageTooLarge = errors.New("encoded image exceeds backend size limit")
)

// VisionError wraps errors with additional context about the backend
// call that failed.
type VisionError struct {
	// Op is the operation that failed (e.g., "ExtractText").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *VisionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("vision: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("vision: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *VisionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *VisionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapVisionError wraps an error as a VisionError if it isn't already one.
func WrapVisionError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var visErr *VisionError
	if errors.As(err, &visErr) {
		return err
	}
	return &VisionError{Op: op, Err: err, Details: details}
}
