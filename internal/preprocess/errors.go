package preprocess

import (
	"errors"
	"fmt"
)

// Common conditioning errors
var (
	// ErrDecode is returned when the input cannot be decoded as an image.
	ErrDecode = errors.New("input cannot be decoded as an image")

	// ErrUnsupportedFormat is returned when the configured output format
	// is neither PNG nor JPEG.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// ConditionError wraps errors with additional context about the
// conditioning failure.
type ConditionError struct {
	// Op is the operation that failed (e.g., "ConditionFile", "resize").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ConditionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("preprocess: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("preprocess: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ConditionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *ConditionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapConditionError wraps an error as a ConditionError if it isn't
// already one.
func WrapConditionError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var condErr *ConditionError
	if errors.As(err, &condErr) {
		return err
	}
	return &ConditionError{Op: op, Err: err, Details: details}
}
