package extract

import (
	"errors"
	"fmt"
)

// ErrNoEntryList is returned when the recovered text parses to something
// other than a mapping or a list of mappings.
var ErrNoEntryList = errors.New("no vocabulary entry list found in text")

// snippetLen bounds the amount of offending text carried in a ParseError.
const snippetLen = 160

// ParseError reports that no structured entry list could be recovered
// from the model output. It carries a truncated snippet of the offending
// text for diagnosis.
type ParseError struct {
	Err     error
	Snippet string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("extract: %v (text: %q)", e.Err, e.Snippet)
	}
	return fmt.Sprintf("extract: %v", e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *ParseError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newParseError(err error, text string) *ParseError {
	return &ParseError{Err: err, Snippet: snippet(text)}
}

func snippet(s string) string {
	runes := []rune(s)
	if len(runes) <= snippetLen {
		return s
	}
	return string(runes[:snippetLen]) + "..."
}
