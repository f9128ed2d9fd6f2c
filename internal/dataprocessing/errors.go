package dataprocessing

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when no valid rows survive parsing. Callers can
// match it with errors.Is.
var ErrEmptyInput = errors.New("no valid rows after parsing")

// ParseError reports a malformed field. It names the offending raw value and
// column so the caller can show the user exactly which cell failed; parse
// failures are never silently swallowed into a default value.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %q: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingColumnError reports a required column absent from the header.
// Optional analyses degrade to "skipped" when their columns are missing;
// only required columns raise this error.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q not found in header", e.Column)
}
