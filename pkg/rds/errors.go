package rds

import (
	"errors"
	"fmt"
)

// Errors returned by the splitter and decoder. Check them with errors.Is.
var (
	// ErrMalformedLine is returned for a tagged line that lacks the channel
	// identifier or the payload field.
	ErrMalformedLine = errors.New("rds: malformed tagged line")

	// ErrInvalidToken is returned for a CSV token holding characters other
	// than binary digits.
	ErrInvalidToken = errors.New("rds: invalid binary token")
)

// LineError attaches a 1-based input line number to an error.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
