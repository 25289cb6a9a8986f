package colmap

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord reports a data line that cannot be tokenised into a
	// record: too few fields or a field that is not a number.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrUnsupportedModel reports a camera model with no pinhole reduction.
	ErrUnsupportedModel = errors.New("unsupported camera model")

	// ErrInsufficientParameters reports a camera whose parameter list is
	// shorter than its model requires.
	ErrInsufficientParameters = errors.New("insufficient camera parameters")
)

// LineError attaches a 1-based line number to a parse failure.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

func malformed(line int, format string, args ...any) error {
	return &LineError{Line: line, Err: fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))}
}
