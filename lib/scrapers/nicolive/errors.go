package nicolive

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidIdentifier = errors.New("invalid stream identifier")
	ErrMalformedPage     = errors.New("no script element with a data-props attribute")
)

// TransportError is a network-level fetch failure (DNS, refused
// connection, timeout). A non-200 HTTP response is not a TransportError.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is a JSON decoding failure of the data-props payload.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode data-props payload: %s", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type UnknownHostTypeError struct {
	Value string
}

func (e *UnknownHostTypeError) Error() string {
	return fmt.Sprintf("unknown host type %q", e.Value)
}

type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown broadcast status %q", e.Value)
}

// InvalidTimeRangeError reports a payload whose end time precedes its
// begin time.
type InvalidTimeRangeError struct {
	Begin time.Time
	End   time.Time
}

func (e *InvalidTimeRangeError) Error() string {
	return fmt.Sprintf(
		"end time %s precedes begin time %s",
		e.End.Format(time.RFC3339), e.Begin.Format(time.RFC3339),
	)
}

// MissingFieldError names the required payload field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q in data-props payload", e.Field)
}
