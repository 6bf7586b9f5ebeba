package recurrence

import "errors"

var (
	// ErrMissingStart is returned when an event has no usable DTSTART.
	ErrMissingStart = errors.New("event has no start time")
	// ErrInvalidProperty is returned when a recurrence property of a
	// component cannot be parsed.
	ErrInvalidProperty = errors.New("invalid recurrence property")
)
