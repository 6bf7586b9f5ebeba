package recur

import (
	"time"

	"github.com/samber/mo"
)

// Origin exposes the options a rule was originally configured with.
type Origin struct {
	Dtstart mo.Option[time.Time]
	TZID    mo.Option[string]
}

// Rule is a single recurrence rule as consumed by a recurrence set.
type Rule interface {
	// String returns the canonical text form, e.g.
	//
	//	DTSTART:19970902T090000Z
	//	RRULE:FREQ=DAILY;COUNT=3
	//
	// Two rules with the same canonical string are the same rule.
	String() string
	// Clone returns an independent deep copy.
	Clone() Rule
	Origin() Origin
	// Occurrences returns the rule's occurrences in ascending order. The
	// stream may end once it passes the upper bound of q, but callers still
	// filter the values against q.
	Occurrences(q Query) Next
}

// Parser turns a canonical rule string back into a Rule.
type Parser interface {
	Parse(text string) (Rule, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(text string) (Rule, error)

// Parse calls f(text).
func (f ParserFunc) Parse(text string) (Rule, error) {
	return f(text)
}
