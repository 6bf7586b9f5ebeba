// Package recurrence applies recurrence sets to calendar events: it anchors
// an event's RRULE, EXRULE, RDATE and EXDATE properties at its DTSTART,
// answers time-range questions with the event's duration taken into
// account, and moves recurrence data between go-ical components and sets.
package recurrence

import (
	"fmt"
	"time"

	"github.com/cyp0633/librecur/rset"
	"github.com/cyp0633/librecur/rule"
)

// NewSet builds the recurrence set of an event starting at start. Rules
// are anchored at start. The start itself is not added as an inclusion
// date, so the set serializes back to the event's own properties.
func NewSet(start time.Time, info RecurrenceInfo, opts ...rset.Option) (*rset.Set, error) {
	if start.IsZero() {
		return nil, ErrMissingStart
	}

	s := rset.New(opts...)
	s.SetDTStart(start)
	if zone := start.Location().String(); zone != "UTC" {
		s.SetTZID(zone)
	}

	anchor := rule.FormatDTStart(start)
	for _, value := range info.RRULE {
		r, err := rule.ParseRRule(anchor + "\nRRULE:" + value)
		if err != nil {
			return nil, fmt.Errorf("%w: RRULE: %v", ErrInvalidProperty, err)
		}
		if err := s.AddRRule(r); err != nil {
			return nil, err
		}
	}
	for _, value := range info.EXRULE {
		r, err := rule.ParseRRule(anchor + "\nRRULE:" + value)
		if err != nil {
			return nil, fmt.Errorf("%w: EXRULE: %v", ErrInvalidProperty, err)
		}
		if err := s.AddExRule(r); err != nil {
			return nil, err
		}
	}

	for _, d := range info.RDATE {
		if err := s.AddRDate(d); err != nil {
			return nil, err
		}
	}
	for _, d := range info.EXDATE {
		if err := s.AddExDate(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}
