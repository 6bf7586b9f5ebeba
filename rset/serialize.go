package rset

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Serialize returns the canonical text form of the set, one property per
// line:
//
//	DTSTART[;TZID=<id>]:<timestamp>   only when the set has no RRULE
//	RRULE:...                          with the rule's own DTSTART line
//	EXRULE:...                         without DTSTART
//	RDATE[;TZID=<id>]:<ts>[,<ts>...]
//	EXDATE[;TZID=<id>]:<ts>[,<ts>...]
func (s *Set) Serialize() []string {
	var lines []string

	if len(s.rrules) == 0 {
		if dt, ok := s.DTStart().Get(); ok {
			lines = append(lines, s.dateLine("DTSTART", []time.Time{dt}))
		}
	}

	for _, r := range s.rrules {
		lines = append(lines, strings.Split(r.String(), "\n")...)
	}

	for _, r := range s.exrules {
		for _, line := range strings.Split(r.String(), "\n") {
			switch {
			case strings.HasPrefix(line, "DTSTART"):
				continue
			case strings.HasPrefix(line, "RRULE"):
				line = "EXRULE" + strings.TrimPrefix(line, "RRULE")
			}
			lines = append(lines, line)
		}
	}

	if len(s.rdates) > 0 {
		lines = append(lines, s.dateLine("RDATE", s.rdates))
	}
	if len(s.exdates) > 0 {
		lines = append(lines, s.dateLine("EXDATE", s.exdates))
	}
	return lines
}

// String returns the lines of Serialize joined by newlines.
func (s *Set) String() string {
	return strings.Join(s.Serialize(), "\n")
}

// dateLine renders a date-list property. Without a TZID, or with TZID=UTC,
// dates are written in UTC with a trailing Z; otherwise the header carries
// the TZID and dates are written as local time in that zone. A TZID that
// cannot be loaded is logged and the dates are written in UTC form, so the
// text still parses.
func (s *Set) dateLine(name string, dates []time.Time) string {
	values := make([]string, len(dates))

	tzid, ok := s.TZID().Get()
	var loc *time.Location
	if ok && !strings.EqualFold(tzid, "UTC") {
		var err error
		if loc, err = time.LoadLocation(tzid); err != nil {
			s.logger.Warn("unknown TZID, dates written in UTC",
				"property", name,
				"tzid", tzid,
				"error", err)
		}
	}

	if loc == nil {
		for i, d := range dates {
			values[i] = d.UTC().Format(rrule.DateTimeFormat)
		}
		return name + ":" + strings.Join(values, ",")
	}

	for i, d := range dates {
		values[i] = d.In(loc).Format(rrule.LocalDateTimeFormat)
	}
	return name + ";TZID=" + tzid + ":" + strings.Join(values, ",")
}
