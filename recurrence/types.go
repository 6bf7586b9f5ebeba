package recurrence

import (
	"time"
)

// RecurrenceInfo contains all recurrence-related information for an event
type RecurrenceInfo struct {
	RRULE        []string    // RRULE values (without "RRULE:" prefix)
	EXRULE       []string    // EXRULE values (without "EXRULE:" prefix)
	RDATE        []time.Time // Additional recurrence dates
	EXDATE       []time.Time // Exception dates (excluded occurrences)
	RecurrenceID *time.Time  // For exception instances - which occurrence this overrides
}

// IsRecurring reports whether the event has more than its DTSTART occurrence.
func (r RecurrenceInfo) IsRecurring() bool {
	return len(r.RRULE) > 0 || len(r.RDATE) > 0
}

// TimeOccurrence represents a single occurrence of an event in time
type TimeOccurrence struct {
	Start        time.Time  // Start time of this occurrence
	End          time.Time  // End time of this occurrence
	IsException  bool       // True if this is an exception/override instance
	RecurrenceID *time.Time // Original start of the occurrence, nil for non-recurring events
}

// Overlaps reports whether the occurrence touches the time range, bounds
// included.
func (o TimeOccurrence) Overlaps(rangeStart, rangeEnd time.Time) bool {
	return !o.Start.After(rangeEnd) && !o.End.Before(rangeStart)
}

// ExpansionOptions controls how recurrence expansion behaves
type ExpansionOptions struct {
	MaxOccurrences int           // Maximum number of occurrences to expand (0 = unlimited)
	MaxTimeSpan    time.Duration // Maximum time span to expand (0 = unlimited)
}

// DefaultExpansionOptions provides sensible defaults for expansion
var DefaultExpansionOptions = ExpansionOptions{
	MaxOccurrences: 1000,
	MaxTimeSpan:    365 * 24 * time.Hour * 2, // 2 years
}

// clamp shortens the range end to MaxTimeSpan.
func (o ExpansionOptions) clamp(rangeStart, rangeEnd time.Time) time.Time {
	if o.MaxTimeSpan > 0 && rangeEnd.Sub(rangeStart) > o.MaxTimeSpan {
		return rangeStart.Add(o.MaxTimeSpan)
	}
	return rangeEnd
}
