package recurrence

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/cyp0633/librecur/recur"
	"github.com/cyp0633/librecur/rset"
)

// Engine provides unified recurrence expansion and validation logic
type Engine struct {
	config rset.Config
	logger *slog.Logger
}

// Option represents a configuration option for an Engine
type Option func(*Engine)

// WithConfig sets the configuration of the sets the engine builds.
func WithConfig(config rset.Config) Option {
	return func(e *Engine) {
		e.config = config
	}
}

// WithLogger sets the logger for the engine and its sets
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a new recurrence engine instance. Every call builds a
// fresh set, so caching is off unless a config enables it.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		config: rset.DisabledCacheConfig,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// occurrenceSet builds the set of instance start times of an event. The
// DTSTART always counts as the first instance, whether or not the rules
// produce it.
func (e *Engine) occurrenceSet(masterStart time.Time, info RecurrenceInfo) (*rset.Set, error) {
	included := info
	included.EXDATE = nil

	s, err := NewSet(masterStart, included, rset.WithConfig(e.config), rset.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	if err := s.AddRDate(masterStart); err != nil {
		return nil, err
	}

	for _, exdate := range info.EXDATE {
		if err := s.AddExDate(exdate); err != nil {
			return nil, err
		}
		if !isDateOnlyException(exdate) || isAllDayDate(masterStart) {
			continue
		}

		// A date-only exception removes every timed instance on that day.
		dayEnd := exdate.Add(24 * time.Hour)
		starts, err := s.Clone().Between(exdate, dayEnd, false, 0)
		if err != nil {
			return nil, err
		}
		for _, start := range starts {
			if err := s.AddExDate(start); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// HasOccurrenceInRange checks if a recurring event has any occurrence in the time range.
// An occurrence overlaps when start <= rangeEnd and start+duration >= rangeStart.
func (e *Engine) HasOccurrenceInRange(
	masterStart, masterEnd time.Time,
	recurrence RecurrenceInfo,
	rangeStart, rangeEnd time.Time,
) (bool, error) {
	s, err := e.occurrenceSet(masterStart, recurrence)
	if err != nil {
		return false, err
	}

	duration := eventDuration(masterStart, masterEnd)
	found, err := s.Between(rangeStart.Add(-duration), rangeEnd, true, 1)
	if err != nil {
		return false, fmt.Errorf("failed to check occurrences: %w", err)
	}
	return len(found) > 0, nil
}

// Expand lists the occurrences of an event that overlap the time range,
// bounded by opts.
func (e *Engine) Expand(
	masterStart, masterEnd time.Time,
	recurrence RecurrenceInfo,
	rangeStart, rangeEnd time.Time,
	opts ExpansionOptions,
) ([]TimeOccurrence, error) {
	s, err := e.occurrenceSet(masterStart, recurrence)
	if err != nil {
		return nil, err
	}

	rangeEnd = opts.clamp(rangeStart, rangeEnd)

	duration := eventDuration(masterStart, masterEnd)
	starts, err := s.Between(rangeStart.Add(-duration), rangeEnd, true, opts.MaxOccurrences)
	if err != nil {
		return nil, fmt.Errorf("failed to expand occurrences: %w", err)
	}

	recurring := recurrence.IsRecurring()
	occurrences := make([]TimeOccurrence, 0, len(starts))
	for _, start := range starts {
		occ := TimeOccurrence{Start: start, End: start.Add(duration)}
		if recurring {
			id := start
			occ.RecurrenceID = &id
		}
		occurrences = append(occurrences, occ)
	}

	e.logger.Debug("recurrence expanded",
		"range_start", rangeStart,
		"range_end", rangeEnd,
		"occurrences", len(occurrences))
	return occurrences, nil
}

// ApplyOverrides replaces every occurrence whose RecurrenceID matches the
// RecurrenceID of an override with that override. The result is ordered
// by start time.
func ApplyOverrides(occurrences, overrides []TimeOccurrence) []TimeOccurrence {
	byID := make(map[int64]TimeOccurrence, len(overrides))
	for _, o := range overrides {
		if o.RecurrenceID == nil {
			continue
		}
		o.IsException = true
		byID[recur.Key(*o.RecurrenceID)] = o
	}

	result := make([]TimeOccurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		if occ.RecurrenceID != nil {
			if o, ok := byID[recur.Key(*occ.RecurrenceID)]; ok {
				occ = o
			}
		}
		result = append(result, occ)
	}

	slices.SortStableFunc(result, func(a, b TimeOccurrence) int {
		return a.Start.Compare(b.Start)
	})
	return result
}

func eventDuration(start, end time.Time) time.Duration {
	if end.Before(start) {
		return 0
	}
	return end.Sub(start)
}

// isDateOnlyException reports whether an EXDATE was given as a DATE value,
// which is stored as midnight UTC.
func isDateOnlyException(t time.Time) bool {
	return t.Location() == time.UTC && isAllDayDate(t)
}

// isAllDayDate checks if a time represents an all-day date (time part is midnight)
func isAllDayDate(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}
