package recurrence

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/cyp0633/librecur/recur"
	"github.com/cyp0633/librecur/rset"
)

const (
	propExceptionRule = "EXRULE"
	propRecurrenceID  = "RECURRENCE-ID"
	paramTimezoneID   = "TZID"
)

// ExtractRecurrenceInfoFromComponent extracts recurrence information from an iCal component
func ExtractRecurrenceInfoFromComponent(comp *ical.Component) (RecurrenceInfo, error) {
	info := RecurrenceInfo{
		RRULE:  ruleValues(comp, ical.PropRecurrenceRule),
		EXRULE: ruleValues(comp, propExceptionRule),
	}

	var err error
	if info.RDATE, err = dateValues(comp, ical.PropRecurrenceDates); err != nil {
		return RecurrenceInfo{}, err
	}
	if info.EXDATE, err = dateValues(comp, ical.PropExceptionDates); err != nil {
		return RecurrenceInfo{}, err
	}

	// Exception instances carry the start of the occurrence they override
	if recurrenceIDs, err := dateValues(comp, propRecurrenceID); err != nil {
		return RecurrenceInfo{}, err
	} else if len(recurrenceIDs) > 0 {
		info.RecurrenceID = &recurrenceIDs[0]
	}

	return info, nil
}

func ruleValues(comp *ical.Component, name string) []string {
	var values []string
	for _, prop := range comp.Props[name] {
		if v := strings.TrimSpace(prop.Value); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// dateValues parses every date list of the named property. Values without
// TZID are read as UTC; DATE values become midnight UTC.
func dateValues(comp *ical.Component, name string) ([]time.Time, error) {
	var dates []time.Time
	for _, prop := range comp.Props[name] {
		if strings.TrimSpace(prop.Value) == "" {
			continue
		}

		loc := time.UTC
		if tzid := prop.Params.Get(paramTimezoneID); tzid != "" {
			l, err := time.LoadLocation(tzid)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidProperty, name, err)
			}
			loc = l
		}

		parsed, err := rrule.StrToDatesInLoc(prop.Value, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidProperty, name, prop.Value, err)
		}
		dates = append(dates, parsed...)
	}
	return dates, nil
}

// ExtractBasicTimeInfoFromComponent extracts start and end times from an iCal component
func ExtractBasicTimeInfoFromComponent(comp *ical.Component) (start, end time.Time, hasTime bool) {
	if comp.Props.Get(ical.PropDateTimeStart) != nil {
		if dtstart, err := comp.Props.DateTime(ical.PropDateTimeStart, nil); err == nil && !dtstart.IsZero() {
			start = dtstart
			hasTime = true
		}
	}

	if hasTime {
		switch {
		case comp.Props.Get(ical.PropDateTimeEnd) != nil:
			dtend, err := comp.Props.DateTime(ical.PropDateTimeEnd, nil)
			if err != nil {
				return time.Time{}, time.Time{}, false
			}
			end = dtend

			// An all-day event ending on its start date lasts the whole day
			if isAllDayDate(start) && sameDate(start, end) {
				end = start.AddDate(0, 0, 1)
			}
		case comp.Props.Get(ical.PropDuration) != nil:
			duration, err := comp.Props.Get(ical.PropDuration).Duration()
			if err != nil {
				return time.Time{}, time.Time{}, false
			}
			end = start.Add(duration)
		case isAllDayDate(start):
			end = start.AddDate(0, 0, 1)
		default:
			end = start
		}
	}

	// For VTODO, also check DUE property
	if comp.Name == ical.CompToDo && comp.Props.Get(ical.PropDue) != nil {
		if due, err := comp.Props.DateTime(ical.PropDue, nil); err == nil {
			switch {
			case !hasTime:
				start, end, hasTime = due, due, true
			case due.After(end):
				end = due
			}
		}
	}

	return start, end, hasTime
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SetFromComponent builds the recurrence set of a component, anchored at
// its DTSTART.
func SetFromComponent(comp *ical.Component, opts ...rset.Option) (*rset.Set, error) {
	start, _, ok := ExtractBasicTimeInfoFromComponent(comp)
	if !ok {
		return nil, ErrMissingStart
	}
	info, err := ExtractRecurrenceInfoFromComponent(comp)
	if err != nil {
		return nil, err
	}
	return NewSet(start, info, opts...)
}

// ApplyToComponent replaces the RRULE, EXRULE, RDATE and EXDATE properties
// of comp with those of s. DTSTART is written only when comp has none.
func ApplyToComponent(comp *ical.Component, s *rset.Set) error {
	for _, name := range []string{ical.PropRecurrenceRule, propExceptionRule, ical.PropRecurrenceDates, ical.PropExceptionDates} {
		delete(comp.Props, name)
	}

	if dt, ok := s.DTStart().Get(); ok && comp.Props.Get(ical.PropDateTimeStart) == nil {
		comp.Props.SetDateTime(ical.PropDateTimeStart, dt)
	}

	for _, line := range s.Serialize() {
		prop, err := lineToProp(line)
		if err != nil {
			return err
		}
		if prop.Name == ical.PropDateTimeStart {
			continue
		}
		comp.Props.Add(prop)
	}
	return nil
}

// lineToProp splits a content line of the form NAME[;PARAM=VALUE...]:VALUE.
func lineToProp(line string) (*ical.Prop, error) {
	head, value, ok := strings.Cut(line, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProperty, line)
	}

	parts := strings.Split(head, ";")
	prop := ical.NewProp(parts[0])
	for _, param := range parts[1:] {
		k, v, ok := strings.Cut(param, "=")
		if !ok {
			return nil, fmt.Errorf("%w: parameter %q", ErrInvalidProperty, param)
		}
		prop.Params.Set(k, v)
	}
	prop.Value = value
	return prop, nil
}

// ExpandComponent expands a master component together with the override
// instances that share its UID. Overrides replace the occurrence named by
// their RECURRENCE-ID and are returned only where their own start and end
// overlap the range, including instances moved in from outside it.
func (e *Engine) ExpandComponent(
	master *ical.Component,
	overrides []*ical.Component,
	rangeStart, rangeEnd time.Time,
	opts ExpansionOptions,
) ([]TimeOccurrence, error) {
	start, end, ok := ExtractBasicTimeInfoFromComponent(master)
	if !ok {
		return nil, ErrMissingStart
	}
	info, err := ExtractRecurrenceInfoFromComponent(master)
	if err != nil {
		return nil, err
	}

	occurrences, err := e.Expand(start, end, info, rangeStart, rangeEnd, opts)
	if err != nil {
		return nil, err
	}
	rangeEnd = opts.clamp(rangeStart, rangeEnd)

	expanded := make(map[int64]bool, len(occurrences))
	for _, occ := range occurrences {
		if occ.RecurrenceID != nil {
			expanded[recur.Key(*occ.RecurrenceID)] = true
		}
	}

	var exceptions, movedIn []TimeOccurrence
	for _, comp := range overrides {
		overrideInfo, err := ExtractRecurrenceInfoFromComponent(comp)
		if err != nil {
			return nil, err
		}
		if overrideInfo.RecurrenceID == nil {
			continue
		}
		overrideStart, overrideEnd, ok := ExtractBasicTimeInfoFromComponent(comp)
		if !ok {
			overrideStart = *overrideInfo.RecurrenceID
			overrideEnd = overrideStart.Add(eventDuration(start, end))
		}
		exception := TimeOccurrence{
			Start:        overrideStart,
			End:          overrideEnd,
			RecurrenceID: overrideInfo.RecurrenceID,
		}
		if expanded[recur.Key(*overrideInfo.RecurrenceID)] {
			exceptions = append(exceptions, exception)
		} else if exception.Overlaps(rangeStart, rangeEnd) {
			exception.IsException = true
			movedIn = append(movedIn, exception)
		}
	}

	result := ApplyOverrides(append(occurrences, movedIn...), exceptions)
	result = slices.DeleteFunc(result, func(occ TimeOccurrence) bool {
		return !occ.Overlaps(rangeStart, rangeEnd)
	})
	if opts.MaxOccurrences > 0 && len(result) > opts.MaxOccurrences {
		result = result[:opts.MaxOccurrences]
	}
	return result, nil
}

// SafeTimeDeref safely dereferences a time pointer, returning defaultTime if nil
func SafeTimeDeref(t *time.Time, defaultTime time.Time) time.Time {
	if t == nil {
		return defaultTime
	}
	return *t
}
