// Package rule adapts github.com/teambition/rrule-go to the recur.Rule
// contract consumed by recurrence sets.
package rule

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"

	"github.com/cyp0633/librecur/recur"
)

// RRule is a single RRULE with an optional DTSTART.
type RRule struct {
	opts  rrule.ROption
	rrule *rrule.RRule
}

var _ recur.Rule = (*RRule)(nil)

// New builds a rule from rrule-go options. A zero Dtstart is kept out of the
// canonical form; expansion then starts at the current second.
func New(opts rrule.ROption) (*RRule, error) {
	r, err := rrule.NewRRule(opts)
	if err != nil {
		return nil, fmt.Errorf("invalid rule options: %w", err)
	}
	return &RRule{opts: r.OrigOptions, rrule: r}, nil
}

// MustNew is like New but panics on invalid options. Intended for tests and
// package-level fixtures.
func MustNew(opts rrule.ROption) *RRule {
	r, err := New(opts)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the canonical form: an optional DTSTART line followed by
// the RRULE line.
func (r *RRule) String() string {
	if r == nil || r.rrule == nil {
		return ""
	}
	line := "RRULE:" + r.opts.RRuleString()
	if r.opts.Dtstart.IsZero() {
		return line
	}
	return FormatDTStart(r.opts.Dtstart) + "\n" + line
}

// Clone returns an independent copy of r.
func (r *RRule) Clone() recur.Rule {
	opts := r.opts
	opts.Bysetpos = cloneInts(opts.Bysetpos)
	opts.Bymonth = cloneInts(opts.Bymonth)
	opts.Bymonthday = cloneInts(opts.Bymonthday)
	opts.Byyearday = cloneInts(opts.Byyearday)
	opts.Byweekno = cloneInts(opts.Byweekno)
	opts.Byhour = cloneInts(opts.Byhour)
	opts.Byminute = cloneInts(opts.Byminute)
	opts.Bysecond = cloneInts(opts.Bysecond)
	opts.Byeaster = cloneInts(opts.Byeaster)
	if opts.Byweekday != nil {
		opts.Byweekday = append([]rrule.Weekday(nil), opts.Byweekday...)
	}
	// Options already passed validation once.
	return MustNew(opts)
}

// Origin returns the DTSTART and TZID the rule was configured with.
func (r *RRule) Origin() recur.Origin {
	var o recur.Origin
	if r.opts.Dtstart.IsZero() {
		return o
	}
	o.Dtstart = mo.Some(r.opts.Dtstart)
	if name := r.opts.Dtstart.Location().String(); name != "UTC" {
		o.TZID = mo.Some(name)
	}
	return o
}

// Options returns a copy of the rule's original options.
func (r *RRule) Options() rrule.ROption {
	return r.opts
}

// Occurrences streams the rule's occurrences, ending past the bound of q.
func (r *RRule) Occurrences(q recur.Query) recur.Next {
	return recur.Bounded(recur.Next(r.rrule.Iterator()), q)
}

// All returns up to limit occurrences. With limit <= 0 the rule must
// terminate within maxIterations candidates.
func (r *RRule) All(limit, maxIterations int) ([]time.Time, error) {
	return r.query(recur.All(limit), maxIterations)
}

// Between returns the occurrences between after and before.
func (r *RRule) Between(after, before time.Time, inc bool) ([]time.Time, error) {
	return r.query(recur.Between(after, before, inc), 0)
}

// Before returns the last occurrence before dt.
func (r *RRule) Before(dt time.Time, inc bool) (mo.Option[time.Time], error) {
	return first(r.query(recur.Before(dt, inc), 0))
}

// After returns the first occurrence after dt.
func (r *RRule) After(dt time.Time, inc bool) (mo.Option[time.Time], error) {
	return first(r.query(recur.After(dt, inc), 0))
}

// query collects q. Only an unbounded query is held to maxIterations; the
// others end at their bound or at the first match.
func (r *RRule) query(q recur.Query, maxIterations int) ([]time.Time, error) {
	if q.Bounded() {
		return recur.Collect(r.Occurrences(q), q, nil)
	}
	budget := recur.NewBudget(maxIterations)
	return recur.Collect(budget.Guard(r.Occurrences(q)), q, budget)
}

func first(ts []time.Time, err error) (mo.Option[time.Time], error) {
	if err != nil || len(ts) == 0 {
		return mo.None[time.Time](), err
	}
	return mo.Some(ts[0]), nil
}

// FormatDTStart renders a DTSTART line. UTC instants use the basic form with
// a trailing Z; any other location is written as local time with a TZID.
func FormatDTStart(t time.Time) string {
	return "DTSTART" + FormatValue(t)
}

// FormatValue renders the parameter and value part of a date-time property,
// e.g. ":19970902T090000Z" or ";TZID=America/New_York:19970902T090000".
func FormatValue(t time.Time) string {
	if name := t.Location().String(); name != "UTC" {
		return fmt.Sprintf(";TZID=%s:%s", name, t.Format(rrule.LocalDateTimeFormat))
	}
	return ":" + t.Format(rrule.DateTimeFormat)
}

func cloneInts(v []int) []int {
	if v == nil {
		return nil
	}
	return append([]int(nil), v...)
}

// Parse reads a canonical rule string: an optional DTSTART line and an
// RRULE line, with or without the "RRULE:" prefix.
func Parse(text string) (recur.Rule, error) {
	r, err := ParseRRule(text)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ParseRRule is Parse returning the concrete type.
func ParseRRule(text string) (*RRule, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil, fmt.Errorf("parse rule: empty string")
	}
	opts, err := rrule.StrToROptionInLocation(text, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse rule %q: %w", text, err)
	}
	return New(*opts)
}

// Parser is the recur.Parser backed by Parse.
var Parser recur.Parser = recur.ParserFunc(Parse)
