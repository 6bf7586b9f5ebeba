// Package rset combines recurrence rules and explicit dates into a single
// ordered, deduplicated occurrence stream with iCalendar recurrence-set
// semantics: RRULE and RDATE contribute occurrences, EXRULE and EXDATE
// remove them.
//
// A Set is not safe for concurrent use. Rules and dates are copied in and
// out, so values returned by getters can be modified freely.
package rset

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/librecur/recur"
	"github.com/cyp0633/librecur/rule"
)

// Set is a recurrence set.
type Set struct {
	rrules  []recur.Rule
	exrules []recur.Rule
	rdates  []time.Time // ascending, unique by millisecond
	exdates []time.Time // ascending, unique by millisecond

	dtstart mo.Option[time.Time]
	tzid    mo.Option[string]

	config Config
	cache  *queryCache
	parser recur.Parser
	logger *slog.Logger
}

// New creates an empty set.
func New(opts ...Option) *Set {
	s := &Set{
		config: DefaultConfig,
		parser: rule.Parser,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.config.CacheEnabled {
		s.cache = newQueryCache(s.config.Cache)
	}
	return s
}

// Config returns the configuration the set was created with.
func (s *Set) Config() Config {
	return s.config
}

// AddRRule adds an inclusion rule. Adding a rule whose canonical string is
// already present is a no-op.
func (s *Set) AddRRule(r recur.Rule) error {
	return s.addRule(&s.rrules, r, "RRULE")
}

// AddExRule adds an exclusion rule, with the same deduplication as AddRRule.
func (s *Set) AddExRule(r recur.Rule) error {
	return s.addRule(&s.exrules, r, "EXRULE")
}

func (s *Set) addRule(list *[]recur.Rule, r recur.Rule, kind string) error {
	if r == nil {
		return fmt.Errorf("%w: %s must be a recurrence rule, got nil", ErrInvalidArgumentType, kind)
	}
	key := r.String()
	if key == "" {
		return fmt.Errorf("%w: %s must be a recurrence rule, got %T without canonical form", ErrInvalidArgumentType, kind, r)
	}
	for _, existing := range *list {
		if existing.String() == key {
			return nil
		}
	}
	*list = append(*list, r.Clone())
	return nil
}

// AddRDate adds an inclusion date. Dates equal to the millisecond to an
// existing one are ignored.
func (s *Set) AddRDate(t time.Time) error {
	return addDate(&s.rdates, t, "RDATE")
}

// AddExDate adds an exclusion date, with the same deduplication as AddRDate.
func (s *Set) AddExDate(t time.Time) error {
	return addDate(&s.exdates, t, "EXDATE")
}

func addDate(list *[]time.Time, t time.Time, kind string) error {
	if t.IsZero() {
		return fmt.Errorf("%w: %s must be a valid date-time, got zero time", ErrInvalidArgumentType, kind)
	}
	key := recur.Key(t)
	for _, existing := range *list {
		if recur.Key(existing) == key {
			return nil
		}
	}
	*list = append(*list, t)
	slices.SortFunc(*list, func(a, b time.Time) int { return a.Compare(b) })
	return nil
}

// RRules returns independent copies of the inclusion rules in insertion
// order. Copies are made by parsing each rule's canonical string.
func (s *Set) RRules() ([]recur.Rule, error) {
	return s.reparse(s.rrules)
}

// ExRules returns independent copies of the exclusion rules.
func (s *Set) ExRules() ([]recur.Rule, error) {
	return s.reparse(s.exrules)
}

func (s *Set) reparse(rules []recur.Rule) ([]recur.Rule, error) {
	out := make([]recur.Rule, 0, len(rules))
	for _, r := range rules {
		parsed, err := s.parser.Parse(r.String())
		if err != nil {
			return nil, fmt.Errorf("copy rule %q: %w", r.String(), err)
		}
		out = append(out, parsed)
	}
	return out, nil
}

// RDates returns the inclusion dates in ascending order.
func (s *Set) RDates() []time.Time {
	return cloneTimes(s.rdates)
}

// ExDates returns the exclusion dates in ascending order.
func (s *Set) ExDates() []time.Time {
	return cloneTimes(s.exdates)
}

// trivial reports whether the set qualifies for the memoized query path.
func (s *Set) trivial() bool {
	return len(s.rrules) <= 1 && len(s.rdates) <= 1 && len(s.exrules) <= 1
}

// CacheStats reports on the query cache. A set without cache reports zeros.
func (s *Set) CacheStats() CacheStats {
	if s.cache == nil {
		return CacheStats{}
	}
	return s.cache.stats()
}

func cloneTimes(ts []time.Time) []time.Time {
	out := make([]time.Time, len(ts))
	copy(out, ts)
	return out
}
