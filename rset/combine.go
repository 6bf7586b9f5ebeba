package rset

import (
	"fmt"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/librecur/recur"
)

// iterator merges the inclusion sources of the set and removes every
// instant produced by an exclusion source. An unbounded query charges every
// candidate to budget. Other queries end at their bound or at the first
// match, so only candidates dropped by an exclusion inside the query's scope
// are charged.
func (s *Set) iterator(q recur.Query, budget *recur.Budget) recur.Next {
	guard := func(next recur.Next) recur.Next { return next }
	if !q.Bounded() {
		guard = budget.Guard
	}

	include := make([]recur.Next, 0, len(s.rrules)+1)
	for _, r := range s.rrules {
		include = append(include, guard(r.Occurrences(q)))
	}
	if len(s.rdates) > 0 {
		include = append(include, guard(recur.Bounded(recur.Slice(cloneTimes(s.rdates)), q)))
	}
	if len(include) == 0 {
		return recur.Empty()
	}

	exclude := make([]recur.Next, 0, len(s.exrules)+1)
	for _, r := range s.exrules {
		exclude = append(exclude, guard(r.Occurrences(q)))
	}
	if len(s.exdates) > 0 {
		exclude = append(exclude, guard(recur.Bounded(recur.Slice(cloneTimes(s.exdates)), q)))
	}

	merged := recur.Merge(include...)
	switch {
	case len(exclude) == 0:
		return merged
	case !q.Bounded():
		return recur.Except(merged, recur.Merge(exclude...))
	default:
		return budget.Except(merged, recur.Merge(exclude...), q)
	}
}

// collect runs q through the combinator.
func (s *Set) collect(q recur.Query) ([]time.Time, error) {
	budget := recur.NewBudget(s.config.MaxIterations)
	result, err := recur.Collect(s.iterator(q, budget), q, budget)
	if err != nil {
		s.logger.Warn("recurrence query aborted",
			"query", q.String(),
			"candidates", budget.Used(),
			"error", err)
		return nil, err
	}
	return result, nil
}

// All returns the occurrences of the set in ascending order, at most limit
// of them when limit > 0. Without a limit, a set with an infinite rule fails
// with ErrIterationLimitExceeded. With a limit, the query fails only when
// exclusions drop more candidates than the iteration budget allows.
func (s *Set) All(limit int) ([]time.Time, error) {
	return s.collect(recur.All(limit))
}

// Before returns the last occurrence before dt, or dt itself when inc is
// set and dt is an occurrence.
func (s *Set) Before(dt time.Time, inc bool) (mo.Option[time.Time], error) {
	if dt.IsZero() {
		return mo.None[time.Time](), fmt.Errorf("%w: before(%v)", ErrInvalidDateRange, dt)
	}
	return first(s.collect(recur.Before(dt, inc)))
}

// After returns the first occurrence after dt, or dt itself when inc is set
// and dt is an occurrence. Rules are walked from their start, but only
// candidates at or after dt that an exclusion drops count against the
// iteration budget.
func (s *Set) After(dt time.Time, inc bool) (mo.Option[time.Time], error) {
	if dt.IsZero() {
		return mo.None[time.Time](), fmt.Errorf("%w: after(%v)", ErrInvalidDateRange, dt)
	}
	return first(s.collect(recur.After(dt, inc)))
}

func first(ts []time.Time, err error) (mo.Option[time.Time], error) {
	if err != nil || len(ts) == 0 {
		return mo.None[time.Time](), err
	}
	return mo.Some(ts[0]), nil
}
