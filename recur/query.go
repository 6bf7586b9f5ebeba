package recur

import (
	"fmt"
	"time"
)

// Kind identifies the shape of an occurrence query.
type Kind int

const (
	KindAll Kind = iota
	KindBetween
	KindBefore
	KindAfter
)

// String provides a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindBetween:
		return "between"
	case KindBefore:
		return "before"
	case KindAfter:
		return "after"
	default:
		return "unknown"
	}
}

// Query describes which occurrences a caller wants from a rule or a set.
// The same descriptor drives single-rule iteration and set combination.
type Query struct {
	Kind   Kind
	After  time.Time // lower bound for KindBetween, reference instant for KindAfter
	Before time.Time // upper bound for KindBetween, reference instant for KindBefore
	Inc    bool      // bounds are themselves eligible
	Limit  int       // maximum results for KindAll and KindBetween, 0 = unlimited
}

// All queries every occurrence, stopping after limit results when limit > 0.
func All(limit int) Query {
	return Query{Kind: KindAll, Limit: max(limit, 0)}
}

// Between queries occurrences inside the window (after, before).
func Between(after, before time.Time, inc bool) Query {
	return Query{Kind: KindBetween, After: after, Before: before, Inc: inc}
}

// Before queries the last occurrence before dt.
func Before(dt time.Time, inc bool) Query {
	return Query{Kind: KindBefore, Before: dt, Inc: inc}
}

// After queries the first occurrence after dt.
func After(dt time.Time, inc bool) Query {
	return Query{Kind: KindAfter, After: dt, Inc: inc}
}

// WithLimit returns a copy of q capped at limit results.
func (q Query) WithLimit(limit int) Query {
	q.Limit = max(limit, 0)
	return q
}

// Bounded reports whether the query has an upper bound that terminates
// iteration over an infinite rule.
func (q Query) Bounded() bool {
	switch q.Kind {
	case KindBetween, KindBefore, KindAfter:
		return true
	default:
		return q.Limit > 0
	}
}

// Charges reports whether evaluating a candidate at dt counts against an
// iteration budget. BETWEEN and BEFORE end at their upper bound and are
// never charged; AFTER is charged from its reference instant on.
func (q Query) Charges(dt time.Time) bool {
	switch q.Kind {
	case KindAll:
		return true
	case KindAfter:
		return !dt.Before(q.After)
	default:
		return false
	}
}

// tooEarly reports whether dt precedes the query's lower bound.
func (q Query) tooEarly(dt time.Time) bool {
	if q.Kind != KindBetween {
		return false
	}
	if q.Inc {
		return dt.Before(q.After)
	}
	return !dt.After(q.After)
}

// PastEnd reports whether dt lies beyond the query's upper bound, after
// which no later occurrence can be part of the result.
func (q Query) PastEnd(dt time.Time) bool {
	if q.Kind != KindBetween && q.Kind != KindBefore {
		return false
	}
	if q.Inc {
		return dt.After(q.Before)
	}
	return !dt.Before(q.Before)
}

func (q Query) String() string {
	switch q.Kind {
	case KindBetween:
		return fmt.Sprintf("between(%s, %s, inc=%t, limit=%d)",
			q.After.Format(time.RFC3339Nano), q.Before.Format(time.RFC3339Nano), q.Inc, q.Limit)
	case KindBefore:
		return fmt.Sprintf("before(%s, inc=%t)", q.Before.Format(time.RFC3339Nano), q.Inc)
	case KindAfter:
		return fmt.Sprintf("after(%s, inc=%t)", q.After.Format(time.RFC3339Nano), q.Inc)
	default:
		return fmt.Sprintf("all(limit=%d)", q.Limit)
	}
}

// Result accumulates the occurrences a Query selects from an ascending stream.
type Result struct {
	query  Query
	values []time.Time
}

// NewResult creates an empty accumulator for q.
func NewResult(q Query) *Result {
	return &Result{query: q}
}

// Accept offers the next ascending candidate. It returns false once no
// further candidate can change the result.
func (r *Result) Accept(dt time.Time) bool {
	q := r.query
	switch q.Kind {
	case KindBetween:
		if q.PastEnd(dt) {
			return false
		}
		if q.tooEarly(dt) {
			return true
		}
		return r.add(dt)
	case KindBefore:
		if q.PastEnd(dt) {
			return false
		}
		r.values = append(r.values[:0], dt)
		return true
	case KindAfter:
		if (q.Inc && !dt.Before(q.After)) || (!q.Inc && dt.After(q.After)) {
			r.values = append(r.values[:0], dt)
			return false
		}
		return true
	default:
		return r.add(dt)
	}
}

func (r *Result) add(dt time.Time) bool {
	r.values = append(r.values, dt)
	return r.query.Limit == 0 || len(r.values) < r.query.Limit
}

// Values returns the accumulated occurrences in ascending order.
func (r *Result) Values() []time.Time {
	out := make([]time.Time, len(r.values))
	copy(out, r.values)
	return out
}
