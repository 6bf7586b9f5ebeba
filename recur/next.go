package recur

import (
	"container/heap"
	"fmt"
	"time"
)

// Next yields occurrences in ascending order. It returns false once the
// stream is exhausted. The signature matches rrule.Next so rule iterators
// plug in directly.
type Next func() (time.Time, bool)

// Key is the comparison key for occurrences: the millisecond epoch value.
func Key(t time.Time) int64 {
	return t.UnixMilli()
}

// Slice returns a stream over an ascending slice of instants.
func Slice(ts []time.Time) Next {
	i := 0
	return func() (time.Time, bool) {
		if i >= len(ts) {
			return time.Time{}, false
		}
		t := ts[i]
		i++
		return t, true
	}
}

// Empty is a stream with no occurrences.
func Empty() Next {
	return func() (time.Time, bool) { return time.Time{}, false }
}

// Bounded ends next as soon as it passes the upper bound of q. Streams for
// queries without an upper bound are returned unchanged.
func Bounded(next Next, q Query) Next {
	if q.Kind != KindBetween && q.Kind != KindBefore {
		return next
	}
	done := false
	return func() (time.Time, bool) {
		if done {
			return time.Time{}, false
		}
		t, ok := next()
		if !ok || q.PastEnd(t) {
			done = true
			return time.Time{}, false
		}
		return t, true
	}
}

type head struct {
	at   time.Time
	next Next
}

type heads []head

func (h heads) Len() int           { return len(h) }
func (h heads) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h heads) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *heads) Push(x any)        { *h = append(*h, x.(head)) }
func (h *heads) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Merge combines ascending streams into one ascending stream in which an
// instant produced by several sources, or repeated by one, appears once.
// Sources are pulled lazily, one value ahead at most.
func Merge(sources ...Next) Next {
	h := make(heads, 0, len(sources))
	for _, src := range sources {
		if t, ok := src(); ok {
			h = append(h, head{at: t, next: src})
		}
	}
	heap.Init(&h)

	var last int64
	started := false
	return func() (time.Time, bool) {
		for h.Len() > 0 {
			top := h[0]
			if t, ok := top.next(); ok {
				h[0].at = t
				heap.Fix(&h, 0)
			} else {
				heap.Pop(&h)
			}
			if started && Key(top.at) == last {
				continue
			}
			started = true
			last = Key(top.at)
			return top.at, true
		}
		return time.Time{}, false
	}
}

// Except drops every occurrence of include whose key equals an occurrence
// of exclude. Both streams must be ascending; exclude is only advanced up
// to the current candidate.
func Except(include, exclude Next) Next {
	return except(include, exclude, nil)
}

// except is Except with a hook called for each dropped candidate. The
// stream ends when drop returns false.
func except(include, exclude Next, drop func(time.Time) bool) Next {
	ex, exOK := exclude()
	return func() (time.Time, bool) {
		for {
			t, ok := include()
			if !ok {
				return time.Time{}, false
			}
			for exOK && Key(ex) < Key(t) {
				ex, exOK = exclude()
			}
			if exOK && Key(ex) == Key(t) {
				if drop != nil && !drop(t) {
					return time.Time{}, false
				}
				continue
			}
			return t, true
		}
	}
}

// Budget caps the number of candidates pulled from guarded streams. A zero
// or negative maximum disables the cap.
type Budget struct {
	max  int
	used int
	err  error
}

// NewBudget creates a budget allowing max candidate evaluations.
func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// Used returns how many candidates have been pulled so far.
func (b *Budget) Used() int {
	return b.used
}

// Err returns ErrIterationLimitExceeded once the budget has run out.
func (b *Budget) Err() error {
	return b.err
}

func (b *Budget) charge() bool {
	if b.err != nil {
		return false
	}
	b.used++
	if b.max > 0 && b.used > b.max {
		b.err = fmt.Errorf("%w: more than %d candidates evaluated", ErrIterationLimitExceeded, b.max)
		return false
	}
	return true
}

// Guard charges one unit per value pulled from next. When the budget is
// spent the stream ends and Err reports the failure.
func (b *Budget) Guard(next Next) Next {
	return func() (time.Time, bool) {
		if b.err != nil {
			return time.Time{}, false
		}
		t, ok := next()
		if !ok || !b.charge() {
			return time.Time{}, false
		}
		return t, true
	}
}

// Except works like the package level Except but charges one unit for each
// dropped candidate that q counts (see Query.Charges).
func (b *Budget) Except(include, exclude Next, q Query) Next {
	return except(include, exclude, func(t time.Time) bool {
		return !q.Charges(t) || b.charge()
	})
}

// Collect drains next into the occurrences selected by q, stopping early
// once q is satisfied. When next is built on budget, a spent budget fails
// the whole query.
func Collect(next Next, q Query, budget *Budget) ([]time.Time, error) {
	res := NewResult(q)
	for {
		t, ok := next()
		if !ok || !res.Accept(t) {
			break
		}
	}
	if budget != nil {
		if err := budget.Err(); err != nil {
			return nil, err
		}
	}
	return res.Values(), nil
}
