package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(next Next) []time.Time {
	out := []time.Time{}
	for {
		t, ok := next()
		if !ok {
			return out
		}
		out = append(out, t)
	}
}

// forever yields one occurrence per day starting at from.
func forever(from time.Time) Next {
	cur := from.AddDate(0, 0, -1)
	return func() (time.Time, bool) {
		cur = cur.AddDate(0, 0, 1)
		return cur, true
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		sources  [][]time.Time
		expected []time.Time
	}{
		{
			name:     "no sources",
			expected: []time.Time{},
		},
		{
			name:     "interleaved sources",
			sources:  [][]time.Time{days(1, 4, 7), days(2, 5), days(3, 6)},
			expected: days(1, 2, 3, 4, 5, 6, 7),
		},
		{
			name:     "shared instants collapse",
			sources:  [][]time.Time{days(1, 2, 3), days(2, 3, 4), days(3)},
			expected: days(1, 2, 3, 4),
		},
		{
			name:     "empty source is skipped",
			sources:  [][]time.Time{{}, days(5)},
			expected: days(5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nexts := make([]Next, len(tt.sources))
			for i, src := range tt.sources {
				nexts[i] = Slice(src)
			}
			assert.Equal(t, tt.expected, drain(Merge(nexts...)))
		})
	}
}

func TestMerge_MillisecondPrecision(t *testing.T) {
	base := day(1)
	a := []time.Time{base}
	b := []time.Time{base.Add(300 * time.Microsecond), base.Add(2 * time.Millisecond)}

	got := drain(Merge(Slice(a), Slice(b)))
	require.Len(t, got, 2)
	assert.Equal(t, base, got[0])
	assert.Equal(t, base.Add(2*time.Millisecond), got[1])
}

func TestMerge_InfiniteSource(t *testing.T) {
	next := Merge(forever(day(1)), Slice(days(2, 3)))
	got, err := Collect(next, All(4), nil)
	require.NoError(t, err)
	assert.Equal(t, days(1, 2, 3, 4), got)
}

func TestExcept(t *testing.T) {
	got := drain(Except(Slice(days(1, 2, 3, 4, 5)), Slice(days(2, 4, 9))))
	assert.Equal(t, days(1, 3, 5), got)

	got = drain(Except(Slice(days(1, 2)), Empty()))
	assert.Equal(t, days(1, 2), got)
}

func TestBounded(t *testing.T) {
	got := drain(Bounded(forever(day(1)), Between(day(2), day(4), true)))
	assert.Equal(t, days(1, 2, 3, 4), got)

	got = drain(Bounded(Slice(days(1, 2, 3)), All(0)))
	assert.Equal(t, days(1, 2, 3), got)
}

func TestBudget(t *testing.T) {
	t.Run("unbounded query fails", func(t *testing.T) {
		budget := NewBudget(50)
		_, err := Collect(budget.Guard(forever(day(1))), All(0), budget)
		require.ErrorIs(t, err, ErrIterationLimitExceeded)
		assert.Equal(t, 51, budget.Used())
	})

	t.Run("limit stops before the budget", func(t *testing.T) {
		budget := NewBudget(50)
		got, err := Collect(budget.Guard(forever(day(1))), All(10), budget)
		require.NoError(t, err)
		assert.Len(t, got, 10)
	})

	t.Run("zero budget is unlimited", func(t *testing.T) {
		budget := NewBudget(0)
		got, err := Collect(budget.Guard(forever(day(1))), All(1000), budget)
		require.NoError(t, err)
		assert.Len(t, got, 1000)
	})

	t.Run("exclusions filtering forever are stopped", func(t *testing.T) {
		budget := NewBudget(20)
		next := budget.Except(forever(day(1)), forever(day(1)), After(day(10), true))
		_, err := Collect(next, After(day(10), true), budget)
		require.ErrorIs(t, err, ErrIterationLimitExceeded)
		assert.Equal(t, 21, budget.Used())
	})

	t.Run("history before the reference instant is free", func(t *testing.T) {
		budget := NewBudget(5)
		q := After(day(20), true)
		next := budget.Except(forever(day(1)), Slice(days(2, 3, 4, 5, 6, 7, 8, 9, 20, 21)), q)
		got, err := Collect(next, q, budget)
		require.NoError(t, err)
		assert.Equal(t, days(22), got)
		assert.Equal(t, 2, budget.Used())
	})

	t.Run("bounded window is never charged", func(t *testing.T) {
		budget := NewBudget(1)
		q := Between(day(1), day(10), true)
		next := budget.Except(Bounded(forever(day(1)), q), Slice(days(1, 2, 3, 4, 5)), q)
		got, err := Collect(next, q, budget)
		require.NoError(t, err)
		assert.Equal(t, days(6, 7, 8, 9, 10), got)
		assert.Zero(t, budget.Used())
	})

	t.Run("excluded candidates still count", func(t *testing.T) {
		budget := NewBudget(20)
		next := Except(budget.Guard(forever(day(1))), budget.Guard(forever(day(1))))
		_, err := Collect(next, All(1), budget)
		require.ErrorIs(t, err, ErrIterationLimitExceeded)
	})
}
