package rset

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"

	"github.com/cyp0633/librecur/recur"
	"github.com/cyp0633/librecur/rule"
)

func utc(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newRule(t *testing.T, opts rrule.ROption) *rule.RRule {
	t.Helper()
	r, err := rule.New(opts)
	require.NoError(t, err)
	return r
}

func daily(t *testing.T, start time.Time, count int) *rule.RRule {
	t.Helper()
	return newRule(t, rrule.ROption{Freq: rrule.DAILY, Count: count, Dtstart: start})
}

// countingRule records how often its occurrence stream is requested.
// Clones share the counter.
type countingRule struct {
	inner *rule.RRule
	calls *int
}

func newCountingRule(inner *rule.RRule) *countingRule {
	return &countingRule{inner: inner, calls: new(int)}
}

func (c *countingRule) String() string       { return c.inner.String() }
func (c *countingRule) Origin() recur.Origin { return c.inner.Origin() }

func (c *countingRule) Clone() recur.Rule {
	return &countingRule{inner: c.inner.Clone().(*rule.RRule), calls: c.calls}
}

func (c *countingRule) Occurrences(q recur.Query) recur.Next {
	*c.calls++
	return c.inner.Occurrences(q)
}

// mockParser is a mock implementation of recur.Parser.
type mockParser struct {
	mock.Mock
}

func (m *mockParser) Parse(text string) (recur.Rule, error) {
	args := m.Called(text)
	if r := args.Get(0); r != nil {
		return r.(recur.Rule), args.Error(1)
	}
	return nil, args.Error(1)
}
