package rset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

func TestSet_DTStartFallback(t *testing.T) {
	s := New()
	assert.True(t, s.DTStart().IsAbsent())

	// A rule without a configured start contributes nothing.
	require.NoError(t, s.AddRRule(newRule(t, rrule.ROption{Freq: rrule.DAILY, Count: 1})))
	assert.True(t, s.DTStart().IsAbsent())

	// Rules added later are looked at on every call.
	require.NoError(t, s.AddRRule(daily(t, utc(2020, 5, 1), 1)))
	assert.Equal(t, utc(2020, 5, 1), s.DTStart().MustGet())

	require.NoError(t, s.AddRRule(daily(t, utc(2019, 5, 1), 1)))
	assert.Equal(t, utc(2020, 5, 1), s.DTStart().MustGet())

	s.SetDTStart(utc(2000, 1, 1))
	assert.Equal(t, utc(2000, 1, 1), s.DTStart().MustGet())
}

func TestSet_DTStartIgnoresExclusionRules(t *testing.T) {
	s := New()
	require.NoError(t, s.AddExRule(daily(t, utc(2020, 5, 1), 1)))
	assert.True(t, s.DTStart().IsAbsent())
	assert.True(t, s.TZID().IsAbsent())
}

func TestSet_TZIDFallback(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	s := New()
	require.NoError(t, s.AddRRule(daily(t, utc(2020, 1, 1), 1)))
	assert.True(t, s.TZID().IsAbsent())

	require.NoError(t, s.AddRRule(daily(t, time.Date(2020, 1, 1, 9, 0, 0, 0, tokyo), 1)))
	assert.Equal(t, "Asia/Tokyo", s.TZID().MustGet())

	s.SetTZID("Europe/Paris")
	assert.Equal(t, "Europe/Paris", s.TZID().MustGet())
}
