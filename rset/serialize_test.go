package rset

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

func TestSet_Serialize(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name     string
		build    func(t *testing.T, s *Set)
		expected []string
	}{
		{
			name:     "empty set",
			build:    func(t *testing.T, s *Set) {},
			expected: nil,
		},
		{
			name: "DTSTART only without rules",
			build: func(t *testing.T, s *Set) {
				s.SetDTStart(time.Date(1997, 9, 2, 9, 0, 0, 0, time.UTC))
			},
			expected: []string{"DTSTART:19970902T090000Z"},
		},
		{
			name: "DTSTART of set is omitted when a rule carries its own",
			build: func(t *testing.T, s *Set) {
				s.SetDTStart(utc(2000, 1, 1))
				require.NoError(t, s.AddRRule(daily(t, time.Date(1997, 9, 2, 1, 0, 0, 0, time.UTC), 3)))
			},
			expected: []string{"DTSTART:19970902T010000Z", "RRULE:FREQ=DAILY;COUNT=3"},
		},
		{
			name: "exclusion rule loses DTSTART and is relabelled",
			build: func(t *testing.T, s *Set) {
				require.NoError(t, s.AddRRule(daily(t, utc(2020, 1, 1), 10)))
				require.NoError(t, s.AddExRule(newRule(t, rrule.ROption{Freq: rrule.WEEKLY, Count: 2, Dtstart: utc(2020, 1, 1)})))
			},
			expected: []string{
				"DTSTART:20200101T000000Z",
				"RRULE:FREQ=DAILY;COUNT=10",
				"EXRULE:FREQ=WEEKLY;COUNT=2",
			},
		},
		{
			name: "UTC date lists share one line",
			build: func(t *testing.T, s *Set) {
				require.NoError(t, s.AddRDate(time.Date(2020, 1, 2, 10, 0, 0, 0, ny)))
				require.NoError(t, s.AddRDate(utc(2020, 1, 1)))
				require.NoError(t, s.AddExDate(utc(2020, 1, 3)))
			},
			expected: []string{
				"RDATE:20200101T000000Z,20200102T150000Z",
				"EXDATE:20200103T000000Z",
			},
		},
		{
			name: "explicit UTC TZID in any case renders UTC form",
			build: func(t *testing.T, s *Set) {
				s.SetTZID("utc")
				require.NoError(t, s.AddExDate(utc(2020, 1, 3)))
			},
			expected: []string{"EXDATE:20200103T000000Z"},
		},
		{
			name: "zoned date lists carry TZID and local time",
			build: func(t *testing.T, s *Set) {
				s.SetTZID("America/New_York")
				require.NoError(t, s.AddRDate(time.Date(2020, 1, 1, 15, 0, 0, 0, time.UTC)))
				require.NoError(t, s.AddExDate(time.Date(2020, 7, 1, 15, 0, 0, 0, time.UTC)))
			},
			expected: []string{
				"RDATE;TZID=America/New_York:20200101T100000",
				"EXDATE;TZID=America/New_York:20200701T110000",
			},
		},
		{
			name: "TZID resolved from the first rule",
			build: func(t *testing.T, s *Set) {
				require.NoError(t, s.AddRRule(daily(t, time.Date(2020, 1, 1, 9, 0, 0, 0, ny), 2)))
				require.NoError(t, s.AddRDate(time.Date(2020, 1, 10, 9, 0, 0, 0, ny)))
			},
			expected: []string{
				"DTSTART;TZID=America/New_York:20200101T090000",
				"RRULE:FREQ=DAILY;COUNT=2",
				"RDATE;TZID=America/New_York:20200110T090000",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			tt.build(t, s)
			assert.Equal(t, tt.expected, s.Serialize())
		})
	}
}

func TestSet_SerializeUnknownTZID(t *testing.T) {
	var logs bytes.Buffer
	s := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	s.SetTZID("Nowhere/Special")
	require.NoError(t, s.AddRDate(time.Date(2020, 1, 1, 15, 0, 0, 0, time.UTC)))

	assert.Equal(t, []string{"RDATE:20200101T150000Z"}, s.Serialize())
	assert.Contains(t, logs.String(), "unknown TZID")
	assert.Contains(t, logs.String(), "Nowhere/Special")

	parsed, err := Parse(s.String())
	require.NoError(t, err)
	assert.Equal(t, s.RDates(), parsed.RDates())
}

func TestSet_String(t *testing.T) {
	s := New()
	require.NoError(t, s.AddRRule(daily(t, time.Date(1997, 9, 2, 1, 0, 0, 0, time.UTC), 3)))
	assert.Equal(t, "DTSTART:19970902T010000Z\nRRULE:FREQ=DAILY;COUNT=3", s.String())
}

func TestSet_RoundTrip(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	sets := map[string]func(t *testing.T) *Set{
		"single daily rule": func(t *testing.T) *Set {
			s := New()
			require.NoError(t, s.AddRRule(daily(t, time.Date(1997, 9, 2, 1, 0, 0, 0, time.UTC), 3)))
			return s
		},
		"full UTC set": func(t *testing.T) *Set {
			s := New()
			require.NoError(t, s.AddRRule(daily(t, utc(2020, 1, 1), 10)))
			require.NoError(t, s.AddRRule(newRule(t, rrule.ROption{Freq: rrule.WEEKLY, Byweekday: []rrule.Weekday{rrule.MO, rrule.FR}, Until: utc(2020, 6, 1), Dtstart: utc(2020, 1, 6)})))
			require.NoError(t, s.AddExRule(newRule(t, rrule.ROption{Freq: rrule.MONTHLY, Count: 3, Dtstart: utc(2020, 1, 1)})))
			require.NoError(t, s.AddRDate(utc(2021, 1, 1)))
			require.NoError(t, s.AddRDate(utc(2021, 2, 1)))
			require.NoError(t, s.AddExDate(utc(2020, 1, 5)))
			return s
		},
		"zoned set": func(t *testing.T) *Set {
			s := New()
			require.NoError(t, s.AddRRule(daily(t, time.Date(2020, 3, 1, 9, 0, 0, 0, ny), 20)))
			require.NoError(t, s.AddExDate(time.Date(2020, 3, 10, 9, 0, 0, 0, ny)))
			return s
		},
		"dates only with explicit zone": func(t *testing.T) *Set {
			s := New()
			s.SetTZID("America/New_York")
			s.SetDTStart(time.Date(2020, 3, 1, 9, 0, 0, 0, ny))
			require.NoError(t, s.AddRDate(time.Date(2020, 3, 2, 9, 0, 0, 0, ny)))
			return s
		},
	}

	for name, build := range sets {
		t.Run(name, func(t *testing.T) {
			orig := build(t)
			text := orig.String()

			parsed, err := Parse(text)
			require.NoError(t, err)
			assert.Equal(t, text, parsed.String())

			want, err := orig.All(0)
			require.NoError(t, err)
			got, err := parsed.All(0)
			require.NoError(t, err)
			assert.Equal(t, len(want), len(got))
			for i := range want {
				assert.True(t, want[i].Equal(got[i]), "occurrence %d: %v != %v", i, want[i], got[i])
			}
		})
	}
}
