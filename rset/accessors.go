package rset

import (
	"time"

	"github.com/samber/mo"
)

// DTStart returns the explicit DTSTART if one was set. Otherwise it returns
// the original DTSTART of the first inclusion rule that has one, looked up
// again on every call so that later rules are taken into account.
func (s *Set) DTStart() mo.Option[time.Time] {
	if s.dtstart.IsPresent() {
		return s.dtstart
	}
	for _, r := range s.rrules {
		if dt, ok := r.Origin().Dtstart.Get(); ok {
			return mo.Some(dt)
		}
	}
	return mo.None[time.Time]()
}

// SetDTStart sets an explicit DTSTART. From then on DTStart no longer looks
// at the rules.
func (s *Set) SetDTStart(t time.Time) {
	s.dtstart = mo.Some(t)
}

// TZID returns the explicit TZID or, like DTStart, the TZID of the first
// inclusion rule configured with one.
func (s *Set) TZID() mo.Option[string] {
	if s.tzid.IsPresent() {
		return s.tzid
	}
	for _, r := range s.rrules {
		if tzid, ok := r.Origin().TZID.Get(); ok {
			return mo.Some(tzid)
		}
	}
	return mo.None[string]()
}

// SetTZID sets an explicit TZID, disabling the lookup through the rules.
func (s *Set) SetTZID(tzid string) {
	s.tzid = mo.Some(tzid)
}
