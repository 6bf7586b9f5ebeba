package rset

// Clone returns a deep copy of the set with the same configuration and an
// empty query cache. Explicit DTSTART and TZID values are carried over so
// the copy serializes identically.
func (s *Set) Clone() *Set {
	c := New(WithConfig(s.config), WithParser(s.parser), WithLogger(s.logger))

	for _, r := range s.rrules {
		c.rrules = append(c.rrules, r.Clone())
	}
	for _, r := range s.exrules {
		c.exrules = append(c.exrules, r.Clone())
	}
	c.rdates = cloneTimes(s.rdates)
	c.exdates = cloneTimes(s.exdates)
	c.dtstart = s.dtstart
	c.tzid = s.tzid
	return c
}
