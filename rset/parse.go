package rset

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Parse reads the text produced by Serialize back into a new set created
// with opts. A DTSTART line belongs to the RRULE that follows it; a DTSTART
// not followed by an RRULE is the set's own. EXRULE lines are parsed with
// the first DTSTART of the text, since Serialize strips theirs.
func Parse(text string, opts ...Option) (*Set, error) {
	s := New(opts...)

	var pending, firstStart string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, err := propertyName(line)
		if err != nil {
			return nil, err
		}
		value := line[len(name)+1:]

		switch name {
		case "DTSTART":
			if pending != "" {
				if err := s.applyDTStart(pending); err != nil {
					return nil, err
				}
			}
			pending = line
			if firstStart == "" {
				firstStart = line
			}
		case "RRULE":
			ruleText := "RRULE:" + value
			if pending != "" {
				ruleText = pending + "\n" + ruleText
				pending = ""
			}
			r, err := s.parser.Parse(ruleText)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrParse, err)
			}
			if err := s.AddRRule(r); err != nil {
				return nil, err
			}
		case "EXRULE":
			ruleText := "RRULE:" + value
			if firstStart != "" {
				ruleText = firstStart + "\n" + ruleText
			}
			r, err := s.parser.Parse(ruleText)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrParse, err)
			}
			if err := s.AddExRule(r); err != nil {
				return nil, err
			}
		case "RDATE", "EXDATE":
			if err := s.applyDates(name, value); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unsupported property %q", ErrParse, name)
		}
	}

	if pending != "" {
		if err := s.applyDTStart(pending); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// propertyName returns the upper-cased name of a content line, the part
// before the first ';' or ':'.
func propertyName(line string) (string, error) {
	end := strings.IndexAny(line, ";:")
	if end <= 0 {
		return "", fmt.Errorf("%w: malformed line %q", ErrParse, line)
	}
	return strings.ToUpper(line[:end]), nil
}

func (s *Set) applyDTStart(line string) error {
	dt, err := rrule.StrToDtStart(line[len("DTSTART")+1:], time.UTC)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, line, err)
	}
	s.SetDTStart(dt)
	if name := dt.Location().String(); name != "UTC" && s.TZID().IsAbsent() {
		s.SetTZID(name)
	}
	return nil
}

func (s *Set) applyDates(name, value string) error {
	loc := time.UTC
	if tzid, ok := s.TZID().Get(); ok {
		if l, err := time.LoadLocation(tzid); err == nil {
			loc = l
		}
	}

	dates, err := rrule.StrToDatesInLoc(value, loc)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, name, err)
	}

	add := s.AddRDate
	if name == "EXDATE" {
		add = s.AddExDate
	}
	for _, d := range dates {
		if err := add(d); err != nil {
			return err
		}
	}

	if len(dates) > 0 && s.TZID().IsAbsent() {
		if zone := dates[0].Location().String(); zone != "UTC" {
			s.SetTZID(zone)
		}
	}
	return nil
}
