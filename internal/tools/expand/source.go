package expand

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/cyp0633/librecur/recur"
	"github.com/cyp0633/librecur/recurrence"
	"github.com/cyp0633/librecur/rset"
)

const propRecurrenceID = "RECURRENCE-ID"

// occurrence is one expanded instance of a series.
type occurrence struct {
	UID     string
	Summary string
	recurrence.TimeOccurrence
}

// series is one recurring item: either the whole set text, or a VEVENT
// together with its overrides.
type series struct {
	uid       string
	summary   string
	set       *rset.Set
	master    *ical.Component
	overrides []*ical.Component
}

type source struct {
	series []*series
	engine *recurrence.Engine
}

func readSource(text string, cfg Config, logger *slog.Logger) (*source, error) {
	src := &source{
		engine: recurrence.NewEngine(
			recurrence.WithConfig(rset.Config{MaxIterations: cfg.MaxIterations}),
			recurrence.WithLogger(logger),
		),
	}
	opts := []rset.Option{
		rset.WithCache(false),
		rset.WithMaxIterations(cfg.MaxIterations),
		rset.WithLogger(logger),
	}

	if !strings.Contains(text, "BEGIN:VCALENDAR") {
		s, err := rset.Parse(text, opts...)
		if err != nil {
			return nil, fmt.Errorf("parse set: %w", err)
		}
		src.series = []*series{{
			uid: uuid.NewSHA1(uuid.NameSpaceURL, []byte(s.String())).String(),
			set: s,
		}}
		return src, nil
	}

	cal, err := ical.NewDecoder(strings.NewReader(text)).Decode()
	if err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}

	byUID := map[string]*series{}
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		uid, _ := child.Props.Text(ical.PropUID)
		isOverride := child.Props.Get(propRecurrenceID) != nil

		current := byUID[uid]
		if current == nil || uid == "" {
			if isOverride && uid == "" {
				logger.Warn("override without UID skipped")
				continue
			}
			if uid == "" {
				uid = uuid.NewString()
			}
			current = &series{uid: uid}
			byUID[uid] = current
			src.series = append(src.series, current)
		}

		if isOverride {
			current.overrides = append(current.overrides, child)
			continue
		}
		current.master = child
		current.summary, _ = child.Props.Text(ical.PropSummary)
	}

	src.series = slices.DeleteFunc(src.series, func(s *series) bool {
		if s.master == nil {
			logger.Warn("overrides without master event skipped", "uid", s.uid)
			return true
		}
		return false
	})
	if len(src.series) == 0 {
		return nil, errors.New("calendar contains no events")
	}

	for _, s := range src.series {
		set, err := recurrence.SetFromComponent(s.master, opts...)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", s.uid, err)
		}
		s.set = set
	}
	return src, nil
}

// occurrences expands every series and returns the instances ordered by
// start time.
func (src *source) occurrences(win window, cfg Config) ([]occurrence, error) {
	var result []occurrence
	for _, s := range src.series {
		var (
			items []occurrence
			err   error
		)
		if s.master != nil {
			items, err = src.expandEvent(s, win, cfg)
		} else {
			items, err = expandSet(s, win, cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.uid, err)
		}
		result = append(result, items...)
	}

	slices.SortStableFunc(result, func(a, b occurrence) int {
		return a.Start.Compare(b.Start)
	})
	return result, nil
}

func expandSet(s *series, win window, cfg Config) ([]occurrence, error) {
	var (
		starts []time.Time
		err    error
	)
	if win.set {
		starts, err = s.set.Between(win.after, win.before, cfg.Inclusive, cfg.Limit)
	} else {
		starts, err = s.set.All(cfg.Limit)
	}
	if err != nil {
		return nil, err
	}

	items := make([]occurrence, 0, len(starts))
	for _, start := range starts {
		id := start
		items = append(items, occurrence{
			UID: s.uid,
			TimeOccurrence: recurrence.TimeOccurrence{
				Start:        start,
				End:          start,
				RecurrenceID: &id,
			},
		})
	}
	return items, nil
}

func (src *source) expandEvent(s *series, win window, cfg Config) ([]occurrence, error) {
	if !win.set {
		return nil, errors.New("iCalendar input requires -after and -before")
	}

	expanded, err := src.engine.ExpandComponent(s.master, s.overrides, win.after, win.before,
		recurrence.ExpansionOptions{MaxOccurrences: cfg.Limit})
	if err != nil {
		return nil, err
	}

	summaries := make(map[int64]string, len(s.overrides))
	for _, o := range s.overrides {
		info, err := recurrence.ExtractRecurrenceInfoFromComponent(o)
		if err != nil || info.RecurrenceID == nil {
			continue
		}
		summaries[recur.Key(*info.RecurrenceID)], _ = o.Props.Text(ical.PropSummary)
	}

	items := make([]occurrence, 0, len(expanded))
	for _, occ := range expanded {
		summary := s.summary
		if occ.IsException {
			if text, ok := summaries[recur.Key(*occ.RecurrenceID)]; ok && text != "" {
				summary = text
			}
		}
		items = append(items, occurrence{UID: s.uid, Summary: summary, TimeOccurrence: occ})
	}
	return items, nil
}
