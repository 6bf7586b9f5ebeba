package expand

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/emersion/go-ical"

	"github.com/cyp0633/librecur/recurrence"
)

const productID = "-//librecur//rset-expand//EN"

// writeText prints one occurrence per line: the start, "/end" when the
// occurrence has a duration, and the summary if there is one.
func writeText(out io.Writer, occurrences []occurrence) error {
	for _, occ := range occurrences {
		line := occ.Start.Format(time.RFC3339)
		if occ.End.After(occ.Start) {
			line += "/" + occ.End.Format(time.RFC3339)
		}
		if occ.Summary != "" {
			line += " " + occ.Summary
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

// writeICS prints a calendar with one VEVENT per occurrence. Instances of a
// series share its UID and are told apart by RECURRENCE-ID.
func writeICS(out io.Writer, occurrences []occurrence, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, occ := range occurrences {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, occ.UID)
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDateTime(ical.PropDateTimeStart, occ.Start.UTC())
		if occ.End.After(occ.Start) {
			event.Props.SetDateTime(ical.PropDateTimeEnd, occ.End.UTC())
		}
		if occ.Summary != "" {
			event.Props.SetText(ical.PropSummary, occ.Summary)
		}
		if occ.RecurrenceID != nil {
			event.Props.SetDateTime(propRecurrenceID, occ.RecurrenceID.UTC())
		}
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(out).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// writeXML prints an <occurrences> document.
func writeXML(out io.Writer, occurrences []occurrence) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("occurrences")
	root.CreateAttr("count", strconv.Itoa(len(occurrences)))

	for _, occ := range occurrences {
		elem := root.CreateElement("occurrence")
		elem.CreateAttr("uid", occ.UID)
		elem.CreateAttr("recurrence-id", recurrence.SafeTimeDeref(occ.RecurrenceID, occ.Start).UTC().Format(time.RFC3339))
		if occ.IsException {
			elem.CreateAttr("exception", "true")
		}

		elem.CreateElement("start").SetText(occ.Start.Format(time.RFC3339))
		elem.CreateElement("end").SetText(occ.End.Format(time.RFC3339))
		if occ.Summary != "" {
			elem.CreateElement("summary").SetText(occ.Summary)
		}
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

// writeRRule prints the canonical set text of every series, separated by
// blank lines.
func writeRRule(out io.Writer, src *source) error {
	texts := make([]string, 0, len(src.series))
	for _, s := range src.series {
		texts = append(texts, s.set.String())
	}
	_, err := fmt.Fprintln(out, strings.Join(texts, "\n\n"))
	return err
}
