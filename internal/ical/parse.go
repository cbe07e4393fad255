package ical

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/recurrence"
)

// rawEvent accumulates one VEVENT block before date normalization.
type rawEvent struct {
	id         string
	title      string
	startValue string
	startTZID  string
	endValue   string
	endTZID    string
	rrule      string
}

// ParseFeed parses a raw iCal feed body into normalized calendar events for
// one source. Recurring events are expanded into concrete occurrences.
//
// The parser is deliberately tolerant: unknown properties are skipped, a
// VEVENT missing its SUMMARY or DTSTART is dropped without error, and an
// unclosed VEVENT at end of input is discarded. Real-world feeds contain all
// of these and none of them should take down the whole calendar.
func ParseFeed(src model.CalendarSource, text string, local *time.Location) []model.CalendarEvent {
	var events []model.CalendarEvent

	var cur *rawEvent
	seq := 0

	for _, line := range Unfold(text) {
		switch {
		case line == "BEGIN:VEVENT":
			cur = &rawEvent{id: fmt.Sprintf("%d-event-%d", src.ID, seq)}
			seq++

		case line == "END:VEVENT":
			if cur != nil {
				events = append(events, finalize(src, cur, local)...)
			}
			cur = nil

		case cur == nil:
			// Outside a VEVENT block; VCALENDAR/VTIMEZONE lines and the like.

		case strings.HasPrefix(line, "SUMMARY:"):
			cur.title = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))

		case strings.HasPrefix(line, "DTSTART"):
			cur.startValue, cur.startTZID = splitDateProperty(line)

		case strings.HasPrefix(line, "DTEND"):
			cur.endValue, cur.endTZID = splitDateProperty(line)

		case strings.HasPrefix(line, "RRULE:"):
			cur.rrule = strings.TrimSpace(strings.TrimPrefix(line, "RRULE:"))

		case strings.HasPrefix(line, "UID:"):
			if uid := strings.TrimSpace(strings.TrimPrefix(line, "UID:")); uid != "" {
				cur.id = fmt.Sprintf("%d-%s", src.ID, uid)
			}
		}
	}

	// An unclosed VEVENT is never finalized.
	return events
}

// finalize normalizes one accumulated VEVENT and expands its recurrence
// rule, if any. Malformed events (missing title or start, unparseable dates)
// yield nothing.
func finalize(src model.CalendarSource, ev *rawEvent, local *time.Location) []model.CalendarEvent {
	if ev.title == "" || ev.startValue == "" {
		return nil
	}

	start, err := ParseDateTime(ev.startValue, ev.startTZID, local)
	if err != nil {
		return nil
	}

	end := start
	if ev.endValue != "" {
		end, err = ParseDateTime(ev.endValue, ev.endTZID, local)
		if err != nil {
			return nil
		}
	}
	if end.Before(start) {
		end = start
	}

	base := model.CalendarEvent{
		ID:           ev.id,
		Title:        ev.title,
		Start:        start,
		End:          end,
		AllDay:       IsDateOnly(ev.startValue),
		Color:        src.Color,
		CalendarID:   src.ID,
		CalendarName: src.Name,
	}

	if ev.rrule == "" {
		return []model.CalendarEvent{base}
	}

	rule, err := recurrence.Parse(ev.rrule)
	if err != nil {
		// Unknown frequency or malformed rule: degrade to the single base
		// event rather than dropping or failing.
		return []model.CalendarEvent{base}
	}

	occs := recurrence.Expand(rule, start, end)
	if len(occs) == 0 {
		return []model.CalendarEvent{base}
	}

	out := make([]model.CalendarEvent, 0, len(occs))
	for n, occ := range occs {
		inst := base
		inst.ID = fmt.Sprintf("%s-occurrence-%d", base.ID, n)
		inst.Start = occ.Start
		inst.End = occ.End
		out = append(out, inst)
	}
	return out
}

// splitDateProperty takes a "DTSTART;TZID=America/New_York:20250115T090000"
// style line and returns the date value and the TZID parameter, if present.
func splitDateProperty(line string) (value, tzid string) {
	colon := strings.Index(line, ":")
	if colon < 0 {
		return "", ""
	}
	value = strings.TrimSpace(line[colon+1:])

	params := line[:colon]
	if i := strings.Index(params, "TZID="); i >= 0 {
		tzid = params[i+len("TZID="):]
		if j := strings.IndexByte(tzid, ';'); j >= 0 {
			tzid = tzid[:j]
		}
	}
	return value, tzid
}
