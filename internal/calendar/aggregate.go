package calendar

import (
	"sort"
	"time"

	"github.com/dukerupert/hearth/internal/model"
)

// Aggregate merges per-source event lists into one list sorted ascending by
// start time. The sort is stable: events with identical starts keep their
// input order. No deduplication happens here — two sources publishing
// coincident events are both shown.
func Aggregate(perSource [][]model.CalendarEvent) []model.CalendarEvent {
	var merged []model.CalendarEvent
	for _, events := range perSource {
		merged = append(merged, events...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Start.Before(merged[j].Start)
	})

	return merged
}

// FilterByDay keeps events whose start falls within the calendar day
// containing day, using midnight-to-midnight boundaries in loc. This is a
// local calendar day, not a rolling 24-hour window.
func FilterByDay(events []model.CalendarEvent, day time.Time, loc *time.Location) []model.CalendarEvent {
	if loc == nil {
		loc = time.Local
	}
	d := day.In(loc)
	dayStart := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var out []model.CalendarEvent
	for _, e := range events {
		if !e.Start.Before(dayStart) && e.Start.Before(dayEnd) {
			out = append(out, e)
		}
	}
	return out
}

// FilterUpcoming keeps events starting at or after now. Composed after
// FilterByDay it yields "today, from now onward".
func FilterUpcoming(events []model.CalendarEvent, now time.Time) []model.CalendarEvent {
	var out []model.CalendarEvent
	for _, e := range events {
		if !e.Start.Before(now) {
			out = append(out, e)
		}
	}
	return out
}
