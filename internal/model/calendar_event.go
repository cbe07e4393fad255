package model

import "time"

// CalendarEvent is one displayable event instance. Recurring events are
// already expanded: each occurrence is its own CalendarEvent with an ID of
// the form "{baseID}-occurrence-{n}". Events are rebuilt from scratch on
// every refresh cycle and never mutated afterwards.
type CalendarEvent struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	AllDay       bool      `json:"all_day"`
	Color        string    `json:"color"`
	CalendarID   int64     `json:"calendar_id"`
	CalendarName string    `json:"calendar_name"`
}

// FeedError records a per-source fetch or parse failure. Failures never
// abort the refresh cycle; they ride along with the snapshot so the panel
// can show "could not load calendar X".
type FeedError struct {
	SourceID   int64  `json:"source_id"`
	SourceName string `json:"source_name"`
	Message    string `json:"message"`
}
