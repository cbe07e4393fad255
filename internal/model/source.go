package model

import "time"

// CalendarSource is one configured iCal feed. Sources are created and edited
// through the settings API and read as a snapshot at the start of each
// refresh cycle.
type CalendarSource struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	FeedURL   string    `json:"feed_url"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
