package ical

import (
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/hearth/internal/model"
)

var testSource = model.CalendarSource{
	ID:    7,
	Name:  "Family",
	Color: "#3b82f6",
}

func feed(events ...string) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\nVERSION:2.0\r\n")
	for _, e := range events {
		b.WriteString(e)
	}
	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

func TestParseFeedSingleEvent(t *testing.T) {
	text := feed("BEGIN:VEVENT\r\nUID:abc123\r\nSUMMARY:Dentist\r\nDTSTART:20250115T140000Z\r\nDTEND:20250115T150000Z\r\nEND:VEVENT\r\n")

	events := ParseFeed(testSource, text, time.UTC)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	e := events[0]
	if e.ID != "7-abc123" {
		t.Errorf("ID = %q, want 7-abc123", e.ID)
	}
	if e.Title != "Dentist" {
		t.Errorf("Title = %q", e.Title)
	}
	if !e.Start.Equal(time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v", e.Start)
	}
	if !e.End.Equal(time.Date(2025, 1, 15, 15, 0, 0, 0, time.UTC)) {
		t.Errorf("End = %v", e.End)
	}
	if e.AllDay {
		t.Error("AllDay should be false for a timed event")
	}
	if e.CalendarID != 7 || e.CalendarName != "Family" || e.Color != "#3b82f6" {
		t.Errorf("source fields not carried: %+v", e)
	}
}

func TestParseFeedAllDay(t *testing.T) {
	text := feed("BEGIN:VEVENT\r\nSUMMARY:Spring Break\r\nDTSTART;VALUE=DATE:20250317\r\nDTEND;VALUE=DATE:20250322\r\nEND:VEVENT\r\n")

	events := ParseFeed(testSource, text, time.UTC)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	e := events[0]
	if !e.AllDay {
		t.Error("AllDay should be true for a date-only DTSTART")
	}
	if !e.Start.Equal(time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v", e.Start)
	}
	// DTEND on all-day events is exclusive: the 22nd means "through the 21st"
	if !e.End.Equal(time.Date(2025, 3, 22, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("End = %v, exclusive end should be preserved as-is", e.End)
	}
}

func TestParseFeedTZID(t *testing.T) {
	text := feed("BEGIN:VEVENT\r\nSUMMARY:Soccer\r\nDTSTART;TZID=America/New_York:20250715T090000\r\nEND:VEVENT\r\n")

	events := ParseFeed(testSource, text, time.UTC)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	ny, _ := time.LoadLocation("America/New_York")
	want := time.Date(2025, 7, 15, 9, 0, 0, 0, ny)
	if !events[0].Start.Equal(want) {
		t.Errorf("Start = %v, want %v", events[0].Start, want)
	}
}

func TestParseFeedFoldedSummary(t *testing.T) {
	text := feed("BEGIN:VEVENT\r\nSUMMARY:Dentist app\r\n ointment for Sam\r\nDTSTART:20250115T140000Z\r\nEND:VEVENT\r\n")

	events := ParseFeed(testSource, text, time.UTC)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Title != "Dentist appointment for Sam" {
		t.Errorf("Title = %q", events[0].Title)
	}
}

func TestParseFeedAbsentDTEND(t *testing.T) {
	text := feed("BEGIN:VEVENT\r\nSUMMARY:Reminder\r\nDTSTART:20250115T140000Z\r\nEND:VEVENT\r\n")

	events := ParseFeed(testSource, text, time.UTC)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if !events[0].End.Equal(events[0].Start) {
		t.Errorf("absent DTEND: End = %v, want Start %v", events[0].End, events[0].Start)
	}
}

func TestParseFeedDropsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		block string
	}{
		{
			name:  "missing summary",
			block: "BEGIN:VEVENT\r\nDTSTART:20250115T140000Z\r\nEND:VEVENT\r\n",
		},
		{
			name:  "missing dtstart",
			block: "BEGIN:VEVENT\r\nSUMMARY:No start\r\nEND:VEVENT\r\n",
		},
		{
			name:  "unparseable dtstart",
			block: "BEGIN:VEVENT\r\nSUMMARY:Garbage date\r\nDTSTART:not-a-date\r\nEND:VEVENT\r\n",
		},
		{
			name:  "unparseable dtend",
			block: "BEGIN:VEVENT\r\nSUMMARY:Garbage end\r\nDTSTART:20250115T140000Z\r\nDTEND:nope\r\nEND:VEVENT\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good := "BEGIN:VEVENT\r\nSUMMARY:Survivor\r\nDTSTART:20250116T100000Z\r\nEND:VEVENT\r\n"
			events := ParseFeed(testSource, feed(tt.block, good), time.UTC)
			if len(events) != 1 {
				t.Fatalf("got %d events, want the malformed one dropped and 1 kept", len(events))
			}
			if events[0].Title != "Survivor" {
				t.Errorf("kept event Title = %q", events[0].Title)
			}
		})
	}
}

func TestParseFeedUnclosedVEVENT(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\nSUMMARY:Truncated\r\nDTSTART:20250115T140000Z\r\n"

	events := ParseFeed(testSource, text, time.UTC)
	if len(events) != 0 {
		t.Errorf("got %d events from unclosed VEVENT, want 0", len(events))
	}
}

func TestParseFeedEndBeforeStart(t *testing.T) {
	text := feed("BEGIN:VEVENT\r\nSUMMARY:Backwards\r\nDTSTART:20250115T140000Z\r\nDTEND:20250115T130000Z\r\nEND:VEVENT\r\n")

	events := ParseFeed(testSource, text, time.UTC)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if !events[0].End.Equal(events[0].Start) {
		t.Errorf("End = %v, want clamped to Start", events[0].End)
	}
}

func TestParseFeedSyntheticIDs(t *testing.T) {
	text := feed(
		"BEGIN:VEVENT\r\nSUMMARY:First\r\nDTSTART:20250115T140000Z\r\nEND:VEVENT\r\n",
		"BEGIN:VEVENT\r\nSUMMARY:Second\r\nDTSTART:20250116T140000Z\r\nEND:VEVENT\r\n",
	)

	events := ParseFeed(testSource, text, time.UTC)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].ID != "7-event-0" || events[1].ID != "7-event-1" {
		t.Errorf("IDs = %q, %q", events[0].ID, events[1].ID)
	}
}

func TestParseFeedRecurrenceExpansion(t *testing.T) {
	text := feed("BEGIN:VEVENT\r\nUID:standup\r\nSUMMARY:Standup\r\nDTSTART:20250106T090000Z\r\nDTEND:20250106T091500Z\r\nRRULE:FREQ=DAILY;COUNT=5\r\nEND:VEVENT\r\n")

	events := ParseFeed(testSource, text, time.UTC)
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}

	for i, e := range events {
		wantStart := time.Date(2025, 1, 6+i, 9, 0, 0, 0, time.UTC)
		if !e.Start.Equal(wantStart) {
			t.Errorf("occurrence %d Start = %v, want %v", i, e.Start, wantStart)
		}
		if e.End.Sub(e.Start) != 15*time.Minute {
			t.Errorf("occurrence %d duration = %v, want 15m", i, e.End.Sub(e.Start))
		}
	}

	if events[0].ID != "7-standup-occurrence-0" {
		t.Errorf("occurrence ID = %q", events[0].ID)
	}
	if events[0].ID == events[1].ID {
		t.Error("occurrence IDs must be distinct")
	}
}

func TestParseFeedUnknownFrequencyDegrades(t *testing.T) {
	text := feed("BEGIN:VEVENT\r\nSUMMARY:Odd rule\r\nDTSTART:20250115T140000Z\r\nRRULE:FREQ=SECONDLY;COUNT=100\r\nEND:VEVENT\r\n")

	events := ParseFeed(testSource, text, time.UTC)
	if len(events) != 1 {
		t.Fatalf("got %d events, want unexpanded base only", len(events))
	}
	if events[0].Title != "Odd rule" {
		t.Errorf("Title = %q", events[0].Title)
	}
}

func TestSplitDateProperty(t *testing.T) {
	tests := []struct {
		line      string
		wantValue string
		wantTZID  string
	}{
		{"DTSTART:20250115T140000Z", "20250115T140000Z", ""},
		{"DTSTART;TZID=America/New_York:20250115T090000", "20250115T090000", "America/New_York"},
		{"DTSTART;TZID=Europe/London;VALUE=DATE-TIME:20250115T090000", "20250115T090000", "Europe/London"},
		{"DTSTART;VALUE=DATE:20250115", "20250115", ""},
		{"DTSTART", "", ""},
	}

	for _, tt := range tests {
		value, tzid := splitDateProperty(tt.line)
		if value != tt.wantValue || tzid != tt.wantTZID {
			t.Errorf("splitDateProperty(%q) = (%q, %q), want (%q, %q)",
				tt.line, value, tzid, tt.wantValue, tt.wantTZID)
		}
	}
}
