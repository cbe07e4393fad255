package ical

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateTimeUTC(t *testing.T) {
	got, err := ParseDateTime("20250115T140000Z", "", time.UTC)
	if err != nil {
		t.Fatalf("ParseDateTime() error = %v", err)
	}
	want := time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDateTimeTZID(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{
			// EST, UTC-5
			name:  "winter wall clock",
			value: "20250115T090000",
			want:  time.Date(2025, 1, 15, 9, 0, 0, 0, ny),
		},
		{
			// EDT, UTC-4: same wall-clock hour, different absolute instant
			name:  "summer wall clock",
			value: "20250715T090000",
			want:  time.Date(2025, 7, 15, 9, 0, 0, 0, ny),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateTime(tt.value, "America/New_York", time.UTC)
			if err != nil {
				t.Fatalf("ParseDateTime() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	// DST awareness: the two 9am wall clocks are an hour apart in UTC offset
	winter, _ := ParseDateTime("20250115T090000", "America/New_York", time.UTC)
	summer, _ := ParseDateTime("20250715T090000", "America/New_York", time.UTC)
	_, winterOff := winter.Zone()
	_, summerOff := summer.Zone()
	if summerOff-winterOff != 3600 {
		t.Errorf("expected EDT offset one hour ahead of EST, got winter=%d summer=%d", winterOff, summerOff)
	}
}

func TestParseDateTimeFloating(t *testing.T) {
	denver, err := time.LoadLocation("America/Denver")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	got, err := ParseDateTime("20250115T180000", "", denver)
	if err != nil {
		t.Fatalf("ParseDateTime() error = %v", err)
	}
	want := time.Date(2025, 1, 15, 18, 0, 0, 0, denver)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDateTimeDateOnly(t *testing.T) {
	got, err := ParseDateTime("20250115", "", time.UTC)
	if err != nil {
		t.Fatalf("ParseDateTime() error = %v", err)
	}
	want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want midnight %v", got, want)
	}
}

func TestParseDateTimeSeconds(t *testing.T) {
	got, err := ParseDateTime("20250115T140530Z", "", time.UTC)
	if err != nil {
		t.Fatalf("ParseDateTime() error = %v", err)
	}
	if got.Second() != 30 {
		t.Errorf("seconds = %d, want 30", got.Second())
	}
}

func TestParseDateTimeErrors(t *testing.T) {
	tests := []struct {
		name  string
		value string
		tzid  string
	}{
		{name: "too short", value: "2025"},
		{name: "non-digit year", value: "2O250115"},
		{name: "month zero", value: "20250015"},
		{name: "month thirteen", value: "20251315"},
		{name: "day zero", value: "20250100"},
		{name: "missing minutes", value: "20250115T14"},
		{name: "hour out of range", value: "20250115T250000"},
		{name: "minute out of range", value: "20250115T146000"},
		{name: "unknown tzid", value: "20250115T090000", tzid: "Mars/Olympus_Mons"},
		{name: "empty", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDateTime(tt.value, tt.tzid, time.UTC)
			if err == nil {
				t.Fatalf("ParseDateTime(%q, %q) expected error", tt.value, tt.tzid)
			}
			if !errors.Is(err, ErrUnparseableDate) {
				t.Errorf("error %v is not ErrUnparseableDate", err)
			}
		})
	}
}

func TestIsDateOnly(t *testing.T) {
	if !IsDateOnly("20250115") {
		t.Error("20250115 should be date-only")
	}
	if IsDateOnly("20250115T140000Z") {
		t.Error("20250115T140000Z should not be date-only")
	}
}
