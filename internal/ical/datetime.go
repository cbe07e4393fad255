package ical

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnparseableDate marks a DTSTART/DTEND value that does not match the
// fixed-width iCal date format. Callers drop the owning event rather than
// substitute a fabricated time.
var ErrUnparseableDate = errors.New("unparseable iCal date")

// ParseDateTime converts an iCal DATE or DATE-TIME value into an absolute
// instant. The three forms, in priority order:
//
//   - trailing "Z": the fields are UTC (20250115T140000Z)
//   - tzid non-empty: the fields are wall-clock time in that IANA zone,
//     resolved against the zone's offset at that moment (DST-aware)
//   - otherwise: floating time, interpreted in local
//
// A pure date (no "T") normalizes to midnight in the resolved zone. Per RFC
// 5545, all-day DTEND values name the day after the last day; that exclusive
// convention is preserved as-is, no adjustment happens here.
func ParseDateTime(value, tzid string, local *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)

	isUTC := strings.HasSuffix(value, "Z")
	if isUTC {
		value = strings.TrimSuffix(value, "Z")
	}

	if len(value) < 8 {
		return time.Time{}, fmt.Errorf("%w: %q too short", ErrUnparseableDate, value)
	}

	year, err := atoiField(value[0:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad year in %q", ErrUnparseableDate, value)
	}
	month, err := atoiField(value[4:6])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: bad month in %q", ErrUnparseableDate, value)
	}
	day, err := atoiField(value[6:8])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: bad day in %q", ErrUnparseableDate, value)
	}

	var hour, minute, sec int
	if strings.Contains(value, "T") {
		if len(value) < 13 || value[8] != 'T' {
			return time.Time{}, fmt.Errorf("%w: bad time in %q", ErrUnparseableDate, value)
		}
		hour, err = atoiField(value[9:11])
		if err != nil || hour > 23 {
			return time.Time{}, fmt.Errorf("%w: bad hour in %q", ErrUnparseableDate, value)
		}
		minute, err = atoiField(value[11:13])
		if err != nil || minute > 59 {
			return time.Time{}, fmt.Errorf("%w: bad minute in %q", ErrUnparseableDate, value)
		}
		if len(value) >= 15 {
			sec, err = atoiField(value[13:15])
			if err != nil || sec > 60 {
				return time.Time{}, fmt.Errorf("%w: bad second in %q", ErrUnparseableDate, value)
			}
		}
	}

	loc := local
	if loc == nil {
		loc = time.Local
	}

	switch {
	case isUTC:
		loc = time.UTC
	case tzid != "":
		zone, zerr := time.LoadLocation(tzid)
		if zerr != nil {
			return time.Time{}, fmt.Errorf("%w: unknown TZID %q", ErrUnparseableDate, tzid)
		}
		loc = zone
	}

	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc), nil
}

// IsDateOnly reports whether an iCal value carries no time-of-day component,
// which marks an all-day event.
func IsDateOnly(value string) bool {
	return !strings.Contains(value, "T")
}

func atoiField(s string) (int, error) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit %q", c)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
