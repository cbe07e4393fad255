package recurrence

import "time"

// MaxOccurrences caps expansion of any single rule, bounding unbounded
// rules like a bare "FREQ=DAILY" to roughly a year of daily occurrences.
// Hitting the cap is normal termination, not a failure.
const MaxOccurrences = 365

// Occurrence is one concrete instance of a recurring event.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Expand generates the occurrences of a recurring event in strictly
// increasing start order. eventStart and eventEnd define the base instance;
// every occurrence keeps the base duration. Generation stops at the rule's
// COUNT or UNTIL bound, whichever comes first, and always at MaxOccurrences.
func Expand(rule Rule, eventStart, eventEnd time.Time) []Occurrence {
	if rule.Interval < 1 {
		rule.Interval = 1
	}

	// A date-only UNTIL names a whole day, inclusive, in the event's zone.
	if rule.Until != nil && rule.UntilDate {
		u := *rule.Until
		bound := time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 0, eventStart.Location())
		rule.Until = &bound
	}

	duration := eventEnd.Sub(eventStart)

	var starts []time.Time
	if rule.Freq == Weekly && len(rule.ByDay) > 0 {
		starts = weeklyByDayStarts(rule, eventStart)
	} else {
		starts = simpleStarts(rule, eventStart)
	}

	out := make([]Occurrence, 0, len(starts))
	for _, s := range starts {
		out = append(out, Occurrence{Start: s, End: s.Add(duration)})
	}
	return out
}

// simpleStarts handles DAILY, MONTHLY, YEARLY, and WEEKLY without BYDAY:
// begin at the base start and step by the rule's interval in frequency
// units.
func simpleStarts(rule Rule, base time.Time) []time.Time {
	var starts []time.Time
	cur := base

	for len(starts) < MaxOccurrences {
		if rule.Until != nil && cur.After(*rule.Until) {
			break
		}
		starts = append(starts, cur)
		if rule.Count > 0 && len(starts) >= rule.Count {
			break
		}

		switch rule.Freq {
		case Daily:
			cur = cur.AddDate(0, 0, rule.Interval)
		case Weekly:
			cur = cur.AddDate(0, 0, 7*rule.Interval)
		case Monthly:
			cur = nextMonthly(cur, base, rule.Interval)
		case Yearly:
			cur = nextYearly(cur, base, rule.Interval)
		}
	}

	return starts
}

// weeklyByDayStarts walks Sunday-started weeks beginning with the week that
// contains the base start. Each listed weekday yields a candidate at the
// base time-of-day; candidates before the base start are skipped, so the
// first emitted occurrence is never earlier than the event itself. ByDay is
// sorted at parse time, which keeps each week's occurrences chronological.
func weeklyByDayStarts(rule Rule, base time.Time) []time.Time {
	var starts []time.Time
	week := weekStart(base)

	for len(starts) < MaxOccurrences {
		for _, day := range rule.ByDay {
			candidate := time.Date(
				week.Year(), week.Month(), week.Day()+int(day),
				base.Hour(), base.Minute(), base.Second(), 0,
				base.Location(),
			)

			if candidate.Before(base) {
				continue
			}
			if rule.Until != nil && candidate.After(*rule.Until) {
				return starts
			}

			starts = append(starts, candidate)
			if rule.Count > 0 && len(starts) >= rule.Count {
				return starts
			}
			if len(starts) >= MaxOccurrences {
				return starts
			}
		}

		week = week.AddDate(0, 0, 7*rule.Interval)
	}

	return starts
}

// weekStart returns midnight on the Sunday of t's week, in t's location.
func weekStart(t time.Time) time.Time {
	sunday := t.AddDate(0, 0, -int(t.Weekday()))
	return time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 0, 0, 0, 0, t.Location())
}

// nextMonthly advances by interval months, keeping the base day-of-month
// and skipping months that do not have it (the 31st never lands on Feb 28).
func nextMonthly(cur, base time.Time, interval int) time.Time {
	day := base.Day()

	year, month, _ := cur.Date()
	for {
		month += time.Month(interval)
		for month > 12 {
			month -= 12
			year++
		}
		if day <= daysInMonth(year, month) {
			break
		}
	}

	return time.Date(
		year, month, day,
		base.Hour(), base.Minute(), base.Second(), 0,
		base.Location(),
	)
}

// nextYearly advances by interval years; a Feb 29 base skips to years where
// the date exists.
func nextYearly(cur, base time.Time, interval int) time.Time {
	year := cur.Year()
	for {
		year += interval
		if base.Month() != time.February || base.Day() != 29 || daysInMonth(year, time.February) == 29 {
			break
		}
	}

	return time.Date(
		year, base.Month(), base.Day(),
		base.Hour(), base.Minute(), base.Second(), 0,
		base.Location(),
	)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
