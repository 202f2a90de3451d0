// Package isoweek derives ISO-8601 week identifiers of the form "2026-W01".
// Weeks run Monday through Sunday and week 1 is the week containing the first
// Thursday of the year, so the week-year near January 1 can differ from the
// calendar year.
package isoweek

import (
	"fmt"
	"time"
)

// WeekString returns the ISO week identifier for t, e.g. "2026-W01". The year
// component is the ISO week-year, not the calendar year.
func WeekString(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// TodayInTimezone resolves the current date as YYYY-MM-DD in the given IANA
// timezone. An empty or unrecognized timezone silently degrades to UTC.
func TodayInTimezone(tz string) string {
	return DateInTimezone(time.Now(), tz)
}

func DateInTimezone(t time.Time, tz string) string {
	loc := time.UTC
	if tz != "" {
		if parsed, err := time.LoadLocation(tz); err == nil {
			loc = parsed
		}
	}
	return t.In(loc).Format("2006-01-02")
}

// ParseWeek splits a "YYYY-Www" identifier into its week-year and week number.
func ParseWeek(week string) (int, int, error) {
	var year, num int
	if _, err := fmt.Sscanf(week, "%4d-W%2d", &year, &num); err != nil {
		return 0, 0, fmt.Errorf("invalid week identifier %q: %w", week, err)
	}
	if len(week) != 8 || num < 1 || num > 53 {
		return 0, 0, fmt.Errorf("invalid week identifier %q", week)
	}
	return year, num, nil
}

// Next returns the identifier of the week immediately following the given one,
// wrapping from week 52 or 53 into week 1 of the next week-year.
func Next(week string) (string, error) {
	year, num, err := ParseWeek(week)
	if err != nil {
		return "", err
	}
	return WeekString(mondayOf(year, num).AddDate(0, 0, 7)), nil
}

// mondayOf returns the Monday starting ISO week num of the given week-year.
// January 4 is always inside week 1.
func mondayOf(year, num int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-weekday)
	return week1Monday.AddDate(0, 0, (num-1)*7)
}
