package isoweek

import (
	"regexp"
	"testing"
	"time"
)

func TestWeekStringFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{4}-W\d{2}$`)
	instants := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, instant := range instants {
		got := WeekString(instant)
		if !pattern.MatchString(got) {
			t.Errorf("WeekString(%v) = %q, want YYYY-Www", instant, got)
		}
	}
}

func TestWeekStringYearBoundaries(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		// Late December belonging to week 1 of the following ISO year.
		{time.Date(2025, 12, 31, 10, 0, 0, 0, time.UTC), "2026-W01"},
		{time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-W01"},
		// Early January belonging to the previous ISO year.
		{time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), "2020-W53"},
		{time.Date(2027, 1, 3, 0, 0, 0, 0, time.UTC), "2026-W53"},
		{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "2022-W52"},
		// Plain mid-year weeks.
		{time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC), "2026-W04"},
		{time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC), "2026-W28"},
	}
	for _, tc := range cases {
		if got := WeekString(tc.date); got != tc.want {
			t.Errorf("WeekString(%v) = %q, want %q", tc.date, got, tc.want)
		}
	}
}

func TestDateInTimezone(t *testing.T) {
	// 2026-03-15 02:00 UTC is still 2026-03-14 in Los Angeles.
	instant := time.Date(2026, 3, 15, 2, 0, 0, 0, time.UTC)

	if got := DateInTimezone(instant, "America/Los_Angeles"); got != "2026-03-14" {
		t.Errorf("expected 2026-03-14 in Los Angeles, got %q", got)
	}
	if got := DateInTimezone(instant, "UTC"); got != "2026-03-15" {
		t.Errorf("expected 2026-03-15 in UTC, got %q", got)
	}
}

func TestDateInTimezoneFallsBackToUTC(t *testing.T) {
	instant := time.Date(2026, 3, 15, 2, 0, 0, 0, time.UTC)

	for _, tz := range []string{"", "Not/AZone", "garbage"} {
		if got := DateInTimezone(instant, tz); got != "2026-03-15" {
			t.Errorf("DateInTimezone(%q) = %q, want UTC fallback 2026-03-15", tz, got)
		}
	}
}

func TestParseWeek(t *testing.T) {
	year, num, err := ParseWeek("2026-W04")
	if err != nil {
		t.Fatalf("ParseWeek: %v", err)
	}
	if year != 2026 || num != 4 {
		t.Fatalf("expected 2026/4, got %d/%d", year, num)
	}

	for _, malformed := range []string{"", "2026-04", "2026-W", "2026-W00", "2026-W54", "2026W04", "26-W04", "2026-W041"} {
		if _, _, err := ParseWeek(malformed); err == nil {
			t.Errorf("ParseWeek(%q) expected error", malformed)
		}
	}
}

func TestNext(t *testing.T) {
	cases := []struct {
		week string
		want string
	}{
		{"2026-W03", "2026-W04"},
		{"2025-W52", "2026-W01"},
		{"2020-W53", "2021-W01"},
		{"2026-W52", "2026-W53"}, // 2026 is a 53-week ISO year
		{"2026-W53", "2027-W01"},
	}
	for _, tc := range cases {
		got, err := Next(tc.week)
		if err != nil {
			t.Fatalf("Next(%q): %v", tc.week, err)
		}
		if got != tc.want {
			t.Errorf("Next(%q) = %q, want %q", tc.week, got, tc.want)
		}
	}

	if _, err := Next("not-a-week"); err == nil {
		t.Error("Next with malformed input expected error")
	}
}
