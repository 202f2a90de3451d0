package services

import "github.com/reachjvc/Daygame-coach-sub004/pkg/isoweek"

// Weekly activity thresholds. A week counts toward streak continuation once the
// user has logged enough sessions or approaches in it; tune independently of
// the adjacency math below.
const (
	activeWeekMinSessions   = 2
	activeWeekMinApproaches = 5
)

// AreConsecutive reports whether weekB is exactly the ISO week following weekA,
// including the wrap from week 52/53 into week 1 of the next week-year. Equal
// or malformed inputs are never consecutive.
func AreConsecutive(weekA, weekB string) bool {
	if weekA == "" || weekB == "" || weekA == weekB {
		return false
	}
	if _, _, err := isoweek.ParseWeek(weekB); err != nil {
		return false
	}
	next, err := isoweek.Next(weekA)
	if err != nil {
		return false
	}
	return next == weekB
}

// NextStreak derives the new current streak from the previous state. Re-entry
// in the same week leaves the streak untouched, an adjacent week extends it,
// anything else resets to 1.
func NextStreak(previousStreak int, lastActiveWeek, currentWeek string) int {
	if lastActiveWeek == currentWeek && lastActiveWeek != "" {
		return previousStreak
	}
	if AreConsecutive(lastActiveWeek, currentWeek) {
		return previousStreak + 1
	}
	return 1
}

// IsWeekActive is the policy gate deciding whether a week's logged activity is
// enough to continue a streak.
func IsWeekActive(sessionCount, approachCount int) bool {
	return sessionCount >= activeWeekMinSessions || approachCount >= activeWeekMinApproaches
}
