package models

import "time"

// UserTrackingStats is the single accumulation row per user. It is written only
// by the tracking service's finalize transaction.
type UserTrackingStats struct {
	UserID                int64     `json:"user_id"`
	TotalSessions         int       `json:"total_sessions"`
	TotalApproaches       int       `json:"total_approaches"`
	CurrentWeekStreak     int       `json:"current_week_streak"`
	LongestWeekStreak     int       `json:"longest_week_streak"`
	LastActiveWeek        *string   `json:"last_active_week"`
	TrackingWeek          *string   `json:"tracking_week"`
	CurrentWeekSessions   int       `json:"current_week_sessions"`
	CurrentWeekApproaches int       `json:"current_week_approaches"`
	CurrentWeekNumbers    int       `json:"current_week_numbers"`
	CurrentWeekInstadates int       `json:"current_week_instadates"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// StatValue resolves a named counter for milestone rule evaluation.
func (s *UserTrackingStats) StatValue(field string) (int, bool) {
	switch field {
	case "total_sessions":
		return s.TotalSessions, true
	case "total_approaches":
		return s.TotalApproaches, true
	case "current_week_streak":
		return s.CurrentWeekStreak, true
	case "longest_week_streak":
		return s.LongestWeekStreak, true
	case "current_week_numbers":
		return s.CurrentWeekNumbers, true
	case "current_week_instadates":
		return s.CurrentWeekInstadates, true
	default:
		return 0, false
	}
}

type Milestone struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	MilestoneType string    `json:"milestone_type"`
	Value         *int      `json:"value"`
	CreatedAt     time.Time `json:"created_at"`
}

type TrackingSummary struct {
	Session *Session           `json:"session"`
	Stats   *UserTrackingStats `json:"stats"`
}
