package models

import "time"

// Approach outcomes. The set is closed; the approaches table carries a matching
// CHECK constraint.
const (
	OutcomeBlowout   = "blowout"
	OutcomeShort     = "short"
	OutcomeGood      = "good"
	OutcomeNumber    = "number"
	OutcomeInstadate = "instadate"
)

func ValidOutcome(outcome string) bool {
	switch outcome {
	case OutcomeBlowout, OutcomeShort, OutcomeGood, OutcomeNumber, OutcomeInstadate:
		return true
	default:
		return false
	}
}

type Session struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	Goal            *int       `json:"goal"`
	GoalMet         bool       `json:"goal_met"`
	IsActive        bool       `json:"is_active"`
	TotalApproaches int        `json:"total_approaches"`
	Location        *string    `json:"location"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type Approach struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	SessionID    int64     `json:"session_id"`
	Outcome      string    `json:"outcome"`
	ApproachedAt time.Time `json:"approached_at"`
	CreatedAt    time.Time `json:"created_at"`
}

type SessionDetail struct {
	Session
	Approaches []Approach `json:"approaches,omitempty"`
}
