package repository

import (
	"context"

	"github.com/reachjvc/Daygame-coach-sub004/internal/models"
)

const statsColumns = `user_id, total_sessions, total_approaches, current_week_streak,
		   longest_week_streak, last_active_week, tracking_week, current_week_sessions,
		   current_week_approaches, current_week_numbers, current_week_instadates,
		   created_at, updated_at`

type StatsRepository struct {
	db DBTX
}

func NewStatsRepository(db DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

func scanStats(row interface{ Scan(dest ...any) error }, stats *models.UserTrackingStats) error {
	return row.Scan(
		&stats.UserID,
		&stats.TotalSessions,
		&stats.TotalApproaches,
		&stats.CurrentWeekStreak,
		&stats.LongestWeekStreak,
		&stats.LastActiveWeek,
		&stats.TrackingWeek,
		&stats.CurrentWeekSessions,
		&stats.CurrentWeekApproaches,
		&stats.CurrentWeekNumbers,
		&stats.CurrentWeekInstadates,
		&stats.CreatedAt,
		&stats.UpdatedAt,
	)
}

// EnsureExists creates the zeroed stats row on first contact. The no-op
// conflict arm keeps concurrent first finalizations from failing.
func (r *StatsRepository) EnsureExists(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO user_tracking_stats (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *StatsRepository) GetByUserID(
	ctx context.Context,
	userID int64,
) (*models.UserTrackingStats, error) {
	query := `
		SELECT ` + statsColumns + `
		FROM user_tracking_stats
		WHERE user_id = $1
	`
	var stats models.UserTrackingStats
	if err := scanStats(r.db.QueryRow(ctx, query, userID), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetByUserIDForUpdate locks the stats row for the rest of the transaction.
// This is what serializes concurrent finalizations for the same user.
func (r *StatsRepository) GetByUserIDForUpdate(
	ctx context.Context,
	userID int64,
) (*models.UserTrackingStats, error) {
	query := `
		SELECT ` + statsColumns + `
		FROM user_tracking_stats
		WHERE user_id = $1
		FOR UPDATE
	`
	var stats models.UserTrackingStats
	if err := scanStats(r.db.QueryRow(ctx, query, userID), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *StatsRepository) Update(
	ctx context.Context,
	stats *models.UserTrackingStats,
) (*models.UserTrackingStats, error) {
	query := `
		UPDATE user_tracking_stats
		SET total_sessions = $2,
			total_approaches = $3,
			current_week_streak = $4,
			longest_week_streak = $5,
			last_active_week = $6,
			tracking_week = $7,
			current_week_sessions = $8,
			current_week_approaches = $9,
			current_week_numbers = $10,
			current_week_instadates = $11,
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + statsColumns + `
	`
	var updated models.UserTrackingStats
	err := scanStats(r.db.QueryRow(
		ctx,
		query,
		stats.UserID,
		stats.TotalSessions,
		stats.TotalApproaches,
		stats.CurrentWeekStreak,
		stats.LongestWeekStreak,
		stats.LastActiveWeek,
		stats.TrackingWeek,
		stats.CurrentWeekSessions,
		stats.CurrentWeekApproaches,
		stats.CurrentWeekNumbers,
		stats.CurrentWeekInstadates,
	), &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
