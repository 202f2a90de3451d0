package repository

import (
	"context"
	"time"

	"github.com/reachjvc/Daygame-coach-sub004/internal/models"
)

type CreateApproachInput struct {
	UserID       int64
	SessionID    int64
	Outcome      string
	ApproachedAt time.Time
}

type ApproachRepository struct {
	db DBTX
}

func NewApproachRepository(db DBTX) *ApproachRepository {
	return &ApproachRepository{db: db}
}

func (r *ApproachRepository) Create(
	ctx context.Context,
	input CreateApproachInput,
) (*models.Approach, error) {
	query := `
		INSERT INTO approaches (user_id, session_id, outcome, approached_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, session_id, outcome, approached_at, created_at
	`

	var approach models.Approach
	err := r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.SessionID,
		input.Outcome,
		input.ApproachedAt,
	).Scan(
		&approach.ID,
		&approach.UserID,
		&approach.SessionID,
		&approach.Outcome,
		&approach.ApproachedAt,
		&approach.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &approach, nil
}

func (r *ApproachRepository) ListBySessionID(
	ctx context.Context,
	sessionID int64,
) ([]models.Approach, error) {
	query := `
		SELECT id, user_id, session_id, outcome, approached_at, created_at
		FROM approaches
		WHERE session_id = $1
		ORDER BY approached_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	approaches := make([]models.Approach, 0)
	for rows.Next() {
		var approach models.Approach
		if err := rows.Scan(
			&approach.ID,
			&approach.UserID,
			&approach.SessionID,
			&approach.Outcome,
			&approach.ApproachedAt,
			&approach.CreatedAt,
		); err != nil {
			return nil, err
		}
		approaches = append(approaches, approach)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return approaches, nil
}

func (r *ApproachRepository) CountBySessionID(ctx context.Context, sessionID int64) (int, error) {
	query := `SELECT COUNT(*) FROM approaches WHERE session_id = $1`
	var count int
	if err := r.db.QueryRow(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountBySessionIDAndOutcome is used by the finalize fold to attribute numbers
// and instadates to the week's rolling counters.
func (r *ApproachRepository) CountBySessionIDAndOutcome(
	ctx context.Context,
	sessionID int64,
	outcome string,
) (int, error) {
	query := `SELECT COUNT(*) FROM approaches WHERE session_id = $1 AND outcome = $2`
	var count int
	if err := r.db.QueryRow(ctx, query, sessionID, outcome).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
