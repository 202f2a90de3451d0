package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/reachjvc/Daygame-coach-sub004/internal/models"
)

type MilestoneRepository struct {
	db DBTX
}

func NewMilestoneRepository(db DBTX) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

// Insert grants a milestone once per (user, type). Idempotence lives in the
// unique index, not here: a duplicate attempt hits the conflict arm, returns
// no row, and is reported as (nil, nil) so callers treat it as already
// granted.
func (r *MilestoneRepository) Insert(
	ctx context.Context,
	userID int64,
	milestoneType string,
	value *int,
) (*models.Milestone, error) {
	query := `
		INSERT INTO milestones (user_id, milestone_type, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, milestone_type) DO NOTHING
		RETURNING id, user_id, milestone_type, value, created_at
	`

	var milestone models.Milestone
	err := r.db.QueryRow(ctx, query, userID, milestoneType, value).Scan(
		&milestone.ID,
		&milestone.UserID,
		&milestone.MilestoneType,
		&milestone.Value,
		&milestone.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &milestone, nil
}

func (r *MilestoneRepository) ListByUserID(
	ctx context.Context,
	userID int64,
) ([]models.Milestone, error) {
	query := `
		SELECT id, user_id, milestone_type, value, created_at
		FROM milestones
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	milestones := make([]models.Milestone, 0)
	for rows.Next() {
		var milestone models.Milestone
		if err := rows.Scan(
			&milestone.ID,
			&milestone.UserID,
			&milestone.MilestoneType,
			&milestone.Value,
			&milestone.CreatedAt,
		); err != nil {
			return nil, err
		}
		milestones = append(milestones, milestone)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return milestones, nil
}
