package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/reachjvc/Daygame-coach-sub004/internal/models"
)

const sessionColumns = `id, user_id, started_at, ended_at, duration_minutes, goal, goal_met,
		   is_active, total_approaches, location, created_at, updated_at`

type CreateSessionInput struct {
	UserID    int64
	StartedAt time.Time
	Goal      *int
	Location  *string
}

type CloseSessionInput struct {
	EndedAt         time.Time
	DurationMinutes int
	TotalApproaches int
	GoalMet         bool
}

type SessionListFilter struct {
	UserID int64
	State  string // "", "active" or "closed"
	Page   int
	Limit  int
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row interface{ Scan(dest ...any) error }, session *models.Session) error {
	return row.Scan(
		&session.ID,
		&session.UserID,
		&session.StartedAt,
		&session.EndedAt,
		&session.DurationMinutes,
		&session.Goal,
		&session.GoalMet,
		&session.IsActive,
		&session.TotalApproaches,
		&session.Location,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
}

func (r *SessionRepository) Create(
	ctx context.Context,
	input CreateSessionInput,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		INSERT INTO sessions (user_id, started_at, goal, location)
		VALUES ($1, $2, $3, $4)
		RETURNING %s
	`, sessionColumns)

	var session models.Session
	err := scanSession(r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.StartedAt,
		input.Goal,
		input.Location,
	), &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE id = $1
	`, sessionColumns)

	var session models.Session
	if err := scanSession(r.db.QueryRow(ctx, query, sessionID), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetByIDForUpdate(
	ctx context.Context,
	sessionID int64,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE id = $1
		FOR UPDATE
	`, sessionColumns)

	var session models.Session
	if err := scanSession(r.db.QueryRow(ctx, query, sessionID), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Close writes the finalize fields. The WHERE clause keeps the transition
// one-way: a session that already left the active state is not matched.
func (r *SessionRepository) Close(
	ctx context.Context,
	sessionID int64,
	input CloseSessionInput,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET ended_at = $2,
			duration_minutes = $3,
			total_approaches = $4,
			goal_met = $5,
			is_active = FALSE,
			updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
		RETURNING %s
	`, sessionColumns)

	var session models.Session
	err := scanSession(r.db.QueryRow(
		ctx,
		query,
		sessionID,
		input.EndedAt,
		input.DurationMinutes,
		input.TotalApproaches,
		input.GoalMet,
	), &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) List(
	ctx context.Context,
	filter SessionListFilter,
) ([]models.Session, int, error) {
	args := []any{filter.UserID}
	whereParts := []string{"user_id = $1"}

	switch strings.TrimSpace(filter.State) {
	case "active":
		whereParts = append(whereParts, "is_active = TRUE")
	case "closed":
		whereParts = append(whereParts, "is_active = FALSE")
	}
	where := strings.Join(whereParts, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM sessions WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE %s
		ORDER BY started_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, sessionColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		var session models.Session
		if err := scanSession(rows, &session); err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}
