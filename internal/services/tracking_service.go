package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reachjvc/Daygame-coach-sub004/internal/metrics"
	"github.com/reachjvc/Daygame-coach-sub004/internal/models"
	"github.com/reachjvc/Daygame-coach-sub004/internal/repository"
	"github.com/reachjvc/Daygame-coach-sub004/pkg/isoweek"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session already closed")
)

// finalizeMaxAttempts bounds the retry loop for serialization failures under
// concurrent finalizations.
const finalizeMaxAttempts = 3

// approachTimestampSlack tolerates client clock skew on approach timestamps
// relative to the session start.
const approachTimestampSlack = 5 * time.Minute

type milestoneAwarder interface {
	AwardDue(ctx context.Context, userID int64, stats *models.UserTrackingStats) ([]models.Milestone, error)
}

type TrackingService struct {
	db           *pgxpool.Pool
	sessionRepo  *repository.SessionRepository
	approachRepo *repository.ApproachRepository
	statsRepo    *repository.StatsRepository
	awarder      milestoneAwarder
}

func NewTrackingService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	approachRepo *repository.ApproachRepository,
	statsRepo *repository.StatsRepository,
	awarder milestoneAwarder,
) *TrackingService {
	return &TrackingService{
		db:           db,
		sessionRepo:  sessionRepo,
		approachRepo: approachRepo,
		statsRepo:    statsRepo,
		awarder:      awarder,
	}
}

type StartSessionInput struct {
	StartedAt time.Time
	Goal      *int
	Location  *string
}

func (s *TrackingService) StartSession(
	ctx context.Context,
	userID int64,
	input StartSessionInput,
) (*models.Session, error) {
	if input.Goal != nil && *input.Goal < 0 {
		return nil, ErrInvalidInput
	}
	startedAt := input.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	session, err := s.sessionRepo.Create(ctx, repository.CreateSessionInput{
		UserID:    userID,
		StartedAt: startedAt.UTC(),
		Goal:      input.Goal,
		Location:  input.Location,
	})
	if err != nil {
		return nil, err
	}

	metrics.SessionsStarted.Inc()
	return session, nil
}

type LogApproachInput struct {
	Outcome      string
	ApproachedAt time.Time
}

func (s *TrackingService) LogApproach(
	ctx context.Context,
	userID int64,
	sessionID int64,
	input LogApproachInput,
) (*models.Approach, error) {
	if !models.ValidOutcome(input.Outcome) {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}
	if !session.IsActive {
		return nil, ErrSessionClosed
	}

	approachedAt := input.ApproachedAt
	if approachedAt.IsZero() {
		approachedAt = time.Now().UTC()
	}
	if approachedAt.Before(session.StartedAt.Add(-approachTimestampSlack)) {
		return nil, ErrInvalidInput
	}

	approach, err := s.approachRepo.Create(ctx, repository.CreateApproachInput{
		UserID:       userID,
		SessionID:    sessionID,
		Outcome:      input.Outcome,
		ApproachedAt: approachedAt.UTC(),
	})
	if err != nil {
		return nil, err
	}

	metrics.ApproachesLogged.WithLabelValues(input.Outcome).Inc()
	return approach, nil
}

// FinalizeSession closes an active session and folds it into the user's
// cumulative statistics in one transaction. The whole transaction is retried
// on serialization failure; a session is never visible as closed with the
// stats fold missing, or the other way around.
func (s *TrackingService) FinalizeSession(
	ctx context.Context,
	userID int64,
	sessionID int64,
	endAt time.Time,
	tz string,
) (*models.TrackingSummary, error) {
	if endAt.IsZero() {
		endAt = time.Now().UTC()
	}

	var summary *models.TrackingSummary
	var err error
	for attempt := 1; ; attempt++ {
		summary, err = s.finalizeOnce(ctx, userID, sessionID, endAt.UTC(), tz)
		if err == nil || !isSerializationFailure(err) || attempt >= finalizeMaxAttempts {
			break
		}
		metrics.FinalizeRetries.Inc()
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionClosed):
			metrics.SessionsFinalized.WithLabelValues(metrics.ResultRejected).Inc()
		case isSerializationFailure(err):
			metrics.SessionsFinalized.WithLabelValues(metrics.ResultConflict).Inc()
		default:
			metrics.SessionsFinalized.WithLabelValues(metrics.ResultFailure).Inc()
		}
		return nil, err
	}
	metrics.SessionsFinalized.WithLabelValues(metrics.ResultSuccess).Inc()

	if s.awarder != nil {
		if _, err := s.awarder.AwardDue(ctx, userID, summary.Stats); err != nil {
			// The fold is already committed; a failed award pass is re-run by
			// value on the next finalize.
			log.Printf("milestone award pass failed for user %d: %v", userID, err)
		}
	}

	return summary, nil
}

func (s *TrackingService) finalizeOnce(
	ctx context.Context,
	userID int64,
	sessionID int64,
	endAt time.Time,
	tz string,
) (*models.TrackingSummary, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txApproachRepo := repository.NewApproachRepository(tx)
	txStatsRepo := repository.NewStatsRepository(tx)

	session, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}
	if !session.IsActive {
		// Closing is not idempotent: a second close would double-count the fold.
		return nil, ErrSessionClosed
	}
	if endAt.Before(session.StartedAt) {
		return nil, ErrInvalidInput
	}

	totalApproaches, err := txApproachRepo.CountBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	numbers, err := txApproachRepo.CountBySessionIDAndOutcome(ctx, sessionID, models.OutcomeNumber)
	if err != nil {
		return nil, err
	}
	instadates, err := txApproachRepo.CountBySessionIDAndOutcome(ctx, sessionID, models.OutcomeInstadate)
	if err != nil {
		return nil, err
	}

	goalMet := session.Goal != nil && totalApproaches >= *session.Goal
	closed, err := txSessionRepo.Close(ctx, sessionID, repository.CloseSessionInput{
		EndedAt:         endAt,
		DurationMinutes: int(endAt.Sub(session.StartedAt).Minutes()),
		TotalApproaches: totalApproaches,
		GoalMet:         goalMet,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionClosed
		}
		return nil, err
	}

	if err := txStatsRepo.EnsureExists(ctx, userID); err != nil {
		return nil, err
	}
	stats, err := txStatsRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// A session spanning a week boundary is attributed to the week containing
	// its end, resolved in the caller's timezone.
	currentWeek := weekStringIn(endAt, tz)

	stats.TotalSessions++
	stats.TotalApproaches += totalApproaches

	if stats.TrackingWeek == nil || *stats.TrackingWeek != currentWeek {
		stats.TrackingWeek = &currentWeek
		stats.CurrentWeekSessions = 0
		stats.CurrentWeekApproaches = 0
		stats.CurrentWeekNumbers = 0
		stats.CurrentWeekInstadates = 0
	}
	stats.CurrentWeekSessions++
	stats.CurrentWeekApproaches += totalApproaches
	stats.CurrentWeekNumbers += numbers
	stats.CurrentWeekInstadates += instadates

	// The streak only advances once the week crosses the activity threshold.
	// A lone quiet session never bridges two streaks.
	if IsWeekActive(stats.CurrentWeekSessions, stats.CurrentWeekApproaches) {
		lastActive := ""
		if stats.LastActiveWeek != nil {
			lastActive = *stats.LastActiveWeek
		}
		streak := NextStreak(stats.CurrentWeekStreak, lastActive, currentWeek)
		stats.CurrentWeekStreak = streak
		if streak > stats.LongestWeekStreak {
			stats.LongestWeekStreak = streak
		}
		stats.LastActiveWeek = &currentWeek
	}

	updated, err := txStatsRepo.Update(ctx, stats)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.TrackingSummary{Session: closed, Stats: updated}, nil
}

func (s *TrackingService) GetSession(
	ctx context.Context,
	userID int64,
	sessionID int64,
) (*models.SessionDetail, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}

	approaches, err := s.approachRepo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &models.SessionDetail{Session: *session, Approaches: approaches}, nil
}

func (s *TrackingService) ListSessions(
	ctx context.Context,
	userID int64,
	filter repository.SessionListFilter,
) ([]models.Session, int, error) {
	filter.UserID = userID
	return s.sessionRepo.List(ctx, filter)
}

// GetStats returns the user's stats row, or a zeroed snapshot for a user who
// has not finalized a session yet.
func (s *TrackingService) GetStats(
	ctx context.Context,
	userID int64,
) (*models.UserTrackingStats, error) {
	stats, err := s.statsRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.UserTrackingStats{UserID: userID}, nil
		}
		return nil, err
	}
	return stats, nil
}

func weekStringIn(t time.Time, tz string) string {
	loc := time.UTC
	if tz != "" {
		if parsed, err := time.LoadLocation(tz); err == nil {
			loc = parsed
		}
	}
	return isoweek.WeekString(t.In(loc))
}

// isSerializationFailure matches SQLSTATE 40001 (serialization_failure) and
// 40P01 (deadlock_detected); both make the whole finalize safe to retry.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
