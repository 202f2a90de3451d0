package services

import (
	"context"
	"fmt"

	"github.com/reachjvc/Daygame-coach-sub004/internal/metrics"
	"github.com/reachjvc/Daygame-coach-sub004/internal/models"
	"github.com/reachjvc/Daygame-coach-sub004/internal/repository"
)

// MilestoneRule maps a stats counter to a one-time milestone. Thresholds are
// compared with >=, so a counter jumping past the threshold in one fold still
// triggers the milestone.
type MilestoneRule struct {
	Type      string
	StatField string
	Threshold int
}

// DefaultMilestoneRules is the shipped threshold table. The awarder takes the
// table as configuration; nothing below is hard-coded elsewhere.
var DefaultMilestoneRules = []MilestoneRule{
	{Type: "first_approach", StatField: "total_approaches", Threshold: 1},
	{Type: "5_approaches", StatField: "total_approaches", Threshold: 5},
	{Type: "25_approaches", StatField: "total_approaches", Threshold: 25},
	{Type: "100_approaches", StatField: "total_approaches", Threshold: 100},
	{Type: "first_session", StatField: "total_sessions", Threshold: 1},
	{Type: "10_sessions", StatField: "total_sessions", Threshold: 10},
	{Type: "50_sessions", StatField: "total_sessions", Threshold: 50},
	{Type: "4_week_streak", StatField: "longest_week_streak", Threshold: 4},
	{Type: "12_week_streak", StatField: "longest_week_streak", Threshold: 12},
}

// MilestoneNotifier pushes freshly granted milestones to the user's open
// connections. Delivery is best-effort.
type MilestoneNotifier interface {
	NotifyMilestones(userID int64, milestones []models.Milestone)
}

type milestoneInserter interface {
	Insert(ctx context.Context, userID int64, milestoneType string, value *int) (*models.Milestone, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.Milestone, error)
}

type MilestoneService struct {
	milestoneRepo milestoneInserter
	rules         []MilestoneRule
	notifier      MilestoneNotifier
}

func NewMilestoneService(
	milestoneRepo *repository.MilestoneRepository,
	rules []MilestoneRule,
	notifier MilestoneNotifier,
) *MilestoneService {
	if len(rules) == 0 {
		rules = DefaultMilestoneRules
	}
	return &MilestoneService{
		milestoneRepo: milestoneRepo,
		rules:         rules,
		notifier:      notifier,
	}
}

// AwardDue evaluates the stats snapshot against the rule table and grants
// every milestone whose threshold is now met, returning only the newly
// granted ones. Safe to call redundantly from any code path: the unique index
// on (user_id, milestone_type) makes a duplicate attempt a silent no-op.
func (s *MilestoneService) AwardDue(
	ctx context.Context,
	userID int64,
	stats *models.UserTrackingStats,
) ([]models.Milestone, error) {
	if stats == nil {
		return nil, ErrInvalidInput
	}

	granted := make([]models.Milestone, 0)
	for _, rule := range s.rules {
		value, ok := stats.StatValue(rule.StatField)
		if !ok {
			return granted, fmt.Errorf("milestone rule %q references unknown stat %q", rule.Type, rule.StatField)
		}
		if value < rule.Threshold {
			continue
		}

		statValue := value
		milestone, err := s.milestoneRepo.Insert(ctx, userID, rule.Type, &statValue)
		if err != nil {
			return granted, err
		}
		if milestone == nil {
			// Already granted earlier; milestones are never recomputed.
			continue
		}

		metrics.MilestonesAwarded.WithLabelValues(rule.Type).Inc()
		granted = append(granted, *milestone)
	}

	if len(granted) > 0 && s.notifier != nil {
		s.notifier.NotifyMilestones(userID, granted)
	}
	return granted, nil
}

func (s *MilestoneService) ListMilestones(
	ctx context.Context,
	userID int64,
) ([]models.Milestone, error) {
	return s.milestoneRepo.ListByUserID(ctx, userID)
}
