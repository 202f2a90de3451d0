package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/reachjvc/Daygame-coach-sub004/internal/models"
)

type stubStatsReader struct {
	stats      *models.UserTrackingStats
	err        error
	lastUserID int64
}

func (s *stubStatsReader) GetStats(_ context.Context, userID int64) (*models.UserTrackingStats, error) {
	s.lastUserID = userID
	return s.stats, s.err
}

type stubMilestoneReader struct {
	milestones []models.Milestone
	err        error
}

func (s *stubMilestoneReader) ListMilestones(_ context.Context, _ int64) ([]models.Milestone, error) {
	return s.milestones, s.err
}

func newStatsTestApp(handler *StatsHandler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Get("/api/v1/stats", handler.GetStats)
	app.Get("/api/v1/milestones", handler.ListMilestones)
	return app
}

func TestGetStatsReturnsSnapshotWithLocalDate(t *testing.T) {
	week := "2026-W04"
	reader := &stubStatsReader{stats: &models.UserTrackingStats{
		UserID:            42,
		TotalSessions:     3,
		TotalApproaches:   17,
		CurrentWeekStreak: 2,
		LongestWeekStreak: 5,
		LastActiveWeek:    &week,
	}}
	app := newStatsTestApp(&StatsHandler{stats: reader, milestones: &stubMilestoneReader{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats?tz=Europe/Stockholm", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if reader.lastUserID != 42 {
		t.Fatalf("expected user 42, got %d", reader.lastUserID)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Stats models.UserTrackingStats `json:"stats"`
		Today string                   `json:"today"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Stats.TotalApproaches != 17 {
		t.Fatalf("unexpected stats: %+v", payload.Stats)
	}
	if !regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`).MatchString(payload.Today) {
		t.Fatalf("expected YYYY-MM-DD today, got %q", payload.Today)
	}
}

func TestListMilestonesReturnsGrantedMilestones(t *testing.T) {
	reader := &stubMilestoneReader{milestones: []models.Milestone{
		{ID: 1, UserID: 42, MilestoneType: "first_approach"},
		{ID: 2, UserID: 42, MilestoneType: "first_session"},
	}}
	app := newStatsTestApp(&StatsHandler{stats: &stubStatsReader{}, milestones: reader})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/milestones", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Milestones []models.Milestone `json:"milestones"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Milestones) != 2 {
		t.Fatalf("expected 2 milestones, got %+v", payload.Milestones)
	}
}
