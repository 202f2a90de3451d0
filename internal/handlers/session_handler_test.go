package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/reachjvc/Daygame-coach-sub004/internal/models"
	"github.com/reachjvc/Daygame-coach-sub004/internal/repository"
	"github.com/reachjvc/Daygame-coach-sub004/internal/services"
)

type stubTrackingService struct {
	startResult    *models.Session
	startErr       error
	logResult      *models.Approach
	logErr         error
	finalizeResult *models.TrackingSummary
	finalizeErr    error
	getResult      *models.SessionDetail
	getErr         error
	listResult     []models.Session
	listTotal      int
	listErr        error

	lastUserID     int64
	lastSessionID  int64
	lastStartInput services.StartSessionInput
	lastLogInput   services.LogApproachInput
	lastEndAt      time.Time
	lastTimezone   string
	lastListFilter repository.SessionListFilter
}

func (s *stubTrackingService) StartSession(_ context.Context, userID int64, input services.StartSessionInput) (*models.Session, error) {
	s.lastUserID = userID
	s.lastStartInput = input
	return s.startResult, s.startErr
}

func (s *stubTrackingService) LogApproach(_ context.Context, userID int64, sessionID int64, input services.LogApproachInput) (*models.Approach, error) {
	s.lastUserID = userID
	s.lastSessionID = sessionID
	s.lastLogInput = input
	return s.logResult, s.logErr
}

func (s *stubTrackingService) FinalizeSession(_ context.Context, userID int64, sessionID int64, endAt time.Time, tz string) (*models.TrackingSummary, error) {
	s.lastUserID = userID
	s.lastSessionID = sessionID
	s.lastEndAt = endAt
	s.lastTimezone = tz
	return s.finalizeResult, s.finalizeErr
}

func (s *stubTrackingService) GetSession(_ context.Context, userID int64, sessionID int64) (*models.SessionDetail, error) {
	s.lastUserID = userID
	s.lastSessionID = sessionID
	return s.getResult, s.getErr
}

func (s *stubTrackingService) ListSessions(_ context.Context, userID int64, filter repository.SessionListFilter) ([]models.Session, int, error) {
	s.lastUserID = userID
	s.lastListFilter = filter
	return s.listResult, s.listTotal, s.listErr
}

func newSessionTestApp(handler *SessionHandler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		c.Locals("role", "user")
		return c.Next()
	})
	app.Post("/api/v1/sessions", handler.StartSession)
	app.Post("/api/v1/sessions/:id/approaches", handler.LogApproach)
	app.Post("/api/v1/sessions/:id/finalize", handler.FinalizeSession)
	app.Get("/api/v1/sessions", handler.ListSessions)
	app.Get("/api/v1/sessions/:id", handler.GetSession)
	return app
}

func TestStartSessionReturnsCreatedSession(t *testing.T) {
	service := &stubTrackingService{
		startResult: &models.Session{ID: 9, UserID: 42, IsActive: true},
	}
	app := newSessionTestApp(&SessionHandler{service: service})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{
		"started_at": "2026-01-19T14:00:00Z",
		"goal": 10,
		"location": "city center"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastUserID != 42 {
		t.Fatalf("expected user 42, got %d", service.lastUserID)
	}
	if service.lastStartInput.Goal == nil || *service.lastStartInput.Goal != 10 {
		t.Fatalf("expected goal 10, got %+v", service.lastStartInput.Goal)
	}
	if !service.lastStartInput.StartedAt.Equal(time.Date(2026, 1, 19, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected started_at: %v", service.lastStartInput.StartedAt)
	}
}

func TestLogApproachRejectsUnknownOutcomeBeforeService(t *testing.T) {
	service := &stubTrackingService{}
	app := newSessionTestApp(&SessionHandler{service: service})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/9/approaches", strings.NewReader(`{
		"outcome": "whatever"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if service.lastSessionID != 0 {
		t.Fatal("expected no service call for invalid outcome")
	}
}

func TestLogApproachPassesOutcomeThrough(t *testing.T) {
	service := &stubTrackingService{
		logResult: &models.Approach{ID: 1, SessionID: 9, Outcome: models.OutcomeNumber},
	}
	app := newSessionTestApp(&SessionHandler{service: service})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/9/approaches", strings.NewReader(`{
		"outcome": "number"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastSessionID != 9 || service.lastLogInput.Outcome != models.OutcomeNumber {
		t.Fatalf("unexpected service call: session %d outcome %q", service.lastSessionID, service.lastLogInput.Outcome)
	}
}

func TestFinalizeSessionReturnsSessionAndStats(t *testing.T) {
	week := "2026-W04"
	service := &stubTrackingService{
		finalizeResult: &models.TrackingSummary{
			Session: &models.Session{ID: 9, UserID: 42, TotalApproaches: 5},
			Stats:   &models.UserTrackingStats{UserID: 42, TotalSessions: 1, LastActiveWeek: &week},
		},
	}
	app := newSessionTestApp(&SessionHandler{service: service})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/9/finalize", strings.NewReader(`{
		"ended_at": "2026-01-19T18:00:00Z",
		"timezone": "Europe/London"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastTimezone != "Europe/London" {
		t.Fatalf("expected timezone passed through, got %q", service.lastTimezone)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Session models.Session           `json:"session"`
		Stats   models.UserTrackingStats `json:"stats"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Session.TotalApproaches != 5 || payload.Stats.TotalSessions != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestFinalizeSessionMapsAlreadyClosedToConflict(t *testing.T) {
	service := &stubTrackingService{finalizeErr: services.ErrSessionClosed}
	app := newSessionTestApp(&SessionHandler{service: service})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/9/finalize", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestGetSessionMapsNotFound(t *testing.T) {
	service := &stubTrackingService{getErr: services.ErrSessionNotFound}
	app := newSessionTestApp(&SessionHandler{service: service})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/999", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListSessionsValidatesStateFilter(t *testing.T) {
	service := &stubTrackingService{}
	app := newSessionTestApp(&SessionHandler{service: service})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?state=paused", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListSessionsAppliesPaginationDefaults(t *testing.T) {
	service := &stubTrackingService{listResult: []models.Session{}, listTotal: 0}
	app := newSessionTestApp(&SessionHandler{service: service})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?state=closed", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastListFilter.State != "closed" {
		t.Fatalf("expected closed filter, got %q", service.lastListFilter.State)
	}
	if service.lastListFilter.Page != 1 || service.lastListFilter.Limit != defaultPageLimit {
		t.Fatalf("unexpected pagination: %+v", service.lastListFilter)
	}
}
