package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/reachjvc/Daygame-coach-sub004/internal/models"
	"github.com/reachjvc/Daygame-coach-sub004/internal/repository"
	"github.com/reachjvc/Daygame-coach-sub004/internal/services"
)

type SessionHandler struct {
	service trackingApplicationService
}

type trackingApplicationService interface {
	StartSession(ctx context.Context, userID int64, input services.StartSessionInput) (*models.Session, error)
	LogApproach(ctx context.Context, userID int64, sessionID int64, input services.LogApproachInput) (*models.Approach, error)
	FinalizeSession(ctx context.Context, userID int64, sessionID int64, endAt time.Time, tz string) (*models.TrackingSummary, error)
	GetSession(ctx context.Context, userID int64, sessionID int64) (*models.SessionDetail, error)
	ListSessions(ctx context.Context, userID int64, filter repository.SessionListFilter) ([]models.Session, int, error)
}

func NewSessionHandler(service *services.TrackingService) *SessionHandler {
	return &SessionHandler{service: service}
}

type startSessionRequest struct {
	StartedAt string  `json:"started_at"`
	Goal      *int    `json:"goal"`
	Location  *string `json:"location"`
}

type logApproachRequest struct {
	Outcome      string `json:"outcome"`
	ApproachedAt string `json:"approached_at"`
}

type finalizeSessionRequest struct {
	EndedAt  string `json:"ended_at"`
	Timezone string `json:"timezone"`
}

func (h *SessionHandler) StartSession(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req startSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := services.StartSessionInput{Goal: req.Goal, Location: req.Location}
	if trimmed := strings.TrimSpace(req.StartedAt); trimmed != "" {
		startedAt, err := time.Parse(time.RFC3339, trimmed)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"error": "started_at must be a valid RFC3339 timestamp"})
		}
		input.StartedAt = startedAt
	}

	session, err := h.service.StartSession(c.Context(), userID, input)
	if err != nil {
		return mapTrackingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) LogApproach(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req logApproachRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !models.ValidOutcome(strings.TrimSpace(req.Outcome)) {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "outcome must be one of blowout, short, good, number, instadate"})
	}

	input := services.LogApproachInput{Outcome: strings.TrimSpace(req.Outcome)}
	if trimmed := strings.TrimSpace(req.ApproachedAt); trimmed != "" {
		approachedAt, err := time.Parse(time.RFC3339, trimmed)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"error": "approached_at must be a valid RFC3339 timestamp"})
		}
		input.ApproachedAt = approachedAt
	}

	approach, err := h.service.LogApproach(c.Context(), userID, sessionID, input)
	if err != nil {
		return mapTrackingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"approach": approach})
}

func (h *SessionHandler) FinalizeSession(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req finalizeSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var endAt time.Time
	if trimmed := strings.TrimSpace(req.EndedAt); trimmed != "" {
		endAt, err = time.Parse(time.RFC3339, trimmed)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"error": "ended_at must be a valid RFC3339 timestamp"})
		}
	}

	summary, err := h.service.FinalizeSession(c.Context(), userID, sessionID, endAt, strings.TrimSpace(req.Timezone))
	if err != nil {
		return mapTrackingError(c, err)
	}

	return c.JSON(fiber.Map{
		"session": summary.Session,
		"stats":   summary.Stats,
	})
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	state := strings.TrimSpace(c.Query("state"))
	if state != "" && state != "active" && state != "closed" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "state must be active or closed"})
	}
	page, limit := parsePagination(c)

	sessions, total, err := h.service.ListSessions(c.Context(), userID, repository.SessionListFilter{
		State: state,
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return mapTrackingError(c, err)
	}

	return c.JSON(fiber.Map{
		"sessions":   sessions,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.GetSession(c.Context(), userID, sessionID)
	if err != nil {
		return mapTrackingError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func parseAuthUserID(c *fiber.Ctx) (int64, error) {
	userIDStr, ok := c.Locals("user_id").(string)
	if !ok {
		return 0, errors.New("missing user id")
	}
	return strconv.ParseInt(userIDStr, 10, 64)
}

func mapTrackingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	case errors.Is(err, services.ErrSessionClosed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Session is already closed"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process tracking request"})
	}
}
