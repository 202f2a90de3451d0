package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/reachjvc/Daygame-coach-sub004/internal/models"
	"github.com/reachjvc/Daygame-coach-sub004/internal/services"
	"github.com/reachjvc/Daygame-coach-sub004/pkg/isoweek"
)

type StatsHandler struct {
	stats      statsReader
	milestones milestoneReader
}

type statsReader interface {
	GetStats(ctx context.Context, userID int64) (*models.UserTrackingStats, error)
}

type milestoneReader interface {
	ListMilestones(ctx context.Context, userID int64) ([]models.Milestone, error)
}

func NewStatsHandler(
	trackingService *services.TrackingService,
	milestoneService *services.MilestoneService,
) *StatsHandler {
	return &StatsHandler{stats: trackingService, milestones: milestoneService}
}

func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	stats, err := h.stats.GetStats(c.Context(), userID)
	if err != nil {
		return mapTrackingError(c, err)
	}

	// The client's local "today" drives the calendar shown next to the stats.
	tz := c.Query("tz")
	return c.JSON(fiber.Map{
		"stats": stats,
		"today": isoweek.TodayInTimezone(tz),
	})
}

func (h *StatsHandler) ListMilestones(c *fiber.Ctx) error {
	userID, err := parseAuthUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	milestones, err := h.milestones.ListMilestones(c.Context(), userID)
	if err != nil {
		return mapTrackingError(c, err)
	}

	return c.JSON(fiber.Map{"milestones": milestones})
}
