package ui

import (
	"log/slog"
	"time"

	"finsight/src/features/stats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler is the handler for the UI feature.
type Handler struct {
	statsService *stats.Service
}

// NewHandler creates a new handler for the UI feature.
func NewHandler(statsService *stats.Service) *Handler {
	return &Handler{
		statsService: statsService,
	}
}

// RenderOverview renders the year-in-review partial for a user.
func (h *Handler) RenderOverview(c *fiber.Ctx) error {
	slog.Debug("RenderOverview handler called", "user", c.Query("user"))

	userID, err := uuid.Parse(c.Query("user"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid user ID")
	}
	year := c.QueryInt("year", time.Now().UTC().Year())

	result, err := h.statsService.GetUserYearStats(c.Context(), userID.String(), year)
	if err != nil {
		slog.Error("Error rendering stats overview", "user", userID, "year", year, "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading stats")
	}

	return c.Render("stats/overview", fiber.Map{
		"Title": "Year in Review",
		"Stats": result,
	})
}
