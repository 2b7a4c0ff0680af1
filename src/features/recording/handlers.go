package recording

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler handles playback event ingestion requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new recording handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PostPlaybackEvent ingests one playback event from the host's webhook.
func (h *Handler) PostPlaybackEvent(c *fiber.Ctx) error {
	slog.Debug("PostPlaybackEvent handler called")

	var event PlaybackEvent
	if err := c.BodyParser(&event); err != nil {
		slog.Warn("Rejected malformed playback event", "error", err)
		return c.Status(fiber.StatusBadRequest).SendString("Malformed playback event")
	}

	session, err := h.service.Record(c.Context(), &event)
	if err != nil {
		if validationErr := event.Validate(); validationErr != nil {
			return c.Status(fiber.StatusBadRequest).SendString(validationErr.Error())
		}
		slog.Error("Failed to record playback event", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).SendString("Failed to record playback event")
	}

	return c.Status(fiber.StatusAccepted).JSON(session)
}
