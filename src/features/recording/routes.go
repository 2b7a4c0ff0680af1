package recording

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the recording feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	events := app.Group("/events")
	events.Post("/playback", handler.PostPlaybackEvent)
}
