package ui

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the UI feature.
func RegisterRoutes(app *fiber.App, handler *Handler) {
	ui := app.Group("/ui")
	ui.Get("/stats/overview", handler.RenderOverview)
}
