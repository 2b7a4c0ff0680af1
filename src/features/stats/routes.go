package stats

import (
	"finsight/src/listening"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the stats feature.
func RegisterRoutes(app *fiber.App, service *Service, identity listening.Identity) {
	handler := NewHandler(service, identity)

	stats := app.Group("/stats")
	stats.Get("/me", handler.GetMyStats)
	stats.Get("/songs", handler.GetAllSongs)
	stats.Get("/artists", handler.GetAllArtists)
	stats.Get("/user/:userId/year/:year", handler.GetUserYearStats)
	stats.Get("/user/:userId/artists", handler.GetUserArtists)
	stats.Get("/user/:userId/songs", handler.GetUserSongs)
}
