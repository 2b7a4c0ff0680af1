package hosting

import (
	"fmt"
	"log/slog"

	"finsight/src/features/config"
	"finsight/src/features/metrics"
	"finsight/src/features/recording"
	"finsight/src/features/stats"
	"finsight/src/features/ui"
	"finsight/src/listening"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, statsService *stats.Service, recordingService *recording.Service, identity listening.Identity) *Server {
	engine := html.New("./views", ".html")
	engine.Debug(cfg.Get().Logger.Level == "debug")
	// Add custom template functions
	engine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	engine.AddFunc("formatMinutes", func(minutes int64) string {
		if minutes == 0 {
			return "0 min"
		}
		hours := minutes / 60
		if hours > 0 {
			return fmt.Sprintf("%d hr %d min", hours, minutes%60)
		}
		return fmt.Sprintf("%d min", minutes)
	})
	engine.AddFunc("formatPlaytime", func(seconds int64) string {
		if seconds == 0 {
			return "0:00"
		}
		return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
	})

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
		AppName:               "Finsight",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	// Add middleware
	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	uiHandler := ui.NewHandler(statsService)

	stats.RegisterRoutes(app, statsService, identity)
	recording.RegisterRoutes(app, recordingService)
	ui.RegisterRoutes(app, uiHandler)
	metrics.RegisterRoutes(app)
	config.RegisterRoutes(app, cfg)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
