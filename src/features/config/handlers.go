package config

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the config feature.
type Handler struct {
	configManager *Manager
}

// NewHandler creates a new handler for the config feature.
func NewHandler(configManager *Manager) *Handler {
	return &Handler{
		configManager: configManager,
	}
}

// GetConfig returns the current configuration in the requested format.
// Secrets are redacted.
func (h *Handler) GetConfig(c *fiber.Ctx) error {
	slog.Debug("GetConfig handler called", "format", c.Query("fmt", "yaml"))
	format := c.Query("fmt", "yaml")

	switch format {
	case "yaml":
		c.Set("Content-Type", "text/yaml")
		return c.SendString(h.configManager.GetYAML())
	case "json":
		c.Set("Content-Type", "application/json")
		return c.SendString(h.configManager.GetJSON())
	default:
		return c.Status(fiber.StatusBadRequest).SendString("Unsupported format: " + format)
	}
}

// UpdateSettings updates the runtime-tunable settings from form values.
// Paths, tokens and server settings are fixed at startup and preserved.
func (h *Handler) UpdateSettings(c *fiber.Ctx) error {
	slog.Info("Configuration update requested")

	currentConfig := h.configManager.Get()

	newConfig := &Config{
		// Storage and host wiring can't change while the adapters built on
		// them are running.
		DataPath: currentConfig.DataPath,
		Host:     currentConfig.Host,
		Catalog:  currentConfig.Catalog,
		Spool: Spool{
			Enabled: formBool(c, "spool.enabled", currentConfig.Spool.Enabled),
			Path:    currentConfig.Spool.Path,
		},
		Completion: Completion{
			Threshold: formFloat(c, "completion.threshold", currentConfig.Completion.Threshold),
		},
		Telegram: Telegram{
			Enabled: formBool(c, "telegram.enabled", currentConfig.Telegram.Enabled),
			Token:   currentConfig.Telegram.Token,
			Users:   currentConfig.Telegram.Users,
		},
		Logger: Logger{
			Level:  c.FormValue("logger.level", currentConfig.Logger.Level),
			Format: c.FormValue("logger.format", currentConfig.Logger.Format),
		},
		Server: currentConfig.Server,
	}

	if newConfig.Completion.Threshold < 0 || newConfig.Completion.Threshold > 1 {
		return c.Status(fiber.StatusBadRequest).SendString("completion.threshold must be between 0 and 1")
	}

	h.configManager.Update(newConfig)
	slog.Info("Configuration updated in memory")

	// Try to save to file (optional - may fail in containerized environments)
	if err := h.configManager.Save("config.yaml"); err != nil {
		slog.Warn("failed to save config to file (this is normal in containerized environments)", "error", err)
	} else {
		slog.Info("Configuration saved to file successfully")
	}

	return c.SendString("Configuration updated successfully")
}

// Helper functions for parsing form values
func formBool(c *fiber.Ctx, key string, fallback bool) bool {
	v := c.FormValue(key)
	if v == "" {
		return fallback
	}
	return v == "true"
}

func formFloat(c *fiber.Ctx, key string, fallback float64) float64 {
	v := c.FormValue(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
