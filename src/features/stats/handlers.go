package stats

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"finsight/src/listening"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler is the handler for the stats feature.
type Handler struct {
	service  *Service
	identity listening.Identity
}

// NewHandler creates a new handler for the stats feature.
func NewHandler(service *Service, identity listening.Identity) *Handler {
	return &Handler{service: service, identity: identity}
}

// parseUserID validates the user id path parameter. Host user ids are UUIDs;
// anything else is a malformed request, not a missing user.
func parseUserID(c *fiber.Ctx) (string, error) {
	raw := c.Params("userId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func parseYear(raw string) (int, error) {
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if year < 1970 || year > 9999 {
		return 0, errors.New("year out of range")
	}
	return year, nil
}

// GetUserYearStats returns a user's listening stats for a specific year.
// A valid user id always gets a fully populated aggregate, zeroed when the
// user has no data.
func (h *Handler) GetUserYearStats(c *fiber.Ctx) error {
	slog.Debug("GetUserYearStats handler called", "userId", c.Params("userId"), "year", c.Params("year"))

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid user ID")
	}
	year, err := parseYear(c.Params("year"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid year")
	}

	result, err := h.service.GetUserYearStats(c.Context(), userID, year)
	if err != nil {
		slog.Error("Error computing year stats", "userId", userID, "year", year, "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error computing year stats")
	}
	return c.JSON(result)
}

// GetUserArtists returns the ranked artists a user has listened to,
// optionally filtered to a year.
func (h *Handler) GetUserArtists(c *fiber.Ctx) error {
	slog.Debug("GetUserArtists handler called", "userId", c.Params("userId"))

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid user ID")
	}
	year, err := optionalYearQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid year")
	}

	artists, err := h.service.GetUserArtistsWithStats(c.Context(), userID, year)
	if err != nil {
		slog.Error("Error loading artist stats", "userId", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading artist stats")
	}
	return c.JSON(artists)
}

// GetUserSongs returns the ranked songs a user has listened to, optionally
// filtered to a year.
func (h *Handler) GetUserSongs(c *fiber.Ctx) error {
	slog.Debug("GetUserSongs handler called", "userId", c.Params("userId"))

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid user ID")
	}
	year, err := optionalYearQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid year")
	}

	songs, err := h.service.GetUserSongsWithStats(c.Context(), userID, year)
	if err != nil {
		slog.Error("Error loading song stats", "userId", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading song stats")
	}
	return c.JSON(songs)
}

// GetAllSongs returns the whole-library song listing from the catalog.
func (h *Handler) GetAllSongs(c *fiber.Ctx) error {
	slog.Debug("GetAllSongs handler called")

	songs, err := h.service.GetAllSongs(c.Context())
	if err != nil {
		slog.Error("Error loading songs", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading songs")
	}
	return c.JSON(songs)
}

// GetAllArtists returns the whole-library artist listing from the catalog.
func (h *Handler) GetAllArtists(c *fiber.Ctx) error {
	slog.Debug("GetAllArtists handler called")

	artists, err := h.service.GetAllArtists(c.Context())
	if err != nil {
		slog.Error("Error loading artists", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading artists")
	}
	return c.JSON(artists)
}

// GetMyStats resolves the caller from the Authorization header and returns
// their stats for the current calendar year.
func (h *Handler) GetMyStats(c *fiber.Ctx) error {
	slog.Debug("GetMyStats handler called")

	token := bearerToken(c)
	userID, err := h.identity.ResolveToken(c.Context(), token)
	if err != nil {
		if errors.Is(err, listening.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}
		slog.Error("Error resolving caller identity", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error resolving identity")
	}

	result, err := h.service.GetUserYearStats(c.Context(), userID, time.Now().UTC().Year())
	if err != nil {
		slog.Error("Error computing current year stats", "userId", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error computing year stats")
	}
	return c.JSON(result)
}

// optionalYearQuery parses the optional ?year= filter; nil means all time.
func optionalYearQuery(c *fiber.Ctx) (*int, error) {
	raw := c.Query("year")
	if raw == "" {
		return nil, nil
	}
	year, err := parseYear(raw)
	if err != nil {
		return nil, err
	}
	return &year, nil
}

// bearerToken extracts the access token from the Authorization header,
// accepting both "Bearer <token>" and the host's MediaBrowser scheme.
func bearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	if token := c.Get("X-Emby-Token"); token != "" {
		return token
	}
	return auth
}
