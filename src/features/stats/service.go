package stats

import (
	"context"
	"log/slog"
	"time"

	"finsight/src/features/metrics"
	"finsight/src/listening"
)

// Limits for the ranked views: year stats show a short list, the dedicated
// listing endpoints a longer one.
const (
	yearStatsLimit = 10
	topGenresLimit = 5
	listingLimit   = 50
)

// Service is the stats facade: it orchestrates the event store, the
// aggregator and the catalog into the externally consumed views.
type Service struct {
	store   listening.Store
	catalog listening.Catalog
}

// NewService creates a new stats service.
func NewService(store listening.Store, catalog listening.Catalog) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
	}
}

// GetUserYearStats builds the yearly aggregate for a user. A user with no
// recorded sessions gets a fully populated zeroed aggregate; errors are
// returned to the caller rather than swallowed, so systemic storage failure
// stays distinguishable from genuine zero activity.
func (s *Service) GetUserYearStats(ctx context.Context, userID string, year int) (*listening.YearStats, error) {
	slog.Debug("GetUserYearStats service called", "userId", userID, "year", year)
	defer observeQuery(time.Now())

	result := listening.NewYearStats(userID, year)

	start, end := listening.YearBounds(year)
	sessions, err := s.store.GetUserSessions(ctx, userID, &start, &end)
	if err != nil {
		slog.Error("GetUserYearStats failed to load sessions", "userId", userID, "year", year, "error", err)
		return nil, err
	}

	result.TotalSongsPlayed, result.TotalMinutesListened = listening.Totals(sessions)

	// The store ranks artists and songs itself so the facade doesn't
	// re-derive them from the raw list.
	if result.TopArtists, err = s.store.TopArtists(ctx, userID, year, yearStatsLimit); err != nil {
		slog.Error("GetUserYearStats failed to rank artists", "userId", userID, "year", year, "error", err)
		return nil, err
	}
	if result.TopSongs, err = s.store.TopSongs(ctx, userID, year, yearStatsLimit); err != nil {
		slog.Error("GetUserYearStats failed to rank songs", "userId", userID, "year", year, "error", err)
		return nil, err
	}

	result.TopGenres = listening.TopGenres(ctx, sessions, s.catalog, topGenresLimit)

	slog.Debug("GetUserYearStats completed", "userId", userID, "year", year,
		"songsPlayed", result.TotalSongsPlayed, "minutes", result.TotalMinutesListened)
	return result, nil
}

// GetUserArtistsWithStats returns the ranked artist listing, across all time
// when year is nil.
func (s *Service) GetUserArtistsWithStats(ctx context.Context, userID string, year *int) ([]listening.ArtistStats, error) {
	slog.Debug("GetUserArtistsWithStats service called", "userId", userID)
	defer observeQuery(time.Now())

	artists, err := s.store.ArtistsWithStats(ctx, userID, year, listingLimit)
	if err != nil {
		slog.Error("GetUserArtistsWithStats failed", "userId", userID, "error", err)
		return nil, err
	}
	return artists, nil
}

// GetUserSongsWithStats returns the ranked song listing, across all time
// when year is nil.
func (s *Service) GetUserSongsWithStats(ctx context.Context, userID string, year *int) ([]listening.SongStats, error) {
	slog.Debug("GetUserSongsWithStats service called", "userId", userID)
	defer observeQuery(time.Now())

	songs, err := s.store.SongsWithStats(ctx, userID, year, listingLimit)
	if err != nil {
		slog.Error("GetUserSongsWithStats failed", "userId", userID, "error", err)
		return nil, err
	}
	return songs, nil
}

// GetAllSongs is a thin passthrough to the catalog's whole-library song
// listing. It bypasses the aggregation core entirely.
func (s *Service) GetAllSongs(ctx context.Context) ([]listening.Item, error) {
	slog.Debug("GetAllSongs service called")
	items, err := s.catalog.ListItems(ctx, listening.ItemKindSong)
	if err != nil {
		slog.Error("GetAllSongs failed", "error", err)
		return nil, err
	}
	return items, nil
}

// GetAllArtists is the artist counterpart of GetAllSongs.
func (s *Service) GetAllArtists(ctx context.Context) ([]listening.Item, error) {
	slog.Debug("GetAllArtists service called")
	items, err := s.catalog.ListItems(ctx, listening.ItemKindArtist)
	if err != nil {
		slog.Error("GetAllArtists failed", "error", err)
		return nil, err
	}
	return items, nil
}

func observeQuery(start time.Time) {
	metrics.QueryDuration.Observe(time.Since(start).Seconds())
}
