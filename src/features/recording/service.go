package recording

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finsight/src/features/config"
	"finsight/src/features/metrics"
	"finsight/src/listening"

	"github.com/google/uuid"
)

// PlaybackEvent is the raw playback report coming from the media host (or a
// host-side hook dropping files into the spool directory). Field names match
// the host's PascalCase payloads.
type PlaybackEvent struct {
	UserID          string    `json:"UserId"`
	ItemID          string    `json:"ItemId"`
	ItemName        string    `json:"ItemName"`
	ArtistID        string    `json:"ArtistId"`
	ArtistName      string    `json:"ArtistName"`
	AlbumID         string    `json:"AlbumId"`
	AlbumName       string    `json:"AlbumName"`
	PlayedAt        time.Time `json:"PlayedAt"`
	PositionSeconds int64     `json:"PositionSeconds"`
	DurationSeconds int64     `json:"DurationSeconds"`
}

// Validate validates the event fields. User ids are host UUIDs; rejecting
// anything else here keeps every recorded session readable through the
// stats endpoints, which parse the id the same way.
func (e *PlaybackEvent) Validate() error {
	if _, err := uuid.Parse(e.UserID); err != nil {
		return fmt.Errorf("event user id must be a UUID: %v", err)
	}
	if strings.TrimSpace(e.ItemID) == "" {
		return fmt.Errorf("event item id cannot be empty")
	}
	if e.PositionSeconds < 0 {
		return fmt.Errorf("position cannot be negative, got %d", e.PositionSeconds)
	}
	if e.DurationSeconds < 0 {
		return fmt.Errorf("duration cannot be negative, got %d", e.DurationSeconds)
	}
	return nil
}

// Service turns playback events into immutable listening sessions. It owns
// the completion policy: the Completed flag is decided here, at write time,
// and never recomputed by readers.
type Service struct {
	store         listening.Store
	configManager *config.Manager
}

// NewService creates a new recording service.
func NewService(store listening.Store, cfgManager *config.Manager) *Service {
	return &Service{
		store:         store,
		configManager: cfgManager,
	}
}

// Record builds a session from the event and appends it to the log. Failed
// appends are counted and returned; the caller decides whether to surface or
// drop (there is no retry queue, data loss on storage failure is accepted).
func (s *Service) Record(ctx context.Context, event *PlaybackEvent) (*listening.Session, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	playedAt := event.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now().UTC()
	}

	session := &listening.Session{
		ID:               uuid.New().String(),
		UserID:           event.UserID,
		ItemID:           event.ItemID,
		ItemName:         event.ItemName,
		ArtistID:         event.ArtistID,
		ArtistName:       event.ArtistName,
		AlbumID:          event.AlbumID,
		AlbumName:        event.AlbumName,
		PlayedAt:         playedAt,
		PlaybackDuration: event.PositionSeconds,
		TotalDuration:    event.DurationSeconds,
	}

	if event.DurationSeconds > 0 {
		session.PlaybackPercentage = float64(event.PositionSeconds) / float64(event.DurationSeconds)
	}
	session.Completed = session.PlaybackPercentage >= s.configManager.Get().Completion.Threshold

	if err := s.store.Append(ctx, session); err != nil {
		slog.Error("Failed to append session, dropping event", "userId", event.UserID, "itemId", event.ItemID, "error", err)
		metrics.AppendsDropped.Inc()
		return nil, err
	}

	metrics.SessionsRecorded.Inc()
	slog.Debug("Session recorded", "userId", session.UserID, "itemId", session.ItemID,
		"completed", session.Completed, "percentage", session.PlaybackPercentage)
	return session, nil
}
