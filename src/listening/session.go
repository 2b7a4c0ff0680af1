package listening

import (
	"fmt"
	"strings"
	"time"
)

// Session represents one recorded playback of a media item by a user.
// Sessions are append-only: once written to a partition they are never
// mutated or deleted.
type Session struct {
	ID                 string    `json:"Id"`
	UserID             string    `json:"UserId"`
	ItemID             string    `json:"ItemId"`
	ItemName           string    `json:"ItemName"`
	ArtistID           string    `json:"ArtistId"`
	ArtistName         string    `json:"ArtistName"`
	AlbumID            string    `json:"AlbumId"`
	AlbumName          string    `json:"AlbumName"`
	PlayedAt           time.Time `json:"PlayedAt"`
	PlaybackDuration   int64     `json:"PlaybackDuration"`
	TotalDuration      int64     `json:"TotalDuration"`
	PlaybackPercentage float64   `json:"PlaybackPercentage"`
	Completed          bool      `json:"Completed"`
}

// Validate validates the session fields.
func (s *Session) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("session id cannot be empty")
	}
	if strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("session user id cannot be empty")
	}
	if strings.TrimSpace(s.ItemID) == "" {
		return fmt.Errorf("session item id cannot be empty")
	}
	if s.PlayedAt.IsZero() {
		return fmt.Errorf("session played-at timestamp cannot be zero")
	}
	if s.PlaybackDuration < 0 {
		return fmt.Errorf("playback duration cannot be negative, got %d", s.PlaybackDuration)
	}
	if s.TotalDuration < 0 {
		return fmt.Errorf("total duration cannot be negative, got %d", s.TotalDuration)
	}
	return nil
}

// YearBounds returns the inclusive calendar-year window for year stats:
// Jan 1 00:00:00 through Dec 31 23:59:59 UTC.
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	return start, end
}
