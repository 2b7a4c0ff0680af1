package listening

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for the plugin's failure taxonomy. Adapters wrap these so
// callers can classify failures with errors.Is.
var (
	// ErrStorage marks an unreadable, unwritable or corrupt partition.
	ErrStorage = errors.New("storage error")
	// ErrNotFound marks an identity or item that cannot be resolved.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized marks a caller whose identity cannot be resolved.
	ErrUnauthorized = errors.New("unauthorized")
)

// Store is the repository interface for the append-only listening-session log.
// Partitions are keyed by (user, year, month) and derived from each session's
// own PlayedAt timestamp, never the wall clock of the write.
type Store interface {
	// Append persists one session. It is safe for concurrent use; appends to
	// the same partition are serialized internally.
	Append(ctx context.Context, session *Session) error

	// ListPartitions returns the partition files belonging to a user, in
	// arbitrary order.
	ListPartitions(ctx context.Context, userID string) ([]string, error)

	// GetUserSessions merges every partition under the user's namespace and
	// applies an inclusive PlayedAt filter when bounds are given. Unknown
	// users yield an empty slice, not an error. Corrupt partitions are
	// skipped. No ordering is guaranteed across partitions.
	GetUserSessions(ctx context.Context, userID string, from, to *time.Time) ([]Session, error)

	// TopArtists and TopSongs rank completed sessions within the calendar
	// year window.
	TopArtists(ctx context.Context, userID string, year, limit int) ([]ArtistStats, error)
	TopSongs(ctx context.Context, userID string, year, limit int) ([]SongStats, error)

	// ArtistsWithStats and SongsWithStats rank across all time when year is
	// nil, or within the given calendar year otherwise.
	ArtistsWithStats(ctx context.Context, userID string, year *int, limit int) ([]ArtistStats, error)
	SongsWithStats(ctx context.Context, userID string, year *int, limit int) ([]SongStats, error)
}

// ItemKind selects a catalog listing.
type ItemKind string

const (
	ItemKindSong   ItemKind = "song"
	ItemKindArtist ItemKind = "artist"
)

// Item is the canonical catalog metadata for a media item.
type Item struct {
	ID         string   `json:"Id"`
	Name       string   `json:"Name"`
	ArtistID   string   `json:"ArtistId,omitempty"`
	ArtistName string   `json:"ArtistName,omitempty"`
	AlbumID    string   `json:"AlbumId,omitempty"`
	AlbumName  string   `json:"AlbumName,omitempty"`
	Genres     []string `json:"Genres,omitempty"`
}

// Catalog is the external media-library collaborator supplying canonical
// item, artist and genre metadata.
type Catalog interface {
	// GetItem resolves an item by id. An unknown id yields (nil, nil).
	GetItem(ctx context.Context, itemID string) (*Item, error)
	// ListItems returns the whole-library listing for a kind.
	ListItems(ctx context.Context, kind ItemKind) ([]Item, error)
}

// Identity resolves the calling user for identity-scoped endpoints.
type Identity interface {
	// ResolveToken maps an auth token to a user id, or ErrUnauthorized.
	ResolveToken(ctx context.Context, token string) (string, error)
}
