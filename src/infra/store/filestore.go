package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"finsight/src/features/metrics"
	"finsight/src/listening"
)

// FileStore is the file-partitioned implementation of the listening.Store
// interface. One JSON file holds all sessions for one (user, year, month);
// the partition path is derived from the session's own PlayedAt timestamp so
// re-imports land in the same place.
type FileStore struct {
	dataPath string

	mu    sync.Mutex
	locks map[string]*sync.Mutex // one lock per partition path
}

// NewFileStore creates the store rooted at dataPath, creating the directory
// if needed.
func NewFileStore(dataPath string) (*FileStore, error) {
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataPath, err)
	}
	return &FileStore{
		dataPath: dataPath,
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

// partitionPath derives the partition file for a session from its user id
// and PlayedAt timestamp: <dataPath>/<userId>/<year>/<MM>.json.
func (f *FileStore) partitionPath(userID string, playedAt time.Time) string {
	return filepath.Join(
		f.dataPath,
		userID,
		fmt.Sprintf("%d", playedAt.Year()),
		fmt.Sprintf("%02d.json", int(playedAt.Month())),
	)
}

// partitionLock returns the mutex serializing read-modify-write cycles on a
// single partition file. Entries are never pruned; the map is bounded by the
// number of (user, month) partitions written during the process lifetime,
// which stays small at one partition per user per month.
func (f *FileStore) partitionLock(path string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	lock, ok := f.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[path] = lock
	}
	return lock
}

// Append persists one session into its partition. The existing partition
// content is read, the record added, and the file rewritten through a temp
// file and rename so readers never observe a truncated partition. A partition
// that exists but cannot be parsed fails the append rather than clobbering
// whatever is on disk.
func (f *FileStore) Append(ctx context.Context, session *listening.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: invalid session: %v", listening.ErrStorage, err)
	}

	path := f.partitionPath(session.UserID, session.PlayedAt)
	lock := f.partitionLock(path)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create partition directory: %v", listening.ErrStorage, err)
	}

	var sessions []listening.Session
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &sessions); err != nil {
			return fmt.Errorf("%w: partition %s is corrupt, refusing to overwrite: %v", listening.ErrStorage, path, err)
		}
	case os.IsNotExist(err):
		// First write to this partition.
	default:
		return fmt.Errorf("%w: failed to read partition %s: %v", listening.ErrStorage, path, err)
	}

	sessions = append(sessions, *session)

	updated, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to serialize partition %s: %v", listening.ErrStorage, path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file for %s: %v", listening.ErrStorage, path, err)
	}
	if _, err := tmp.Write(updated); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: failed to write partition %s: %v", listening.ErrStorage, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: failed to close temp file for %s: %v", listening.ErrStorage, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: failed to replace partition %s: %v", listening.ErrStorage, path, err)
	}

	slog.Debug("Session appended", "userId", session.UserID, "partition", path, "sessions", len(sessions))
	return nil
}

// ListPartitions returns the partition files under the user's namespace in
// arbitrary order. An unknown user yields an empty slice.
func (f *FileStore) ListPartitions(ctx context.Context, userID string) ([]string, error) {
	userPath := filepath.Join(f.dataPath, userID)
	if _, err := os.Stat(userPath); os.IsNotExist(err) {
		return []string{}, nil
	}

	var partitions []string
	err := filepath.WalkDir(userPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			partitions = append(partitions, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list partitions for user %s: %v", listening.ErrStorage, userID, err)
	}
	return partitions, nil
}

// GetUserSessions merges every partition under the user's namespace,
// applying an inclusive PlayedAt filter when bounds are given. Partitions
// that cannot be read or parsed are skipped with a warning; partial results
// beat total failure.
func (f *FileStore) GetUserSessions(ctx context.Context, userID string, from, to *time.Time) ([]listening.Session, error) {
	partitions, err := f.ListPartitions(ctx, userID)
	if err != nil {
		return nil, err
	}

	sessions := []listening.Session{}
	for _, partition := range partitions {
		data, err := os.ReadFile(partition)
		if err != nil {
			slog.Warn("Skipping unreadable partition", "partition", partition, "error", err)
			metrics.PartitionsSkipped.Inc()
			continue
		}
		var fileSessions []listening.Session
		if err := json.Unmarshal(data, &fileSessions); err != nil {
			slog.Warn("Skipping corrupt partition", "partition", partition, "error", err)
			metrics.PartitionsSkipped.Inc()
			continue
		}
		sessions = append(sessions, fileSessions...)
	}

	if from == nil && to == nil {
		return sessions, nil
	}

	filtered := sessions[:0]
	for _, s := range sessions {
		if from != nil && s.PlayedAt.Before(*from) {
			continue
		}
		if to != nil && s.PlayedAt.After(*to) {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered, nil
}

// TopArtists ranks completed sessions within the calendar year.
func (f *FileStore) TopArtists(ctx context.Context, userID string, year, limit int) ([]listening.ArtistStats, error) {
	sessions, err := f.yearSessions(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return listening.TopArtists(sessions, limit), nil
}

// TopSongs ranks completed sessions within the calendar year.
func (f *FileStore) TopSongs(ctx context.Context, userID string, year, limit int) ([]listening.SongStats, error) {
	sessions, err := f.yearSessions(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return listening.TopSongs(sessions, limit), nil
}

// ArtistsWithStats ranks across all time when year is nil.
func (f *FileStore) ArtistsWithStats(ctx context.Context, userID string, year *int, limit int) ([]listening.ArtistStats, error) {
	sessions, err := f.optionalYearSessions(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return listening.TopArtists(sessions, limit), nil
}

// SongsWithStats ranks across all time when year is nil.
func (f *FileStore) SongsWithStats(ctx context.Context, userID string, year *int, limit int) ([]listening.SongStats, error) {
	sessions, err := f.optionalYearSessions(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return listening.TopSongs(sessions, limit), nil
}

func (f *FileStore) yearSessions(ctx context.Context, userID string, year int) ([]listening.Session, error) {
	start, end := listening.YearBounds(year)
	return f.GetUserSessions(ctx, userID, &start, &end)
}

func (f *FileStore) optionalYearSessions(ctx context.Context, userID string, year *int) ([]listening.Session, error) {
	if year == nil {
		return f.GetUserSessions(ctx, userID, nil, nil)
	}
	return f.yearSessions(ctx, userID, *year)
}
