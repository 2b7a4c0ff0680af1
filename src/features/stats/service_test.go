package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"finsight/src/listening"
)

// MockStore is a mock implementation of listening.Store
type MockStore struct {
	listening.Store // Embed interface to avoid implementing all methods; unused ones panic if called
	sessions        []listening.Session
	err             error
	lastFrom        *time.Time
	lastTo          *time.Time
}

func (m *MockStore) GetUserSessions(ctx context.Context, userID string, from, to *time.Time) ([]listening.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastFrom, m.lastTo = from, to
	filtered := []listening.Session{}
	for _, s := range m.sessions {
		if s.UserID != userID {
			continue
		}
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

func (m *MockStore) TopArtists(ctx context.Context, userID string, year, limit int) ([]listening.ArtistStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	start, end := listening.YearBounds(year)
	sessions, _ := m.GetUserSessions(ctx, userID, &start, &end)
	return listening.TopArtists(sessions, limit), nil
}

func (m *MockStore) TopSongs(ctx context.Context, userID string, year, limit int) ([]listening.SongStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	start, end := listening.YearBounds(year)
	sessions, _ := m.GetUserSessions(ctx, userID, &start, &end)
	return listening.TopSongs(sessions, limit), nil
}

func (m *MockStore) ArtistsWithStats(ctx context.Context, userID string, year *int, limit int) ([]listening.ArtistStats, error) {
	if year != nil {
		return m.TopArtists(ctx, userID, *year, limit)
	}
	sessions, _ := m.GetUserSessions(ctx, userID, nil, nil)
	return listening.TopArtists(sessions, limit), nil
}

// MockCatalog is a mock implementation of listening.Catalog
type MockCatalog struct {
	items map[string]*listening.Item
}

func (m *MockCatalog) GetItem(ctx context.Context, itemID string) (*listening.Item, error) {
	return m.items[itemID], nil
}

func (m *MockCatalog) ListItems(ctx context.Context, kind listening.ItemKind) ([]listening.Item, error) {
	items := []listening.Item{}
	for _, item := range m.items {
		items = append(items, *item)
	}
	return items, nil
}

func playback(userID, itemID, artistID, artistName string, playedAt time.Time, duration int64, completed bool) listening.Session {
	return listening.Session{
		ID:               itemID + playedAt.String(),
		UserID:           userID,
		ItemID:           itemID,
		ItemName:         "Song " + itemID,
		ArtistID:         artistID,
		ArtistName:       artistName,
		PlayedAt:         playedAt,
		PlaybackDuration: duration,
		TotalDuration:    duration,
		Completed:        completed,
	}
}

func TestGetUserYearStats(t *testing.T) {
	may := time.Date(2025, 5, 10, 14, 0, 0, 0, time.UTC)
	store := &MockStore{sessions: []listening.Session{
		playback("user-1", "i1", "a", "ArtistA", may, 120, true),
		playback("user-1", "i2", "a", "ArtistA", may.Add(time.Hour), 90, true),
		playback("user-1", "i3", "b", "ArtistB", may.Add(2*time.Hour), 200, true),
	}}
	catalog := &MockCatalog{items: map[string]*listening.Item{
		"i1": {ID: "i1", Genres: []string{"Rock"}},
		"i2": {ID: "i2", Genres: []string{"Rock"}},
		"i3": {ID: "i3", Genres: []string{"Jazz"}},
	}}
	service := NewService(store, catalog)

	result, err := service.GetUserYearStats(context.Background(), "user-1", 2025)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.TotalSongsPlayed != 3 {
		t.Errorf("expected 3 songs played, got %d", result.TotalSongsPlayed)
	}
	if result.TotalMinutesListened != 6 {
		t.Errorf("expected 6 minutes listened, got %d", result.TotalMinutesListened)
	}
	if len(result.TopArtists) != 2 ||
		result.TopArtists[0].ArtistName != "ArtistA" || result.TopArtists[0].PlayCount != 2 || result.TopArtists[0].TotalPlaytime != 210 ||
		result.TopArtists[1].ArtistName != "ArtistB" || result.TopArtists[1].PlayCount != 1 || result.TopArtists[1].TotalPlaytime != 200 {
		t.Errorf("unexpected top artists: %+v", result.TopArtists)
	}
	if len(result.TopSongs) != 3 {
		t.Errorf("expected 3 top songs, got %d", len(result.TopSongs))
	}
	if len(result.TopGenres) != 2 || result.TopGenres[0] != "Rock" {
		t.Errorf("unexpected top genres: %v", result.TopGenres)
	}
}

func TestGetUserYearStats_QueriesCalendarYearBounds(t *testing.T) {
	store := &MockStore{}
	service := NewService(store, &MockCatalog{})

	if _, err := service.GetUserYearStats(context.Background(), "user-1", 2025); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	wantStart, wantEnd := listening.YearBounds(2025)
	if store.lastFrom == nil || !store.lastFrom.Equal(wantStart) {
		t.Errorf("expected start bound %v, got %v", wantStart, store.lastFrom)
	}
	if store.lastTo == nil || !store.lastTo.Equal(wantEnd) {
		t.Errorf("expected end bound %v, got %v", wantEnd, store.lastTo)
	}
}

func TestGetUserYearStats_ZeroSessionsYieldsZeroedAggregate(t *testing.T) {
	service := NewService(&MockStore{}, &MockCatalog{})

	result, err := service.GetUserYearStats(context.Background(), "user-1", 2025)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result == nil {
		t.Fatal("expected an aggregate, got nil")
	}
	if result.UserID != "user-1" || result.Year != 2025 {
		t.Errorf("aggregate identity not populated: %+v", result)
	}
	if result.TotalSongsPlayed != 0 || result.TotalMinutesListened != 0 {
		t.Errorf("expected zero totals, got %+v", result)
	}
	if result.TopArtists == nil || result.TopSongs == nil || result.TopGenres == nil {
		t.Error("expected empty lists, got nils")
	}
	if len(result.TopArtists) != 0 || len(result.TopSongs) != 0 || len(result.TopGenres) != 0 {
		t.Errorf("expected empty lists, got %+v", result)
	}
}

func TestGetUserYearStats_IgnoresIncompleteSessions(t *testing.T) {
	may := time.Date(2025, 5, 10, 14, 0, 0, 0, time.UTC)
	store := &MockStore{sessions: []listening.Session{
		playback("user-1", "i1", "a", "ArtistA", may, 120, true),
		playback("user-1", "i2", "a", "ArtistA", may, 6000, false),
	}}
	service := NewService(store, &MockCatalog{})

	result, err := service.GetUserYearStats(context.Background(), "user-1", 2025)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.TotalSongsPlayed != 1 {
		t.Errorf("expected incomplete session to be ignored, got %d plays", result.TotalSongsPlayed)
	}
	if result.TotalMinutesListened != 2 {
		t.Errorf("expected 2 minutes, got %d", result.TotalMinutesListened)
	}
}

func TestGetUserYearStats_PropagatesStorageErrors(t *testing.T) {
	store := &MockStore{err: listening.ErrStorage}
	service := NewService(store, &MockCatalog{})

	_, err := service.GetUserYearStats(context.Background(), "user-1", 2025)
	if !errors.Is(err, listening.ErrStorage) {
		t.Errorf("expected storage error to propagate, got %v", err)
	}
}

func TestGetUserArtistsWithStats_AllTime(t *testing.T) {
	store := &MockStore{sessions: []listening.Session{
		playback("user-1", "i1", "a", "ArtistA", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 100, true),
		playback("user-1", "i1", "a", "ArtistA", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), 100, true),
	}}
	service := NewService(store, &MockCatalog{})

	artists, err := service.GetUserArtistsWithStats(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(artists) != 1 || artists[0].PlayCount != 2 {
		t.Errorf("expected 2 all-time plays, got %+v", artists)
	}
}
