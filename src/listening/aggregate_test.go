package listening

import (
	"context"
	"errors"
	"testing"
	"time"
)

func session(artistID, artistName string, duration int64, completed bool) Session {
	return Session{
		ID:               artistID + "-" + artistName,
		UserID:           "user-1",
		ItemID:           "item-" + artistID,
		ItemName:         "Song by " + artistName,
		ArtistID:         artistID,
		ArtistName:       artistName,
		PlayedAt:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		PlaybackDuration: duration,
		TotalDuration:    duration,
		Completed:        completed,
	}
}

func TestTotals(t *testing.T) {
	sessions := []Session{
		session("a", "ArtistA", 120, true),
		session("a", "ArtistA", 90, true),
		session("b", "ArtistB", 200, true),
	}

	played, minutes := Totals(sessions)
	if played != 3 {
		t.Errorf("expected 3 songs played, got %d", played)
	}
	// 410 seconds floor-divides to 6 minutes
	if minutes != 6 {
		t.Errorf("expected 6 minutes listened, got %d", minutes)
	}
}

func TestTotals_IgnoresIncompleteSessions(t *testing.T) {
	sessions := []Session{
		session("a", "ArtistA", 120, true),
		session("a", "ArtistA", 3000, false),
	}

	played, minutes := Totals(sessions)
	if played != 1 {
		t.Errorf("expected 1 song played, got %d", played)
	}
	if minutes != 2 {
		t.Errorf("expected 2 minutes listened, got %d", minutes)
	}
}

func TestTopArtists_RanksByPlayCount(t *testing.T) {
	sessions := []Session{
		session("a", "ArtistA", 120, true),
		session("a", "ArtistA", 90, true),
		session("b", "ArtistB", 200, true),
	}

	top := TopArtists(sessions, 10)
	if len(top) != 2 {
		t.Fatalf("expected 2 artists, got %d", len(top))
	}
	if top[0].ArtistName != "ArtistA" || top[0].PlayCount != 2 || top[0].TotalPlaytime != 210 {
		t.Errorf("unexpected first artist: %+v", top[0])
	}
	if top[1].ArtistName != "ArtistB" || top[1].PlayCount != 1 || top[1].TotalPlaytime != 200 {
		t.Errorf("unexpected second artist: %+v", top[1])
	}
}

func TestTopArtists_TieBreaksOnPlaytimeThenID(t *testing.T) {
	sessions := []Session{
		session("b", "ArtistB", 100, true),
		session("a", "ArtistA", 300, true),
		session("c", "ArtistC", 100, true),
	}

	top := TopArtists(sessions, 10)
	if len(top) != 3 {
		t.Fatalf("expected 3 artists, got %d", len(top))
	}
	if top[0].ArtistID != "a" {
		t.Errorf("expected playtime tiebreak to rank artist a first, got %s", top[0].ArtistID)
	}
	if top[1].ArtistID != "b" || top[2].ArtistID != "c" {
		t.Errorf("expected id tiebreak order b, c; got %s, %s", top[1].ArtistID, top[2].ArtistID)
	}
}

func TestTopArtists_RespectsLimit(t *testing.T) {
	var sessions []Session
	for _, id := range []string{"a", "b", "c", "d"} {
		sessions = append(sessions, session(id, "Artist-"+id, 100, true))
	}

	top := TopArtists(sessions, 2)
	if len(top) != 2 {
		t.Errorf("expected limit of 2, got %d entries", len(top))
	}
}

func TestTopArtists_SkipsIncompleteSessions(t *testing.T) {
	sessions := []Session{
		session("a", "ArtistA", 120, false),
	}

	if top := TopArtists(sessions, 10); len(top) != 0 {
		t.Errorf("expected no artists from incomplete sessions, got %d", len(top))
	}
}

func TestTopSongs_GroupsByFullKey(t *testing.T) {
	a := session("a", "ArtistA", 100, true)
	b := session("a", "ArtistA", 100, true)
	// Same item played under a retagged album counts as a distinct song.
	c := session("a", "ArtistA", 100, true)
	c.AlbumName = "Deluxe Edition"

	top := TopSongs([]Session{a, b, c}, 10)
	if len(top) != 2 {
		t.Fatalf("expected 2 distinct songs, got %d", len(top))
	}
	if top[0].PlayCount != 2 {
		t.Errorf("expected first song to have 2 plays, got %d", top[0].PlayCount)
	}
}

// MockCatalog is a mock implementation of listening.Catalog.
type MockCatalog struct {
	items map[string]*Item
	err   error
}

func (m *MockCatalog) GetItem(ctx context.Context, itemID string) (*Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items[itemID], nil
}

func (m *MockCatalog) ListItems(ctx context.Context, kind ItemKind) ([]Item, error) {
	return nil, nil
}

func TestTopGenres(t *testing.T) {
	rock := session("a", "ArtistA", 100, true)
	rock2 := session("a", "ArtistA", 100, true)
	jazz := session("b", "ArtistB", 100, true)
	unknown := session("c", "ArtistC", 100, true)
	skipped := session("d", "ArtistD", 100, false)

	catalog := &MockCatalog{items: map[string]*Item{
		rock.ItemID: {ID: rock.ItemID, Genres: []string{"Rock", ""}},
		jazz.ItemID: {ID: jazz.ItemID, Genres: []string{"Jazz"}},
		// unknown.ItemID deliberately absent
		skipped.ItemID: {ID: skipped.ItemID, Genres: []string{"Metal"}},
	}}

	genres := TopGenres(context.Background(), []Session{rock, rock2, jazz, unknown, skipped}, catalog, 5)
	if len(genres) != 2 {
		t.Fatalf("expected 2 genres, got %v", genres)
	}
	if genres[0] != "Rock" || genres[1] != "Jazz" {
		t.Errorf("expected [Rock Jazz], got %v", genres)
	}
}

func TestTopGenres_LookupFailureIsNotFatal(t *testing.T) {
	s := session("a", "ArtistA", 100, true)
	catalog := &MockCatalog{err: errors.New("catalog offline")}

	genres := TopGenres(context.Background(), []Session{s}, catalog, 5)
	if len(genres) != 0 {
		t.Errorf("expected no genres when catalog fails, got %v", genres)
	}
}

func TestYearBounds(t *testing.T) {
	start, end := YearBounds(2025)
	if !start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start bound: %v", start)
	}
	if !end.Equal(time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("unexpected end bound: %v", end)
	}
}
