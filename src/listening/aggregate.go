package listening

import (
	"context"
	"log/slog"
	"sort"
)

// songKey is the grouping key for song aggregation. The denormalized names
// are part of the key: a retagged item counts as a new song.
type songKey struct {
	itemID, itemName, artistID, artistName, albumID, albumName string
}

// Totals returns the number of completed sessions and the floor-divided
// minutes listened across them.
func Totals(sessions []Session) (songsPlayed int, minutesListened int64) {
	var seconds int64
	for _, s := range sessions {
		if !s.Completed {
			continue
		}
		songsPlayed++
		seconds += s.PlaybackDuration
	}
	return songsPlayed, seconds / 60
}

// TopArtists groups completed sessions by artist and ranks them by play count
// descending. Ties break deterministically: total playtime descending, then
// artist id ascending.
func TopArtists(sessions []Session, limit int) []ArtistStats {
	groups := make(map[[2]string]*ArtistStats)
	for _, s := range sessions {
		if !s.Completed {
			continue
		}
		key := [2]string{s.ArtistID, s.ArtistName}
		stats, ok := groups[key]
		if !ok {
			stats = &ArtistStats{ArtistID: s.ArtistID, ArtistName: s.ArtistName}
			groups[key] = stats
		}
		stats.PlayCount++
		stats.TotalPlaytime += s.PlaybackDuration
	}

	ranked := make([]ArtistStats, 0, len(groups))
	for _, stats := range groups {
		ranked = append(ranked, *stats)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].PlayCount != ranked[j].PlayCount {
			return ranked[i].PlayCount > ranked[j].PlayCount
		}
		if ranked[i].TotalPlaytime != ranked[j].TotalPlaytime {
			return ranked[i].TotalPlaytime > ranked[j].TotalPlaytime
		}
		return ranked[i].ArtistID < ranked[j].ArtistID
	})
	return truncate(ranked, limit)
}

// TopSongs groups completed sessions by the full song tuple and ranks them
// the same way as TopArtists, tie-breaking on item id.
func TopSongs(sessions []Session, limit int) []SongStats {
	groups := make(map[songKey]*SongStats)
	for _, s := range sessions {
		if !s.Completed {
			continue
		}
		key := songKey{s.ItemID, s.ItemName, s.ArtistID, s.ArtistName, s.AlbumID, s.AlbumName}
		stats, ok := groups[key]
		if !ok {
			stats = &SongStats{
				ItemID:     s.ItemID,
				ItemName:   s.ItemName,
				ArtistID:   s.ArtistID,
				ArtistName: s.ArtistName,
				AlbumID:    s.AlbumID,
				AlbumName:  s.AlbumName,
			}
			groups[key] = stats
		}
		stats.PlayCount++
		stats.TotalPlaytime += s.PlaybackDuration
	}

	ranked := make([]SongStats, 0, len(groups))
	for _, stats := range groups {
		ranked = append(ranked, *stats)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].PlayCount != ranked[j].PlayCount {
			return ranked[i].PlayCount > ranked[j].PlayCount
		}
		if ranked[i].TotalPlaytime != ranked[j].TotalPlaytime {
			return ranked[i].TotalPlaytime > ranked[j].TotalPlaytime
		}
		return ranked[i].ItemID < ranked[j].ItemID
	})
	return truncate(ranked, limit)
}

// TopGenres tallies genre tags across the catalog items behind each completed
// session. A session whose item cannot be resolved, or whose item carries no
// genre tags, contributes nothing. Lookup failures skip that session instead
// of failing the aggregation.
func TopGenres(ctx context.Context, sessions []Session, catalog Catalog, limit int) []string {
	counts := make(map[string]int)
	resolved := make(map[string]*Item)
	for _, s := range sessions {
		if !s.Completed {
			continue
		}
		item, seen := resolved[s.ItemID]
		if !seen {
			var err error
			item, err = catalog.GetItem(ctx, s.ItemID)
			if err != nil {
				slog.Warn("Genre lookup failed, skipping session", "itemId", s.ItemID, "error", err)
				item = nil
			}
			resolved[s.ItemID] = item
		}
		if item == nil {
			continue
		}
		for _, genre := range item.Genres {
			if genre != "" {
				counts[genre]++
			}
		}
	}

	genres := make([]string, 0, len(counts))
	for genre := range counts {
		genres = append(genres, genre)
	}
	sort.Slice(genres, func(i, j int) bool {
		if counts[genres[i]] != counts[genres[j]] {
			return counts[genres[i]] > counts[genres[j]]
		}
		return genres[i] < genres[j]
	})
	return truncate(genres, limit)
}

func truncate[T any](ranked []T, limit int) []T {
	if limit >= 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}
