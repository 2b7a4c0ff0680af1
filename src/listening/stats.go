package listening

// ArtistStats is the per-artist aggregate for a query window. It is computed
// fresh per request and never persisted.
type ArtistStats struct {
	ArtistID      string `json:"ArtistId"`
	ArtistName    string `json:"ArtistName"`
	PlayCount     int    `json:"PlayCount"`
	TotalPlaytime int64  `json:"TotalPlaytime"`
}

// SongStats is the per-song aggregate, keyed by the full denormalized
// (item, artist, album) tuple so renamed items aggregate separately.
type SongStats struct {
	ItemID        string `json:"ItemId"`
	ItemName      string `json:"ItemName"`
	ArtistID      string `json:"ArtistId"`
	ArtistName    string `json:"ArtistName"`
	AlbumID       string `json:"AlbumId"`
	AlbumName     string `json:"AlbumName"`
	PlayCount     int    `json:"PlayCount"`
	TotalPlaytime int64  `json:"TotalPlaytime"`
}

// YearStats is the top-level per-user yearly aggregate.
type YearStats struct {
	UserID               string        `json:"UserId"`
	Year                 int           `json:"Year"`
	TotalSongsPlayed     int           `json:"TotalSongsPlayed"`
	TotalMinutesListened int64         `json:"TotalMinutesListened"`
	TopArtists           []ArtistStats `json:"TopArtists"`
	TopSongs             []SongStats   `json:"TopSongs"`
	TopGenres            []string      `json:"TopGenres"`
}

// NewYearStats returns a fully populated zeroed aggregate. A user with no
// recorded sessions gets this back, never a nil result.
func NewYearStats(userID string, year int) *YearStats {
	return &YearStats{
		UserID:     userID,
		Year:       year,
		TopArtists: []ArtistStats{},
		TopSongs:   []SongStats{},
		TopGenres:  []string{},
	}
}
