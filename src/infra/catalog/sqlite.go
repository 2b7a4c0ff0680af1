package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"finsight/src/listening"

	_ "github.com/mattn/go-sqlite3"
)

// Ensure SqliteCatalog implements listening.Catalog
var _ listening.Catalog = (*SqliteCatalog)(nil)

// SqliteCatalog reads canonical item metadata from the host's library
// database. The connection is opened read-only: this service never owns or
// mutates the catalog.
type SqliteCatalog struct {
	db *sql.DB
}

// NewSqliteCatalog opens a read-only connection to the host library database.
func NewSqliteCatalog(path string) (*SqliteCatalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&_query_only=true", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database %s: %w", path, err)
	}
	return &SqliteCatalog{db: db}, nil
}

// newMutableCatalog opens a writable connection. Only tests use this to seed
// fixture data.
func newMutableCatalog(path string) (*SqliteCatalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &SqliteCatalog{db: db}, nil
}

// Close closes the underlying connection.
func (c *SqliteCatalog) Close() error {
	return c.db.Close()
}

// GetItem resolves a track by id, including its main artist, album and genre
// tags. An unknown id yields (nil, nil).
func (c *SqliteCatalog) GetItem(ctx context.Context, itemID string) (*listening.Item, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT t.id, t.title, t.genre,
			COALESCE(ar.id, ''), COALESCE(ar.name, ''),
			COALESCE(al.id, ''), COALESCE(al.title, '')
		FROM tracks t
		LEFT JOIN track_artists tar ON t.id = tar.track_id AND tar.role = 'main'
		LEFT JOIN artists ar ON tar.artist_id = ar.id
		LEFT JOIN track_albums tal ON t.id = tal.track_id
		LEFT JOIN albums al ON tal.album_id = al.id
		WHERE t.id = ?
	`, itemID)

	var item listening.Item
	var genre sql.NullString
	err := row.Scan(&item.ID, &item.Name, &genre, &item.ArtistID, &item.ArtistName, &item.AlbumID, &item.AlbumName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve item %s: %w", itemID, err)
	}
	item.Genres = splitGenres(genre.String)
	return &item, nil
}

// ListItems returns the whole-library listing for songs or artists. Used by
// the catalog passthrough endpoints, never by per-user aggregation.
func (c *SqliteCatalog) ListItems(ctx context.Context, kind listening.ItemKind) ([]listening.Item, error) {
	switch kind {
	case listening.ItemKindArtist:
		return c.listArtists(ctx)
	case listening.ItemKindSong:
		return c.listSongs(ctx)
	default:
		return nil, fmt.Errorf("unsupported item kind %q", kind)
	}
}

func (c *SqliteCatalog) listArtists(ctx context.Context) ([]listening.Item, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, name FROM artists ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", err)
	}
	defer rows.Close()

	items := []listening.Item{}
	for rows.Next() {
		var item listening.Item
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (c *SqliteCatalog) listSongs(ctx context.Context) ([]listening.Item, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.genre,
			COALESCE(ar.id, ''), COALESCE(ar.name, ''),
			COALESCE(al.id, ''), COALESCE(al.title, '')
		FROM tracks t
		LEFT JOIN track_artists tar ON t.id = tar.track_id AND tar.role = 'main'
		LEFT JOIN artists ar ON tar.artist_id = ar.id
		LEFT JOIN track_albums tal ON t.id = tal.track_id
		LEFT JOIN albums al ON tal.album_id = al.id
		ORDER BY t.title
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	defer rows.Close()

	items := []listening.Item{}
	for rows.Next() {
		var item listening.Item
		var genre sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &genre, &item.ArtistID, &item.ArtistName, &item.AlbumID, &item.AlbumName); err != nil {
			return nil, err
		}
		item.Genres = splitGenres(genre.String)
		items = append(items, item)
	}
	return items, rows.Err()
}

// splitGenres turns a library genre column into a tag set. The hosts we read
// from store either a single genre or several joined with ';' or '/'.
func splitGenres(genre string) []string {
	if strings.TrimSpace(genre) == "" {
		return nil
	}
	fields := strings.FieldsFunc(genre, func(r rune) bool {
		return r == ';' || r == '/'
	})
	genres := make([]string, 0, len(fields))
	for _, g := range fields {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}
