package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/shared"
)

// LibraryTrackRepository implements models.Repository[*models.LibraryTrack]
// and the lookup queries behind the library searcher.
type LibraryTrackRepository struct {
	db *sql.DB
}

// NewLibraryTrackRepository creates a new LibraryTrackRepository with the given database connection
func NewLibraryTrackRepository(db *sql.DB) *LibraryTrackRepository {
	return &LibraryTrackRepository{db: db}
}

const libraryColumns = `id, sequence, title, artist, album, duration, isrc, created_at, updated_at, deleted_at`

// Create inserts a new library track into the database with generated ID and sequence
func (r *LibraryTrackRepository) Create(track *models.LibraryTrack) error {
	sequence, err := NextSequence(r.db, "library_tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	track.SetSequence(sequence)
	track.SetID(shared.GenerateID())

	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	t := track.Track()
	query := `
		INSERT INTO library_tracks (id, sequence, title, artist, album, duration, isrc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		track.ID(),
		track.Sequence(),
		t.Title,
		t.Artist,
		t.Album,
		t.Duration,
		nullable(t.ISRC),
		track.CreatedAt(),
		track.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert library track: %w", err)
	}

	return nil
}

// Get retrieves a library track by ID, excluding soft-deleted tracks
func (r *LibraryTrackRepository) Get(id string) (*models.LibraryTrack, error) {
	query := `SELECT ` + libraryColumns + ` FROM library_tracks WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing library track in the database
func (r *LibraryTrackRepository) Update(track *models.LibraryTrack) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	track.SetUpdatedAt(now)

	t := track.Track()
	query := `
		UPDATE library_tracks
		SET title = ?, artist = ?, album = ?, duration = ?, isrc = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, t.Title, t.Artist, t.Album, t.Duration, nullable(t.ISRC), now, track.ID())
	if err != nil {
		return fmt.Errorf("failed to update library track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("library track not found or already deleted: %s", track.ID())
	}

	return nil
}

// Delete soft-deletes a library track by ID
func (r *LibraryTrackRepository) Delete(id string) error {
	now := time.Now()

	result, err := r.db.Exec(`UPDATE library_tracks SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete library track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("library track not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all library tracks matching the given criteria, excluding soft-deleted tracks
func (r *LibraryTrackRepository) List(criteria map[string]any) ([]*models.LibraryTrack, error) {
	query := `SELECT ` + libraryColumns + ` FROM library_tracks WHERE deleted_at IS NULL`
	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	query += " ORDER BY sequence ASC"

	return r.queryTracks(query, args...)
}

// FindByISRC returns tracks whose ISRC matches exactly.
func (r *LibraryTrackRepository) FindByISRC(isrc string) ([]*models.LibraryTrack, error) {
	query := `SELECT ` + libraryColumns + ` FROM library_tracks
		WHERE isrc = ? AND deleted_at IS NULL ORDER BY sequence ASC`
	return r.queryTracks(query, isrc)
}

// SearchTitleArtist returns tracks whose title and artist both contain the
// given terms, case-insensitively. Limit caps the result count.
func (r *LibraryTrackRepository) SearchTitleArtist(title, artist string, limit int) ([]*models.LibraryTrack, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + libraryColumns + ` FROM library_tracks
		WHERE title LIKE ? ESCAPE '\' AND artist LIKE ? ESCAPE '\' AND deleted_at IS NULL
		ORDER BY sequence ASC LIMIT ?`

	return r.queryTracks(query, likePattern(title), likePattern(artist), limit)
}

// likePattern builds a contains-style LIKE pattern with wildcards escaped.
func likePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.TrimSpace(term))
	return "%" + escaped + "%"
}

func (r *LibraryTrackRepository) queryTracks(query string, args ...any) ([]*models.LibraryTrack, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query library tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.LibraryTrack
	for rows.Next() {
		track, err := r.scan(rows.Scan)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// scanOne scans a single row into a [models.LibraryTrack]
func (r *LibraryTrackRepository) scanOne(row *sql.Row) (*models.LibraryTrack, error) {
	track, err := r.scan(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("library track not found")
	}
	return track, err
}

// scan reads one row using the given scan function.
func (r *LibraryTrackRepository) scan(scan func(...any) error) (*models.LibraryTrack, error) {
	var (
		id        string
		sequence  int
		title     string
		artist    string
		album     string
		duration  int
		isrc      sql.NullString
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := scan(&id, &sequence, &title, &artist, &album, &duration, &isrc, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan library track: %w", err)
	}

	track := models.NewLibraryTrack(sequence, models.Track{
		Title:    title,
		Artist:   artist,
		Album:    album,
		Duration: duration,
		ISRC:     isrc.String,
	})
	track.SetID(id)
	track.SetCreatedAt(createdAt)
	track.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		track.SetDeletedAt(&deletedAt.Time)
	}

	return track, nil
}
