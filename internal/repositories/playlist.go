package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/shared"
)

// PlaylistRepository implements models.Repository[*models.PersistedPlaylist]
// and owns the playlist_songs junction table.
//
// Song positions are append-only: new rows always start at the current row
// count and existing rows are never renumbered.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist into the database with generated ID and sequence.
// A live playlist with the same name for the same user is a conflict.
func (r *PlaylistRepository) Create(playlist *models.PersistedPlaylist) error {
	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	playlist.SetSequence(sequence)
	playlist.SetID(shared.GenerateID())

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlists (id, sequence, user_id, name, description, song_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		playlist.ID(),
		playlist.Sequence(),
		playlist.UserID(),
		playlist.Name(),
		playlist.Description(),
		playlist.SongCount(),
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("%w: %s", shared.ErrDuplicatePlaylist, playlist.Name())
		}
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.PersistedPlaylist, error) {
	query := `
		SELECT id, sequence, user_id, name, description, song_count, created_at, updated_at, deleted_at
		FROM playlists
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetForUser retrieves a playlist by ID scoped to its owning user.
func (r *PlaylistRepository) GetForUser(id, userID string) (*models.PersistedPlaylist, error) {
	query := `
		SELECT id, sequence, user_id, name, description, song_count, created_at, updated_at, deleted_at
		FROM playlists
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(query, id, userID))
}

// GetByName retrieves a user's playlist by name.
func (r *PlaylistRepository) GetByName(userID, name string) (*models.PersistedPlaylist, error) {
	query := `
		SELECT id, sequence, user_id, name, description, song_count, created_at, updated_at, deleted_at
		FROM playlists
		WHERE user_id = ? AND name = ? AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRow(query, userID, name))
}

// Update modifies an existing playlist in the database
func (r *PlaylistRepository) Update(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	playlist.SetUpdatedAt(now)

	query := `
		UPDATE playlists
		SET name = ?, description = ?, song_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		playlist.Name(),
		playlist.Description(),
		playlist.SongCount(),
		now,
		playlist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID())
	}

	return nil
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(id string) error {
	now := time.Now()

	result, err := r.db.Exec(`UPDATE playlists SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	return nil
}

// List retrieves all playlists matching the given criteria, excluding soft-deleted playlists
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.PersistedPlaylist, error) {
	query := `
		SELECT id, sequence, user_id, name, description, song_count, created_at, updated_at, deleted_at
		FROM playlists
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.PersistedPlaylist
	for rows.Next() {
		playlist, err := r.scan(rows.Scan)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// SongIDs returns the set of song ids already present in the playlist.
func (r *PlaylistRepository) SongIDs(playlistID string) (map[string]bool, error) {
	rows, err := r.db.Query(`SELECT song_id FROM playlist_songs WHERE playlist_id = ?`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan song id: %w", err)
		}
		ids[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// Songs returns the playlist's rows ordered by position.
func (r *PlaylistRepository) Songs(playlistID string) ([]models.PlaylistSong, error) {
	query := `
		SELECT playlist_id, song_id, position, created_at
		FROM playlist_songs
		WHERE playlist_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	var songs []models.PlaylistSong
	for rows.Next() {
		var s models.PlaylistSong
		if err := rows.Scan(&s.PlaylistID, &s.SongID, &s.Position, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist song: %w", err)
		}
		songs = append(songs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// AddSongs appends song ids to the playlist in one transaction.
//
// Positions start at the current row count and increase by one per song;
// the caller is responsible for deduplication. The playlist's denormalized
// song_count is refreshed from the true row count before commit.
func (r *PlaylistRepository) AddSongs(playlistID string, songIDs []string) (int, error) {
	if len(songIDs) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var base int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM playlist_songs WHERE playlist_id = ?`, playlistID).Scan(&base); err != nil {
		return 0, fmt.Errorf("failed to count playlist songs: %w", err)
	}

	now := time.Now()
	for i, songID := range songIDs {
		_, err := tx.Exec(
			`INSERT INTO playlist_songs (playlist_id, song_id, position, created_at) VALUES (?, ?, ?, ?)`,
			playlistID, songID, base+i, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert playlist song %s: %w", songID, err)
		}
	}

	_, err = tx.Exec(`
		UPDATE playlists
		SET song_count = (SELECT COUNT(*) FROM playlist_songs WHERE playlist_id = ?), updated_at = ?
		WHERE id = ?
	`, playlistID, now, playlistID)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh song count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit playlist songs: %w", err)
	}

	return len(songIDs), nil
}

// scanOne scans a single row into a [models.PersistedPlaylist]
func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.PersistedPlaylist, error) {
	playlist, err := r.scan(row.Scan)
	if err == sql.ErrNoRows {
		return nil, shared.ErrPlaylistNotFound
	}
	return playlist, err
}

// scan reads one row using the given scan function.
func (r *PlaylistRepository) scan(scan func(...any) error) (*models.PersistedPlaylist, error) {
	var (
		id          string
		sequence    int
		userID      string
		name        string
		description string
		songCount   int
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := scan(&id, &sequence, &userID, &name, &description, &songCount, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist := models.NewPersistedPlaylist(sequence, userID, name, description)
	playlist.SetID(id)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	playlist.SetSongCount(songCount)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}

	return playlist, nil
}
