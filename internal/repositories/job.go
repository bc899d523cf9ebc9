package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/shared"
)

// ImportJobRepository implements models.Repository[*models.ImportJob].
//
// The full match-result array is stored as a JSON column so job records keep
// their results for audit and replay after completion.
type ImportJobRepository struct {
	db *sql.DB
}

// NewImportJobRepository creates a new ImportJobRepository with the given database connection
func NewImportJobRepository(db *sql.DB) *ImportJobRepository {
	return &ImportJobRepository{db: db}
}

const jobColumns = `
	id, sequence, user_id, source_format, target_platform, playlist_name,
	playlist_description, status, total_songs, processed_songs, matched_songs,
	unmatched_songs, pending_review_songs, skipped_songs, match_results,
	created_playlist_id, error_message, started_at, completed_at,
	created_at, updated_at, deleted_at
`

// Create inserts a new import job into the database with generated ID and sequence
func (r *ImportJobRepository) Create(job *models.ImportJob) error {
	sequence, err := NextSequence(r.db, "import_jobs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	job.SetSequence(sequence)
	job.SetID(shared.GenerateID())

	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	results, err := marshalResults(job.Results())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO import_jobs (
			id, sequence, user_id, source_format, target_platform, playlist_name,
			playlist_description, status, total_songs, processed_songs, matched_songs,
			unmatched_songs, pending_review_songs, skipped_songs, match_results,
			created_playlist_id, error_message, started_at, completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		job.ID(),
		job.Sequence(),
		job.UserID(),
		job.SourceFormat(),
		job.TargetPlatform(),
		job.PlaylistName(),
		job.PlaylistDescription(),
		string(job.Status()),
		job.TotalSongs(),
		job.ProcessedSongs(),
		job.MatchedSongs(),
		job.UnmatchedSongs(),
		job.PendingReviewSongs(),
		job.SkippedSongs(),
		results,
		nullable(job.CreatedPlaylistID()),
		nullable(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		job.CreatedAt(),
		job.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert import job: %w", err)
	}

	return nil
}

// Get retrieves an import job by ID, excluding soft-deleted jobs
func (r *ImportJobRepository) Get(id string) (*models.ImportJob, error) {
	query := `SELECT ` + jobColumns + ` FROM import_jobs WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetForUser retrieves a job scoped to its owning user.
// A job owned by another user is reported as not found, never as forbidden.
func (r *ImportJobRepository) GetForUser(id, userID string) (*models.ImportJob, error) {
	query := `SELECT ` + jobColumns + ` FROM import_jobs WHERE id = ? AND user_id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, id, userID))
}

// Update modifies an existing import job in the database.
// The write is a single-row transactional update keyed by job id.
func (r *ImportJobRepository) Update(job *models.ImportJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	results, err := marshalResults(job.Results())
	if err != nil {
		return err
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	query := `
		UPDATE import_jobs
		SET status = ?, total_songs = ?, processed_songs = ?, matched_songs = ?,
			unmatched_songs = ?, pending_review_songs = ?, skipped_songs = ?,
			match_results = ?, created_playlist_id = ?, error_message = ?,
			started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(job.Status()),
		job.TotalSongs(),
		job.ProcessedSongs(),
		job.MatchedSongs(),
		job.UnmatchedSongs(),
		job.PendingReviewSongs(),
		job.SkippedSongs(),
		results,
		nullable(job.CreatedPlaylistID()),
		nullable(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update import job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrJobNotFound, job.ID())
	}

	return nil
}

// Delete soft-deletes an import job by ID
func (r *ImportJobRepository) Delete(id string) error {
	now := time.Now()

	result, err := r.db.Exec(`UPDATE import_jobs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete import job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrJobNotFound, id)
	}

	return nil
}

// List retrieves all import jobs matching the given criteria, excluding soft-deleted jobs
func (r *ImportJobRepository) List(criteria map[string]any) ([]*models.ImportJob, error) {
	query := `SELECT ` + jobColumns + ` FROM import_jobs WHERE deleted_at IS NULL`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query import jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.ImportJob
	for rows.Next() {
		job, err := r.scan(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

// FindStale lists jobs stuck in processing whose last write is older than the
// cutoff. Used by operational tooling to surface interrupted imports.
func (r *ImportJobRepository) FindStale(olderThan time.Duration) ([]*models.ImportJob, error) {
	cutoff := time.Now().Add(-olderThan)

	query := `SELECT ` + jobColumns + ` FROM import_jobs
		WHERE status = ? AND updated_at < ? AND deleted_at IS NULL
		ORDER BY updated_at ASC`

	rows, err := r.db.Query(query, string(models.JobStatusProcessing), cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.ImportJob
	for rows.Next() {
		job, err := r.scan(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

// scanOne scans a single [sql.Row] into a [models.ImportJob]
func (r *ImportJobRepository) scanOne(row *sql.Row) (*models.ImportJob, error) {
	job, err := r.scan(row.Scan)
	if err == sql.ErrNoRows {
		return nil, shared.ErrJobNotFound
	}
	return job, err
}

// scan reads one row using the given scan function.
func (r *ImportJobRepository) scan(scan func(...any) error) (*models.ImportJob, error) {
	var (
		id                  string
		sequence            int
		userID              string
		sourceFormat        string
		targetPlatform      string
		playlistName        string
		playlistDescription string
		status              string
		totalSongs          int
		processedSongs      int
		matchedSongs        int
		unmatchedSongs      int
		pendingReviewSongs  int
		skippedSongs        int
		matchResults        string
		createdPlaylistID   sql.NullString
		errorMessage        sql.NullString
		startedAt           sql.NullTime
		completedAt         sql.NullTime
		createdAt           time.Time
		updatedAt           time.Time
		deletedAt           sql.NullTime
	)

	err := scan(
		&id, &sequence, &userID, &sourceFormat, &targetPlatform, &playlistName,
		&playlistDescription, &status, &totalSongs, &processedSongs, &matchedSongs,
		&unmatchedSongs, &pendingReviewSongs, &skippedSongs, &matchResults,
		&createdPlaylistID, &errorMessage, &startedAt, &completedAt,
		&createdAt, &updatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan import job: %w", err)
	}

	var results []models.SongMatchResult
	if matchResults != "" {
		if err := json.Unmarshal([]byte(matchResults), &results); err != nil {
			return nil, fmt.Errorf("failed to decode match results: %w", err)
		}
	}

	job := models.NewImportJob(sequence, userID, sourceFormat, targetPlatform, playlistName, playlistDescription)
	job.SetID(id)
	job.SetCreatedAt(createdAt)
	job.SetUpdatedAt(updatedAt)
	job.SetStatus(models.JobStatus(status))
	job.SetTotalSongs(totalSongs)
	job.SetProcessedSongs(processedSongs)
	job.SetMatchedSongs(matchedSongs)
	job.SetUnmatchedSongs(unmatchedSongs)
	job.SetPendingReviewSongs(pendingReviewSongs)
	job.SetSkippedSongs(skippedSongs)
	job.SetResults(results)

	if createdPlaylistID.Valid {
		job.SetCreatedPlaylistID(createdPlaylistID.String)
	}
	if errorMessage.Valid {
		job.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		job.SetStartedAt(&startedAt.Time)
	} else {
		job.SetStartedAt(nil)
	}
	if completedAt.Valid {
		job.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		job.SetDeletedAt(&deletedAt.Time)
	}

	return job, nil
}

// marshalResults encodes the result list for the JSON column. A nil list is
// stored as an empty array so scans never see NULL.
func marshalResults(results []models.SongMatchResult) (string, error) {
	if results == nil {
		return "[]", nil
	}
	data, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to encode match results: %w", err)
	}
	return string(data), nil
}

// nullable converts an empty string to NULL for optional columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
