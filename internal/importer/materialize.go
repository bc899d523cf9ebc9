package importer

import (
	"errors"
	"fmt"
	"time"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/shared"
)

// MaterializeResult reports what a materialization run did.
type MaterializeResult struct {
	PlaylistID string
	SongsAdded int
	Created    bool
}

// Materialize turns the matched subset of results into playlist rows.
//
// With an empty playlistID a new playlist named name is created for the user;
// otherwise songs are appended to the existing playlist. Songs already in the
// playlist and duplicates within the batch are dropped, keeping the first
// occurrence. A batch with nothing eligible is a valid no-op: no playlist is
// created and SongsAdded is zero.
func (e *Engine) Materialize(userID, playlistID, name, description string, results []models.SongMatchResult) (*MaterializeResult, error) {
	songIDs := acceptedSongIDs(results)

	if playlistID == "" {
		if len(songIDs) == 0 {
			return &MaterializeResult{}, nil
		}

		playlist := models.NewPersistedPlaylist(0, userID, name, description)
		if err := e.playlists.Create(playlist); err != nil {
			return nil, err
		}

		added, err := e.playlists.AddSongs(playlist.ID(), songIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to populate playlist %s: %w", playlist.ID(), err)
		}

		return &MaterializeResult{PlaylistID: playlist.ID(), SongsAdded: added, Created: true}, nil
	}

	playlist, err := e.playlists.GetForUser(playlistID, userID)
	if err != nil {
		return nil, err
	}

	existing, err := e.playlists.SongIDs(playlist.ID())
	if err != nil {
		return nil, err
	}

	fresh := songIDs[:0]
	for _, id := range songIDs {
		if existing[id] {
			continue
		}
		fresh = append(fresh, id)
	}

	added, err := e.playlists.AddSongs(playlist.ID(), fresh)
	if err != nil {
		return nil, fmt.Errorf("failed to append to playlist %s: %w", playlist.ID(), err)
	}

	return &MaterializeResult{PlaylistID: playlist.ID(), SongsAdded: added}, nil
}

// Confirm applies the caller's final per-song decisions to a settled job,
// materializes the accepted songs, and records the outcome on the job.
//
// Confirming a job whose every song was skipped is valid: the job completes
// with zero songs added and no playlist created. Confirming twice appends to
// the playlist created the first time instead of creating another.
func (e *Engine) Confirm(userID, jobID string, decisions []models.SongMatchResult) (*MaterializeResult, error) {
	job, err := e.jobs.GetForUser(jobID, userID)
	if err != nil {
		return nil, err
	}

	if job.Status() == models.JobStatusProcessing {
		return nil, fmt.Errorf("%w: job %s is still processing", shared.ErrJobNotConfirmable, jobID)
	}

	if err := validateDecisions(decisions); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if len(decisions) > 0 {
		job.SetResults(decisions)
		applyCounters(job, decisions)
	}

	res, err := e.Materialize(userID, job.CreatedPlaylistID(), job.PlaylistName(), job.PlaylistDescription(), job.Results())
	if err != nil {
		if errors.Is(err, shared.ErrDuplicatePlaylist) || errors.Is(err, shared.ErrPlaylistNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to materialize job %s: %w", jobID, err)
	}

	if res.Created {
		job.SetCreatedPlaylistID(res.PlaylistID)
	}
	job.SetStatus(models.JobStatusCompleted)
	if job.CompletedAt() == nil {
		now := time.Now()
		job.SetCompletedAt(&now)
	}

	if err := e.jobs.Update(job); err != nil {
		return nil, fmt.Errorf("failed to record confirmation for job %s: %w", jobID, err)
	}

	return res, nil
}

// acceptedSongIDs extracts the selected song ids from matched results,
// dropping batch-internal duplicates while preserving first-seen order.
func acceptedSongIDs(results []models.SongMatchResult) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0, len(results))

	for i := range results {
		r := &results[i]
		if r.Status != models.MatchStatusMatched || r.Selected == nil {
			continue
		}
		if seen[r.Selected.SongID] {
			continue
		}
		seen[r.Selected.SongID] = true
		ids = append(ids, r.Selected.SongID)
	}

	return ids
}

// validateDecisions checks that every caller-supplied decision carries a
// recognized status and that accepted decisions name a selected match.
func validateDecisions(decisions []models.SongMatchResult) error {
	for i := range decisions {
		if !decisions[i].Status.Valid() {
			return fmt.Errorf("decision %d has unknown status %q", i, decisions[i].Status)
		}
		if decisions[i].Status == models.MatchStatusMatched && decisions[i].Selected == nil {
			return fmt.Errorf("decision %d is matched but names no selected match", i)
		}
	}
	return nil
}
