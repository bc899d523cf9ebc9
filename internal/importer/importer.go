// package importer orchestrates playlist import jobs.
//
// Each job runs on exactly one background goroutine spawned at creation time,
// detached from the originating request. The persisted job row is the only
// coordination point: progress counters are checkpointed to it on a
// count-or-interval cadence and the caller observes progress by polling.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tonearm/tonearm/internal/matcher"
	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/repositories"
	"github.com/tonearm/tonearm/internal/services"
	"github.com/tonearm/tonearm/internal/shared"
	"golang.org/x/time/rate"
)

// Checkpoint cadence defaults: progress is flushed at least every
// DefaultCheckpointSongs songs or every DefaultCheckpointInterval,
// whichever comes first, plus once at loop end.
const (
	DefaultCheckpointSongs    = 10
	DefaultCheckpointInterval = 5 * time.Second
	DefaultSearchesPerSecond  = 5.0
)

// Config wires an Engine.
type Config struct {
	Jobs      *repositories.ImportJobRepository
	Playlists *repositories.PlaylistRepository
	Searchers []services.Searcher
	Logger    *log.Logger

	CheckpointSongs    int
	CheckpointInterval time.Duration
	SearchesPerSecond  float64
}

// JobOptions carries the per-job tuning chosen by the caller at creation.
type JobOptions struct {
	Match          matcher.Options
	CreatePlaylist bool // materialize auto-accepted matches when the loop completes
}

// Engine runs import jobs and materializes their results into playlists.
type Engine struct {
	jobs      *repositories.ImportJobRepository
	playlists *repositories.PlaylistRepository
	searchers []services.Searcher
	matcher   *matcher.Matcher
	logger    *log.Logger

	checkpointSongs    int
	checkpointInterval time.Duration
	limiter            *rate.Limiter
}

// NewEngine creates an Engine with the given configuration, applying
// defaults for any unset tuning values.
func NewEngine(cfg Config) *Engine {
	if cfg.CheckpointSongs <= 0 {
		cfg.CheckpointSongs = DefaultCheckpointSongs
	}
	if cfg.CheckpointInterval <= 0 {
		cfg.CheckpointInterval = DefaultCheckpointInterval
	}
	if cfg.SearchesPerSecond <= 0 {
		cfg.SearchesPerSecond = DefaultSearchesPerSecond
	}

	return &Engine{
		jobs:               cfg.Jobs,
		playlists:          cfg.Playlists,
		searchers:          cfg.Searchers,
		matcher:            matcher.New(cfg.Logger),
		logger:             cfg.Logger,
		checkpointSongs:    cfg.CheckpointSongs,
		checkpointInterval: cfg.CheckpointInterval,
		limiter:            rate.NewLimiter(rate.Limit(cfg.SearchesPerSecond), 1),
	}
}

// Start spawns the background matching goroutine for an already-persisted
// job. It returns immediately; callers observe progress by polling the job.
func (e *Engine) Start(job *models.ImportJob, tracks []models.Track, opts JobOptions) {
	go e.run(context.Background(), job, tracks, opts)
}

// Run executes the matching loop synchronously. Used by Start's goroutine
// and by the CLI, which wants to block until the job settles.
func (e *Engine) Run(ctx context.Context, job *models.ImportJob, tracks []models.Track, opts JobOptions) {
	e.run(ctx, job, tracks, opts)
}

// run is the single-worker matching loop for one job. It never returns an
// error: failures surface through the persisted status field, since nothing
// is listening synchronously.
func (e *Engine) run(ctx context.Context, job *models.ImportJob, tracks []models.Track, opts JobOptions) {
	logger := shared.WithLogger(e.logger, "job", job.ID(), "songs", len(tracks))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("import job panicked", "panic", r)
			e.markFailed(job, fmt.Sprintf("internal error: %v", r))
		}
	}()

	logger.Info("import started", "format", job.SourceFormat(), "platform", job.TargetPlatform())

	results := make([]models.SongMatchResult, 0, len(tracks))
	lastFlush := time.Now()

	for i, track := range tracks {
		// Pacing between songs keeps downstream search backends happy.
		if err := e.limiter.Wait(ctx); err != nil {
			e.markFailed(job, fmt.Sprintf("import interrupted: %v", err))
			return
		}

		results = append(results, e.matcher.MatchSong(ctx, track, e.searchers, opts.Match))

		job.SetProcessedSongs(i + 1)
		job.SetResults(results)
		applyCounters(job, results)

		if (i+1)%e.checkpointSongs == 0 || time.Since(lastFlush) >= e.checkpointInterval {
			if err := e.jobs.Update(job); err != nil {
				logger.Error("progress checkpoint failed", "error", err)
				e.markFailed(job, fmt.Sprintf("failed to persist progress: %v", err))
				return
			}
			lastFlush = time.Now()
		}
	}

	if opts.CreatePlaylist {
		res, err := e.Materialize(job.UserID(), "", job.PlaylistName(), job.PlaylistDescription(), results)
		if err != nil {
			logger.Error("playlist materialization failed", "error", err)
			e.markFailed(job, fmt.Sprintf("failed to create playlist: %v", err))
			return
		}
		if res.PlaylistID != "" {
			job.SetCreatedPlaylistID(res.PlaylistID)
		}
		logger.Info("playlist materialized", "playlist", res.PlaylistID, "added", res.SongsAdded)
	}

	now := time.Now()
	job.SetStatus(models.JobStatusCompleted)
	job.SetCompletedAt(&now)

	if err := e.jobs.Update(job); err != nil {
		logger.Error("final job write failed", "error", err)
		return
	}

	logger.Info("import completed",
		"matched", job.MatchedSongs(),
		"pending", job.PendingReviewSongs(),
		"unmatched", job.UnmatchedSongs(),
	)
}

// markFailed transitions the job to failed, keeping any partial results
// intact for inspection. Best effort: a failed write here is only logged.
func (e *Engine) markFailed(job *models.ImportJob, message string) {
	now := time.Now()
	job.SetStatus(models.JobStatusFailed)
	job.SetErrorMessage(message)
	job.SetCompletedAt(&now)

	if err := e.jobs.Update(job); err != nil {
		e.logger.Error("failed to record job failure", "job", job.ID(), "error", err)
	}
}

// StaleJobs lists jobs stuck in processing past the cutoff, for operational
// tooling. A job abandoned by an interrupted process shows up here.
func (e *Engine) StaleJobs(olderThan time.Duration) ([]*models.ImportJob, error) {
	return e.jobs.FindStale(olderThan)
}

// applyCounters recomputes the job's aggregate counters from the result list.
func applyCounters(job *models.ImportJob, results []models.SongMatchResult) {
	var matched, unmatched, pending, skipped int
	for i := range results {
		switch results[i].Status {
		case models.MatchStatusMatched:
			matched++
		case models.MatchStatusNoMatch:
			unmatched++
		case models.MatchStatusPendingReview:
			pending++
		case models.MatchStatusSkipped:
			skipped++
		}
	}
	job.SetMatchedSongs(matched)
	job.SetUnmatchedSongs(unmatched)
	job.SetPendingReviewSongs(pending)
	job.SetSkippedSongs(skipped)
}
