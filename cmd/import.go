package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tonearm/tonearm/internal/importer"
	"github.com/tonearm/tonearm/internal/matcher"
	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/parser"
	"github.com/tonearm/tonearm/internal/repositories"
	"github.com/tonearm/tonearm/internal/shared"
	"github.com/tonearm/tonearm/internal/ui"
	"github.com/urfave/cli/v3"
)

// Import parses a playlist file, runs the matching loop synchronously, and
// prints the job summary.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a playlist file", shared.ErrMissingArgument)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read playlist file: %w", err)
	}

	parsed, err := parser.Parse(string(content), parser.ParseFormat(cmd.String("format")))
	if err != nil {
		return fmt.Errorf("failed to parse playlist: %w", err)
	}

	name := cmd.String("name")
	if name == "" {
		name = parsed.Playlist.Playlist.Name
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}

	jobs := repositories.NewImportJobRepository(db)
	job := models.NewImportJob(0, cmd.String("user"), string(parsed.Format), cmd.String("platform"), name, cmd.String("description"))
	job.SetTotalSongs(len(parsed.Playlist.Tracks))

	if err := jobs.Create(job); err != nil {
		return fmt.Errorf("failed to create import job: %w", err)
	}

	threshold := r.config.Import.AutoAcceptThreshold
	if !cmd.Bool("auto") {
		threshold = matcher.MaxScore + 1
	}

	engine := r.engine(db)
	engine.Run(ctx, job, parsed.Playlist.Tracks, importer.JobOptions{
		Match: matcher.Options{
			Platforms:     []string{cmd.String("platform")},
			Fuzzy:         true,
			MinConfidence: threshold,
			MaxMatches:    r.config.Import.MaxMatchesPerSong,
		},
		CreatePlaylist: cmd.Bool("create"),
	})

	if cmd.Bool("json") {
		return r.writeJSON(job.Projection(), true)
	}

	r.writePlain("%s\n", ui.RenderJobSummary(job))
	for _, result := range job.Results() {
		r.writePlain("  %s\n", ui.RenderResultLine(result))
	}

	if job.Status() == models.JobStatusFailed {
		return fmt.Errorf("import failed: %s", job.ErrorMessage())
	}

	return nil
}

// Validate checks a playlist file without touching the database.
func (r *Runner) Validate(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a playlist file", shared.ErrMissingArgument)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read playlist file: %w", err)
	}

	result := parser.Validate(string(content), parser.ParseFormat(cmd.String("format")))

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	if result.Valid {
		r.writePlain("valid\n")
	} else {
		r.writePlain("invalid\n")
	}
	for _, e := range result.Errors {
		r.writePlain("  error: %s\n", e)
	}
	for _, w := range result.Warnings {
		r.writePlain("  warning: %s\n", w)
	}

	return nil
}

// Jobs lists import jobs, optionally filtered to stale processing jobs.
func (r *Runner) Jobs(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}

	repo := repositories.NewImportJobRepository(db)

	var jobs []*models.ImportJob
	if stale := cmd.Duration("stale"); stale > 0 {
		jobs, err = repo.FindStale(stale)
	} else {
		jobs, err = repo.List(map[string]any{
			"user_id": cmd.String("user"),
			"status":  cmd.String("status"),
		})
	}
	if err != nil {
		return fmt.Errorf("failed to list import jobs: %w", err)
	}

	if cmd.Bool("json") {
		projections := make([]models.ImportJobProjection, 0, len(jobs))
		for _, job := range jobs {
			projections = append(projections, job.Projection())
		}
		return r.writeJSON(projections, true)
	}

	if len(jobs) == 0 {
		r.writePlain("no import jobs\n")
		return nil
	}

	for _, job := range jobs {
		r.writePlain("%s  %-10s  %3d/%-3d  %s\n",
			job.ID(), job.Status(), job.ProcessedSongs(), job.TotalSongs(), job.PlaylistName())
	}

	return nil
}
