package main

import (
	"context"
	"fmt"

	"github.com/tonearm/tonearm/internal/formatter"
	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/repositories"
	"github.com/tonearm/tonearm/internal/shared"
	"github.com/urfave/cli/v3"
)

// Export writes a stored playlist to a file in the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}

	playlists := repositories.NewPlaylistRepository(db)
	library := repositories.NewLibraryTrackRepository(db)

	playlist, err := playlists.GetForUser(cmd.String("id"), cmd.String("user"))
	if err != nil {
		return fmt.Errorf("failed to load playlist: %w", err)
	}

	songs, err := playlists.Songs(playlist.ID())
	if err != nil {
		return fmt.Errorf("failed to load playlist songs: %w", err)
	}

	export := &models.PlaylistExport{
		Playlist: models.Playlist{
			ID:          playlist.ID(),
			Name:        playlist.Name(),
			Description: playlist.Description(),
		},
		Tracks: make([]models.Track, 0, len(songs)),
	}

	for _, song := range songs {
		lt, err := library.Get(song.SongID)
		if err != nil {
			// Songs matched against external catalogs have no library row;
			// the id is still a usable location.
			r.logger.Warn("song not in library, exporting id only", "song", song.SongID)
			export.Tracks = append(export.Tracks, models.Track{Title: song.SongID, SourceID: song.SongID})
			continue
		}

		track := lt.Track()
		track.SourceID = lt.ID()
		export.Tracks = append(export.Tracks, track)
	}
	export.Playlist.TrackCount = len(export.Tracks)

	path, err := formatter.WriteExport(export, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return fmt.Errorf("failed to export playlist: %w", err)
	}

	r.writePlain("exported %d tracks to %s\n", len(export.Tracks), path)
	return nil
}

// LibraryAdd inserts one track into the local library.
func (r *Runner) LibraryAdd(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}

	repo := repositories.NewLibraryTrackRepository(db)
	track := models.NewLibraryTrack(0, models.Track{
		Title:    cmd.String("title"),
		Artist:   cmd.String("artist"),
		Album:    cmd.String("album"),
		Duration: cmd.Int("duration"),
		ISRC:     cmd.String("isrc"),
	})

	if err := repo.Create(track); err != nil {
		return fmt.Errorf("failed to add library track: %w", err)
	}

	r.writePlain("added %s\n", track.ID())
	return nil
}

// LibraryList prints the local library, optionally filtered by artist.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}

	repo := repositories.NewLibraryTrackRepository(db)
	tracks, err := repo.List(map[string]any{"artist": cmd.String("artist")})
	if err != nil {
		return fmt.Errorf("failed to list library tracks: %w", err)
	}

	if cmd.Bool("json") {
		listing := make([]models.Track, 0, len(tracks))
		for _, lt := range tracks {
			t := lt.Track()
			t.SourceID = lt.ID()
			listing = append(listing, t)
		}
		return r.writeJSON(listing, true)
	}

	if len(tracks) == 0 {
		r.writePlain("library is empty\n")
		return nil
	}

	for _, lt := range tracks {
		t := lt.Track()
		duration := ""
		if t.Duration > 0 {
			duration = "  " + shared.FormatDuration(t.Duration)
		}
		r.writePlain("%s  %s - %s%s\n", lt.ID(), t.Artist, t.Title, duration)
	}

	return nil
}
