package importer

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/tonearm/tonearm/internal/matcher"
	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/repositories"
	"github.com/tonearm/tonearm/internal/services"
	"github.com/tonearm/tonearm/internal/shared"
	th "github.com/tonearm/tonearm/internal/testing"
)

type fixture struct {
	db        *sql.DB
	jobs      *repositories.ImportJobRepository
	playlists *repositories.PlaylistRepository
	engine    *Engine
	searcher  *th.MockSearcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := th.MustOpenDB(t)
	jobs := repositories.NewImportJobRepository(db)
	playlists := repositories.NewPlaylistRepository(db)
	searcher := &th.MockSearcher{Platform: "mock"}

	engine := NewEngine(Config{
		Jobs:              jobs,
		Playlists:         playlists,
		Searchers:         []services.Searcher{searcher},
		Logger:            shared.NewLogger(os.Stderr),
		CheckpointSongs:   2,
		SearchesPerSecond: 1000,
	})

	return &fixture{db: db, jobs: jobs, playlists: playlists, engine: engine, searcher: searcher}
}

func (f *fixture) newJob(t *testing.T, totalSongs int) *models.ImportJob {
	t.Helper()

	job := models.NewImportJob(0, "user-1", "m3u", "mock", "My Mix", "")
	job.SetTotalSongs(totalSongs)
	if err := f.jobs.Create(job); err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	return job
}

func matched(songID string, track models.Track) models.SongMatchResult {
	candidate := models.MatchCandidate{Platform: "mock", SongID: songID, Title: track.Title, Artist: track.Artist, Score: 100}
	result := models.SongMatchResult{Song: track, Candidates: []models.MatchCandidate{candidate}, Status: models.MatchStatusMatched}
	result.Selected = &result.Candidates[0]
	return result
}

func TestRunCompletesJob(t *testing.T) {
	f := newFixture(t)

	f.searcher.ByQuery = map[string][]models.MatchCandidate{
		shared.SongKey("Karma Police", "Radiohead"): {th.Candidate("mock", "song-1", "Karma Police", "Radiohead", 261)},
		shared.SongKey("Obscure", "Nobody"):         {th.Candidate("mock", "song-2", "Entirely Unrelated Thing", "Someone Else", 0)},
	}

	tracks := []models.Track{
		{Title: "Karma Police", Artist: "Radiohead", Duration: 261},
		{Title: "Obscure", Artist: "Nobody"},
		{Title: "Missing", Artist: "Unknown"},
	}

	job := f.newJob(t, len(tracks))
	f.engine.Run(context.Background(), job, tracks, JobOptions{Match: matcher.DefaultOptions()})

	stored, err := f.jobs.Get(job.ID())
	if err != nil {
		t.Fatalf("failed to reload job: %v", err)
	}

	if stored.Status() != models.JobStatusCompleted {
		t.Fatalf("status = %q, want completed (error: %s)", stored.Status(), stored.ErrorMessage())
	}
	if stored.ProcessedSongs() != stored.TotalSongs() {
		t.Errorf("processed = %d, want %d", stored.ProcessedSongs(), stored.TotalSongs())
	}
	if stored.MatchedSongs() != 1 {
		t.Errorf("matched = %d, want 1", stored.MatchedSongs())
	}
	if stored.PendingReviewSongs() != 1 {
		t.Errorf("pending = %d, want 1", stored.PendingReviewSongs())
	}
	if stored.UnmatchedSongs() != 1 {
		t.Errorf("unmatched = %d, want 1", stored.UnmatchedSongs())
	}
	if len(stored.Results()) != 3 {
		t.Errorf("persisted results = %d, want 3", len(stored.Results()))
	}
	if stored.CompletedAt() == nil {
		t.Error("completed job has no completion timestamp")
	}
}

func TestRunCreatesPlaylistWhenRequested(t *testing.T) {
	f := newFixture(t)

	f.searcher.Default = []models.MatchCandidate{th.Candidate("mock", "song-1", "Karma Police", "Radiohead", 261)}

	tracks := []models.Track{{Title: "Karma Police", Artist: "Radiohead", Duration: 261}}
	job := f.newJob(t, len(tracks))

	f.engine.Run(context.Background(), job, tracks, JobOptions{
		Match:          matcher.DefaultOptions(),
		CreatePlaylist: true,
	})

	stored, err := f.jobs.Get(job.ID())
	if err != nil {
		t.Fatalf("failed to reload job: %v", err)
	}
	if stored.CreatedPlaylistID() == "" {
		t.Fatal("job has no created playlist id")
	}

	playlist, err := f.playlists.Get(stored.CreatedPlaylistID())
	if err != nil {
		t.Fatalf("failed to load created playlist: %v", err)
	}
	if playlist.Name() != "My Mix" {
		t.Errorf("playlist name = %q, want %q", playlist.Name(), "My Mix")
	}
	if playlist.SongCount() != 1 {
		t.Errorf("song count = %d, want 1", playlist.SongCount())
	}
}

func TestMaterializeDeduplicates(t *testing.T) {
	f := newFixture(t)

	trackA := models.Track{Title: "A", Artist: "X"}
	trackB := models.Track{Title: "B", Artist: "X"}
	trackC := models.Track{Title: "C", Artist: "X"}

	results := []models.SongMatchResult{
		matched("song-a", trackA),
		matched("song-a", trackA), // batch-internal duplicate
		matched("song-b", trackB),
		{Song: trackC, Status: models.MatchStatusNoMatch},
	}

	res, err := f.engine.Materialize("user-1", "", "Dedup", "", results)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if !res.Created {
		t.Error("expected a new playlist")
	}
	if res.SongsAdded != 2 {
		t.Errorf("songs added = %d, want 2 after dedup", res.SongsAdded)
	}

	// Appending the same batch again adds nothing new.
	res2, err := f.engine.Materialize("user-1", res.PlaylistID, "Dedup", "", results)
	if err != nil {
		t.Fatalf("second Materialize failed: %v", err)
	}
	if res2.SongsAdded != 0 {
		t.Errorf("songs added on replay = %d, want 0", res2.SongsAdded)
	}

	songs, err := f.playlists.Songs(res.PlaylistID)
	if err != nil {
		t.Fatalf("failed to load playlist songs: %v", err)
	}
	for i, s := range songs {
		if s.Position != i {
			t.Errorf("position at index %d = %d, want contiguous sequence", i, s.Position)
		}
	}
}

func TestMaterializeEmptyBatchIsNoOp(t *testing.T) {
	f := newFixture(t)

	results := []models.SongMatchResult{
		{Song: models.Track{Title: "A", Artist: "X"}, Status: models.MatchStatusSkipped},
	}

	res, err := f.engine.Materialize("user-1", "", "Nothing", "", results)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if res.PlaylistID != "" || res.SongsAdded != 0 {
		t.Errorf("empty batch created a playlist: %+v", res)
	}
}

func TestConfirmAllSkipped(t *testing.T) {
	f := newFixture(t)

	trackA := models.Track{Title: "A", Artist: "X"}
	job := f.newJob(t, 1)
	job.SetProcessedSongs(1)
	job.SetResults([]models.SongMatchResult{matched("song-a", trackA)})
	job.SetMatchedSongs(1)
	job.SetStatus(models.JobStatusCompleted)
	if err := f.jobs.Update(job); err != nil {
		t.Fatalf("failed to settle job: %v", err)
	}

	decisions := []models.SongMatchResult{
		{Song: trackA, Status: models.MatchStatusSkipped},
	}

	res, err := f.engine.Confirm("user-1", job.ID(), decisions)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if res.SongsAdded != 0 {
		t.Errorf("songs added = %d, want 0", res.SongsAdded)
	}
	if res.PlaylistID != "" {
		t.Errorf("playlist id = %q, want none for all-skipped confirm", res.PlaylistID)
	}

	stored, err := f.jobs.Get(job.ID())
	if err != nil {
		t.Fatalf("failed to reload job: %v", err)
	}
	if stored.Status() != models.JobStatusCompleted {
		t.Errorf("status = %q, want completed", stored.Status())
	}
	if stored.SkippedSongs() != 1 || stored.MatchedSongs() != 0 {
		t.Errorf("counters = matched %d skipped %d, want 0/1", stored.MatchedSongs(), stored.SkippedSongs())
	}
}

func TestConfirmTwiceAppends(t *testing.T) {
	f := newFixture(t)

	trackA := models.Track{Title: "A", Artist: "X"}
	trackB := models.Track{Title: "B", Artist: "X"}

	job := f.newJob(t, 2)
	job.SetProcessedSongs(2)
	job.SetResults([]models.SongMatchResult{
		matched("song-a", trackA),
		{Song: trackB, Status: models.MatchStatusPendingReview},
	})
	job.SetMatchedSongs(1)
	job.SetPendingReviewSongs(1)
	job.SetStatus(models.JobStatusCompleted)
	if err := f.jobs.Update(job); err != nil {
		t.Fatalf("failed to settle job: %v", err)
	}

	first, err := f.engine.Confirm("user-1", job.ID(), nil)
	if err != nil {
		t.Fatalf("first Confirm failed: %v", err)
	}
	if first.PlaylistID == "" || first.SongsAdded != 1 {
		t.Fatalf("first confirm = %+v, want one song in a new playlist", first)
	}

	// Second confirm accepts the reviewed song; the already-added one is kept.
	decisions := []models.SongMatchResult{
		matched("song-a", trackA),
		matched("song-b", trackB),
	}

	second, err := f.engine.Confirm("user-1", job.ID(), decisions)
	if err != nil {
		t.Fatalf("second Confirm failed: %v", err)
	}
	if second.PlaylistID != first.PlaylistID {
		t.Errorf("second confirm targeted %q, want the playlist from the first confirm %q", second.PlaylistID, first.PlaylistID)
	}
	if second.SongsAdded != 1 {
		t.Errorf("songs added = %d, want only the newly accepted song", second.SongsAdded)
	}

	songs, err := f.playlists.Songs(first.PlaylistID)
	if err != nil {
		t.Fatalf("failed to load playlist songs: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("playlist songs = %d, want 2", len(songs))
	}
	for i, s := range songs {
		if s.Position != i {
			t.Errorf("position at index %d = %d, want contiguous sequence", i, s.Position)
		}
	}
}

func TestConfirmGuards(t *testing.T) {
	f := newFixture(t)

	t.Run("unknown job", func(t *testing.T) {
		_, err := f.engine.Confirm("user-1", "no-such-job", nil)
		if !errors.Is(err, shared.ErrJobNotFound) {
			t.Errorf("error = %v, want ErrJobNotFound", err)
		}
	})

	t.Run("foreign job looks missing", func(t *testing.T) {
		job := f.newJob(t, 0)
		job.SetStatus(models.JobStatusCompleted)
		if err := f.jobs.Update(job); err != nil {
			t.Fatalf("failed to settle job: %v", err)
		}

		_, err := f.engine.Confirm("somebody-else", job.ID(), nil)
		if !errors.Is(err, shared.ErrJobNotFound) {
			t.Errorf("error = %v, want ErrJobNotFound", err)
		}
	})

	t.Run("still processing", func(t *testing.T) {
		job := f.newJob(t, 1)

		_, err := f.engine.Confirm("user-1", job.ID(), nil)
		if !errors.Is(err, shared.ErrJobNotConfirmable) {
			t.Errorf("error = %v, want ErrJobNotConfirmable", err)
		}
	})

	t.Run("matched decision without selection", func(t *testing.T) {
		job := f.newJob(t, 1)
		job.SetStatus(models.JobStatusCompleted)
		if err := f.jobs.Update(job); err != nil {
			t.Fatalf("failed to settle job: %v", err)
		}

		decisions := []models.SongMatchResult{
			{Song: models.Track{Title: "A", Artist: "X"}, Status: models.MatchStatusMatched},
		}

		_, err := f.engine.Confirm("user-1", job.ID(), decisions)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})
}

func TestStaleJobs(t *testing.T) {
	f := newFixture(t)

	job := f.newJob(t, 5)

	// A freshly created job is not stale yet.
	stale, err := f.engine.StaleJobs(time.Minute)
	if err != nil {
		t.Fatalf("StaleJobs failed: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("stale jobs = %d, want 0", len(stale))
	}

	stale, err = f.engine.StaleJobs(-time.Minute)
	if err != nil {
		t.Fatalf("StaleJobs failed: %v", err)
	}
	if len(stale) != 1 || stale[0].ID() != job.ID() {
		t.Errorf("expected the processing job to appear with a negative cutoff")
	}
}
