package repositories

import (
	"errors"
	"testing"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/shared"
	th "github.com/tonearm/tonearm/internal/testing"
)

func TestNextSequence(t *testing.T) {
	db := th.MustOpenDB(t)

	first, err := NextSequence(db, "playlists")
	if err != nil {
		t.Fatalf("NextSequence failed: %v", err)
	}
	second, err := NextSequence(db, "playlists")
	if err != nil {
		t.Fatalf("NextSequence failed: %v", err)
	}

	if first != 1 || second != 2 {
		t.Errorf("sequences = %d, %d, want 1, 2", first, second)
	}

	// Other tables have independent counters.
	other, err := NextSequence(db, "import_jobs")
	if err != nil {
		t.Fatalf("NextSequence failed: %v", err)
	}
	if other != 1 {
		t.Errorf("import_jobs sequence = %d, want 1", other)
	}
}

func TestImportJobRepository(t *testing.T) {
	db := th.MustOpenDB(t)
	repo := NewImportJobRepository(db)

	newJob := func(t *testing.T, user string) *models.ImportJob {
		t.Helper()
		job := models.NewImportJob(0, user, "m3u", "library", "Mix", "desc")
		job.SetTotalSongs(2)
		if err := repo.Create(job); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		return job
	}

	t.Run("create assigns id and sequence", func(t *testing.T) {
		job := newJob(t, "user-1")
		if job.ID() == "" {
			t.Error("job has no id after create")
		}
		if job.Sequence() == 0 {
			t.Error("job has no sequence after create")
		}
	})

	t.Run("round-trips results through the json column", func(t *testing.T) {
		job := newJob(t, "user-1")

		track := models.Track{Title: "Karma Police", Artist: "Radiohead", Duration: 261}
		candidate := models.MatchCandidate{Platform: "library", SongID: "s1", Title: "Karma Police", Artist: "Radiohead", Score: 97.5}
		result := models.SongMatchResult{Song: track, Candidates: []models.MatchCandidate{candidate}, Status: models.MatchStatusMatched}
		result.Selected = &result.Candidates[0]

		job.SetProcessedSongs(1)
		job.SetMatchedSongs(1)
		job.SetResults([]models.SongMatchResult{result})
		if err := repo.Update(job); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		stored, err := repo.Get(job.ID())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}

		results := stored.Results()
		if len(results) != 1 {
			t.Fatalf("results = %d, want 1", len(results))
		}
		if results[0].Selected == nil || results[0].Selected.SongID != "s1" {
			t.Errorf("selected match lost in round trip: %+v", results[0])
		}
		if results[0].Selected.Score != 97.5 {
			t.Errorf("score = %v, want 97.5", results[0].Selected.Score)
		}
	})

	t.Run("get for user scopes ownership", func(t *testing.T) {
		job := newJob(t, "user-1")

		if _, err := repo.GetForUser(job.ID(), "user-1"); err != nil {
			t.Errorf("owner lookup failed: %v", err)
		}

		_, err := repo.GetForUser(job.ID(), "user-2")
		if !errors.Is(err, shared.ErrJobNotFound) {
			t.Errorf("foreign lookup error = %v, want ErrJobNotFound", err)
		}
	})

	t.Run("update unknown job", func(t *testing.T) {
		job := models.NewImportJob(0, "user-1", "m3u", "library", "Ghost", "")
		job.SetID("nonexistent")

		err := repo.Update(job)
		if !errors.Is(err, shared.ErrJobNotFound) {
			t.Errorf("error = %v, want ErrJobNotFound", err)
		}
	})

	t.Run("soft delete hides the job", func(t *testing.T) {
		job := newJob(t, "user-1")

		if err := repo.Delete(job.ID()); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		_, err := repo.Get(job.ID())
		if !errors.Is(err, shared.ErrJobNotFound) {
			t.Errorf("error = %v, want ErrJobNotFound after delete", err)
		}
	})

	t.Run("list filters by user and status", func(t *testing.T) {
		job := newJob(t, "lister")
		job.SetStatus(models.JobStatusCompleted)
		if err := repo.Update(job); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		newJob(t, "lister")

		completed, err := repo.List(map[string]any{"user_id": "lister", "status": "completed"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(completed) != 1 || completed[0].ID() != job.ID() {
			t.Errorf("completed list = %d jobs, want exactly the completed one", len(completed))
		}

		all, err := repo.List(map[string]any{"user_id": "lister"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("user list = %d jobs, want 2", len(all))
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	db := th.MustOpenDB(t)
	repo := NewPlaylistRepository(db)

	t.Run("duplicate name for same user conflicts", func(t *testing.T) {
		first := models.NewPersistedPlaylist(0, "user-1", "Favorites", "")
		if err := repo.Create(first); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		dup := models.NewPersistedPlaylist(0, "user-1", "Favorites", "")
		err := repo.Create(dup)
		if !errors.Is(err, shared.ErrDuplicatePlaylist) {
			t.Errorf("error = %v, want ErrDuplicatePlaylist", err)
		}

		// Same name for a different user is fine.
		other := models.NewPersistedPlaylist(0, "user-2", "Favorites", "")
		if err := repo.Create(other); err != nil {
			t.Errorf("cross-user create failed: %v", err)
		}
	})

	t.Run("deleted name can be reused", func(t *testing.T) {
		p := models.NewPersistedPlaylist(0, "user-3", "Rotation", "")
		if err := repo.Create(p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := repo.Delete(p.ID()); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		again := models.NewPersistedPlaylist(0, "user-3", "Rotation", "")
		if err := repo.Create(again); err != nil {
			t.Errorf("recreate after delete failed: %v", err)
		}
	})

	t.Run("add songs appends positions and refreshes count", func(t *testing.T) {
		p := models.NewPersistedPlaylist(0, "user-4", "Positions", "")
		if err := repo.Create(p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		added, err := repo.AddSongs(p.ID(), []string{"a", "b"})
		if err != nil {
			t.Fatalf("AddSongs failed: %v", err)
		}
		if added != 2 {
			t.Errorf("added = %d, want 2", added)
		}

		// Second batch continues from the current count.
		if _, err := repo.AddSongs(p.ID(), []string{"c"}); err != nil {
			t.Fatalf("AddSongs failed: %v", err)
		}

		songs, err := repo.Songs(p.ID())
		if err != nil {
			t.Fatalf("Songs failed: %v", err)
		}
		if len(songs) != 3 {
			t.Fatalf("songs = %d, want 3", len(songs))
		}
		for i, s := range songs {
			if s.Position != i {
				t.Errorf("position at index %d = %d, want contiguous sequence", i, s.Position)
			}
		}

		stored, err := repo.Get(p.ID())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if stored.SongCount() != 3 {
			t.Errorf("song count = %d, want 3", stored.SongCount())
		}

		ids, err := repo.SongIDs(p.ID())
		if err != nil {
			t.Fatalf("SongIDs failed: %v", err)
		}
		if !ids["a"] || !ids["b"] || !ids["c"] {
			t.Errorf("SongIDs missing entries: %v", ids)
		}
	})

	t.Run("get by name", func(t *testing.T) {
		p := models.NewPersistedPlaylist(0, "user-5", "Named", "d")
		if err := repo.Create(p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		found, err := repo.GetByName("user-5", "Named")
		if err != nil {
			t.Fatalf("GetByName failed: %v", err)
		}
		if found.ID() != p.ID() {
			t.Errorf("found %q, want %q", found.ID(), p.ID())
		}

		_, err = repo.GetByName("user-5", "Unnamed")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("error = %v, want ErrPlaylistNotFound", err)
		}
	})
}

func TestLibraryTrackRepository(t *testing.T) {
	db := th.MustOpenDB(t)
	repo := NewLibraryTrackRepository(db)

	seed := []models.Track{
		{Title: "Karma Police", Artist: "Radiohead", Album: "OK Computer", Duration: 261, ISRC: "GBAYE9700041"},
		{Title: "Paranoid Android", Artist: "Radiohead", Album: "OK Computer", Duration: 386},
		{Title: "Teardrop", Artist: "Massive Attack", Album: "Mezzanine", Duration: 330},
	}
	for _, tr := range seed {
		if err := repo.Create(models.NewLibraryTrack(0, tr)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	t.Run("find by isrc", func(t *testing.T) {
		hits, err := repo.FindByISRC("GBAYE9700041")
		if err != nil {
			t.Fatalf("FindByISRC failed: %v", err)
		}
		if len(hits) != 1 || hits[0].Track().Title != "Karma Police" {
			t.Errorf("hits = %d, want the one matching track", len(hits))
		}

		none, err := repo.FindByISRC("ZZZZZ0000000")
		if err != nil {
			t.Fatalf("FindByISRC failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("hits = %d, want 0", len(none))
		}
	})

	t.Run("search title artist is a contains match", func(t *testing.T) {
		hits, err := repo.SearchTitleArtist("karma", "radiohead", 10)
		if err != nil {
			t.Fatalf("SearchTitleArtist failed: %v", err)
		}
		if len(hits) != 1 {
			t.Errorf("hits = %d, want 1", len(hits))
		}
	})

	t.Run("like wildcards are escaped", func(t *testing.T) {
		hits, err := repo.SearchTitleArtist("%", "%", 10)
		if err != nil {
			t.Fatalf("SearchTitleArtist failed: %v", err)
		}
		if len(hits) != 0 {
			t.Errorf("hits = %d, want 0 for a literal percent sign", len(hits))
		}
	})

	t.Run("limit caps results", func(t *testing.T) {
		hits, err := repo.SearchTitleArtist("a", "radiohead", 1)
		if err != nil {
			t.Fatalf("SearchTitleArtist failed: %v", err)
		}
		if len(hits) != 1 {
			t.Errorf("hits = %d, want capped at 1", len(hits))
		}
	})
}
