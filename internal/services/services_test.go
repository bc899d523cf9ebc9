package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/repositories"
	"github.com/tonearm/tonearm/internal/shared"
	th "github.com/tonearm/tonearm/internal/testing"
)

func newLibrarySearcher(t *testing.T) *LibrarySearcher {
	t.Helper()

	db := th.MustOpenDB(t)
	repo := repositories.NewLibraryTrackRepository(db)

	seed := []models.Track{
		{Title: "Karma Police", Artist: "Radiohead", Album: "OK Computer", Duration: 261, ISRC: "GBAYE9700041"},
		{Title: "Teardrop", Artist: "Massive Attack", Album: "Mezzanine", Duration: 330},
	}
	for _, tr := range seed {
		if err := repo.Create(models.NewLibraryTrack(0, tr)); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	return NewLibrarySearcher(repo, 10)
}

func TestLibrarySearcher(t *testing.T) {
	searcher := newLibrarySearcher(t)
	ctx := context.Background()

	t.Run("isrc lookup", func(t *testing.T) {
		hits, err := searcher.SearchByISRC(ctx, "GBAYE9700041")
		if err != nil {
			t.Fatalf("SearchByISRC failed: %v", err)
		}
		if len(hits) != 1 {
			t.Fatalf("hits = %d, want 1", len(hits))
		}
		if hits[0].Platform != PlatformLibrary || hits[0].Title != "Karma Police" {
			t.Errorf("hit = %+v", hits[0])
		}
		if hits[0].SongID == "" {
			t.Error("candidate has no song id")
		}
	})

	t.Run("empty isrc returns nothing", func(t *testing.T) {
		hits, err := searcher.SearchByISRC(ctx, "")
		if err != nil || len(hits) != 0 {
			t.Errorf("hits = %d, err = %v, want none", len(hits), err)
		}
	})

	t.Run("title artist lookup", func(t *testing.T) {
		hits, err := searcher.SearchByTitleArtist(ctx, "teardrop", "massive attack")
		if err != nil {
			t.Fatalf("SearchByTitleArtist failed: %v", err)
		}
		if len(hits) != 1 || hits[0].Title != "Teardrop" {
			t.Errorf("hits = %+v", hits)
		}
	})

	t.Run("falls back to title only", func(t *testing.T) {
		hits, err := searcher.SearchByTitleArtist(ctx, "teardrop", "someone else entirely")
		if err != nil {
			t.Fatalf("SearchByTitleArtist failed: %v", err)
		}
		if len(hits) != 1 {
			t.Errorf("hits = %d, want the title-only retry to find the track", len(hits))
		}
	})
}

func TestCatalogSearcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "test-token", "token_type": "Bearer", "expires_in": 3600})
	})

	var lastQuery string
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		lastQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"tracks": map[string]any{
				"items": []map[string]any{{
					"id":           "cat-1",
					"name":         "Karma Police",
					"artists":      []map[string]string{{"id": "a1", "name": "Radiohead"}},
					"album":        map[string]string{"id": "al1", "name": "OK Computer"},
					"duration_ms":  261000,
					"external_ids": map[string]string{"isrc": "GBAYE9700041"},
				}},
			},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	searcher := NewCatalogSearcher(shared.CatalogConfig{
		Platform:     "spotify",
		BaseURL:      srv.URL,
		TokenURL:     srv.URL + "/token",
		ClientID:     "id",
		ClientSecret: "secret",
	}, 10)

	ctx := context.Background()

	t.Run("title artist search", func(t *testing.T) {
		hits, err := searcher.SearchByTitleArtist(ctx, "Karma Police", "Radiohead")
		if err != nil {
			t.Fatalf("SearchByTitleArtist failed: %v", err)
		}
		if len(hits) != 1 {
			t.Fatalf("hits = %d, want 1", len(hits))
		}
		if hits[0].SongID != "cat-1" || hits[0].Platform != "spotify" {
			t.Errorf("hit = %+v", hits[0])
		}
		if hits[0].Duration != 261 {
			t.Errorf("duration = %d, want milliseconds converted to 261", hits[0].Duration)
		}
		if lastQuery != "track:Karma Police artist:Radiohead" {
			t.Errorf("query = %q", lastQuery)
		}
	})

	t.Run("isrc search uses the isrc filter", func(t *testing.T) {
		if _, err := searcher.SearchByISRC(ctx, "GBAYE9700041"); err != nil {
			t.Fatalf("SearchByISRC failed: %v", err)
		}
		if lastQuery != "isrc:GBAYE9700041" {
			t.Errorf("query = %q", lastQuery)
		}
	})

	t.Run("non-2xx is a search failure", func(t *testing.T) {
		broken := NewCatalogSearcher(shared.CatalogConfig{
			Platform: "spotify",
			BaseURL:  srv.URL + "/missing",
			TokenURL: srv.URL + "/token",
			ClientID: "id",
		}, 10)

		if _, err := broken.SearchByTitleArtist(ctx, "x", "y"); err == nil {
			t.Error("expected error for a failing endpoint")
		}
	})
}

func TestFilterSearchers(t *testing.T) {
	library := &th.MockSearcher{Platform: "library"}
	catalog := &th.MockSearcher{Platform: "spotify"}
	all := []Searcher{library, catalog}

	if got := FilterSearchers(all, nil); len(got) != 2 {
		t.Errorf("empty filter = %d searchers, want all", len(got))
	}

	got := FilterSearchers(all, []string{"spotify"})
	if len(got) != 1 || got[0].Name() != "spotify" {
		t.Errorf("filtered = %+v", got)
	}

	if got := FilterSearchers(all, []string{"tidal"}); len(got) != 0 {
		t.Errorf("unknown platform = %d searchers, want 0", len(got))
	}
}
