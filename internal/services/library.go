package services

import (
	"context"
	"fmt"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/repositories"
)

// PlatformLibrary identifies the local library searcher.
const PlatformLibrary = "library"

// LibrarySearcher implements [Searcher] over the local library_tracks table.
type LibrarySearcher struct {
	repo  *repositories.LibraryTrackRepository
	limit int
}

// NewLibrarySearcher creates a searcher over the given repository.
// Limit caps the candidates returned per lookup.
func NewLibrarySearcher(repo *repositories.LibraryTrackRepository, limit int) *LibrarySearcher {
	if limit <= 0 {
		limit = 20
	}
	return &LibrarySearcher{repo: repo, limit: limit}
}

func (s *LibrarySearcher) Name() string { return PlatformLibrary }

// SearchByISRC returns library tracks whose ISRC matches exactly.
func (s *LibrarySearcher) SearchByISRC(ctx context.Context, isrc string) ([]models.MatchCandidate, error) {
	if isrc == "" {
		return nil, nil
	}

	tracks, err := s.repo.FindByISRC(isrc)
	if err != nil {
		return nil, fmt.Errorf("library isrc lookup failed: %w", err)
	}

	return s.candidates(tracks), nil
}

// SearchByTitleArtist returns library tracks containing the given title and
// artist terms.
func (s *LibrarySearcher) SearchByTitleArtist(ctx context.Context, title, artist string) ([]models.MatchCandidate, error) {
	tracks, err := s.repo.SearchTitleArtist(title, artist, s.limit)
	if err != nil {
		return nil, fmt.Errorf("library search failed: %w", err)
	}

	// Retry on title alone when the combined query finds nothing; artist
	// strings from foreign playlists often disagree with library tags.
	if len(tracks) == 0 && artist != "" {
		tracks, err = s.repo.SearchTitleArtist(title, "", s.limit)
		if err != nil {
			return nil, fmt.Errorf("library search failed: %w", err)
		}
	}

	return s.candidates(tracks), nil
}

func (s *LibrarySearcher) candidates(tracks []*models.LibraryTrack) []models.MatchCandidate {
	candidates := make([]models.MatchCandidate, 0, len(tracks))
	for _, lt := range tracks {
		t := lt.Track()
		candidates = append(candidates, models.MatchCandidate{
			Platform: PlatformLibrary,
			SongID:   lt.ID(),
			Title:    t.Title,
			Artist:   t.Artist,
			Album:    t.Album,
			Duration: t.Duration,
		})
	}
	return candidates
}
