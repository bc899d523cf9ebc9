// package services defines the Searcher capability used by the matcher to
// look up candidate songs on a platform.
//
// Implementations: the local library (SQLite) and a Spotify-style catalog API.
package services

import (
	"context"

	"github.com/tonearm/tonearm/internal/models"
)

// Searcher looks up candidate songs on one platform.
//
// The matcher treats searchers as an ordered, pluggable set: multiple
// platforms may be queried per song and results are merged before scoring.
type Searcher interface {
	// SearchByISRC returns candidates whose ISRC matches exactly.
	// A searcher that cannot support ISRC lookup returns an empty slice, not an error.
	SearchByISRC(ctx context.Context, isrc string) ([]models.MatchCandidate, error)

	// SearchByTitleArtist returns candidates for a title/artist pair.
	SearchByTitleArtist(ctx context.Context, title, artist string) ([]models.MatchCandidate, error)

	// Name returns the platform identifier (e.g. "library", "spotify").
	Name() string
}

// FilterSearchers returns the searchers whose names appear in platforms,
// preserving the original order. An empty platform list selects everything.
func FilterSearchers(searchers []Searcher, platforms []string) []Searcher {
	if len(platforms) == 0 {
		return searchers
	}

	wanted := make(map[string]bool, len(platforms))
	for _, p := range platforms {
		wanted[p] = true
	}

	var filtered []Searcher
	for _, s := range searchers {
		if wanted[s.Name()] {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
