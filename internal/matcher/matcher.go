// package matcher scores candidate songs against imported tracks and
// classifies each track as matched, pending review, no match, or skipped.
//
// An exact ISRC hit short-circuits all further searcher calls for a song and
// scores at the maximum. Everything else falls back to normalized
// title/artist similarity.
package matcher

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/services"
)

// Options tunes a matching run.
type Options struct {
	Platforms     []string // searcher names to query; empty queries all
	Fuzzy         bool     // allow similarity matching below exact equality
	MinConfidence float64  // 0-100 score at which a match is auto-accepted
	MaxMatches    int      // candidates retained per song
}

// DefaultOptions returns the tuning used when the caller specifies nothing.
func DefaultOptions() Options {
	return Options{
		Fuzzy:         true,
		MinConfidence: 75,
		MaxMatches:    5,
	}
}

// Matcher classifies imported songs against a set of platform searchers.
type Matcher struct {
	norm   *normalizer
	logger *log.Logger
}

// New creates a Matcher. The logger may not be nil.
func New(logger *log.Logger) *Matcher {
	return &Matcher{norm: newNormalizer(), logger: logger}
}

// MatchSongs matches every song sequentially, preserving playlist order.
// A searcher failure for one song never aborts the batch.
func (m *Matcher) MatchSongs(ctx context.Context, songs []models.Track, searchers []services.Searcher, opts Options) []models.SongMatchResult {
	results := make([]models.SongMatchResult, len(songs))
	for i, song := range songs {
		results[i] = m.MatchSong(ctx, song, searchers, opts)
	}
	return results
}

// MatchSong queries the configured searchers for one song, scores the merged
// candidates, and classifies the outcome.
func (m *Matcher) MatchSong(ctx context.Context, song models.Track, searchers []services.Searcher, opts Options) models.SongMatchResult {
	if opts.MaxMatches <= 0 {
		opts.MaxMatches = DefaultOptions().MaxMatches
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = DefaultOptions().MinConfidence
	}

	result := models.SongMatchResult{Song: song, Status: models.MatchStatusNoMatch}
	active := services.FilterSearchers(searchers, opts.Platforms)

	// ISRC pass: an exact hit wins outright and stops the search.
	if song.ISRC != "" {
		for _, s := range active {
			candidates, err := s.SearchByISRC(ctx, song.ISRC)
			if err != nil {
				m.logger.Warn("isrc lookup failed", "platform", s.Name(), "isrc", song.ISRC, "error", err)
				result.Error = err.Error()
				continue
			}
			if len(candidates) == 0 {
				continue
			}

			hit := candidates[0]
			hit.Score = MaxScore
			result.Candidates = []models.MatchCandidate{hit}
			result.Selected = &result.Candidates[0]
			result.Status = models.MatchStatusMatched
			result.Error = ""
			return result
		}
	}

	// Title/artist pass across all searchers, merged before scoring.
	var merged []models.MatchCandidate
	seen := make(map[string]bool)

	for _, s := range active {
		candidates, err := s.SearchByTitleArtist(ctx, song.Title, song.Artist)
		if err != nil {
			m.logger.Warn("search failed", "platform", s.Name(), "title", song.Title, "artist", song.Artist, "error", err)
			result.Error = err.Error()
			continue
		}

		for _, c := range candidates {
			key := c.Platform + "|" + c.SongID
			if seen[key] {
				continue
			}
			seen[key] = true

			if !opts.Fuzzy && !m.exactMatch(song, c) {
				continue
			}

			c.Score = m.score(song, c)
			merged = append(merged, c)
		}
	}

	if len(merged) == 0 {
		return result
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > opts.MaxMatches {
		merged = merged[:opts.MaxMatches]
	}

	result.Candidates = merged
	result.Error = ""

	if merged[0].Score >= opts.MinConfidence {
		result.Selected = &result.Candidates[0]
		result.Status = models.MatchStatusMatched
	} else {
		result.Status = models.MatchStatusPendingReview
	}

	return result
}

// exactMatch reports whether the candidate's normalized title and artist are
// identical to the song's. Used when fuzzy matching is disabled.
func (m *Matcher) exactMatch(song models.Track, candidate models.MatchCandidate) bool {
	return m.norm.normalize(song.Title) == m.norm.normalize(candidate.Title) &&
		m.norm.normalize(song.Artist) == m.norm.normalize(candidate.Artist)
}
