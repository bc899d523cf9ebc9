package matcher

import "github.com/tonearm/tonearm/internal/models"

// Score bounds and weights. Title similarity dominates artist similarity;
// a duration within two seconds of the original earns a small bonus.
const (
	MaxScore      = 100.0
	titleWeight   = 0.7
	artistWeight  = 0.3
	durationBonus = 10.0
	durationSlack = 2 // seconds
)

// score computes the 0-100 confidence that candidate matches song.
//
// Text similarity fills the band below MaxScore-durationBonus, so the
// duration bonus is order-preserving: a candidate with the right duration
// always outranks an otherwise identical one without it. Only a perfect
// text match with a matching duration (or an exact ISRC hit, which skips
// scoring entirely) reaches MaxScore.
func (m *Matcher) score(song models.Track, candidate models.MatchCandidate) float64 {
	titleSim := similarity(m.norm.normalize(song.Title), m.norm.normalize(candidate.Title))
	artistSim := similarity(m.norm.normalize(song.Artist), m.norm.normalize(candidate.Artist))

	score := (titleSim*titleWeight + artistSim*artistWeight) * (MaxScore - durationBonus)

	if song.Duration > 0 && candidate.Duration > 0 {
		diff := song.Duration - candidate.Duration
		if diff < 0 {
			diff = -diff
		}
		if diff <= durationSlack {
			score += durationBonus
		}
	}

	return score
}

// similarity returns 1 - levenshtein(s1, s2)/max(len(s1), len(s2)),
// i.e. 1.0 for identical strings and 0.0 for completely different ones.
func similarity(s1, s2 string) float64 {
	if s1 == s2 {
		if s1 == "" {
			return 0
		}
		return 1
	}
	if s1 == "" || s2 == "" {
		return 0
	}

	distance := levenshtein(s1, s2)
	longest := len([]rune(s1))
	if l2 := len([]rune(s2)); l2 > longest {
		longest = l2
	}

	return 1.0 - float64(distance)/float64(longest)
}

// levenshtein computes the edit distance between two strings using a
// two-row dynamic programming table.
func levenshtein(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)

	for j := 0; j <= len(r2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
