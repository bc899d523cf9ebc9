package models

// Track represents a song parsed from a playlist file.
// Immutable once produced by the parser.
type Track struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	Duration int    `json:"duration,omitempty"` // Duration in seconds
	ISRC     string `json:"isrc,omitempty"`     // International Standard Recording Code for matching
	SourceID string `json:"sourceId,omitempty"`
}

// Playlist represents playlist metadata independent of any source format.
type Playlist struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TrackCount  int    `json:"trackCount,omitempty"`
}

// PlaylistExport is the canonical in-memory playlist: metadata plus the
// ordered track listing. One is produced per import at parse time.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// MatchStatus classifies the outcome of matching one imported song.
type MatchStatus string

const (
	MatchStatusMatched       MatchStatus = "matched"
	MatchStatusPendingReview MatchStatus = "pending_review"
	MatchStatusNoMatch       MatchStatus = "no_match"
	MatchStatusSkipped       MatchStatus = "skipped"
)

// Valid reports whether s is one of the known match statuses.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusMatched, MatchStatusPendingReview, MatchStatusNoMatch, MatchStatusSkipped:
		return true
	}
	return false
}

// MatchCandidate is a catalog song returned by a searcher as a possible
// match. Score is a 0-100 confidence estimate filled in by the matcher.
type MatchCandidate struct {
	Platform string  `json:"platform"`
	SongID   string  `json:"songId"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album,omitempty"`
	Duration int     `json:"duration,omitempty"`
	Score    float64 `json:"score"`
}

// SongMatchResult holds the match outcome for one imported song.
// Candidates are ordered best-first and capped by the matcher. Selected and
// Status may be changed by the caller during the review phase.
type SongMatchResult struct {
	Song       Track            `json:"originalSong"`
	Candidates []MatchCandidate `json:"candidates,omitempty"`
	Selected   *MatchCandidate  `json:"selectedMatch,omitempty"`
	Status     MatchStatus      `json:"status"`
	Error      string           `json:"error,omitempty"`
}

// JobStatus describes the lifecycle state of an import job.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the job can no longer transition.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
