package models

import (
	"fmt"
	"time"
)

// ImportJob is the persisted state machine for one playlist import.
//
// A job is created with status processing, is mutated exclusively by the
// background matching routine and by the later confirmation step, and is
// terminal once status is completed or failed. The full ordered result list
// is retained for audit and replay even after completion.
type ImportJob struct {
	entity
	sequence            int
	userID              string
	sourceFormat        string
	targetPlatform      string
	playlistName        string
	playlistDescription string
	status              JobStatus
	totalSongs          int
	processedSongs      int
	matchedSongs        int
	unmatchedSongs      int
	pendingReviewSongs  int
	skippedSongs        int
	results             []SongMatchResult
	createdPlaylistID   string
	errorMessage        string
	startedAt           *time.Time
	completedAt         *time.Time
}

// NewImportJob creates an ImportJob in the processing state with the started
// timestamp set. The ID is assigned by the repository on insert.
func NewImportJob(sequence int, userID, sourceFormat, targetPlatform, playlistName, playlistDescription string) *ImportJob {
	now := time.Now()
	return &ImportJob{
		entity:              newEntity(),
		sequence:            sequence,
		userID:              userID,
		sourceFormat:        sourceFormat,
		targetPlatform:      targetPlatform,
		playlistName:        playlistName,
		playlistDescription: playlistDescription,
		status:              JobStatusProcessing,
		startedAt:           &now,
	}
}

func (j *ImportJob) Sequence() int               { return j.sequence }
func (j *ImportJob) UserID() string              { return j.userID }
func (j *ImportJob) SourceFormat() string        { return j.sourceFormat }
func (j *ImportJob) TargetPlatform() string      { return j.targetPlatform }
func (j *ImportJob) PlaylistName() string        { return j.playlistName }
func (j *ImportJob) PlaylistDescription() string { return j.playlistDescription }
func (j *ImportJob) Status() JobStatus           { return j.status }
func (j *ImportJob) TotalSongs() int             { return j.totalSongs }
func (j *ImportJob) ProcessedSongs() int         { return j.processedSongs }
func (j *ImportJob) MatchedSongs() int           { return j.matchedSongs }
func (j *ImportJob) UnmatchedSongs() int         { return j.unmatchedSongs }
func (j *ImportJob) PendingReviewSongs() int     { return j.pendingReviewSongs }
func (j *ImportJob) SkippedSongs() int           { return j.skippedSongs }
func (j *ImportJob) Results() []SongMatchResult  { return j.results }
func (j *ImportJob) CreatedPlaylistID() string   { return j.createdPlaylistID }
func (j *ImportJob) ErrorMessage() string        { return j.errorMessage }
func (j *ImportJob) StartedAt() *time.Time       { return j.startedAt }
func (j *ImportJob) CompletedAt() *time.Time     { return j.completedAt }

func (j *ImportJob) SetSequence(v int)              { j.sequence = v }
func (j *ImportJob) SetStatus(v JobStatus)          { j.status = v }
func (j *ImportJob) SetTotalSongs(v int)            { j.totalSongs = v }
func (j *ImportJob) SetProcessedSongs(v int)        { j.processedSongs = v }
func (j *ImportJob) SetMatchedSongs(v int)          { j.matchedSongs = v }
func (j *ImportJob) SetUnmatchedSongs(v int)        { j.unmatchedSongs = v }
func (j *ImportJob) SetPendingReviewSongs(v int)    { j.pendingReviewSongs = v }
func (j *ImportJob) SetSkippedSongs(v int)          { j.skippedSongs = v }
func (j *ImportJob) SetResults(v []SongMatchResult) { j.results = v }
func (j *ImportJob) SetCreatedPlaylistID(v string)  { j.createdPlaylistID = v }
func (j *ImportJob) SetErrorMessage(v string)       { j.errorMessage = v }
func (j *ImportJob) SetStartedAt(t *time.Time)      { j.startedAt = t }
func (j *ImportJob) SetCompletedAt(t *time.Time)    { j.completedAt = t }

// Validate checks the job's structural invariants before persistence.
func (j *ImportJob) Validate() error {
	if j.userID == "" {
		return fmt.Errorf("import job requires a user id")
	}
	if j.playlistName == "" {
		return fmt.Errorf("import job requires a playlist name")
	}
	switch j.status {
	case JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
	default:
		return fmt.Errorf("invalid job status: %s", j.status)
	}
	if j.processedSongs > j.totalSongs {
		return fmt.Errorf("processed songs (%d) exceeds total songs (%d)", j.processedSongs, j.totalSongs)
	}
	classified := j.matchedSongs + j.unmatchedSongs + j.pendingReviewSongs + j.skippedSongs
	if classified > j.processedSongs {
		return fmt.Errorf("classified songs (%d) exceeds processed songs (%d)", classified, j.processedSongs)
	}
	for i := range j.results {
		if j.results[i].Status == MatchStatusMatched && j.results[i].Selected == nil {
			return fmt.Errorf("matched result %d has no selected match", i)
		}
	}
	return nil
}

// ImportJobProjection is the read-only JSON view of a job returned to callers.
type ImportJobProjection struct {
	ImportJobID         string            `json:"importJobId"`
	SourceFormat        string            `json:"sourceFormat"`
	TargetPlatform      string            `json:"targetPlatform"`
	PlaylistName        string            `json:"playlistName"`
	PlaylistDescription string            `json:"playlistDescription,omitempty"`
	Status              JobStatus         `json:"status"`
	TotalSongs          int               `json:"totalSongs"`
	ProcessedSongs      int               `json:"processedSongs"`
	MatchedSongs        int               `json:"matchedSongs"`
	UnmatchedSongs      int               `json:"unmatchedSongs"`
	PendingReviewSongs  int               `json:"pendingReviewSongs"`
	SkippedSongs        int               `json:"skippedSongs"`
	MatchResults        []SongMatchResult `json:"matchResults"`
	CreatedPlaylistID   string            `json:"createdPlaylistId,omitempty"`
	ErrorMessage        string            `json:"errorMessage,omitempty"`
	StartedAt           *time.Time        `json:"startedAt,omitempty"`
	CompletedAt         *time.Time        `json:"completedAt,omitempty"`
}

// Projection builds the caller-facing view of the job.
func (j *ImportJob) Projection() ImportJobProjection {
	results := j.results
	if results == nil {
		results = []SongMatchResult{}
	}
	return ImportJobProjection{
		ImportJobID:         j.id,
		SourceFormat:        j.sourceFormat,
		TargetPlatform:      j.targetPlatform,
		PlaylistName:        j.playlistName,
		PlaylistDescription: j.playlistDescription,
		Status:              j.status,
		TotalSongs:          j.totalSongs,
		ProcessedSongs:      j.processedSongs,
		MatchedSongs:        j.matchedSongs,
		UnmatchedSongs:      j.unmatchedSongs,
		PendingReviewSongs:  j.pendingReviewSongs,
		SkippedSongs:        j.skippedSongs,
		MatchResults:        results,
		CreatedPlaylistID:   j.createdPlaylistID,
		ErrorMessage:        j.errorMessage,
		StartedAt:           j.startedAt,
		CompletedAt:         j.completedAt,
	}
}
