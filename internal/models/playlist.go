package models

import (
	"fmt"
	"time"
)

// PersistedPlaylist is a materialized playlist owned by a user.
//
// SongCount is a denormalized counter refreshed from the true row count after
// every insertion; playlist_songs rows are the source of truth.
type PersistedPlaylist struct {
	entity
	sequence    int
	userID      string
	name        string
	description string
	songCount   int
}

// NewPersistedPlaylist creates a playlist aggregate for the given user.
// The ID is assigned by the repository on insert.
func NewPersistedPlaylist(sequence int, userID, name, description string) *PersistedPlaylist {
	return &PersistedPlaylist{
		entity:      newEntity(),
		sequence:    sequence,
		userID:      userID,
		name:        name,
		description: description,
	}
}

func (p *PersistedPlaylist) Sequence() int       { return p.sequence }
func (p *PersistedPlaylist) UserID() string      { return p.userID }
func (p *PersistedPlaylist) Name() string        { return p.name }
func (p *PersistedPlaylist) Description() string { return p.description }
func (p *PersistedPlaylist) SongCount() int      { return p.songCount }

func (p *PersistedPlaylist) SetSequence(v int)       { p.sequence = v }
func (p *PersistedPlaylist) SetName(v string)        { p.name = v }
func (p *PersistedPlaylist) SetDescription(v string) { p.description = v }
func (p *PersistedPlaylist) SetSongCount(v int)      { p.songCount = v }

// Validate checks the playlist's data before persistence.
func (p *PersistedPlaylist) Validate() error {
	if p.userID == "" {
		return fmt.Errorf("playlist requires a user id")
	}
	if p.name == "" {
		return fmt.Errorf("playlist requires a name")
	}
	if p.songCount < 0 {
		return fmt.Errorf("song count cannot be negative")
	}
	return nil
}

// PlaylistSong is a junction row linking a playlist to a song.
// Positions within a playlist are a contiguous 0-based sequence with no
// duplicate song ids; the materializer is the only writer of positions.
type PlaylistSong struct {
	PlaylistID string    `json:"playlistId"`
	SongID     string    `json:"songId"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
}
