package models

import "fmt"

// LibraryTrack is a song in the local catalog, queried by the library
// searcher during matching.
type LibraryTrack struct {
	entity
	sequence int
	track    Track
}

// NewLibraryTrack wraps a Track DTO in a persistable entity.
func NewLibraryTrack(sequence int, track Track) *LibraryTrack {
	return &LibraryTrack{
		entity:   newEntity(),
		sequence: sequence,
		track:    track,
	}
}

func (t *LibraryTrack) Sequence() int     { return t.sequence }
func (t *LibraryTrack) Track() Track      { return t.track }
func (t *LibraryTrack) SetSequence(v int) { t.sequence = v }
func (t *LibraryTrack) SetTrack(v Track)  { t.track = v }

// Validate checks the track's data before persistence.
func (t *LibraryTrack) Validate() error {
	if t.track.Title == "" {
		return fmt.Errorf("library track requires a title")
	}
	if t.track.Artist == "" {
		return fmt.Errorf("library track requires an artist")
	}
	return nil
}
