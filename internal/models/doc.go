// Package models defines domain entities and persistence interfaces for the tonearm import service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): format-independent playlist data
//   - [Track] : Song metadata with ISRC for catalog matching
//   - [Playlist] : Playlist name and description
//   - [PlaylistExport] : Canonical playlist with complete track listing
//   - [MatchCandidate] : A catalog song proposed as a match, with confidence score
//   - [SongMatchResult] : Per-song match outcome, mutable during review
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [ImportJob] : Import operations tracking progress, counters and results
//   - [PersistedPlaylist] : Materialized playlists with denormalized song counts
//   - [PlaylistSong] : Junction rows linking playlists to songs with dense ordering
//   - [LibraryTrack] : Local catalog rows queried by the library searcher
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
