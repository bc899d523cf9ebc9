// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/shared"
)

// MockSearcher is a scriptable test double for [services.Searcher].
//
// Responses are keyed by ISRC and by shared.SongKey(title, artist); unkeyed
// lookups return the Default slice. Err, when set, fails every call.
type MockSearcher struct {
	Platform string
	ByISRC   map[string][]models.MatchCandidate
	ByQuery  map[string][]models.MatchCandidate
	Default  []models.MatchCandidate
	Err      error

	ISRCCalls  int
	QueryCalls int
}

func (m *MockSearcher) Name() string {
	if m.Platform == "" {
		return "mock"
	}
	return m.Platform
}

func (m *MockSearcher) SearchByISRC(ctx context.Context, isrc string) ([]models.MatchCandidate, error) {
	m.ISRCCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if hits, ok := m.ByISRC[isrc]; ok {
		return hits, nil
	}
	return nil, nil
}

func (m *MockSearcher) SearchByTitleArtist(ctx context.Context, title, artist string) ([]models.MatchCandidate, error) {
	m.QueryCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if hits, ok := m.ByQuery[shared.SongKey(title, artist)]; ok {
		return hits, nil
	}
	return m.Default, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// Candidate builds a MatchCandidate with the fields tests care about.
func Candidate(platform, songID, title, artist string, duration int) models.MatchCandidate {
	return models.MatchCandidate{
		Platform: platform,
		SongID:   songID,
		Title:    title,
		Artist:   artist,
		Duration: duration,
	}
}

// MustOpenDB opens a throwaway SQLite database under t.TempDir with the
// schema migrated, closed automatically when the test finishes.
func MustOpenDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := shared.NewDatabase(path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
