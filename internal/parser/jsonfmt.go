package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/shared"
)

// parseJSON handles the canonical playlist shape. Both the full object form
// ({"playlist": {...}, "tracks": [...]}) and a bare track array are accepted.
func parseJSON(content string) (*models.PlaylistExport, []string, error) {
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "[") {
		var tracks []models.Track
		if err := json.Unmarshal([]byte(trimmed), &tracks); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		return pruneEmptyTracks(&models.PlaylistExport{Tracks: tracks})
	}

	var export models.PlaylistExport
	if err := json.Unmarshal([]byte(trimmed), &export); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	return pruneEmptyTracks(&export)
}

// pruneEmptyTracks drops entries with neither title nor artist, recording a
// warning for each.
func pruneEmptyTracks(export *models.PlaylistExport) (*models.PlaylistExport, []string, error) {
	var warnings []string
	kept := export.Tracks[:0]
	for i, t := range export.Tracks {
		if strings.TrimSpace(t.Title) == "" && strings.TrimSpace(t.Artist) == "" {
			warnings = append(warnings, fmt.Sprintf("track %d has no title or artist, skipped", i+1))
			continue
		}
		kept = append(kept, t)
	}
	export.Tracks = kept
	return export, warnings, nil
}
