package parser

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/shared"
)

// xspfPlaylist mirrors the XSPF document structure.
// Durations are carried in milliseconds per the XSPF spec.
type xspfPlaylist struct {
	XMLName    xml.Name    `xml:"playlist"`
	Title      string      `xml:"title"`
	Annotation string      `xml:"annotation"`
	Tracks     []xspfTrack `xml:"trackList>track"`
}

type xspfTrack struct {
	Title      string `xml:"title"`
	Creator    string `xml:"creator"`
	Album      string `xml:"album"`
	Duration   int    `xml:"duration"`
	Identifier string `xml:"identifier"`
	Location   string `xml:"location"`
}

// parseXSPF handles the XML playlist dialect. A document that does not
// deserialize at all is a structural error; individual empty tracks become
// warnings.
func parseXSPF(content string) (*models.PlaylistExport, []string, error) {
	var doc xspfPlaylist
	if err := xml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	export := &models.PlaylistExport{
		Playlist: models.Playlist{
			Name:        strings.TrimSpace(doc.Title),
			Description: strings.TrimSpace(doc.Annotation),
		},
	}

	var warnings []string
	for i, t := range doc.Tracks {
		if strings.TrimSpace(t.Title) == "" && strings.TrimSpace(t.Creator) == "" {
			warnings = append(warnings, fmt.Sprintf("track %d has no title or creator, skipped", i+1))
			continue
		}

		sourceID := t.Identifier
		if sourceID == "" {
			sourceID = t.Location
		}

		export.Tracks = append(export.Tracks, models.Track{
			Title:    strings.TrimSpace(t.Title),
			Artist:   strings.TrimSpace(t.Creator),
			Album:    strings.TrimSpace(t.Album),
			Duration: t.Duration / 1000,
			SourceID: sourceID,
		})
	}

	return export, warnings, nil
}
