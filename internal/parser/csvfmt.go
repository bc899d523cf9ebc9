package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/shared"
)

// csvColumns maps recognized header names to track fields.
type csvColumns struct {
	title      int
	artist     int
	album      int
	duration   int
	durationMS bool
	isrc       int
	id         int
}

// parseCSV handles tabular exports with a header row naming at least a
// track-like and an artist-like column. Rows that fail to parse or carry
// neither title nor artist are skipped with a warning.
func parseCSV(content string) (*models.PlaylistExport, []string, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if headerLine, _, _ := strings.Cut(strings.TrimLeft(content, " \t\r\n"), "\n"); strings.Contains(headerLine, "\t") {
		reader.Comma = '\t'
	}

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: missing header row: %v", shared.ErrInvalidInput, err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, nil, err
	}

	export := &models.PlaylistExport{}
	var warnings []string

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		track := trackFromRecord(record, cols)
		if track.Title == "" && track.Artist == "" {
			warnings = append(warnings, fmt.Sprintf("line %d has no title or artist, skipped", line))
			continue
		}
		export.Tracks = append(export.Tracks, track)
	}

	return export, warnings, nil
}

// mapColumns resolves header names to column indexes. Both a title and an
// artist column are required; everything else is optional.
func mapColumns(header []string) (csvColumns, error) {
	cols := csvColumns{title: -1, artist: -1, album: -1, duration: -1, isrc: -1, id: -1}

	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(strings.Trim(raw, `"`)))
		switch {
		case cols.title < 0 && isTitleColumn(name):
			cols.title = i
		case cols.artist < 0 && isArtistColumn(name):
			cols.artist = i
		case cols.album < 0 && (name == "album" || name == "album name"):
			cols.album = i
		case cols.duration < 0 && (name == "duration" || name == "duration (ms)" || name == "duration_ms" || name == "time"):
			cols.duration = i
			cols.durationMS = strings.Contains(name, "ms")
		case cols.isrc < 0 && name == "isrc":
			cols.isrc = i
		case cols.id < 0 && (name == "id" || name == "track id" || name == "uri"):
			cols.id = i
		}
	}

	if cols.title < 0 || cols.artist < 0 {
		return cols, fmt.Errorf("%w: header lacks title or artist column", shared.ErrInvalidInput)
	}
	return cols, nil
}

func trackFromRecord(record []string, cols csvColumns) models.Track {
	field := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	track := models.Track{
		Title:    field(cols.title),
		Artist:   field(cols.artist),
		Album:    field(cols.album),
		ISRC:     field(cols.isrc),
		SourceID: field(cols.id),
	}

	if raw := field(cols.duration); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			if cols.durationMS {
				v /= 1000
			}
			track.Duration = int(v)
		}
	}

	return track
}
