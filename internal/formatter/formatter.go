// package formatter provides functions to export playlist data to various formats (M3U, CSV, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/shared"
)

// ExportToM3U converts a PlaylistExport to extended M3U format.
//
// Each track becomes an #EXTINF directive followed by a location line; tracks
// without a source id fall back to an "Artist - Title" location so the output
// still round-trips through the parser.
func ExportToM3U(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("#EXTM3U\n")
	if export.Playlist.Name != "" {
		buf.WriteString(fmt.Sprintf("#PLAYLIST:%s\n", export.Playlist.Name))
	}

	for _, track := range export.Tracks {
		buf.WriteString(fmt.Sprintf("#EXTINF:%d,%s - %s\n", track.Duration, track.Artist, track.Title))

		location := track.SourceID
		if location == "" {
			location = fmt.Sprintf("%s - %s", track.Artist, track.Title)
		}
		buf.WriteString(location + "\n")
	}

	return buf.Bytes(), nil
}

// ExportToCSV converts a PlaylistExport to CSV format with columns: Title, Artist, Album, Duration, ISRC
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Artist", "Album", "Duration", "ISRC"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		record := []string{
			track.Title,
			track.Artist,
			track.Album,
			strconv.Itoa(track.Duration),
			track.ISRC,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a PlaylistExport to the canonical indented JSON shape.
func ExportToJSON(export *models.PlaylistExport) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode playlist JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToText converts a PlaylistExport to a plain text track listing.
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", export.Playlist.Name))
	if export.Playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", export.Playlist.Description))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(export.Tracks)))

	for i, track := range export.Tracks {
		duration := ""
		if track.Duration > 0 {
			duration = fmt.Sprintf(" [%s]", shared.FormatDuration(track.Duration))
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", i+1, track.Artist, track.Title, duration))
	}

	return buf.Bytes(), nil
}

// Export converts a PlaylistExport to the named format: m3u, csv, json, or text.
func Export(export *models.PlaylistExport, format string) ([]byte, error) {
	switch format {
	case "m3u":
		return ExportToM3U(export)
	case "csv":
		return ExportToCSV(export)
	case "json", "":
		return ExportToJSON(export)
	case "text", "txt":
		return ExportToText(export)
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport writes the formatted playlist to path, deriving a filename from
// the playlist name when path is empty. Returns the path written.
func WriteExport(export *models.PlaylistExport, format, path string) (string, error) {
	data, err := Export(export, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		ext := format
		if ext == "" {
			ext = "json"
		}
		path = fmt.Sprintf("%s.%s", export.Playlist.Name, ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
