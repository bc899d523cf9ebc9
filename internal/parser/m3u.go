package parser

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/tonearm/tonearm/internal/models"
)

// parseM3U handles line-oriented playlists, with or without the #EXTM3U
// header. An #EXTINF directive carries "duration,Artist - Title" metadata for
// the URI line that follows it; URI lines without a preceding directive fall
// back to the file name.
func parseM3U(content string) (*models.PlaylistExport, []string, error) {
	export := &models.PlaylistExport{}
	var warnings []string

	var pending *models.Track

	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			switch {
			case strings.HasPrefix(line, "#EXTM3U"):
				// header, nothing to record
			case strings.HasPrefix(line, "#PLAYLIST:"):
				export.Playlist.Name = strings.TrimSpace(strings.TrimPrefix(line, "#PLAYLIST:"))
			case strings.HasPrefix(line, "#EXTINF:"):
				track, err := parseExtInf(line)
				if err != nil {
					warnings = append(warnings, fmt.Sprintf("line %d: %v", i+1, err))
					pending = nil
					continue
				}
				pending = track
			}
			continue
		}

		// URI line commits the pending track, or stands alone
		track := pending
		pending = nil
		if track == nil {
			track = &models.Track{Title: titleFromURI(line)}
		}
		track.SourceID = line
		export.Tracks = append(export.Tracks, *track)
	}

	if pending != nil {
		warnings = append(warnings, "trailing #EXTINF directive without a URI was dropped")
	}

	return export, warnings, nil
}

// parseExtInf extracts duration, artist and title from an #EXTINF directive.
// The metadata portion splits on the first " - "; a value without the
// separator is treated as title-only.
func parseExtInf(line string) (*models.Track, error) {
	body := strings.TrimPrefix(line, "#EXTINF:")
	durationPart, meta, found := strings.Cut(body, ",")
	if !found {
		return nil, fmt.Errorf("malformed #EXTINF directive")
	}

	track := &models.Track{}
	if secs, err := strconv.ParseFloat(strings.TrimSpace(durationPart), 64); err == nil && secs > 0 {
		track.Duration = int(secs)
	}

	meta = strings.TrimSpace(meta)
	if artist, title, ok := strings.Cut(meta, " - "); ok {
		track.Artist = strings.TrimSpace(artist)
		track.Title = strings.TrimSpace(title)
	} else {
		track.Title = meta
	}

	return track, nil
}

// titleFromURI derives a display title from a bare URI entry.
func titleFromURI(uri string) string {
	base := path.Base(strings.ReplaceAll(uri, "\\", "/"))
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
}
