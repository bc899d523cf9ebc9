package parser

import "strings"

// DetectFormat inspects the leading content and returns the most likely
// format. It is a total function: content matching no heuristic returns
// FormatUnknown rather than an error so Validate can report cleanly.
//
// Heuristics run in order over the first non-whitespace characters:
// "#EXTM3U"/"#" => M3U, "<?xml"/"<playlist" => XSPF, "{"/"[" => JSON,
// a header line naming both a track-like and an artist-like column => CSV.
func DetectFormat(content string) Format {
	trimmed := strings.TrimLeft(content, " \t\r\n")
	if trimmed == "" {
		return FormatUnknown
	}

	switch {
	case strings.HasPrefix(trimmed, "#EXTM3U"), strings.HasPrefix(trimmed, "#"):
		return FormatM3U
	case strings.HasPrefix(trimmed, "<?xml"), strings.HasPrefix(trimmed, "<playlist"):
		return FormatXSPF
	case strings.HasPrefix(trimmed, "{"), strings.HasPrefix(trimmed, "["):
		return FormatJSON
	}

	if headerLine, _, _ := strings.Cut(trimmed, "\n"); isTabularHeader(headerLine) {
		return FormatCSV
	}

	return FormatUnknown
}

// isTabularHeader reports whether a line looks like a CSV header with both a
// track-like and an artist-like column.
func isTabularHeader(line string) bool {
	lower := strings.ToLower(line)
	if !strings.ContainsAny(lower, ",\t") {
		return false
	}

	hasTitle := false
	hasArtist := false
	for _, col := range splitHeader(lower) {
		if isTitleColumn(col) {
			hasTitle = true
		}
		if isArtistColumn(col) {
			hasArtist = true
		}
	}
	return hasTitle && hasArtist
}

func splitHeader(line string) []string {
	sep := ","
	if strings.Contains(line, "\t") {
		sep = "\t"
	}
	cols := strings.Split(line, sep)
	for i := range cols {
		cols[i] = strings.TrimSpace(strings.Trim(cols[i], `"`))
	}
	return cols
}

func isTitleColumn(col string) bool {
	switch col {
	case "title", "track", "track name", "song", "song name", "name":
		return true
	}
	return false
}

func isArtistColumn(col string) bool {
	switch col {
	case "artist", "artists", "artist name", "creator", "artist name(s)":
		return true
	}
	return false
}
