// package parser normalizes textual playlist formats into the canonical
// in-memory playlist consumed by the matcher.
//
// Four encodings are supported: M3U/EXTM3U, XSPF (XML), the canonical JSON
// shape, and tabular CSV exports. Parsing follows a partial-success policy:
// malformed entries are skipped and recorded as warnings instead of failing
// the whole parse.
package parser

import (
	"fmt"
	"strings"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/shared"
)

// Format identifies a supported playlist encoding.
type Format string

const (
	FormatM3U     Format = "m3u"
	FormatXSPF    Format = "xspf"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatUnknown Format = "unknown"
)

// ParseFormat maps a caller-supplied hint string to a Format.
// Unrecognized or empty hints map to FormatUnknown.
func ParseFormat(hint string) Format {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "m3u", "m3u8", "extm3u":
		return FormatM3U
	case "xspf", "xml":
		return FormatXSPF
	case "json":
		return FormatJSON
	case "csv", "tsv":
		return FormatCSV
	default:
		return FormatUnknown
	}
}

// Fallback metadata for entries missing a title or artist. Parse guarantees
// every track it returns has both fields non-empty.
const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
)

// ParseResult is the outcome of a successful parse.
type ParseResult struct {
	Playlist models.PlaylistExport `json:"playlist"`
	Format   Format                `json:"format"`
	Warnings []string              `json:"warnings,omitempty"`
}

// ValidationResult is the outcome of the pre-flight structural check.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Parse normalizes playlist content into the canonical playlist.
//
// When hint is FormatUnknown the format is detected from the leading content.
// Content that cannot be attributed to any format, or that fails the chosen
// format's structural rules, returns an error; individual malformed entries
// only produce warnings.
func Parse(content string, hint Format) (*ParseResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: nothing to parse", shared.ErrEmptyContent)
	}

	format := hint
	if format == FormatUnknown || format == "" {
		format = DetectFormat(content)
	}

	var (
		export   *models.PlaylistExport
		warnings []string
		err      error
	)

	switch format {
	case FormatM3U:
		export, warnings, err = parseM3U(content)
	case FormatXSPF:
		export, warnings, err = parseXSPF(content)
	case FormatJSON:
		export, warnings, err = parseJSON(content)
	case FormatCSV:
		export, warnings, err = parseCSV(content)
	default:
		return nil, fmt.Errorf("%w: content does not match any supported format", shared.ErrUnknownFormat)
	}
	if err != nil {
		return nil, err
	}

	fillPlaceholders(export)
	export.Playlist.TrackCount = len(export.Tracks)

	return &ParseResult{Playlist: *export, Format: format, Warnings: warnings}, nil
}

// Validate is the cheap pre-flight contract used before committing to a full
// parse. It is pure and deterministic: identical content yields identical
// results and no state is touched.
func Validate(content string, hint Format) *ValidationResult {
	result, err := Parse(content, hint)
	if err != nil {
		return &ValidationResult{Valid: false, Errors: []string{err.Error()}}
	}

	warnings := result.Warnings
	if len(result.Playlist.Tracks) == 0 {
		warnings = append(warnings, "playlist contains no songs")
	}

	return &ValidationResult{Valid: true, Warnings: warnings}
}

// fillPlaceholders guarantees non-empty title and artist on every track.
func fillPlaceholders(export *models.PlaylistExport) {
	for i := range export.Tracks {
		if strings.TrimSpace(export.Tracks[i].Title) == "" {
			export.Tracks[i].Title = UnknownTitle
		}
		if strings.TrimSpace(export.Tracks[i].Artist) == "" {
			export.Tracks[i].Artist = UnknownArtist
		}
	}
}
