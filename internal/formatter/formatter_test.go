package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/parser"
	"github.com/tonearm/tonearm/internal/shared"
	th "github.com/tonearm/tonearm/internal/testing"
)

func sampleExport() *models.PlaylistExport {
	return &models.PlaylistExport{
		Playlist: models.Playlist{Name: "Road Trip", Description: "Songs for the drive"},
		Tracks: []models.Track{
			{Title: "Karma Police", Artist: "Radiohead", Album: "OK Computer", Duration: 261, ISRC: "GBAYE9700041", SourceID: "lib:1"},
			{Title: "Teardrop", Artist: "Massive Attack", Album: "Mezzanine", Duration: 330},
		},
	}
}

func TestExportToM3URoundTrip(t *testing.T) {
	data, err := ExportToM3U(sampleExport())
	if err != nil {
		t.Fatalf("ExportToM3U failed: %v", err)
	}

	out := string(data)
	if !strings.HasPrefix(out, "#EXTM3U\n#PLAYLIST:Road Trip\n") {
		t.Errorf("missing header directives:\n%s", out)
	}
	if !strings.Contains(out, "#EXTINF:261,Radiohead - Karma Police\nlib:1\n") {
		t.Errorf("source id not used as location:\n%s", out)
	}
	if !strings.Contains(out, "Massive Attack - Teardrop\n") {
		t.Errorf("missing artist-title fallback location:\n%s", out)
	}

	// The output must parse back into the same track listing.
	result, err := parser.Parse(out, parser.FormatM3U)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if result.Playlist.Playlist.Name != "Road Trip" {
		t.Errorf("name = %q after round trip", result.Playlist.Playlist.Name)
	}
	if len(result.Playlist.Tracks) != 2 {
		t.Fatalf("tracks = %d after round trip, want 2", len(result.Playlist.Tracks))
	}
	if result.Playlist.Tracks[0].Title != "Karma Police" || result.Playlist.Tracks[0].Duration != 261 {
		t.Errorf("first track lost in round trip: %+v", result.Playlist.Tracks[0])
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(sampleExport())
	if err != nil {
		t.Fatalf("ExportToCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header plus 2 records", len(lines))
	}
	if lines[0] != "Title,Artist,Album,Duration,ISRC" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "Karma Police,Radiohead,OK Computer,261,GBAYE9700041" {
		t.Errorf("record = %q", lines[1])
	}
}

func TestExportToJSON(t *testing.T) {
	data, err := ExportToJSON(sampleExport())
	if err != nil {
		t.Fatalf("ExportToJSON failed: %v", err)
	}

	var decoded models.PlaylistExport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Playlist.Name != "Road Trip" || len(decoded.Tracks) != 2 {
		t.Errorf("decoded export = %+v", decoded)
	}
	if data[len(data)-1] != '\n' {
		t.Error("JSON export should end with a newline")
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(sampleExport())
	if err != nil {
		t.Fatalf("ExportToText failed: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, "Playlist: Road Trip") || !strings.Contains(out, "Tracks: 2") {
		t.Errorf("missing summary lines:\n%s", out)
	}
	if !strings.Contains(out, "1. Radiohead - Karma Police [4:21]") {
		t.Errorf("missing numbered track line:\n%s", out)
	}
}

func TestExportDispatch(t *testing.T) {
	export := sampleExport()

	for _, format := range []string{"m3u", "csv", "json", "", "text", "txt"} {
		if _, err := Export(export, format); err != nil {
			t.Errorf("Export(%q) failed: %v", format, err)
		}
	}

	_, err := Export(export, "xspf")
	if !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument for unsupported format", err)
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.m3u")
		written, err := WriteExport(sampleExport(), "m3u", path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != path {
			t.Errorf("written path = %q, want %q", written, path)
		}
		if !strings.HasPrefix(th.MustReadFile(t, path), "#EXTM3U") {
			t.Error("written file is not M3U")
		}
	})

	t.Run("derives filename from playlist name", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		written, err := WriteExport(sampleExport(), "json", "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != "Road Trip.json" {
			t.Errorf("derived path = %q, want Road Trip.json", written)
		}
		th.AssertFileExists(t, filepath.Join(dir, "Road Trip.json"))
	})
}
