// package ui styles terminal output for the import CLI
package ui

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tonearm/tonearm/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Title renders a section heading.
func Title(text string) string {
	return styles.title.Render(text)
}

// Status renders a match status with its conventional color.
func Status(s models.MatchStatus) string {
	switch s {
	case models.MatchStatusMatched:
		return styles.ok.Render(string(s))
	case models.MatchStatusPendingReview:
		return styles.warn.Render(string(s))
	case models.MatchStatusNoMatch:
		return styles.err.Render(string(s))
	default:
		return styles.help.Render(string(s))
	}
}

// RenderJobSummary renders the post-import summary shown by the CLI.
func RenderJobSummary(job *models.ImportJob) string {
	var buf bytes.Buffer

	buf.WriteString(Title(fmt.Sprintf("Import %s - %s", job.ID(), job.PlaylistName())))
	buf.WriteString("\n")

	switch job.Status() {
	case models.JobStatusCompleted:
		buf.WriteString(styles.ok.Render("completed"))
	case models.JobStatusFailed:
		buf.WriteString(styles.err.Render("failed"))
		if job.ErrorMessage() != "" {
			buf.WriteString(": " + job.ErrorMessage())
		}
	default:
		buf.WriteString(styles.warn.Render(string(job.Status())))
	}
	buf.WriteString("\n\n")

	buf.WriteString(fmt.Sprintf("  processed  %d/%d\n", job.ProcessedSongs(), job.TotalSongs()))
	buf.WriteString(fmt.Sprintf("  matched    %d\n", job.MatchedSongs()))
	buf.WriteString(fmt.Sprintf("  review     %d\n", job.PendingReviewSongs()))
	buf.WriteString(fmt.Sprintf("  unmatched  %d\n", job.UnmatchedSongs()))
	if job.SkippedSongs() > 0 {
		buf.WriteString(fmt.Sprintf("  skipped    %d\n", job.SkippedSongs()))
	}

	if job.CreatedPlaylistID() != "" {
		buf.WriteString("\n" + styles.help.Render("playlist "+job.CreatedPlaylistID()) + "\n")
	}

	return buf.String()
}

// RenderResultLine renders one song's match outcome as a single line.
func RenderResultLine(result models.SongMatchResult) string {
	line := fmt.Sprintf("%s - %s [%s]", result.Song.Artist, result.Song.Title, Status(result.Status))
	if result.Selected != nil {
		line += styles.help.Render(fmt.Sprintf(" -> %s (%.0f)", result.Selected.SongID, result.Selected.Score))
	}
	return line
}
