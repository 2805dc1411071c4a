// Package report turns per-track measurements into the Dynamic Range
// report. The text rendering is a fixed-width layout whose exact bytes are
// part of the tool's contract; the JSON rendering carries the same data for
// machine consumers.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Track is the measurement row for one successfully analyzed file.
// Immutable once built.
type Track struct {
	Filename     string  `json:"filename"`
	DR           int     `json:"dr"`
	PeakDB       float64 `json:"peak_db"`
	RMSDB        float64 `json:"rms_db"`
	DurationSecs float64 `json:"duration_secs"`
	Channels     int     `json:"channels"`
	SampleRate   int     `json:"sample_rate"`
	BitDepth     int     `json:"bit_depth"`
}

// Failure records a file that produced no measurements.
type Failure struct {
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// Summary aggregates the successful tracks of one run. AlbumDR is the
// rounded mean of the per-track integer DR values.
type Summary struct {
	TrackCount int    `json:"track_count"`
	AlbumDR    int    `json:"album_dr"`
	MinDR      int    `json:"min_dr"`
	MaxDR      int    `json:"max_dr"`
	Rating     string `json:"rating"`
}

// Document is one complete report: everything the renderers need with no
// further computation. Summary is nil when no track succeeded.
type Document struct {
	GeneratedAt time.Time `json:"generated_at"`
	Folder      string    `json:"folder"`
	Tracks      []Track   `json:"tracks"`
	Failures    []Failure `json:"failures,omitempty"`
	Summary     *Summary  `json:"summary,omitempty"`
}

// Format selects a report rendering.
type Format string

const (
	FormatText Format = "txt"
	FormatJSON Format = "json"
)

// New assembles a Document from one run's outcomes. The folder path is
// canonicalized the way it will print.
func New(folder string, tracks []Track, failures []Failure) Document {
	doc := Document{
		GeneratedAt: time.Now(),
		Folder:      canonical(folder),
		Tracks:      tracks,
		Failures:    failures,
	}
	if len(tracks) == 0 {
		return doc
	}

	minDR, maxDR, sum := tracks[0].DR, tracks[0].DR, 0
	for _, t := range tracks {
		if t.DR < minDR {
			minDR = t.DR
		}
		if t.DR > maxDR {
			maxDR = t.DR
		}
		sum += t.DR
	}
	album := int(math.Round(float64(sum) / float64(len(tracks))))
	doc.Summary = &Summary{
		TrackCount: len(tracks),
		AlbumDR:    album,
		MinDR:      minDR,
		MaxDR:      maxDR,
		Rating:     Rating(album),
	}
	return doc
}

// Rating maps an album DR value to the standard's qualitative scale.
func Rating(albumDR int) string {
	switch {
	case albumDR >= 14:
		return "Excellent – wide dynamic range"
	case albumDR >= 10:
		return "Good"
	case albumDR >= 8:
		return "Acceptable"
	case albumDR >= 6:
		return "Compressed"
	default:
		return "Heavily brick-walled / clipped"
	}
}

// Text renders the document in the standard's fixed-width layout.
func Text(doc Document) string {
	heavy := strings.Repeat("═", 75)
	light := "  " + strings.Repeat("─", 73)
	short := "  " + strings.Repeat("─", 31)

	var b strings.Builder
	b.WriteString(heavy + "\n")
	b.WriteString("  Dynamic Range Report\n")
	fmt.Fprintf(&b, "  Generated : %s\n", doc.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "  Folder    : %s\n", doc.Folder)
	b.WriteString(heavy + "\n\n")

	fmt.Fprintf(&b, "  %-4s  %-8s  %-8s  %-8s  %-8s  %s\n",
		"DR", "Peak dB", "RMS dB", "Duration", "Info", "File")
	b.WriteString(light + "\n")
	for _, t := range doc.Tracks {
		info := fmt.Sprintf("%d/%d/%d", t.SampleRate/1000, t.BitDepth, t.Channels)
		fmt.Fprintf(&b, "  %-4s  %+8.2f  %+8.2f  %-8s  %-8s  %s\n",
			fmt.Sprintf("DR%d", t.DR), t.PeakDB, t.RMSDB,
			formatDuration(t.DurationSecs), info, t.Filename)
	}
	b.WriteString(light + "\n\n")

	if s := doc.Summary; s != nil {
		b.WriteString("  Summary\n")
		b.WriteString(short + "\n")
		fmt.Fprintf(&b, "  Tracks analysed : %d\n", s.TrackCount)
		fmt.Fprintf(&b, "  Album DR        : DR%d\n", s.AlbumDR)
		fmt.Fprintf(&b, "  DR range        : DR%d – DR%d\n\n", s.MinDR, s.MaxDR)
		fmt.Fprintf(&b, "  DR Rating : %s\n\n", s.Rating)
	}

	if len(doc.Failures) > 0 {
		b.WriteString("  Errors\n")
		b.WriteString(short + "\n")
		for _, f := range doc.Failures {
			fmt.Fprintf(&b, "  ✗ %s — %s\n", f.Filename, f.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString(heavy + "\n")
	b.WriteString("  DR Loudness Standard — https://www.dynamicrange.de\n")
	b.WriteString(heavy + "\n")
	return b.String()
}

// WriteText writes the text rendering to w.
func WriteText(w io.Writer, doc Document) error {
	_, err := io.WriteString(w, Text(doc))
	return err
}

// WriteJSON writes the document as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Save renders doc in the given format and writes it to path, creating or
// truncating the file.
func Save(path string, doc Document, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatText:
		err = WriteText(f, doc)
	case FormatJSON:
		err = WriteJSON(f, doc)
	default:
		err = fmt.Errorf("unknown report format %q", format)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

// formatDuration renders whole seconds as MM:SS, or HH:MM:SS from one hour
// up. Fractional seconds truncate.
func formatDuration(secs float64) string {
	total := int64(secs)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// canonical resolves folder to an absolute, symlink-free path, falling back
// to the raw input when resolution fails.
func canonical(folder string) string {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return folder
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
