// Package audiometa reads embedded tags and durations from audio files.
// Extraction is best-effort: unreadable or untagged files yield a zero
// Metadata rather than an error, and the scanner treats a zero duration as
// "unknown" instead of filtering the file out.
package audiometa

import (
	"os"
	"path/filepath"
	"strings"

	gomp4 "github.com/abema/go-mp4"
	"github.com/dhowden/tag"
)

// Metadata is what the scanner wants from a file's embedded tags.
type Metadata struct {
	Title           string
	Author          string
	Narrator        string
	Album           string
	Year            int
	TrackNumber     int
	TotalTracks     int
	DurationSeconds float64
}

// Extractor is the boundary the scanner depends on, so tests can substitute
// canned metadata without fixture audio files.
type Extractor interface {
	Extract(path string) Metadata
	Duration(path string) float64
}

// TagExtractor reads tags with dhowden/tag and durations from the MP4 mvhd
// box for m4b/m4a files.
type TagExtractor struct{}

func NewTagExtractor() *TagExtractor {
	return &TagExtractor{}
}

func (e *TagExtractor) Extract(path string) Metadata {
	md := Metadata{}

	f, err := os.Open(path)
	if err != nil {
		return md
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err == nil {
		md.Title = strings.TrimSpace(m.Title())
		md.Author = strings.TrimSpace(m.Artist())
		// Composer is the common convention for the narrator in
		// audiobook tagging.
		md.Narrator = strings.TrimSpace(m.Composer())
		md.Album = strings.TrimSpace(m.Album())
		md.Year = m.Year()
		md.TrackNumber, md.TotalTracks = m.Track()
	}

	md.DurationSeconds = e.Duration(path)
	return md
}

// Duration returns the file's duration in seconds, or 0 when it can't be
// determined. Only MP4-container audio (m4b, m4a) is probed; other formats
// report 0 and rely on folder context during scanning.
func (e *TagExtractor) Duration(path string) float64 {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".m4b" && ext != ".m4a" {
		return 0
	}

	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	info, err := gomp4.Probe(f)
	if err != nil || info.Timescale == 0 {
		return 0
	}
	return float64(info.Duration) / float64(info.Timescale)
}
