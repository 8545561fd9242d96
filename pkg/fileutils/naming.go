package fileutils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// forbiddenChars are characters that are invalid in Windows filenames;
// they get replaced with spaces so targets stay portable across filesystems.
var forbiddenChars = regexp.MustCompile(`[<>:"/\\|?*]`)

var controlChars = regexp.MustCompile("[\x00-\x1f\x7f]")

var multiSpace = regexp.MustCompile(`\s+`)

// punctReplacements folds smart punctuation down to plain ASCII before the
// forbidden-character pass runs.
var punctReplacements = strings.NewReplacer(
	"…", "...", // ellipsis
	"“", "'", // left double quote
	"”", "'", // right double quote
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"–", "-", // en dash
	"—", "-", // em dash
	"\t", " ",
	"\n", " ",
	"\r", " ",
)

const maxSegmentLength = 200

// NormalizeSegment makes a metadata value safe for use as a single path
// segment. The result never contains path separators, forbidden characters,
// or control characters, and is never empty. Normalizing an already
// normalized string returns it unchanged.
func NormalizeSegment(s string) string {
	s = punctReplacements.Replace(s)
	s = controlChars.ReplaceAllString(s, "")
	s = forbiddenChars.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	s = strings.Trim(s, " .")

	if len(s) > maxSegmentLength {
		truncated := s[:maxSegmentLength]
		if idx := strings.LastIndex(truncated, " "); idx > 0 {
			truncated = truncated[:idx]
		}
		s = strings.Trim(truncated, " .")
	}

	if s == "" {
		return "Unknown"
	}
	return s
}

// AuthorSort converts "First Last" to "Last, First" for sort-friendly
// folder names. Single-word names pass through unchanged; for three or more
// words the final word is treated as the surname.
func AuthorSort(name string) string {
	parts := strings.Fields(strings.TrimSpace(name))
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		last := parts[len(parts)-1]
		rest := strings.Join(parts[:len(parts)-1], " ")
		return last + ", " + rest
	}
}

// FormatSeriesIndex renders a series index with enough zero padding that
// lexicographic and numeric order agree. Whole numbers become "01", "02";
// fractional ones become "01.50".
func FormatSeriesIndex(index float64) string {
	if index == float64(int(index)) {
		return fmt.Sprintf("%02d", int(index))
	}
	return fmt.Sprintf("%05.2f", index)
}

// TemplateValues holds the placeholder values available to naming templates.
// Empty values are legal; the cleanup pass collapses whatever separators
// they leave behind.
type TemplateValues struct {
	Title       string
	Author      string
	AuthorSort  string
	Narrator    string
	Series      string
	SeriesIndex string
	Year        string
	Ext         string
	PartNum     string
	TotalParts  string
}

var (
	slashRuns         = regexp.MustCompile(`/+`)
	emptySegmentJunk  = regexp.MustCompile(`/[\s\-]+/`)
	leadingSegmentSep = regexp.MustCompile(`/[\s\-]+`)
)

// ApplyTemplate substitutes placeholders like {title} and {author_sort}
// into a naming template and cleans up the separators left behind by empty
// values. The returned path is relative and slash-separated.
func ApplyTemplate(template string, values TemplateValues) string {
	replacer := strings.NewReplacer(
		"{title}", NormalizeSegment(values.Title),
		"{author}", normalizeOrEmpty(values.Author),
		"{author_sort}", normalizeOrEmpty(values.AuthorSort),
		"{narrator}", normalizeOrEmpty(values.Narrator),
		"{series}", normalizeOrEmpty(values.Series),
		"{series_index}", values.SeriesIndex,
		"{year}", values.Year,
		"{ext}", values.Ext,
		"{part_num}", values.PartNum,
		"{total_parts}", values.TotalParts,
	)
	out := replacer.Replace(template)

	// Empty placeholders leave artifacts like "//", "/ - /", and "()".
	out = strings.ReplaceAll(out, "()", "")
	out = slashRuns.ReplaceAllString(out, "/")
	for {
		cleaned := emptySegmentJunk.ReplaceAllString(out, "/")
		if cleaned == out {
			break
		}
		out = cleaned
	}
	out = leadingSegmentSep.ReplaceAllString(out, "/")
	out = strings.TrimRight(out, "/ -")
	out = strings.TrimLeft(out, "/")
	out = multiSpace.ReplaceAllString(out, " ")

	segments := strings.Split(out, "/")
	for i, seg := range segments {
		segments[i] = strings.Trim(seg, " .")
	}
	return strings.Join(segments, "/")
}

func normalizeOrEmpty(s string) string {
	if s == "" {
		return ""
	}
	return NormalizeSegment(s)
}

// UniqueTargetPath returns path unchanged if nothing exists there, otherwise
// appends _1, _2, ... before the extension until it finds a free name. After
// a thousand attempts it gives up; a folder with that many identical names
// indicates something is badly wrong upstream.
func UniqueTargetPath(path string, exists func(string) bool) (string, error) {
	if !exists(path) {
		return path, nil
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; i <= 1000; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", errors.Errorf("could not find unique path for %s after 1000 attempts", path)
}

// PathExists reports whether anything exists at the given path. It's the
// default exists func for UniqueTargetPath.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
