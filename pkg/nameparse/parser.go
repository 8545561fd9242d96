// Package nameparse extracts audiobook metadata from file and folder names.
// It is pure string heuristics; nothing here touches the filesystem.
package nameparse

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParsedFilename is the result of parsing a filename or folder name. Nil
// fields mean the pattern for them didn't match. Confidence is an additive
// score in [0, 1]; callers use it to decide whether a folder-level parse
// should fill in gaps.
type ParsedFilename struct {
	Title       *string
	Author      *string
	Series      *string
	SeriesIndex *float64
	Year        *int
	Narrator    *string
	Quality     *string
	Confidence  float64
}

var yearPattern = regexp.MustCompile(`\((\d{4})\)`)

// Series patterns are tried in order; the first match wins.
var seriesPatterns = []*regexp.Regexp{
	// "Series Name, Book 1" or "Series Name Book 1"
	regexp.MustCompile(`(?i)^(.+?)[,\s]+Book\s*(\d+(?:\.\d+)?)`),
	// "Series Name #1" or "Series Name - #1"
	regexp.MustCompile(`(?i)^(.+?)\s*[-–—]?\s*#(\d+(?:\.\d+)?)`),
	// "Series 01 - Title" or "Series Book 01 - Title"
	regexp.MustCompile(`(?i)^(.+?)\s+(?:Book\s*)?(\d+)\s*[-–—]\s*(.+)`),
}

var authorTitlePattern = regexp.MustCompile(`^(.+?)\s*[-–—]\s*(.+)$`)

var narratorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:narrated by|read by|narrator)[:\s]+(.+?)(?:\s*[-–—(]|$)`),
	regexp.MustCompile(`\[(.+?)\]$`),
}

var qualityPatterns = []struct {
	re      *regexp.Regexp
	quality string
}{
	{regexp.MustCompile(`(?i)\bunabridged\b`), "Unabridged"},
	{regexp.MustCompile(`(?i)\babridged\b`), "Abridged"},
}

var (
	underscoreRuns = regexp.MustCompile(`_+`)
	spaceRuns      = regexp.MustCompile(`\s+`)
)

// cleanString normalizes a raw name fragment: underscores become spaces and
// whitespace collapses.
func cleanString(s string) string {
	s = strings.TrimSpace(s)
	s = underscoreRuns.ReplaceAllString(s, " ")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// looksLikePersonName is a conservative heuristic for author-like names so
// folder titles don't get mislabeled as authors. Two to four words, no
// digits, no single-letter words.
func looksLikePersonName(text string) bool {
	parts := strings.Fields(cleanString(text))
	if len(parts) < 2 || len(parts) > 4 {
		return false
	}
	for _, part := range parts {
		if utf8.RuneCountInString(part) <= 1 {
			return false
		}
		for _, r := range part {
			if unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}

func extractYear(text string) (*int, string) {
	loc := yearPattern.FindStringSubmatchIndex(text)
	if loc != nil {
		year, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err == nil && year >= 1900 && year <= 2100 {
			remaining := text[:loc[0]] + text[loc[1]:]
			return &year, cleanString(remaining)
		}
	}
	return nil, text
}

func extractQuality(text string) (*string, string) {
	for _, qp := range qualityPatterns {
		if qp.re.MatchString(text) {
			remaining := qp.re.ReplaceAllString(text, "")
			quality := qp.quality
			return &quality, cleanString(remaining)
		}
	}
	return nil, text
}

func extractNarrator(text string) (*string, string) {
	for _, pattern := range narratorPatterns {
		loc := pattern.FindStringSubmatchIndex(text)
		if loc != nil {
			narrator := cleanString(text[loc[2]:loc[3]])
			remaining := cleanString(text[:loc[0]] + text[loc[1]:])
			return &narrator, remaining
		}
	}
	return nil, text
}

// extractSeries returns the series name, its index, and, for the
// "Series 01 - Title" form, the title that followed the separator.
func extractSeries(text string) (*string, *float64, *string) {
	for _, pattern := range seriesPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		series := cleanString(match[1])
		var index *float64
		if v, err := strconv.ParseFloat(match[2], 64); err == nil {
			index = &v
		}
		if len(match) == 4 {
			title := cleanString(match[3])
			return &series, index, &title
		}
		return &series, index, nil
	}
	return nil, nil, nil
}

func extractAuthorTitle(text string) (author, title string, ok bool) {
	match := authorTitlePattern.FindStringSubmatch(text)
	if match == nil {
		return "", "", false
	}
	return cleanString(match[1]), cleanString(match[2]), true
}

// Parse extracts audiobook metadata from a filename or folder name. Stages
// run in a fixed order, each consuming the part of the name it matched:
// year, quality, narrator, series, then the author/title split.
func Parse(filename string) ParsedFilename {
	result := ParsedFilename{}

	name := filename
	if strings.Contains(filename, ".") {
		name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	name = cleanString(name)
	if name == "" {
		return result
	}

	confidence := 0.0
	remaining := name

	year, remaining := extractYear(remaining)
	if year != nil {
		result.Year = year
		confidence += 0.1
	}

	quality, remaining := extractQuality(remaining)
	if quality != nil {
		result.Quality = quality
		confidence += 0.05
	}

	narrator, remaining := extractNarrator(remaining)
	if narrator != nil {
		result.Narrator = narrator
		confidence += 0.1
	}

	series, seriesIndex, titleFromSeries := extractSeries(remaining)
	if series != nil {
		result.Series = series
		result.SeriesIndex = seriesIndex
		confidence += 0.2
		if titleFromSeries != nil {
			remaining = *titleFromSeries
		}
	}

	if author, title, ok := extractAuthorTitle(remaining); ok && author != "" && title != "" {
		// Accept author-title even if author is longer; lower confidence if so.
		result.Author = &author
		result.Title = &title
		if utf8.RuneCountInString(author) < utf8.RuneCountInString(title) {
			confidence += 0.3
		} else {
			confidence += 0.2
		}
	} else {
		title := cleanString(remaining)
		if title != "" {
			result.Title = &title
			confidence += 0.1
		}
	}

	// A title with no author is a weak signal.
	if result.Title != nil && result.Author == nil {
		confidence -= 0.1
		if confidence < 0.1 {
			confidence = 0.1
		}
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	result.Confidence = confidence

	return result
}

// ParseFolderPath parses a folder's own name and, when the result is weak,
// fills author and series gaps from the parent folder name.
func ParseFolderPath(folderPath string) ParsedFilename {
	result := Parse(filepath.Base(folderPath))

	parentName := filepath.Base(filepath.Dir(folderPath))
	if parentName == "." || parentName == "/" || parentName == string(filepath.Separator) {
		parentName = ""
	}

	if result.Confidence < 0.3 && parentName != "" {
		parentResult := Parse(parentName)

		if parentResult.Author != nil && result.Author == nil {
			result.Author = parentResult.Author
			result.Confidence += 0.1
		} else if parentResult.Title != nil && result.Author == nil && looksLikePersonName(*parentResult.Title) {
			// Treat a parent folder that looks like a person as the author.
			result.Author = parentResult.Title
			result.Confidence += 0.1
		}
		if parentResult.Series != nil && result.Series == nil {
			result.Series = parentResult.Series
			result.SeriesIndex = parentResult.SeriesIndex
			result.Confidence += 0.1
		}
	}

	return result
}

// MergeTagMetadata layers embedded audio tag values over a filename parse.
// Tags win when present and non-trivial; the album tag only fills a missing
// title.
func MergeTagMetadata(parsed ParsedFilename, tagTitle, tagAuthor, tagAlbum string) ParsedFilename {
	result := parsed

	if tagTitle != "" && utf8.RuneCountInString(tagTitle) > 2 {
		title := tagTitle
		result.Title = &title
		result.Confidence += 0.1
	}

	if tagAuthor != "" && utf8.RuneCountInString(tagAuthor) > 2 {
		author := tagAuthor
		result.Author = &author
		result.Confidence += 0.1
	}

	if tagAlbum != "" && result.Title == nil && utf8.RuneCountInString(tagAlbum) > 2 {
		album := tagAlbum
		result.Title = &album
		result.Confidence += 0.05
	}

	if result.Confidence > 1.0 {
		result.Confidence = 1.0
	}

	return result
}
