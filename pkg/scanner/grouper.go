package scanner

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shelforg/shelforg/pkg/audiometa"
	"github.com/shelforg/shelforg/pkg/nameparse"
)

// GroupFile is one audio file inside a multi-file audiobook.
type GroupFile struct {
	Path        string
	Size        int64
	Metadata    audiometa.Metadata
	TrackNumber *int
}

// Group is a folder's worth of audio files treated as one audiobook, with
// metadata consolidated from the primary file's tags and the folder path.
type Group struct {
	ID         string
	FolderPath string
	Files      []*GroupFile

	Title       *string
	Author      *string
	Narrator    *string
	Series      *string
	SeriesIndex *float64
	Year        *int
	Confidence  float64
}

func (g *Group) FileCount() int {
	return len(g.Files)
}

func (g *Group) TotalDurationSeconds() float64 {
	total := 0.0
	for _, f := range g.Files {
		total += f.Metadata.DurationSeconds
	}
	return total
}

// Track number patterns tried against the filename stem when tags don't
// carry one.
var trackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d+)\s*[-–—.]`),
	regexp.MustCompile(`(?i)(?:track|part|chapter)\s*(\d+)`),
	regexp.MustCompile(`[-–—]\s*(\d+)$`),
}

func trackNumberFromFilename(path string) *int {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, pattern := range trackPatterns {
		match := pattern.FindStringSubmatch(stem)
		if match == nil {
			continue
		}
		if n, err := strconv.Atoi(match[1]); err == nil {
			return &n
		}
	}
	return nil
}

// buildGroup reads every file in the folder and consolidates group
// metadata. Returns nil when there's nothing to group (fewer than two
// readable files).
func (s *Scanner) buildGroup(folder string, paths []string) *Group {
	if len(paths) < 2 {
		return nil
	}

	group := &Group{
		ID:         uuid.NewString(),
		FolderPath: folder,
		Files:      []*GroupFile{},
	}

	sortedPaths := append([]string{}, paths...)
	sort.Slice(sortedPaths, func(i, j int) bool {
		return strings.ToLower(filepath.Base(sortedPaths[i])) < strings.ToLower(filepath.Base(sortedPaths[j]))
	})

	for _, path := range sortedPaths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		md := audiometa.Metadata{}
		if s.cfg.Scan.ExtractAudioMetadata {
			md = s.extractor.Extract(path)
		}

		gf := &GroupFile{
			Path:     path,
			Size:     info.Size(),
			Metadata: md,
		}
		if md.TrackNumber != 0 {
			track := md.TrackNumber
			gf.TrackNumber = &track
		} else {
			gf.TrackNumber = trackNumberFromFilename(path)
		}
		group.Files = append(group.Files, gf)
	}

	if len(group.Files) == 0 {
		return nil
	}

	group.consolidate()
	return group
}

// primaryFile is the file whose tags seed the group metadata: lowest track
// number, ties broken by longest duration.
func (g *Group) primaryFile() *GroupFile {
	if len(g.Files) == 0 {
		return nil
	}
	files := append([]*GroupFile{}, g.Files...)
	sort.SliceStable(files, func(i, j int) bool {
		ti, tj := trackOr(files[i].TrackNumber, 999), trackOr(files[j].TrackNumber, 999)
		if ti != tj {
			return ti < tj
		}
		return files[i].Metadata.DurationSeconds > files[j].Metadata.DurationSeconds
	})
	return files[0]
}

// consolidate merges the primary file's tags with the folder-path parse.
// Tags take precedence except for series, which the folder always decides;
// a folder named "Mistborn, Book 2" is a stronger series signal than
// whatever is embedded in one track.
func (g *Group) consolidate() {
	primary := g.primaryFile()
	if primary == nil {
		return
	}

	meta := primary.Metadata
	g.Title = firstString(nonEmpty(meta.Title), nonEmpty(meta.Album))
	g.Author = nonEmpty(meta.Author)
	g.Narrator = nonEmpty(meta.Narrator)
	g.Year = nonZero(meta.Year)

	parsed := nameparse.ParseFolderPath(g.FolderPath)
	if g.Title == nil && parsed.Title != nil {
		g.Title = parsed.Title
	}
	if g.Author == nil && parsed.Author != nil {
		g.Author = parsed.Author
	}
	if g.Narrator == nil && parsed.Narrator != nil {
		g.Narrator = parsed.Narrator
	}
	if g.Year == nil && parsed.Year != nil {
		g.Year = parsed.Year
	}
	if parsed.Series != nil {
		g.Series = parsed.Series
		g.SeriesIndex = parsed.SeriesIndex
	}
	g.Confidence = parsed.Confidence

	if g.Title == nil {
		folderName := filepath.Base(g.FolderPath)
		g.Title = &folderName
		g.Confidence = 0.2
	}

	if g.Author != nil {
		g.Confidence += 0.1
	}
	if g.Narrator != nil {
		g.Confidence += 0.1
	}
	if g.Year != nil {
		g.Confidence += 0.05
	}
	if g.Confidence > 1.0 {
		g.Confidence = 1.0
	}
}

// sortedFiles returns the group's files in playback order: track number,
// then filename.
func (g *Group) sortedFiles() []*GroupFile {
	files := append([]*GroupFile{}, g.Files...)
	sort.SliceStable(files, func(i, j int) bool {
		ti, tj := trackOr(files[i].TrackNumber, 999), trackOr(files[j].TrackNumber, 999)
		if ti != tj {
			return ti < tj
		}
		return strings.ToLower(filepath.Base(files[i].Path)) < strings.ToLower(filepath.Base(files[j].Path))
	})
	return files
}

// SortedFiles exposes playback order for callers outside the package.
func (g *Group) SortedFiles() []*GroupFile {
	return g.sortedFiles()
}

func trackOr(track *int, fallback int) int {
	if track != nil {
		return *track
	}
	return fallback
}
