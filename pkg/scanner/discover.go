package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shelforg/shelforg/pkg/mediatype"
	"github.com/shelforg/shelforg/pkg/models"
)

// Discovery holds the raw file listing from a directory walk, before any
// metadata extraction happens. Folders is kept in walk order so downstream
// processing is deterministic.
type Discovery struct {
	StandaloneFiles  []string
	Folders          []string
	FolderAudioFiles map[string][]string
	Errors           []models.ScanError
}

// discover walks the tree under root. Entries are visited in
// case-insensitive lexicographic order; hidden and system folders are
// pruned before descent, and exclusion patterns match as lowercase
// substrings of the full path.
func (s *Scanner) discover(root string, exclusions []string) *Discovery {
	result := &Discovery{
		StandaloneFiles:  []string{},
		Folders:          []string{},
		FolderAudioFiles: map[string][]string{},
		Errors:           []models.ScanError{},
	}

	lowered := make([]string, len(exclusions))
	for i, pattern := range exclusions {
		lowered[i] = strings.ToLower(pattern)
	}

	excluded := func(path string) bool {
		pathLower := strings.ToLower(path)
		for _, pattern := range lowered {
			if pattern != "" && strings.Contains(pathLower, pattern) {
				return true
			}
		}
		return false
	}

	var walk func(dir string)
	walk = func(dir string) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsPermission(err) {
				result.Errors = append(result.Errors, models.ScanError{Path: dir, Message: fmt.Sprintf("permission denied: %s", dir)})
			} else {
				result.Errors = append(result.Errors, models.ScanError{Path: dir, Message: fmt.Sprintf("error scanning %s: %v", dir, err)})
			}
			return
		}

		sort.Slice(entries, func(i, j int) bool {
			return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
		})

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			if entry.IsDir() {
				if !mediatype.SkipFolder(entry.Name()) && !excluded(path) {
					walk(path)
				}
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}
			if excluded(path) {
				continue
			}
			if !s.classifier.IsSupported(path) {
				continue
			}

			if s.classifier.Detect(path) == models.MediaTypeAudiobook {
				if !s.shouldKeepAudioFile(path) {
					continue
				}
				if _, seen := result.FolderAudioFiles[dir]; !seen {
					result.Folders = append(result.Folders, dir)
				}
				result.FolderAudioFiles[dir] = append(result.FolderAudioFiles[dir], path)
			} else {
				result.StandaloneFiles = append(result.StandaloneFiles, path)
			}
		}
	}

	walk(root)

	sort.Slice(result.StandaloneFiles, func(i, j int) bool {
		return strings.ToLower(result.StandaloneFiles[i]) < strings.ToLower(result.StandaloneFiles[j])
	})
	for _, files := range result.FolderAudioFiles {
		sort.Slice(files, func(i, j int) bool {
			return strings.ToLower(filepath.Base(files[i])) < strings.ToLower(filepath.Base(files[j]))
		})
	}

	return result
}

// shouldKeepAudioFile applies the optional duration filter for ambiguous
// audio files, which helps skip short music tracks in mixed libraries.
// Files in audiobook-marked folders and .m4b files are always kept, and so
// are files whose duration can't be read.
func (s *Scanner) shouldKeepAudioFile(path string) bool {
	if !s.cfg.Scan.VerifyAudioDuration {
		return true
	}
	if s.classifier.InAudiobookFolder(path) || lowerExt(path) == ".m4b" {
		return true
	}

	duration := s.extractor.Duration(path)
	if duration == 0 {
		// Can't read it; keep the file to avoid false negatives.
		return true
	}
	return duration >= s.cfg.Scan.MinAudiobookDuration.Seconds()
}

func baseName(path string) string {
	return filepath.Base(path)
}

func lowerExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
