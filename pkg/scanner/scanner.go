// Package scanner discovers media files under a root folder, groups
// multi-file audiobooks, and extracts per-file metadata. It has no database
// dependency; the scans service persists what comes back.
package scanner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shelforg/shelforg/pkg/audiometa"
	"github.com/shelforg/shelforg/pkg/config"
	"github.com/shelforg/shelforg/pkg/fileutils"
	"github.com/shelforg/shelforg/pkg/mediatype"
	"github.com/shelforg/shelforg/pkg/models"
	"github.com/shelforg/shelforg/pkg/nameparse"
)

// FileResult is one discovered file with everything the catalog stores
// about it.
type FileResult struct {
	ID              string
	Path            string
	Filename        string
	Extension       string
	Size            int64
	MediaType       string
	Hash            *string
	DurationSeconds float64

	Title       *string
	Author      *string
	Narrator    *string
	Series      *string
	SeriesIndex *float64
	Year        *int
	Quality     *string
	Confidence  float64

	GroupID        *string
	IsGroupPrimary bool
	TrackNumber    *int
}

// Result is everything a completed (or failed) scan produced.
type Result struct {
	ScanID      string
	RootPath    string
	Files       []*FileResult
	Groups      []*Group
	Errors      []models.ScanError
	StartedAt   time.Time
	CompletedAt time.Time
}

// Progress is a snapshot reported during a running scan.
type Progress struct {
	ScanID         string  `json:"scan_id"`
	RootPath       string  `json:"root_path"`
	Status         string  `json:"status"`
	FilesFound     int     `json:"files_found"`
	FilesProcessed int     `json:"files_processed"`
	GroupsCreated  int     `json:"groups_created"`
	CurrentFolder  *string `json:"current_folder,omitempty"`
	ErrorMessage   *string `json:"error_message,omitempty"`
}

// ProgressFunc receives progress snapshots. It is called synchronously from
// the scan goroutine, so implementations should be quick.
type ProgressFunc func(Progress)

type Scanner struct {
	cfg        *config.OrganizerConfig
	classifier *mediatype.Classifier
	extractor  audiometa.Extractor
}

func New(cfg *config.OrganizerConfig, extractor audiometa.Extractor) *Scanner {
	return &Scanner{
		cfg:        cfg,
		classifier: mediatype.NewClassifier(cfg),
		extractor:  extractor,
	}
}

// Scan walks root, groups folder audiobooks, and extracts metadata for
// every supported file. Unreadable folders become recorded errors, not
// failures; only a missing root fails the scan outright.
func (s *Scanner) Scan(ctx context.Context, root, scanID string, exclusions []string, progressFn ProgressFunc) *Result {
	if scanID == "" {
		scanID = uuid.NewString()
	}
	result := &Result{
		ScanID:    scanID,
		RootPath:  root,
		Files:     []*FileResult{},
		Groups:    []*Group{},
		Errors:    []models.ScanError{},
		StartedAt: time.Now(),
	}
	filesProcessed := 0

	report := func(status string, folder *string, errMsg *string) {
		if progressFn == nil {
			return
		}
		progressFn(Progress{
			ScanID:         scanID,
			RootPath:       root,
			Status:         status,
			FilesFound:     len(result.Files),
			FilesProcessed: filesProcessed,
			GroupsCreated:  len(result.Groups),
			CurrentFolder:  folder,
			ErrorMessage:   errMsg,
		})
	}

	report(models.ScanStatusDiscovering, nil, nil)

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		msg := fmt.Sprintf("scan root does not exist or is not a directory: %s", root)
		result.Errors = append(result.Errors, models.ScanError{Path: root, Message: msg})
		result.CompletedAt = time.Now()
		report(models.ScanStatusFailed, nil, &msg)
		return result
	}

	discovery := s.discover(root, exclusions)
	result.Errors = append(result.Errors, discovery.Errors...)

	report(models.ScanStatusGrouping, nil, nil)

	for _, folder := range discovery.Folders {
		if ctx.Err() != nil {
			msg := ctx.Err().Error()
			result.Errors = append(result.Errors, models.ScanError{Path: root, Message: msg})
			result.CompletedAt = time.Now()
			report(models.ScanStatusFailed, nil, &msg)
			return result
		}

		folderCopy := folder
		report(models.ScanStatusProcessing, &folderCopy, nil)

		audioFiles := discovery.FolderAudioFiles[folder]
		if len(audioFiles) == 1 {
			// A lone audio file is always standalone, grouped folders
			// need at least two.
			scanned := s.processAudioFile(audioFiles[0], nil, false, nil, nil)
			result.Files = append(result.Files, scanned)
			filesProcessed++
			s.checkContentType(audioFiles[0], result)
			continue
		}

		group := s.buildGroup(folder, audioFiles)
		if group == nil {
			continue
		}
		result.Groups = append(result.Groups, group)

		for idx, gf := range group.sortedFiles() {
			scanned := s.processAudioFile(gf.Path, &group.ID, idx == 0, gf.TrackNumber, &gf.Metadata)
			result.Files = append(result.Files, scanned)
			filesProcessed++
			s.checkContentType(gf.Path, result)
		}
	}

	for _, path := range discovery.StandaloneFiles {
		scanned, err := s.processStandaloneFile(path)
		if err != nil {
			result.Errors = append(result.Errors, models.ScanError{Path: path, Message: err.Error()})
			continue
		}
		result.Files = append(result.Files, scanned)
		filesProcessed++
		s.checkContentType(path, result)
	}

	result.CompletedAt = time.Now()
	report(models.ScanStatusCompleted, nil, nil)

	return result
}

// checkContentType sniffs a file's real content and records a warning when
// it disagrees with the extension. The file is still cataloged; mislabeled
// files surface in the scan's error list for review.
func (s *Scanner) checkContentType(path string, result *Result) {
	if !s.cfg.Scan.VerifyContentType {
		return
	}
	detected, mismatch := mediatype.SniffMismatch(path)
	if mismatch {
		result.Errors = append(result.Errors, models.ScanError{
			Path:    path,
			Message: fmt.Sprintf("content looks like %s, which does not match the extension", detected),
		})
	}
}

// processAudioFile stats, parses, and tags a single audio file. Metadata
// can be passed in when the grouper already read it.
func (s *Scanner) processAudioFile(path string, groupID *string, isPrimary bool, trackNumber *int, md *audiometa.Metadata) *FileResult {
	scanned := &FileResult{
		ID:        uuid.NewString(),
		Path:      path,
		Filename:  baseName(path),
		Extension: lowerExt(path),
		MediaType: models.MediaTypeAudiobook,
	}

	info, err := os.Stat(path)
	if err != nil {
		scanned.Confidence = 0
		return scanned
	}
	scanned.Size = info.Size()

	var metadata audiometa.Metadata
	switch {
	case md != nil:
		metadata = *md
	case s.cfg.Scan.ExtractAudioMetadata:
		metadata = s.extractor.Extract(path)
	}
	scanned.DurationSeconds = metadata.DurationSeconds

	parsed := nameparse.Parse(scanned.Filename)
	merged := nameparse.MergeTagMetadata(parsed, metadata.Title, metadata.Author, metadata.Album)

	scanned.Title = firstString(merged.Title, nonEmpty(metadata.Title), nonEmpty(metadata.Album))
	scanned.Author = firstString(merged.Author, nonEmpty(metadata.Author))
	scanned.Narrator = firstString(nonEmpty(metadata.Narrator), merged.Narrator)
	scanned.Series = merged.Series
	scanned.SeriesIndex = merged.SeriesIndex
	scanned.Year = firstInt(merged.Year, nonZero(metadata.Year))
	scanned.Quality = merged.Quality
	scanned.Confidence = merged.Confidence

	scanned.GroupID = groupID
	scanned.IsGroupPrimary = isPrimary
	scanned.TrackNumber = firstInt(trackNumber, nonZero(metadata.TrackNumber))

	if s.cfg.Scan.HashFiles {
		if hash, err := fileutils.HashFile(path); err == nil {
			scanned.Hash = &hash
		}
	}

	return scanned
}

func (s *Scanner) processStandaloneFile(path string) (*FileResult, error) {
	scanned := &FileResult{
		ID:        uuid.NewString(),
		Path:      path,
		Filename:  baseName(path),
		Extension: lowerExt(path),
		MediaType: s.classifier.Detect(path),
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	scanned.Size = info.Size()

	if s.cfg.Scan.HashFiles {
		if hash, err := fileutils.HashFile(path); err == nil {
			scanned.Hash = &hash
		}
	}

	parsed := nameparse.Parse(scanned.Filename)
	scanned.Title = parsed.Title
	scanned.Author = parsed.Author
	scanned.Narrator = parsed.Narrator
	scanned.Series = parsed.Series
	scanned.SeriesIndex = parsed.SeriesIndex
	scanned.Year = parsed.Year
	scanned.Quality = parsed.Quality
	scanned.Confidence = parsed.Confidence

	return scanned, nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonZero(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}

func firstString(candidates ...*string) *string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return c
		}
	}
	return nil
}

func firstInt(candidates ...*int) *int {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
