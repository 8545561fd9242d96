// Package mediatype classifies files into audiobook, ebook, or comic based
// on extension and folder context.
package mediatype

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shelforg/shelforg/pkg/config"
	"github.com/shelforg/shelforg/pkg/models"
)

// Classifier answers media-type questions using the configured extension
// sets and audiobook folder marker.
type Classifier struct {
	audioExtensions map[string]bool
	ebookExtensions map[string]bool
	comicExtensions map[string]bool
	folderMarker    string
}

func NewClassifier(cfg *config.OrganizerConfig) *Classifier {
	return &Classifier{
		audioExtensions: toSet(cfg.Scan.AudioExtensions),
		ebookExtensions: toSet(cfg.Scan.EbookExtensions),
		comicExtensions: toSet(cfg.Scan.ComicExtensions),
		folderMarker:    strings.ToLower(cfg.Scan.AudiobookFolderMarker),
	}
}

func toSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(ext)] = true
	}
	return set
}

// Detect returns the media type for a path, or "" for unsupported
// extensions. Ebooks and comics are unambiguous; any supported audio file
// is treated as an audiobook, with duration verification happening later in
// the scan when enabled.
func (c *Classifier) Detect(path string) string {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case c.ebookExtensions[ext]:
		return models.MediaTypeEbook
	case c.comicExtensions[ext]:
		return models.MediaTypeComic
	case c.audioExtensions[ext]:
		return models.MediaTypeAudiobook
	}
	return ""
}

// IsSupported reports whether the path has any recognized extension.
func (c *Classifier) IsSupported(path string) bool {
	return c.Detect(path) != ""
}

func (c *Classifier) IsAudio(path string) bool {
	return c.audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// InAudiobookFolder reports whether any path component contains the
// audiobook folder marker, case-insensitively.
func (c *Classifier) InAudiobookFolder(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.Contains(strings.ToLower(part), c.folderMarker) {
			return true
		}
	}
	return false
}

// skipPrefixes are folder-name prefixes pruned before descent: hidden
// folders, caches, and system folders.
var skipPrefixes = []string{
	".",
	"__",
	"$",
	"node_modules",
	"thumbs.db",
	"desktop.ini",
}

// SkipFolder reports whether a folder name should be pruned during
// scanning.
func SkipFolder(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// SniffMismatch checks whether a file's content agrees with its extension.
// It returns the detected MIME type and whether it looks inconsistent; the
// scanner only logs mismatches, it never rejects files on them.
func SniffMismatch(path string) (string, bool) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", false
	}

	detected := mtype.String()
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3", ".m4b", ".m4a", ".flac":
		return detected, !strings.HasPrefix(detected, "audio/") && !strings.HasPrefix(detected, "video/mp4")
	case ".epub", ".cbz":
		// Both are zip containers.
		return detected, detected != "application/zip" && !strings.Contains(detected, "epub")
	case ".pdf":
		return detected, detected != "application/pdf"
	}
	return detected, false
}
