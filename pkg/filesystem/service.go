package filesystem

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shelforg/shelforg/pkg/config"
)

// Service lists directories so a UI can pick library and output roots
// without shelling out. Only directories are returned; media file counts
// come from scans, not from browsing.
type Service struct {
	cfg *config.OrganizerConfig
}

func NewService(cfg *config.OrganizerConfig) *Service {
	return &Service{cfg: cfg}
}

type BrowseOptions BrowseQuery

func (s *Service) Browse(opts BrowseOptions) (*BrowseResponse, error) {
	path := opts.Path
	if path == "" {
		path = "/"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	// Resolve symlinks so traversal games land on the real directory.
	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		realPath = absPath
	}

	info, err := os.Stat(realPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, os.ErrInvalid
	}

	dirEntries, err := os.ReadDir(realPath)
	if err != nil {
		return nil, err
	}

	entries := []Entry{}
	for _, de := range dirEntries {
		name := de.Name()
		if !de.IsDir() {
			continue
		}
		if !opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(opts.Search)) {
			continue
		}

		entryPath := filepath.Join(realPath, name)
		entries = append(entries, Entry{
			Name:     name,
			Path:     entryPath,
			HasMedia: s.containsMedia(entryPath),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	total := len(entries)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	parentPath := ""
	if realPath != "/" {
		parentPath = filepath.Dir(realPath)
	}

	return &BrowseResponse{
		CurrentPath: realPath,
		ParentPath:  parentPath,
		Entries:     entries[start:end],
		Total:       total,
		HasMore:     end < total,
	}, nil
}

// containsMedia reports whether the directory's immediate children include
// any supported media file. One level deep keeps browsing cheap on large
// trees.
func (s *Service) containsMedia(dir string) bool {
	children, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, child := range children {
		if child.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(child.Name()))
		if s.supportedExtension(ext) {
			return true
		}
	}
	return false
}

func (s *Service) supportedExtension(ext string) bool {
	for _, group := range [][]string{
		s.cfg.Scan.AudioExtensions,
		s.cfg.Scan.EbookExtensions,
		s.cfg.Scan.ComicExtensions,
	} {
		for _, supported := range group {
			if ext == supported {
				return true
			}
		}
	}
	return false
}
