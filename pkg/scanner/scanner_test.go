package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelforg/shelforg/pkg/audiometa"
	"github.com/shelforg/shelforg/pkg/config"
	"github.com/shelforg/shelforg/pkg/models"
)

func TestScan(t *testing.T) {
	t.Run("full walk with groups, standalone files, and exclusions", func(tt *testing.T) {
		root := tt.TempDir()
		writeFiles(tt, filepath.Join(root, "Andy Weir - Project Hail Mary (2021)"), "01 - Part One.mp3", "02 - Part Two.mp3")
		writeFiles(tt, root, "The Martian.m4b", "Dune.epub", "notes.txt")
		writeFiles(tt, filepath.Join(root, ".hidden"), "ignored.mp3")
		writeFiles(tt, filepath.Join(root, "skipme"), "excluded.mp3")

		s := newTestScanner(tt, nil)
		var snapshots []Progress
		result := s.Scan(context.Background(), root, "scan-1", []string{"skipme"}, func(p Progress) {
			snapshots = append(snapshots, p)
		})

		assert.Empty(tt, result.Errors)
		assert.Equal(tt, "scan-1", result.ScanID)
		assert.False(tt, result.CompletedAt.IsZero())
		require.Len(tt, result.Files, 4)
		require.Len(tt, result.Groups, 1)

		group := result.Groups[0]
		require.NotNil(tt, group.Title)
		assert.Equal(tt, "Project Hail Mary", *group.Title)
		require.NotNil(tt, group.Author)
		assert.Equal(tt, "Andy Weir", *group.Author)
		require.NotNil(tt, group.Year)
		assert.Equal(tt, 2021, *group.Year)
		assert.Equal(tt, 2, group.FileCount())

		var grouped []*FileResult
		byName := map[string]*FileResult{}
		for _, f := range result.Files {
			byName[f.Filename] = f
			if f.GroupID != nil {
				grouped = append(grouped, f)
			}
		}

		require.Len(tt, grouped, 2)
		primaries := 0
		for _, f := range grouped {
			assert.Equal(tt, group.ID, *f.GroupID)
			assert.Equal(tt, models.MediaTypeAudiobook, f.MediaType)
			require.NotNil(tt, f.Hash)
			if f.IsGroupPrimary {
				primaries++
			}
		}
		assert.Equal(tt, 1, primaries)
		require.NotNil(tt, byName["01 - Part One.mp3"].TrackNumber)
		assert.Equal(tt, 1, *byName["01 - Part One.mp3"].TrackNumber)
		require.NotNil(tt, byName["02 - Part Two.mp3"].TrackNumber)
		assert.Equal(tt, 2, *byName["02 - Part Two.mp3"].TrackNumber)

		martian := byName["The Martian.m4b"]
		require.NotNil(tt, martian)
		assert.Equal(tt, models.MediaTypeAudiobook, martian.MediaType)
		assert.Nil(tt, martian.GroupID)

		dune := byName["Dune.epub"]
		require.NotNil(tt, dune)
		assert.Equal(tt, models.MediaTypeEbook, dune.MediaType)
		require.NotNil(tt, dune.Title)
		assert.Equal(tt, "Dune", *dune.Title)
		require.NotNil(tt, dune.Hash)

		assert.Nil(tt, byName["notes.txt"])
		assert.Nil(tt, byName["ignored.mp3"])
		assert.Nil(tt, byName["excluded.mp3"])

		require.NotEmpty(tt, snapshots)
		assert.Equal(tt, models.ScanStatusDiscovering, snapshots[0].Status)
		assert.Equal(tt, models.ScanStatusCompleted, snapshots[len(snapshots)-1].Status)
		assert.Equal(tt, 4, snapshots[len(snapshots)-1].FilesFound)
	})

	t.Run("missing root fails the scan", func(tt *testing.T) {
		s := newTestScanner(tt, nil)
		root := filepath.Join(tt.TempDir(), "nope")

		var snapshots []Progress
		result := s.Scan(context.Background(), root, "", nil, func(p Progress) {
			snapshots = append(snapshots, p)
		})

		require.Len(tt, result.Errors, 1)
		assert.Contains(tt, result.Errors[0].Message, "does not exist")
		assert.NotEmpty(tt, result.ScanID)
		assert.False(tt, result.CompletedAt.IsZero())
		require.NotEmpty(tt, snapshots)
		assert.Equal(tt, models.ScanStatusFailed, snapshots[len(snapshots)-1].Status)
	})

	t.Run("canceled context stops processing", func(tt *testing.T) {
		root := tt.TempDir()
		writeFiles(tt, filepath.Join(root, "Some Book"), "01 - One.mp3", "02 - Two.mp3")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := newTestScanner(tt, nil)
		result := s.Scan(ctx, root, "", nil, nil)

		require.NotEmpty(tt, result.Errors)
		assert.Contains(tt, result.Errors[0].Message, "context canceled")
		assert.Empty(tt, result.Files)
	})

	t.Run("content sniffing flags mislabeled files", func(tt *testing.T) {
		root := tt.TempDir()
		// Text bytes behind an audio extension.
		mislabeled := writeFiles(tt, root, "Mislabeled.mp3")[0]
		require.NoError(tt, os.WriteFile(filepath.Join(root, "Clean.mp3"), []byte("ID3\x03\x00\x00\x00\x00\x00\x00"), 0o644))

		cfg := config.NewForTest()
		cfg.Organizer.Scan.VerifyContentType = true
		s := New(cfg.Organizer, &fakeExtractor{})

		result := s.Scan(context.Background(), root, "", nil, nil)

		require.Len(tt, result.Files, 2)
		require.Len(tt, result.Errors, 1)
		assert.Equal(tt, mislabeled, result.Errors[0].Path)
		assert.Contains(tt, result.Errors[0].Message, "does not match the extension")
	})
}

func TestDiscover(t *testing.T) {
	t.Run("deterministic ordering", func(tt *testing.T) {
		root := tt.TempDir()
		writeFiles(tt, root, "zebra.epub", "Alpha.epub", "mango.epub")

		s := newTestScanner(tt, nil)
		discovery := s.discover(root, nil)

		require.Len(tt, discovery.StandaloneFiles, 3)
		assert.Equal(tt, "Alpha.epub", filepath.Base(discovery.StandaloneFiles[0]))
		assert.Equal(tt, "mango.epub", filepath.Base(discovery.StandaloneFiles[1]))
		assert.Equal(tt, "zebra.epub", filepath.Base(discovery.StandaloneFiles[2]))
	})

	t.Run("audio files collect per folder in filename order", func(tt *testing.T) {
		root := tt.TempDir()
		dir := filepath.Join(root, "Book")
		writeFiles(tt, dir, "02 - Two.mp3", "01 - One.mp3")

		s := newTestScanner(tt, nil)
		discovery := s.discover(root, nil)

		require.Len(tt, discovery.Folders, 1)
		files := discovery.FolderAudioFiles[dir]
		require.Len(tt, files, 2)
		assert.Equal(tt, "01 - One.mp3", filepath.Base(files[0]))
		assert.Equal(tt, "02 - Two.mp3", filepath.Base(files[1]))
	})

	t.Run("unreadable folder becomes a recorded error", func(tt *testing.T) {
		if os.Getuid() == 0 {
			tt.Skip("root ignores directory permissions")
		}
		root := tt.TempDir()
		locked := filepath.Join(root, "locked")
		require.NoError(tt, os.MkdirAll(locked, 0o000))
		tt.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

		s := newTestScanner(tt, nil)
		discovery := s.discover(root, nil)

		require.Len(tt, discovery.Errors, 1)
		assert.Contains(tt, discovery.Errors[0].Message, "permission denied")
	})

	t.Run("duration filter drops short loose audio", func(tt *testing.T) {
		root := tt.TempDir()
		writeFiles(tt, filepath.Join(root, "Music"), "short-song.mp3")
		writeFiles(tt, filepath.Join(root, "Audiobooks"), "short-but-marked.mp3")
		writeFiles(tt, filepath.Join(root, "Loose"), "long-enough.mp3", "unreadable.mp3", "always-kept.m4b")

		meta := map[string]audiometa.Metadata{
			"short-song.mp3":       {DurationSeconds: 60},
			"short-but-marked.mp3": {DurationSeconds: 60},
			"long-enough.mp3":      {DurationSeconds: 3600},
			"always-kept.m4b":      {DurationSeconds: 60},
		}
		cfg := config.NewForTest()
		cfg.Organizer.Scan.VerifyAudioDuration = true
		s := New(cfg.Organizer, &fakeExtractor{meta: meta})

		discovery := s.discover(root, nil)

		var kept []string
		for _, files := range discovery.FolderAudioFiles {
			for _, f := range files {
				kept = append(kept, filepath.Base(f))
			}
		}
		assert.ElementsMatch(tt, []string{"short-but-marked.mp3", "long-enough.mp3", "unreadable.mp3", "always-kept.m4b"}, kept)
	})
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	_, ok := registry.Get("missing")
	assert.False(t, ok)

	registry.Set(Progress{ScanID: "scan-1", Status: models.ScanStatusProcessing, FilesFound: 3})
	got, ok := registry.Get("scan-1")
	require.True(t, ok)
	assert.Equal(t, models.ScanStatusProcessing, got.Status)
	assert.Equal(t, 3, got.FilesFound)

	registry.Delete("scan-1")
	_, ok = registry.Get("scan-1")
	assert.False(t, ok)
}
