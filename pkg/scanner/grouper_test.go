package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelforg/shelforg/pkg/audiometa"
	"github.com/shelforg/shelforg/pkg/config"
)

type fakeExtractor struct {
	meta map[string]audiometa.Metadata
}

func (f *fakeExtractor) Extract(path string) audiometa.Metadata {
	return f.meta[filepath.Base(path)]
}

func (f *fakeExtractor) Duration(path string) float64 {
	return f.meta[filepath.Base(path)].DurationSeconds
}

func newTestScanner(t *testing.T, meta map[string]audiometa.Metadata) *Scanner {
	t.Helper()
	cfg := config.NewForTest()
	return New(cfg.Organizer, &fakeExtractor{meta: meta})
}

func writeFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(paths[i], []byte(name), 0o644))
	}
	return paths
}

func TestTrackNumberFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     *int
	}{
		{"01 - Chapter One.mp3", intPtr(1)},
		{"02. Second Chapter.mp3", intPtr(2)},
		{"Chapter 5.mp3", intPtr(5)},
		{"Part 12.m4a", intPtr(12)},
		{"Track 3.mp3", intPtr(3)},
		{"Something - 7.mp3", intPtr(7)},
		{"No Numbers Here.mp3", nil},
	}

	for _, test := range tests {
		t.Run(test.filename, func(tt *testing.T) {
			got := trackNumberFromFilename(test.filename)
			if test.want == nil {
				assert.Nil(tt, got)
			} else {
				require.NotNil(tt, got)
				assert.Equal(tt, *test.want, *got)
			}
		})
	}
}

func TestBuildGroup(t *testing.T) {
	t.Run("requires at least two files", func(tt *testing.T) {
		s := newTestScanner(tt, nil)
		dir := tt.TempDir()
		paths := writeFiles(tt, dir, "Lonely File.mp3")

		assert.Nil(tt, s.buildGroup(dir, paths))
	})

	t.Run("skips unreadable files", func(tt *testing.T) {
		s := newTestScanner(tt, nil)
		dir := tt.TempDir()
		paths := writeFiles(tt, dir, "01 - One.mp3", "02 - Two.mp3")
		paths = append(paths, filepath.Join(dir, "does-not-exist.mp3"))

		group := s.buildGroup(dir, paths)
		require.NotNil(tt, group)
		assert.Len(tt, group.Files, 2)
	})

	t.Run("tags win over folder parse, series comes from the folder", func(tt *testing.T) {
		meta := map[string]audiometa.Metadata{
			"01 - One.mp3": {
				Title:           "The Well of Ascension",
				Author:          "Brandon Sanderson",
				Narrator:        "Michael Kramer",
				Year:            2007,
				TrackNumber:     1,
				DurationSeconds: 1200,
			},
			"02 - Two.mp3": {
				Title:           "Wrong Title",
				TrackNumber:     2,
				DurationSeconds: 900,
			},
		}
		s := newTestScanner(tt, meta)
		dir := filepath.Join(tt.TempDir(), "Brandon Sanderson", "Mistborn, Book 2")
		paths := writeFiles(tt, dir, "01 - One.mp3", "02 - Two.mp3")

		group := s.buildGroup(dir, paths)
		require.NotNil(tt, group)

		require.NotNil(tt, group.Title)
		assert.Equal(tt, "The Well of Ascension", *group.Title)
		require.NotNil(tt, group.Author)
		assert.Equal(tt, "Brandon Sanderson", *group.Author)
		require.NotNil(tt, group.Narrator)
		assert.Equal(tt, "Michael Kramer", *group.Narrator)
		require.NotNil(tt, group.Year)
		assert.Equal(tt, 2007, *group.Year)
		require.NotNil(tt, group.Series)
		assert.Equal(tt, "Mistborn", *group.Series)
		require.NotNil(tt, group.SeriesIndex)
		assert.Equal(tt, 2.0, *group.SeriesIndex)
		assert.InDelta(tt, 0.55, group.Confidence, 0.0001)

		assert.Equal(tt, 2, group.FileCount())
		assert.InDelta(tt, 2100, group.TotalDurationSeconds(), 0.0001)
	})

	t.Run("folder parse fills gaps when tags are empty", func(tt *testing.T) {
		s := newTestScanner(tt, nil)
		dir := filepath.Join(tt.TempDir(), "Brandon Sanderson", "Mistborn, Book 2")
		paths := writeFiles(tt, dir, "01 - One.mp3", "02 - Two.mp3")

		group := s.buildGroup(dir, paths)
		require.NotNil(tt, group)

		require.NotNil(tt, group.Title)
		assert.Equal(tt, "Mistborn, Book 2", *group.Title)
		require.NotNil(tt, group.Author)
		assert.Equal(tt, "Brandon Sanderson", *group.Author)
		assert.Nil(tt, group.Narrator)
		require.NotNil(tt, group.Series)
		assert.Equal(tt, "Mistborn", *group.Series)
		assert.InDelta(tt, 0.4, group.Confidence, 0.0001)
	})

	t.Run("falls back to folder name when nothing parses", func(tt *testing.T) {
		s := newTestScanner(tt, nil)
		dir := filepath.Join(tt.TempDir(), "CD1")
		paths := writeFiles(tt, dir, "a.mp3", "b.mp3")

		group := s.buildGroup(dir, paths)
		require.NotNil(tt, group)
		require.NotNil(tt, group.Title)
		assert.Equal(tt, "CD1", *group.Title)
	})
}

func TestPrimaryFile(t *testing.T) {
	t.Run("lowest track number wins", func(tt *testing.T) {
		group := &Group{Files: []*GroupFile{
			{Path: "/x/b.mp3", TrackNumber: intPtr(2), Metadata: audiometa.Metadata{DurationSeconds: 5000}},
			{Path: "/x/a.mp3", TrackNumber: intPtr(1), Metadata: audiometa.Metadata{DurationSeconds: 100}},
		}}

		primary := group.primaryFile()
		require.NotNil(tt, primary)
		assert.Equal(tt, "/x/a.mp3", primary.Path)
	})

	t.Run("longest duration breaks ties", func(tt *testing.T) {
		group := &Group{Files: []*GroupFile{
			{Path: "/x/short.mp3", Metadata: audiometa.Metadata{DurationSeconds: 100}},
			{Path: "/x/long.mp3", Metadata: audiometa.Metadata{DurationSeconds: 5000}},
		}}

		primary := group.primaryFile()
		require.NotNil(tt, primary)
		assert.Equal(tt, "/x/long.mp3", primary.Path)
	})
}

func TestSortedFiles(t *testing.T) {
	group := &Group{Files: []*GroupFile{
		{Path: "/x/zeta.mp3"},
		{Path: "/x/alpha.mp3"},
		{Path: "/x/03 - Three.mp3", TrackNumber: intPtr(3)},
		{Path: "/x/01 - One.mp3", TrackNumber: intPtr(1)},
	}}

	sorted := group.SortedFiles()
	require.Len(t, sorted, 4)
	assert.Equal(t, "/x/01 - One.mp3", sorted[0].Path)
	assert.Equal(t, "/x/03 - Three.mp3", sorted[1].Path)
	assert.Equal(t, "/x/alpha.mp3", sorted[2].Path)
	assert.Equal(t, "/x/zeta.mp3", sorted[3].Path)
}

func intPtr(i int) *int {
	return &i
}
