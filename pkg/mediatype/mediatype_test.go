package mediatype

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shelforg/shelforg/pkg/config"
	"github.com/shelforg/shelforg/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier() *Classifier {
	cfg := config.NewForTest()
	return NewClassifier(cfg.Organizer)
}

func TestDetect(t *testing.T) {
	t.Parallel()

	c := newTestClassifier()

	cases := []struct {
		path     string
		expected string
	}{
		{"/library/book.epub", models.MediaTypeEbook},
		{"/library/book.MOBI", models.MediaTypeEbook},
		{"/library/book.pdf", models.MediaTypeEbook},
		{"/library/comic.cbz", models.MediaTypeComic},
		{"/library/comic.cbr", models.MediaTypeComic},
		{"/library/track.mp3", models.MediaTypeAudiobook},
		{"/library/book.m4b", models.MediaTypeAudiobook},
		{"/library/track.flac", models.MediaTypeAudiobook},
		{"/library/readme.txt", ""},
		{"/library/noext", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, c.Detect(tc.path), tc.path)
	}
}

func TestIsSupported(t *testing.T) {
	t.Parallel()

	c := newTestClassifier()
	assert.True(t, c.IsSupported("/x/a.mp3"))
	assert.True(t, c.IsSupported("/x/a.epub"))
	assert.False(t, c.IsSupported("/x/a.txt"))
}

func TestInAudiobookFolder(t *testing.T) {
	t.Parallel()

	c := newTestClassifier()
	assert.True(t, c.InAudiobookFolder("/library/Audiobooks/Dune/01.mp3"))
	assert.True(t, c.InAudiobookFolder("/library/my audiobook collection/01.mp3"))
	assert.False(t, c.InAudiobookFolder("/library/Music/Dune/01.mp3"))
}

func TestSkipFolder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		skip bool
	}{
		{".hidden", true},
		{".git", true},
		{"__pycache__", true},
		{"$RECYCLE.BIN", true},
		{"node_modules", true},
		{"Thumbs.db", true},
		{"desktop.ini", true},
		{"Audiobooks", false},
		{"Brandon Sanderson", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.skip, SkipFolder(tc.name), tc.name)
	}
}

func TestSniffMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(tt *testing.T, name string, contents []byte) string {
		tt.Helper()
		path := filepath.Join(dir, name)
		require.NoError(tt, os.WriteFile(path, contents, 0o644))
		return path
	}

	t.Run("text pretending to be audio", func(tt *testing.T) {
		detected, mismatch := SniffMismatch(write(tt, "bad.mp3", []byte("just some notes")))
		assert.True(tt, mismatch)
		assert.Contains(tt, detected, "text/plain")
	})

	t.Run("real mp3 header", func(tt *testing.T) {
		_, mismatch := SniffMismatch(write(tt, "good.mp3", []byte("ID3\x03\x00\x00\x00\x00\x00\x00padding")))
		assert.False(tt, mismatch)
	})

	t.Run("real pdf header", func(tt *testing.T) {
		_, mismatch := SniffMismatch(write(tt, "good.pdf", []byte("%PDF-1.4\n%")))
		assert.False(tt, mismatch)
	})

	t.Run("unchecked extension", func(tt *testing.T) {
		detected, mismatch := SniffMismatch(write(tt, "notes.txt", []byte("plain text")))
		assert.False(tt, mismatch)
		assert.NotEmpty(tt, detected)
	})

	t.Run("unreadable file", func(tt *testing.T) {
		detected, mismatch := SniffMismatch(filepath.Join(dir, "missing.mp3"))
		assert.False(tt, mismatch)
		assert.Empty(tt, detected)
	})
}
