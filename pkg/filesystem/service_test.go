package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelforg/shelforg/pkg/config"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(config.NewForTest().Organizer)
}

func TestBrowse(t *testing.T) {
	svc := newTestService(t)
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "Audiobooks"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Audiobooks", "book.m4b"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Empty"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hidden"), 0o755))
	// Plain files don't show up as entries.
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	resp, err := svc.Browse(BrowseOptions{Path: root, Limit: 50})
	require.NoError(t, err)

	assert.Equal(t, root, resp.CurrentPath)
	assert.Equal(t, filepath.Dir(root), resp.ParentPath)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "Audiobooks", resp.Entries[0].Name)
	assert.True(t, resp.Entries[0].HasMedia)
	assert.Equal(t, "Empty", resp.Entries[1].Name)
	assert.False(t, resp.Entries[1].HasMedia)

	resp, err = svc.Browse(BrowseOptions{Path: root, Limit: 50, ShowHidden: true})
	require.NoError(t, err)
	assert.Len(t, resp.Entries, 3)
}

func TestBrowseSearchAndPagination(t *testing.T) {
	svc := newTestService(t)
	root := t.TempDir()

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0o755))
	}

	resp, err := svc.Browse(BrowseOptions{Path: root, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Entries, 2)
	assert.True(t, resp.HasMore)

	resp, err = svc.Browse(BrowseOptions{Path: root, Limit: 50, Search: "bet"})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "Beta", resp.Entries[0].Name)
}

func TestBrowseMissingDirectory(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Browse(BrowseOptions{Path: filepath.Join(t.TempDir(), "missing"), Limit: 50})
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
