package storage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreSaveRead(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	data := []byte("encrypted bytes")
	path, err := store.Save(7, "contract.pdf", data)
	require.NoError(t, err)

	assert.Equal(t, ".pdf", filepath.Ext(path))
	assert.True(t, strings.Contains(path, string(filepath.Separator)+"7"+string(filepath.Separator)),
		"blobs are grouped per owner: %s", path)

	got, err := store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFileStoreUniqueNames(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	p1, err := store.Save(1, "a.pdf", []byte("one"))
	require.NoError(t, err)
	p2, err := store.Save(1, "a.pdf", []byte("two"))
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
}

func TestFileStoreRemove(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save(1, "a.pdf", []byte("bytes"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(path))
	_, err = store.Read(path)
	assert.Error(t, err)

	// Removing twice is not an error.
	assert.NoError(t, store.Remove(path))
}
