package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := store.Save("9/photo.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/9/photo.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "9", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestSaveNeverOverwrites(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	_, err = store.Save("9/photo.jpg", strings.NewReader("first"))
	require.NoError(t, err)

	_, err = store.Save("9/photo.jpg", strings.NewReader("second"))
	assert.ErrorIs(t, err, ErrKeyExists)
}

func TestSaveSanitizesTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	_, err = store.Save("../escape.txt", strings.NewReader("payload"))
	require.NoError(t, err)

	// the write lands inside the store root, not beside it
	_, statErr := os.Stat(filepath.Join(dir, "escape.txt"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(filepath.Dir(dir), "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
