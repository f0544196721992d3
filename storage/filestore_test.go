package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "audio"))
	require.NoError(t, err)
	return store
}

func TestSaveWritesFileWithGeneratedName(t *testing.T) {
	store := newTestStore(t)

	content := "not really audio"
	name, err := store.Save(strings.NewReader(content), int64(len(content)), "song.mp3")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(name, ".mp3"))
	assert.NotEqual(t, "song.mp3", name)

	data, err := os.ReadFile(filepath.Join(store.BaseDir(), name))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save(strings.NewReader("a"), 1, "song.mp3")
	require.NoError(t, err)
	second, err := store.Save(strings.NewReader("b"), 1, "song.mp3")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSaveAcceptsUppercaseExtension(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save(strings.NewReader("x"), 1, "SONG.FLAC")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".flac"))
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(strings.NewReader("plain text"), 10, "notes.txt")
	assert.ErrorIs(t, err, ErrInvalidExtension)

	entries, err := os.ReadDir(store.BaseDir())
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected upload must not leave a file behind")
}

func TestSaveRejectsOversizedDeclaredSize(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(strings.NewReader("x"), MaxFileSize+1, "big.mp3")
	assert.ErrorIs(t, err, ErrFileTooLarge)

	entries, err := os.ReadDir(store.BaseDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPath(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save(strings.NewReader("x"), 1, "song.mp3")
	require.NoError(t, err)

	path, err := store.Path(name)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.BaseDir(), name), path)

	_, err = store.Path("missing.mp3")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = store.Path(filepath.Join("..", name))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestDeleteTolerantOfMissingFile(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save(strings.NewReader("x"), 1, "song.mp3")
	require.NoError(t, err)

	require.NoError(t, store.Delete(name))
	_, err = store.Path(name)
	assert.ErrorIs(t, err, ErrFileNotFound)

	assert.NoError(t, store.Delete(name))
	assert.NoError(t, store.Delete("never-existed.mp3"))
}

func TestAllowedExtension(t *testing.T) {
	assert.True(t, AllowedExtension("song.mp3"))
	assert.True(t, AllowedExtension("SONG.WAV"))
	assert.False(t, AllowedExtension("document.pdf"))
	assert.False(t, AllowedExtension("noextension"))
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "audio/mpeg", ContentTypeFor("song.mp3"))
	assert.Equal(t, "audio/flac", ContentTypeFor("song.FLAC"))
	assert.Equal(t, "audio/mp4", ContentTypeFor("song.m4a"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("song.unknown"))
}
