package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestCheckPhoto(t *testing.T) {
	img := writeFile(t, "shoe.png", pngHeader)
	text := writeFile(t, "notes.txt", []byte("hello"))

	assert.NoError(t, CheckPhoto(img))
	assert.ErrorContains(t, CheckPhoto(text), "not an image")
	assert.Error(t, CheckPhoto(filepath.Join(t.TempDir(), "missing.png")))
	assert.ErrorContains(t, CheckPhoto(t.TempDir()), "directory")
}

func TestCheckPhotos(t *testing.T) {
	img := writeFile(t, "a.png", pngHeader)

	paths, err := CheckPhotos(" " + img + " , ,")
	require.NoError(t, err)
	assert.Equal(t, []string{img}, paths)

	_, err = CheckPhotos(" , ")
	assert.ErrorIs(t, err, ErrNoPhotos)
}
