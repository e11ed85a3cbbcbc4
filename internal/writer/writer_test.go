package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "pens")

	_, err := New(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestNewFailsOnFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := New(file)
	assert.Error(t, err)
}

func TestWriteAndExists(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)

	exists, err := w.Exists("demo.html")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, w.Write("demo.html", "<p>one</p>"))
	require.NoError(t, w.Write("demo.html", "<p>two</p>"))

	exists, err = w.Exists("demo.html")
	require.NoError(t, err)
	assert.True(t, exists)

	content, err := os.ReadFile(filepath.Join(dir, "demo.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>two</p>", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteEmptyContent(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, w.Write("empty.html", ""))

	content, err := os.ReadFile(w.Path("empty.html"))
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestWriteMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	assert.Error(t, w.Write("demo.html", "x"))
}
