package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "httpc.log")

	w, err := NewRotatingWriter(path, 1024)
	require.NoError(t, err)
	_, err = w.Write([]byte("line one\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// Reopening continues the same file.
	w, err = NewRotatingWriter(path, 1024)
	require.NoError(t, err)
	_, err = w.Write([]byte("line two\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(data))
}

func TestRotatingWriterRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "httpc.log")

	w, err := NewRotatingWriter(path, 16)
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte(strings.Repeat("a", 20) + "\n"))
	require.NoError(t, err)
	// The file is now past the threshold; the next write rotates first.
	_, err = w.Write([]byte("fresh\n"))
	require.NoError(t, err)

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", string(current))

	rotated, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 20)+"\n", string(rotated))
}

func TestRotatingWriterKeepsOnePredecessor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "httpc.log")

	w, err := NewRotatingWriter(path, 4)
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		_, err = w.Write([]byte("12345678\n"))
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"httpc.log", "httpc.log.1"}, names)
}

func TestDiscardLoggerIsSilent(t *testing.T) {
	logger := Discard()
	logger.Info("nothing to see")
}
