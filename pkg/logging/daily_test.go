package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w, err := NewDailyWriter(dir)
	require.NoError(t, err)

	_, err = w.Write([]byte("first line\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	files, _ := filepath.Glob(filepath.Join(dir, "padnav-*.log"))
	require.Len(t, files, 1)
	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, "first line\n", string(content))
}

func TestDailyWriter_Rotates(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	w, err := newDailyWriter(dir, func() time.Time { return day })
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("before\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "padnav-2026-03-01.log"), w.Path())

	day = day.Add(2 * time.Minute)
	_, err = w.Write([]byte("after\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "padnav-2026-03-02.log"), w.Path())

	first, _ := os.ReadFile(filepath.Join(dir, "padnav-2026-03-01.log"))
	second, _ := os.ReadFile(filepath.Join(dir, "padnav-2026-03-02.log"))
	assert.Equal(t, "before\n", string(first))
	assert.Equal(t, "after\n", string(second))
}

func TestDailyWriter_ReopensAfterClose(t *testing.T) {
	w, err := NewDailyWriter(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("again\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestNew_Dir(t *testing.T) {
	dir := t.TempDir()
	l, err := New("nav", Options{Level: "info", Dir: dir})
	require.NoError(t, err)
	l.Info("hello", slog.String("k", "v"))
	require.NoError(t, l.Close())

	files, _ := filepath.Glob(filepath.Join(dir, "padnav-*.log"))
	require.Len(t, files, 1)
	content, _ := os.ReadFile(files[0])
	assert.Contains(t, string(content), `"msg":"hello"`)
}
