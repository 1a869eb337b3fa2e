package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meta.json")

	require.NoError(t, WriteFile(Default, path, []byte("{}"), 0o644))
	require.NoError(t, SyncDir(Default, dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestFaultyFSWriteLimit(t *testing.T) {
	dir := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("tfidf", Fault{FailAfterBytes: 4})

	err := WriteFile(ffs, filepath.Join(dir, "tfidf.hfb"), []byte("too long"), 0o644)
	require.ErrorIs(t, err, ErrInjected)

	require.NoError(t, WriteFile(ffs, filepath.Join(dir, "graph.hfb"), []byte("too long"), 0o644))
}

func TestFaultyFSSyncAndRename(t *testing.T) {
	dir := t.TempDir()
	ffs := NewFaultyFS(LocalFS{})
	boom := assert.AnError
	ffs.AddRule("corpus", Fault{FailAfterBytes: -1, FailOnSync: true, Err: boom})
	ffs.AddRule("target", Fault{FailAfterBytes: -1, FailOnRename: true})

	err := WriteFile(ffs, filepath.Join(dir, "corpus.hfb"), []byte("x"), 0o644)
	require.ErrorIs(t, err, boom)

	src := filepath.Join(dir, "src")
	require.NoError(t, ffs.MkdirAll(src, 0o755))
	err = ffs.Rename(src, filepath.Join(dir, "target"))
	require.ErrorIs(t, err, ErrInjected)

	_, err = ffs.Stat(src)
	require.NoError(t, err)
}

func TestMkdirTempAndRemoveAll(t *testing.T) {
	dir := t.TempDir()
	tmp, err := Default.MkdirTemp(dir, ".build-*")
	require.NoError(t, err)
	require.NoError(t, WriteFile(Default, filepath.Join(tmp, "a"), []byte("a"), 0o644))

	entries, err := Default.ReadDir(tmp)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, Default.RemoveAll(tmp))
	_, err = Default.Stat(tmp)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
