package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreListSortsFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.docx", "c.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	s := NewLocalStore(dir)
	paths, err := s.List(context.Background(), ".")
	require.NoError(t, err)

	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "a.docx"), paths[0])
	assert.Equal(t, filepath.Join(dir, "b.csv"), paths[1])
	assert.Equal(t, filepath.Join(dir, "c.pdf"), paths[2])
}

func TestLocalStoreListSingleFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "only.csv")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	s := NewLocalStore(dir)
	paths, err := s.List(context.Background(), "only.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{file}, paths)
}

func TestLocalStoreListMissingPrefix(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	_, err := s.List(context.Background(), "absent")
	assert.Error(t, err)
}

func TestLocalStorePutAndFetch(t *testing.T) {
	s := NewLocalStore(t.TempDir())

	locator, err := s.Put(context.Background(), "outputs/job-1/report.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(locator) || locator != "")

	got, err := s.Fetch(context.Background(), locator)
	require.NoError(t, err)
	assert.Equal(t, []byte("a,b\n"), got)
}

func TestLocalStoreFetchMissing(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	_, err := s.Fetch(context.Background(), "nope.csv")
	assert.Error(t, err)
}
