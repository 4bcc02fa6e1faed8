package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".iasql", ".token")

	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, "abc123"))

	token, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	require.NoError(t, store.Delete(ctx))

	_, err = store.Read(ctx)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreWriteCreatesDirectory(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", ".iasql")
	path := filepath.Join(dir, ".token")

	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = os.Stat(dir)
	require.True(t, os.IsNotExist(err), "constructor must not touch the filesystem")

	require.NoError(t, store.Write(ctx, "tok"))

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())

	fileInfo, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fileInfo.Mode().Perm())
}

func TestFileStoreWriteReplacesPreviousToken(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, ".token")

	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, "a-much-longer-first-token"))
	require.NoError(t, store.Write(ctx, "short"))

	token, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "short", token)

	// No temp files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".token", entries[0].Name())
}

func TestFileStoreReadIsVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".token")
	require.NoError(t, os.WriteFile(path, []byte("  spaced token\n"), 0600))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	token, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "  spaced token\n", token)
}

func TestFileStoreReadNotFound(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, path string)
	}{
		{
			name:  "missing file",
			setup: func(t *testing.T, path string) {},
		},
		{
			name: "empty file",
			setup: func(t *testing.T, path string) {
				require.NoError(t, os.WriteFile(path, nil, 0600))
			},
		},
		{
			name: "path is a directory",
			setup: func(t *testing.T, path string) {
				require.NoError(t, os.Mkdir(path, 0700))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".token")
			tt.setup(t, path)

			store, err := NewFileStore(path)
			require.NoError(t, err)

			_, err = store.Read(context.Background())
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFileStoreDeleteMissing(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), ".token"))
	require.NoError(t, err)

	err = store.Delete(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreCanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".token")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, store.Write(ctx, "tok"), context.Canceled)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNewFileStoreEmptyPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}
