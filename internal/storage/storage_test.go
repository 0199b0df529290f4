package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hostpanel/pkg/apierror"
)

func TestSandboxResolve(t *testing.T) {
	t.Parallel()

	sandbox, err := NewSandbox(t.TempDir())
	require.NoError(t, err)

	t.Run("root aliases", func(t *testing.T) {
		for _, p := range []string{"", "/", " . "} {
			resolved, resolveErr := sandbox.Resolve(p)
			require.NoError(t, resolveErr)
			require.Equal(t, sandbox.RootAbs(), resolved)
		}
	})

	t.Run("nested path", func(t *testing.T) {
		resolved, resolveErr := sandbox.Resolve("/sites/example.com/index.php")
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(sandbox.RootAbs(), "sites", "example.com", "index.php"), resolved)
		require.Equal(t, "/sites/example.com/index.php", sandbox.ClientPath(resolved))
	})

	t.Run("backslashes are normalized", func(t *testing.T) {
		resolved, resolveErr := sandbox.Resolve(`backups\db.sql`)
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(sandbox.RootAbs(), "backups", "db.sql"), resolved)
	})

	t.Run("traversal is rejected", func(t *testing.T) {
		_, resolveErr := sandbox.Resolve("/sites/../../etc/passwd")
		var apiErr *apierror.APIError
		require.True(t, errors.As(resolveErr, &apiErr))
		require.Equal(t, "PATH_TRAVERSAL", apiErr.Code)
	})

	t.Run("control characters are rejected", func(t *testing.T) {
		_, resolveErr := sandbox.Resolve("logs\x00/error.log")
		require.Error(t, resolveErr)
	})

	t.Run("sibling prefix is outside root", func(t *testing.T) {
		require.False(t, isWithinRoot("/srv/files", "/srv/files-old/a.txt"))
		require.True(t, isWithinRoot("/srv/files", "/srv/files/a.txt"))
	})
}

func TestClean(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/", Clean(""))
	require.Equal(t, "/", Clean("/"))
	require.Equal(t, "/a/b", Clean("a//b/"))
	require.Equal(t, "/a", Clean("/a/./"))
}

func TestStorageOperations(t *testing.T) {
	t.Parallel()

	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Mkdir("/docs"))
	require.Error(t, store.Mkdir("/docs"))
	require.Error(t, store.Mkdir("/missing/child"))

	n, err := store.WriteFrom("/docs/hello.txt", strings.NewReader("hello world"), 0)
	require.NoError(t, err)
	require.EqualValues(t, 11, n)

	file, err := store.Open("/docs/hello.txt")
	require.NoError(t, err)
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	require.Equal(t, "hello world", string(content))

	require.NoError(t, store.Rename("/docs/hello.txt", "/docs/renamed.txt"))
	_, err = store.Stat("/docs/renamed.txt")
	require.NoError(t, err)

	_, err = store.WriteFrom("/docs/other.txt", strings.NewReader("x"), 0)
	require.NoError(t, err)
	require.Error(t, store.Rename("/docs/other.txt", "/docs/renamed.txt"))

	entries, err := store.ReadDir("/docs")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Error(t, store.RemoveAll("/"))
	require.NoError(t, store.RemoveAll("/docs"))
	_, err = store.Stat("/docs")
	require.True(t, os.IsNotExist(err))
}

func TestStorageWriteFromLimit(t *testing.T) {
	t.Parallel()

	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.WriteFrom("/big.bin", strings.NewReader(strings.Repeat("a", 11)), 10)
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "FILE_TOO_LARGE", apiErr.Code)

	_, err = store.Stat("/big.bin")
	require.True(t, os.IsNotExist(err))

	entries, err := store.ReadDir("/")
	require.NoError(t, err)
	require.Empty(t, entries, "temporary files must be cleaned up")

	n, err := store.WriteFrom("/ok.bin", strings.NewReader(strings.Repeat("a", 10)), 10)
	require.NoError(t, err)
	require.EqualValues(t, 10, n)
}
