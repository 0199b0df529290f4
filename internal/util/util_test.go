package util

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	t.Run("replaces reserved characters", func(t *testing.T) {
		actual, err := SanitizeName(` backup<2026>?.sql `, false)
		require.NoError(t, err)
		require.Equal(t, "backup_2026__.sql", actual)
	})

	t.Run("separators cannot introduce directories", func(t *testing.T) {
		actual, err := SanitizeName("../etc/passwd", true)
		require.NoError(t, err)
		require.Equal(t, ".._etc_passwd", actual)
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := SanitizeName("  \t ", false)
		require.Error(t, err)
	})

	t.Run("hidden names need permission", func(t *testing.T) {
		_, err := SanitizeName(".htaccess", false)
		require.Error(t, err)

		actual, err := SanitizeName(".htaccess", true)
		require.NoError(t, err)
		require.Equal(t, ".htaccess", actual)
	})

	t.Run("rejects dot names", func(t *testing.T) {
		_, err := SanitizeName("..", true)
		require.Error(t, err)
	})

	t.Run("strips invisible runes", func(t *testing.T) {
		actual, err := SanitizeName("in\u200bdex.php", false)
		require.NoError(t, err)
		require.Equal(t, "index.php", actual)
	})

	t.Run("truncates by rune", func(t *testing.T) {
		actual, err := SanitizeName(strings.Repeat("é", 300), false)
		require.NoError(t, err)
		require.Equal(t, 255, utf8.RuneCountInString(actual))
		require.True(t, utf8.ValidString(actual))
	})
}

func TestDetectMIME(t *testing.T) {
	t.Parallel()

	png := []byte("\x89PNG\r\n\x1a\n0000")
	mimeType, err := DetectMIME(bytes.NewReader(png), "logo.bin")
	require.NoError(t, err)
	require.Equal(t, "image/png", mimeType)

	r := bytes.NewReader([]byte(`{"a":1}`))
	mimeType, err = DetectMIME(r, "config.json")
	require.NoError(t, err)
	require.Equal(t, "application/json", mimeType)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(rest), "reader must be rewound")
}

func TestMIMEClasses(t *testing.T) {
	t.Parallel()

	require.True(t, IsThumbnailMIME("image/png"))
	require.True(t, IsThumbnailMIME("image/jpeg; charset=binary"))
	require.False(t, IsThumbnailMIME("image/svg+xml"))

	require.True(t, IsTextMIME("text/plain; charset=utf-8"))
	require.True(t, IsTextMIME("application/json"))
	require.False(t, IsTextMIME("application/zip"))
}

func TestWriteZip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "conf.d"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nginx.conf"), []byte("events {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conf.d", "site.conf"), []byte("server {}"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, WriteZip(&buf, dir))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	require.Equal(t, []string{"conf.d/", "conf.d/site.conf", "nginx.conf"}, names)
}
