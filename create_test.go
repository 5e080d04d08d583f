package kom

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInputs(t *testing.T, files map[string][]byte) string {
	t.Helper()

	dir := t.TempDir()
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	return dir
}

func TestCreateFromDir(t *testing.T) {
	t.Parallel()

	files := map[string][]byte{
		"map.tbl":    []byte("table data"),
		"sprite.dds": bytes.Repeat([]byte{5}, 256),
	}
	dir := writeInputs(t, files)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	a, err := CreateFromDir(dir, false)
	require.NoError(t, err)

	// Subdirectories are ignored; both files are present.
	require.Equal(t, 2, a.Len())
	for name, want := range files {
		got, err := a.ReadPayload(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCreateFromFilesSkipInvalid(t *testing.T) {
	t.Parallel()

	dir := writeInputs(t, map[string][]byte{
		"good.bin":  []byte("fine"),
		"other.bin": []byte("also fine"),
	})
	paths := []string{
		filepath.Join(dir, "good.bin"),
		filepath.Join(dir, "unreadable.bin"), // does not exist
		filepath.Join(dir, "other.bin"),
	}

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	a, err := CreateFromFiles(paths, true, WithLogger(logger))
	require.NoError(t, err)
	require.Equal(t, 2, a.Len())
	_, ok := a.Index().Get("unreadable.bin")
	assert.False(t, ok)
	assert.Contains(t, logBuf.String(), "input file skipped", "the dropped source must leave a warning")
}

func TestCreateFromFilesAbortsWithoutSkip(t *testing.T) {
	t.Parallel()

	dir := writeInputs(t, map[string][]byte{"good.bin": []byte("fine")})
	paths := []string{
		filepath.Join(dir, "missing.bin"),
		filepath.Join(dir, "good.bin"),
	}

	_, err := CreateFromFiles(paths, false)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCreateIgnoresStrayChecksumFile(t *testing.T) {
	t.Parallel()

	dir := writeInputs(t, map[string][]byte{
		"a.bin":           []byte("data"),
		ChecksumEntryName: []byte("<FileInfo/>"),
	})

	// A stray crc.xml input is refused regardless of skipInvalid.
	a, err := CreateFromDir(dir, false)
	require.NoError(t, err)
	require.Equal(t, 1, a.Len())
	_, ok := a.Index().Get(ChecksumEntryName)
	assert.False(t, ok)
}

func TestCreateIgnoresOverlongName(t *testing.T) {
	t.Parallel()

	longName := strings.Repeat("n", 61)
	dir := writeInputs(t, map[string][]byte{
		"a.bin":  []byte("data"),
		longName: []byte("too long"),
	})

	a, err := CreateFromDir(dir, false)
	require.NoError(t, err)
	require.Equal(t, 1, a.Len())
}

func TestAddFileConflict(t *testing.T) {
	t.Parallel()

	dir := writeInputs(t, map[string][]byte{"a.bin": []byte("data")})

	a := New()
	require.NoError(t, a.AddFile(filepath.Join(dir, "a.bin")))
	require.ErrorIs(t, a.AddFile(filepath.Join(dir, "a.bin")), ErrConflict)
}
