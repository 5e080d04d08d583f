package kom

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storedMap is a PayloadSource over an in-memory map of zlib streams.
type storedMap map[string][]byte

func (m storedMap) ReadStored(name string) ([]byte, error) {
	stored, ok := m[name]
	if !ok {
		return nil, errors.New("no payload for " + name)
	}
	return stored, nil
}

func TestWriteRecomputesStoredSize(t *testing.T) {
	t.Parallel()

	stored := deflate([]byte("payload bytes"))
	idx := NewIndex()
	// The index lies about the stored size; the writer must trust the
	// payload source, not the stale record.
	require.NoError(t, idx.InsertOrReplace(Entry{Name: "a.bin", Size: 13, StoredSize: 9999}, false))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, idx, storedMap{"a.bin": stored}, CrcOmit))

	path := filepath.Join(t.TempDir(), "out.kom")
	require.NoError(t, writeFileAtomic(path, buf.Bytes()))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	e, ok := r.Index().Get("a.bin")
	require.True(t, ok)
	assert.Equal(t, uint32(len(stored)), e.StoredSize)
	payload, err := r.ReadPayload("a.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload bytes"), payload)
}

func TestWritePayloadSourceFailure(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	require.NoError(t, idx.InsertOrReplace(Entry{Name: "a.bin"}, false))

	var buf bytes.Buffer
	err := Write(&buf, idx, storedMap{}, CrcOmit)
	require.Error(t, err)
}

func TestWriteKeepWithoutStoredManifest(t *testing.T) {
	t.Parallel()

	stored := deflate([]byte("x"))
	idx := NewIndex()
	require.NoError(t, idx.InsertOrReplace(Entry{Name: "a.bin", Size: 1}, false))

	// CrcKeep on a set that never had crc.xml simply writes none.
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, idx, storedMap{"a.bin": stored}, CrcKeep))

	path := filepath.Join(t.TempDir(), "keep.kom")
	require.NoError(t, writeFileAtomic(path, buf.Bytes()))
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 1, r.Len())
}

func TestWriteDeterministic(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	require.NoError(t, idx.InsertOrReplace(Entry{Name: "b.bin", Size: 3}, false))
	require.NoError(t, idx.InsertOrReplace(Entry{Name: "a.bin", Size: 3}, false))
	src := storedMap{
		"a.bin": deflate([]byte("aaa")),
		"b.bin": deflate([]byte("bbb")),
	}

	var one, two bytes.Buffer
	require.NoError(t, Write(&one, idx, src, CrcRegenerate))
	require.NoError(t, Write(&two, idx, src, CrcRegenerate))
	assert.Equal(t, one.Bytes(), two.Bytes())
}
