package kom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kompactor/kom/internal/wire"
)

func TestBuildIndexDuplicateName(t *testing.T) {
	t.Parallel()

	records := []wire.Record{
		{Name: "a.bin", StoredSize: 4, Offset: 0},
		{Name: "a.bin", StoredSize: 4, Offset: 4},
	}
	_, err := BuildIndex(records, 8)
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestBuildIndexOverlap(t *testing.T) {
	t.Parallel()

	records := []wire.Record{
		{Name: "a.bin", StoredSize: 10, Offset: 0},
		{Name: "b.bin", StoredSize: 10, Offset: 5},
	}
	_, err := BuildIndex(records, 100)
	require.ErrorIs(t, err, ErrOverlappingPayload)
}

func TestBuildIndexBeyondPayloadRegion(t *testing.T) {
	t.Parallel()

	records := []wire.Record{
		{Name: "a.bin", StoredSize: 10, Offset: 0},
	}
	_, err := BuildIndex(records, 9)
	require.ErrorIs(t, err, ErrOverlappingPayload)
}

func TestBuildIndexKeepsTableOrder(t *testing.T) {
	t.Parallel()

	records := []wire.Record{
		{Name: "z.bin", StoredSize: 2, Offset: 0},
		{Name: "a.bin", StoredSize: 2, Offset: 2},
	}
	idx, err := BuildIndex(records, 4)
	require.NoError(t, err)

	entries := idx.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "z.bin", entries[0].Name)
	assert.Equal(t, "a.bin", entries[1].Name)
}

func TestInsertOrReplaceConflict(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	require.NoError(t, idx.InsertOrReplace(Entry{Name: "a.bin", Size: 1}, false))

	err := idx.InsertOrReplace(Entry{Name: "a.bin", Size: 2}, false)
	require.ErrorIs(t, err, ErrConflict)

	// The refused insert must leave the index unchanged.
	e, ok := idx.Get("a.bin")
	require.True(t, ok)
	assert.Equal(t, uint32(1), e.Size)

	require.NoError(t, idx.InsertOrReplace(Entry{Name: "a.bin", Size: 2}, true))
	e, _ = idx.Get("a.bin")
	assert.Equal(t, uint32(2), e.Size)
	assert.Equal(t, 1, idx.Len())
}

func TestRemove(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	require.NoError(t, idx.InsertOrReplace(Entry{Name: "a.bin"}, false))
	require.NoError(t, idx.InsertOrReplace(Entry{Name: "b.bin"}, false))
	require.NoError(t, idx.InsertOrReplace(Entry{Name: "c.bin"}, false))

	e, err := idx.Remove("b.bin")
	require.NoError(t, err)
	assert.Equal(t, "b.bin", e.Name)

	_, err = idx.Remove("b.bin")
	require.ErrorIs(t, err, ErrNotFound)

	// Positions must stay consistent after the shift.
	entries := idx.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a.bin", entries[0].Name)
	assert.Equal(t, "c.bin", entries[1].Name)
	got, ok := idx.Get("c.bin")
	require.True(t, ok)
	assert.Equal(t, "c.bin", got.Name)
}

func TestSortByNameKeepsChecksumLast(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	require.NoError(t, idx.InsertOrReplace(Entry{Name: "b.bin"}, false))
	require.NoError(t, idx.InsertOrReplace(Entry{Name: ChecksumEntryName}, false))
	require.NoError(t, idx.InsertOrReplace(Entry{Name: "a.bin"}, false))

	idx.SortByName()

	entries := idx.Entries()
	assert.Equal(t, "a.bin", entries[0].Name)
	assert.Equal(t, "b.bin", entries[1].Name)
	assert.Equal(t, ChecksumEntryName, entries[2].Name)
}
