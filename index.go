package kom

import (
	"fmt"
	"sort"

	"github.com/kompactor/kom/internal/wire"
)

// Index is an ordered mapping from entry name to entry metadata.
//
// Order matches the on-disk record table unless explicitly resorted with
// [Index.SortByName]. The index is an arena of [Entry] values plus a
// name-to-position map; callers get value copies, never aliases.
//
// Index is not safe for concurrent use. An edit session owns its index
// for the duration of the session and must re-serialize through [Write]
// before the archive is considered updated.
type Index struct {
	entries []Entry
	byName  map[string]int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{byName: make(map[string]int)}
}

// BuildIndex validates decoded records and builds an index over them.
//
// payloadSize is the length of the archive's payload region. BuildIndex
// fails with ErrDuplicateName when two records share a name, and with
// ErrOverlappingPayload when any two records' stored byte ranges overlap
// or a range runs past payloadSize.
func BuildIndex(records []wire.Record, payloadSize int64) (*Index, error) {
	idx := &Index{
		entries: make([]Entry, 0, len(records)),
		byName:  make(map[string]int, len(records)),
	}
	for _, r := range records {
		if _, ok := idx.byName[r.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, r.Name)
		}
		idx.byName[r.Name] = len(idx.entries)
		idx.entries = append(idx.entries, entryFromRecord(r))
	}
	if err := checkRanges(idx.entries, payloadSize); err != nil {
		return nil, err
	}
	return idx, nil
}

// checkRanges verifies that stored payload ranges neither overlap nor
// exceed the payload region.
func checkRanges(entries []Entry, payloadSize int64) error {
	byOffset := make([]Entry, len(entries))
	copy(byOffset, entries)
	sort.Slice(byOffset, func(i, j int) bool { return byOffset[i].Offset < byOffset[j].Offset })

	var prev Entry
	for i, e := range byOffset {
		end := int64(e.Offset) + int64(e.StoredSize)
		if end > payloadSize {
			return fmt.Errorf("%w: %q ends at %d, payload region is %d bytes",
				ErrOverlappingPayload, e.Name, end, payloadSize)
		}
		if i > 0 && int64(e.Offset) < int64(prev.Offset)+int64(prev.StoredSize) {
			return fmt.Errorf("%w: %q overlaps %q", ErrOverlappingPayload, e.Name, prev.Name)
		}
		prev = e
	}
	return nil
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Get returns the entry with the given name.
func (idx *Index) Get(name string) (Entry, bool) {
	i, ok := idx.byName[name]
	if !ok {
		return Entry{}, false
	}
	return idx.entries[i], true
}

// Entries returns all entry metadata in index order. The returned slice
// is a copy and safe to retain.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// InsertOrReplace adds an entry, or replaces the existing entry of the
// same name when overwrite is true. With overwrite false an existing
// name fails with ErrConflict and the index is left unchanged. A
// replaced entry keeps its position in the order; a new entry is
// appended.
func (idx *Index) InsertOrReplace(e Entry, overwrite bool) error {
	if err := wire.ValidateName(e.Name); err != nil {
		return err
	}
	if i, ok := idx.byName[e.Name]; ok {
		if !overwrite {
			return fmt.Errorf("%w: %q", ErrConflict, e.Name)
		}
		idx.entries[i] = e
		return nil
	}
	idx.byName[e.Name] = len(idx.entries)
	idx.entries = append(idx.entries, e)
	return nil
}

// Remove drops the named entry and returns its metadata. Entries after
// it shift up one position; their stored offsets are untouched, since
// offsets are reassigned at write time anyway.
func (idx *Index) Remove(name string) (Entry, error) {
	i, ok := idx.byName[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	e := idx.entries[i]
	idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
	delete(idx.byName, name)
	for j := i; j < len(idx.entries); j++ {
		idx.byName[idx.entries[j].Name] = j
	}
	return e, nil
}

// SortByName resorts entries lexicographically by name, keeping any
// crc.xml entry last. The game's own packer writes name-sorted tables.
func (idx *Index) SortByName() {
	sort.SliceStable(idx.entries, func(i, j int) bool {
		a, b := idx.entries[i], idx.entries[j]
		if a.Name == ChecksumEntryName {
			return false
		}
		if b.Name == ChecksumEntryName {
			return true
		}
		return a.Name < b.Name
	})
	for i, e := range idx.entries {
		idx.byName[e.Name] = i
	}
}
