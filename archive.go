package kom

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Archive is an in-memory edit session over an entry set.
//
// A session either wraps an opened archive ([Load]) or starts empty
// ([New]). Mutations touch only the session's index and payload
// staging; the source file on disk is never patched in place. The
// session becomes a new archive artifact through [Archive.Save] or
// [Write].
//
// Archive is an explicit handle, not process state: multiple sessions
// can coexist and none outlives its process.
type Archive struct {
	idx *Index
	// staged holds stored (compressed) payloads for entries added or
	// replaced in this session. Entries absent from staged are read
	// back from the source archive.
	staged map[string][]byte
	src    *Reader
	cfg    config
}

// New returns an empty edit session, the starting point for building an
// archive from input files.
func New(opts ...Option) *Archive {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Archive{
		idx:    NewIndex(),
		staged: make(map[string][]byte),
		cfg:    cfg,
	}
}

// Load opens an archive and wraps it in an edit session. The session
// holds the source file handle until Close.
func Load(path string, opts ...Option) (*Archive, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	r, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	return &Archive{
		idx:    r.Index(),
		staged: make(map[string][]byte),
		src:    r,
		cfg:    cfg,
	}, nil
}

// Close releases the source archive's file handle, if any.
func (a *Archive) Close() error {
	if a.src == nil {
		return nil
	}
	return a.src.Close()
}

// Index returns the session's mutable index. The caller holds the view
// only for the duration of the edit session.
func (a *Archive) Index() *Index {
	return a.idx
}

// Entries returns all entry metadata in index order.
func (a *Archive) Entries() []Entry {
	return a.idx.Entries()
}

// Len returns the number of entries in the session.
func (a *Archive) Len() int {
	return a.idx.Len()
}

// Append adds a new entry with the given payload. If the name already
// exists the call fails with ErrConflict unless overwrite is true, in
// which case the existing entry's payload is replaced. On failure the
// session is left unchanged.
func (a *Archive) Append(name string, payload []byte, overwrite bool) error {
	stored := deflate(payload)
	e := Entry{
		Name:       name,
		Size:       uint32(len(payload)),
		StoredSize: uint32(len(stored)),
	}
	if err := a.idx.InsertOrReplace(e, overwrite); err != nil {
		return err
	}
	a.staged[name] = stored
	a.cfg.log().Debug("entry appended", "name", name, "size", len(payload), "stored", len(stored))
	return nil
}

// Replace swaps the payload of an existing entry. A missing name fails
// with ErrNotFound.
func (a *Archive) Replace(name string, payload []byte) error {
	if _, ok := a.idx.Get(name); !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return a.Append(name, payload, true)
}

// Remove drops an entry by name. A missing name fails with ErrNotFound.
func (a *Archive) Remove(name string) error {
	if _, err := a.idx.Remove(name); err != nil {
		return err
	}
	delete(a.staged, name)
	a.cfg.log().Debug("entry removed", "name", name)
	return nil
}

// ReadStored returns an entry's stored (compressed) payload, preferring
// bytes staged in this session over the source archive. Implements
// [PayloadSource].
func (a *Archive) ReadStored(name string) ([]byte, error) {
	if _, ok := a.idx.Get(name); !ok {
		return nil, fmt.Errorf("read %q: %w", name, ErrNotFound)
	}
	if stored, ok := a.staged[name]; ok {
		return stored, nil
	}
	if a.src == nil {
		return nil, fmt.Errorf("read %q: %w", name, ErrNotFound)
	}
	return a.src.ReadStored(name)
}

// ReadPayload returns an entry's decompressed payload bytes.
func (a *Archive) ReadPayload(name string) ([]byte, error) {
	if stored, ok := a.staged[name]; ok {
		data, err := inflate(stored)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", name, err)
		}
		return data, nil
	}
	if a.src == nil {
		return nil, fmt.Errorf("read %q: %w", name, ErrNotFound)
	}
	return a.src.ReadPayload(name)
}

// SortEntries resorts the session's entries by name, crc.xml last,
// matching the table order the game's own packer produces.
func (a *Archive) SortEntries() {
	a.idx.SortByName()
}

// ChecksumManifest builds a fresh manifest over the session's current
// entries, excluding any stored crc.xml. Its encoded form is what
// CrcRegenerate would embed on the next write.
func (a *Archive) ChecksumManifest() (*Manifest, error) {
	m := NewManifest()
	for _, e := range a.idx.Entries() {
		if e.Name == ChecksumEntryName {
			continue
		}
		stored, err := a.ReadStored(e.Name)
		if err != nil {
			return nil, err
		}
		m.Add(e.Name, e.Size, Checksum(stored))
	}
	return m, nil
}

// Save writes the session to path as a new archive artifact.
//
// The archive is assembled in a temporary file next to path and renamed
// into place on success, so a failed write never leaves a truncated
// archive at the destination. The temporary file is removed on every
// failure path.
func (a *Archive) Save(path string, policy CrcPolicy) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".kom-")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := Write(tmp, a.idx, a, policy); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	// Saving over the opened source archive would race the rename with
	// pending payload reads on some platforms, so release it first.
	if a.src != nil && samePath(a.src.Path(), path) {
		if err := a.detachSource(); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	success = true
	a.cfg.log().Info("archive saved", "path", path, "entries", a.idx.Len(), "crc_policy", policy.String())
	return nil
}

// detachSource stages every remaining source-backed payload in memory
// and closes the source reader.
func (a *Archive) detachSource() error {
	for _, e := range a.idx.Entries() {
		if _, ok := a.staged[e.Name]; ok {
			continue
		}
		stored, err := a.src.ReadStored(e.Name)
		if err != nil {
			return err
		}
		a.staged[e.Name] = stored
	}
	err := a.src.Close()
	a.src = nil
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

func samePath(a, b string) bool {
	aa, err := filepath.Abs(a)
	if err != nil {
		return a == b
	}
	bb, err := filepath.Abs(b)
	if err != nil {
		return a == b
	}
	return aa == bb
}
