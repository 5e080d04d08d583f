package kom

import (
	"fmt"
	"io"
	"os"

	"github.com/kompactor/kom/internal/wire"
)

// Write serializes an index plus entry payloads into a valid archive.
//
// Layout is header, then the full record table, then every entry's
// stored payload contiguously in index order, each offset assigned from
// a running byte cursor. crc.xml handling follows policy: CrcRegenerate
// recomputes it from the current entry set and places it last, CrcKeep
// passes a stored crc.xml through unchanged, CrcOmit drops it.
//
// Output is deterministic: the same entry order and payload bytes
// produce a byte-identical archive. Writing is all-or-nothing; on any
// failure partway through, the bytes already written are undefined and
// the caller should discard the output. Atomic replacement of an
// existing path belongs to the caller (see [Archive.Save]).
func Write(w io.Writer, idx *Index, src PayloadSource, policy CrcPolicy) error {
	entries := idx.Entries()
	if policy != CrcKeep {
		entries = stripChecksumEntry(entries)
	}

	payloads := make([][]byte, len(entries))
	for i, e := range entries {
		stored, err := src.ReadStored(e.Name)
		if err != nil {
			return fmt.Errorf("kom: write: %w", err)
		}
		payloads[i] = stored
		entries[i].StoredSize = uint32(len(stored))
	}

	if policy == CrcRegenerate {
		manifest := NewManifest()
		for i, e := range entries {
			manifest.Add(e.Name, e.Size, Checksum(payloads[i]))
		}
		payload := manifest.Encode()
		stored := deflate(payload)
		entries = append(entries, Entry{
			Name:       ChecksumEntryName,
			Size:       uint32(len(payload)),
			StoredSize: uint32(len(stored)),
		})
		payloads = append(payloads, stored)
	}

	var cursor uint32
	for i := range entries {
		entries[i].Offset = cursor
		cursor += entries[i].StoredSize
	}

	if _, err := w.Write(wire.EncodeHeader(wire.Header{Count: uint32(len(entries))})); err != nil {
		return fmt.Errorf("kom: write header: %w", err)
	}
	for _, e := range entries {
		rec, err := wire.EncodeRecord(recordFromEntry(e))
		if err != nil {
			return fmt.Errorf("kom: write record %q: %w", e.Name, err)
		}
		if _, err := w.Write(rec); err != nil {
			return fmt.Errorf("kom: write record %q: %w", e.Name, err)
		}
	}
	for i, p := range payloads {
		if _, err := w.Write(p); err != nil {
			return fmt.Errorf("kom: write payload %q: %w", entries[i].Name, err)
		}
	}
	return nil
}

// WriteFile writes an archive to path. The file is created or truncated
// directly; callers wanting atomic replacement should write to a
// temporary path and rename, as [Archive.Save] does.
func WriteFile(path string, idx *Index, src PayloadSource, policy CrcPolicy) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, idx, src, policy); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func stripChecksumEntry(entries []Entry) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.Name == ChecksumEntryName {
			continue
		}
		out = append(out, e)
	}
	return out
}
