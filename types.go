package kom

import "github.com/kompactor/kom/internal/wire"

// Entry is one archive entry's metadata. It carries no payload bytes;
// payloads are fetched on demand through a [PayloadSource] or a [Reader].
//
// Offset is relative to the start of the archive's payload region and is
// only meaningful for entries decoded from an existing archive; the
// writer reassigns every offset during serialization.
type Entry struct {
	// Name is the entry's unique key within the archive, at most 60
	// ASCII bytes.
	Name string

	// Size is the uncompressed payload length in bytes.
	Size uint32

	// StoredSize is the length of the zlib stream stored in the archive.
	StoredSize uint32

	// Offset is the payload position relative to the payload region.
	Offset uint32
}

// ChecksumEntryName is the conventional name of the integrity side-entry.
// It is an ordinary entry by storage mechanics and is written last.
const ChecksumEntryName = "crc.xml"

// FormatVersion is the version identifier of the single supported
// archive format.
const FormatVersion = wire.Version

// PayloadSource yields the stored (compressed) payload bytes for an
// entry by name. [Reader] and [Archive] both implement it.
type PayloadSource interface {
	ReadStored(name string) ([]byte, error)
}

// CrcPolicy tells the writer what to do with the crc.xml entry.
type CrcPolicy uint8

const (
	// CrcRegenerate recomputes crc.xml from the current entry set and
	// places it last. This is what the game's own packer does.
	CrcRegenerate CrcPolicy = iota

	// CrcKeep passes an existing crc.xml entry through unchanged.
	CrcKeep

	// CrcOmit drops the crc.xml entry from the output.
	CrcOmit
)

// String returns the policy name as used by the CLI.
func (p CrcPolicy) String() string {
	switch p {
	case CrcRegenerate:
		return "regenerate"
	case CrcKeep:
		return "keep"
	case CrcOmit:
		return "omit"
	default:
		return "unknown"
	}
}

// DestPolicy controls how extraction treats a destination path that
// already exists.
type DestPolicy uint8

const (
	// DestSkip leaves an existing file alone and logs the skip.
	DestSkip DestPolicy = iota

	// DestOverwrite replaces an existing file.
	DestOverwrite

	// DestFail aborts the extraction on the first existing file.
	DestFail
)

func (p DestPolicy) String() string {
	switch p {
	case DestSkip:
		return "skip"
	case DestOverwrite:
		return "overwrite"
	case DestFail:
		return "fail"
	default:
		return "unknown"
	}
}

func recordFromEntry(e Entry) wire.Record {
	return wire.Record{
		Name:       e.Name,
		Size:       e.Size,
		StoredSize: e.StoredSize,
		Offset:     e.Offset,
	}
}

func entryFromRecord(r wire.Record) Entry {
	return Entry{
		Name:       r.Name,
		Size:       r.Size,
		StoredSize: r.StoredSize,
		Offset:     r.Offset,
	}
}
