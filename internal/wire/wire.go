// Package wire implements the fixed binary layouts of the KOM container
// format: the 60-byte archive header and the 72-byte entry record.
//
// All multi-byte fields are little-endian. String slots are ASCII,
// NUL-padded to their fixed width.
package wire

import "errors"

const (
	// HeaderSize is the fixed width of the archive header in bytes.
	HeaderSize = 60

	// RecordSize is the fixed width of one entry record in bytes.
	RecordSize = 72

	// NameSize is the width of the NUL-padded name slot in a record.
	NameSize = 60

	// magicSlot is the width of the NUL-padded magic+version slot.
	magicSlot = 52

	// Magic is the format tag every KOM archive starts with.
	Magic = "KOG GC TEAM MASSFILE "

	// Version is the only supported version identifier.
	Version = "V.0.0.2."

	// reservedValue is written to the header's trailing reserved field.
	// Archives in the wild all carry a 1 there; readers ignore it.
	reservedValue = 1
)

// Sentinel errors for format violations. All of them are fatal to the
// operation that encounters them; nothing is silently repaired.
var (
	// ErrBadMagic is returned when the header does not start with the
	// KOM format tag.
	ErrBadMagic = errors.New("kom: not a kom archive")

	// ErrUnsupportedVersion is returned when the format tag is present
	// but the version identifier is not the single supported one.
	ErrUnsupportedVersion = errors.New("kom: unsupported archive version")

	// ErrTruncated is returned when fewer bytes are available than the
	// fixed width of the structure being decoded.
	ErrTruncated = errors.New("kom: truncated archive data")

	// ErrInvalidField is returned when a decoded or encoded field is
	// outside its representable range, such as a non-ASCII entry name.
	ErrInvalidField = errors.New("kom: invalid field")

	// ErrNameTooLong is returned when an entry name exceeds the fixed
	// name slot.
	ErrNameTooLong = errors.New("kom: entry name too long")
)
