package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Record is one entry's metadata as stored in the record table.
//
// Offset is relative to the start of the payload region, not the start
// of the archive file. Size is the uncompressed payload length and
// StoredSize the length of the zlib stream actually stored.
type Record struct {
	Name       string
	Size       uint32
	StoredSize uint32
	Offset     uint32
}

// ValidateName reports whether a name fits the record's name slot.
//
// Names are ASCII, at most NameSize bytes, non-empty, and must not
// contain NUL or control characters. The format's namespace is flat:
// path separators are rejected too, so a decoded name can never climb
// out of an extraction directory.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty entry name", ErrInvalidField)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: entry name %q", ErrInvalidField, name)
	}
	if len(name) > NameSize {
		return fmt.Errorf("%w: %q is %d bytes, limit %d", ErrNameTooLong, name, len(name), NameSize)
	}
	for i := 0; i < len(name); i++ {
		switch {
		case name[i] < 0x20 || name[i] > 0x7e:
			return fmt.Errorf("%w: name %q contains byte 0x%02x", ErrInvalidField, name, name[i])
		case name[i] == '/' || name[i] == '\\':
			return fmt.Errorf("%w: name %q contains a path separator", ErrInvalidField, name)
		}
	}
	return nil
}

// DecodeRecord parses one fixed-width entry record.
func DecodeRecord(b []byte) (Record, error) {
	if len(b) < RecordSize {
		return Record{}, fmt.Errorf("%w: record is %d bytes, want %d", ErrTruncated, len(b), RecordSize)
	}

	name := string(bytes.TrimRight(b[:NameSize], "\x00"))
	if err := ValidateName(name); err != nil {
		return Record{}, err
	}

	return Record{
		Name:       name,
		Size:       binary.LittleEndian.Uint32(b[NameSize:]),
		StoredSize: binary.LittleEndian.Uint32(b[NameSize+4:]),
		Offset:     binary.LittleEndian.Uint32(b[NameSize+8:]),
	}, nil
}

// EncodeRecord serializes a record into its fixed binary layout.
// Encoding fails only when the name does not fit the name slot.
func EncodeRecord(r Record) ([]byte, error) {
	if err := ValidateName(r.Name); err != nil {
		return nil, err
	}

	b := make([]byte, RecordSize)
	copy(b, r.Name)
	binary.LittleEndian.PutUint32(b[NameSize:], r.Size)
	binary.LittleEndian.PutUint32(b[NameSize+4:], r.StoredSize)
	binary.LittleEndian.PutUint32(b[NameSize+8:], r.Offset)
	return b, nil
}
