package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// Header holds the decoded archive header fields.
//
// Count is the number of records in the table, the crc.xml record
// included when present.
type Header struct {
	Count uint32
}

// DecodeHeader parses a fixed-width archive header.
//
// The magic slot must contain exactly Magic followed by Version; a valid
// magic with any other version fails with ErrUnsupportedVersion, anything
// else with ErrBadMagic. The reserved trailing field is ignored.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header is %d bytes, want %d", ErrTruncated, len(b), HeaderSize)
	}

	slot := string(bytes.TrimRight(b[:magicSlot], "\x00"))
	if !strings.HasPrefix(slot, Magic) {
		return Header{}, ErrBadMagic
	}
	if slot != Magic+Version {
		return Header{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, slot[len(Magic):])
	}

	return Header{
		Count: binary.LittleEndian.Uint32(b[magicSlot : magicSlot+4]),
	}, nil
}

// EncodeHeader serializes a header into its fixed binary layout.
func EncodeHeader(h Header) []byte {
	b := make([]byte, HeaderSize)
	copy(b, Magic+Version)
	binary.LittleEndian.PutUint32(b[magicSlot:], h.Count)
	binary.LittleEndian.PutUint32(b[magicSlot+4:], reservedValue)
	return b
}
