package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	b := EncodeHeader(Header{Count: 42})
	require.Len(t, b, HeaderSize)

	h, err := DecodeHeader(b)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), h.Count)
}

func TestDecodeHeaderTruncated(t *testing.T) {
	t.Parallel()

	_, err := DecodeHeader(make([]byte, HeaderSize-1))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeHeaderBadMagic(t *testing.T) {
	t.Parallel()

	b := make([]byte, HeaderSize)
	copy(b, "PK\x03\x04 something else entirely")
	_, err := DecodeHeader(b)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestDecodeHeaderUnsupportedVersion(t *testing.T) {
	t.Parallel()

	b := make([]byte, HeaderSize)
	copy(b, Magic+"V.0.0.3.")
	_, err := DecodeHeader(b)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	in := Record{Name: "sprite.dds", Size: 1024, StoredSize: 300, Offset: 77}
	b, err := EncodeRecord(in)
	require.NoError(t, err)
	require.Len(t, b, RecordSize)

	out, err := DecodeRecord(b)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeRecordTruncated(t *testing.T) {
	t.Parallel()

	_, err := DecodeRecord(make([]byte, RecordSize-1))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestEncodeRecordNameTooLong(t *testing.T) {
	t.Parallel()

	_, err := EncodeRecord(Record{Name: strings.Repeat("x", NameSize+1)})
	require.ErrorIs(t, err, ErrNameTooLong)
}

func TestEncodeRecordNameAtLimit(t *testing.T) {
	t.Parallel()

	name := strings.Repeat("x", NameSize)
	b, err := EncodeRecord(Record{Name: name})
	require.NoError(t, err)

	out, err := DecodeRecord(b)
	require.NoError(t, err)
	assert.Equal(t, name, out.Name)
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateName("map01.kom.bak"))
	assert.ErrorIs(t, ValidateName(""), ErrInvalidField)
	assert.ErrorIs(t, ValidateName("bad\x00name"), ErrInvalidField)
	assert.ErrorIs(t, ValidateName("caf\xc3\xa9"), ErrInvalidField)
}

func TestValidateNameRejectsPathComponents(t *testing.T) {
	t.Parallel()

	// The namespace is flat; a name carrying separators or dot
	// components could otherwise escape an extraction directory.
	for _, name := range []string{
		"../evil.bin",
		"..\\evil.bin",
		"sub/dir.bin",
		"/abs.bin",
		".",
		"..",
	} {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidField, "name %q", name)
	}
}

func TestDecodeRecordEmbeddedNul(t *testing.T) {
	t.Parallel()

	b, err := EncodeRecord(Record{Name: "ok.bin"})
	require.NoError(t, err)
	// Corrupt the name slot so a NUL sits between printable bytes.
	b[2] = 0
	_, err = DecodeRecord(b)
	require.ErrorIs(t, err, ErrInvalidField)
}
