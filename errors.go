package kom

import (
	"errors"

	"github.com/kompactor/kom/internal/wire"
)

// Format errors re-exported from internal/wire. They are fatal to the
// operation in progress and never silently repaired.
var (
	// ErrBadMagic is returned when a file does not start with the KOM
	// format tag.
	ErrBadMagic = wire.ErrBadMagic

	// ErrUnsupportedVersion is returned when an archive's version
	// identifier is not V.0.0.2., the single supported version.
	ErrUnsupportedVersion = wire.ErrUnsupportedVersion

	// ErrTruncated is returned when a header or record is shorter than
	// its fixed width.
	ErrTruncated = wire.ErrTruncated

	// ErrInvalidField is returned when a decoded field is out of its
	// representable range.
	ErrInvalidField = wire.ErrInvalidField

	// ErrNameTooLong is returned when an entry name exceeds the fixed
	// name slot of the record layout.
	ErrNameTooLong = wire.ErrNameTooLong
)

// Format errors raised while building or checking an index.
var (
	// ErrDuplicateName is returned when two records share a name.
	ErrDuplicateName = errors.New("kom: duplicate entry name")

	// ErrOverlappingPayload is returned when two records' payload ranges
	// overlap, or a range runs past the declared payload region.
	ErrOverlappingPayload = errors.New("kom: overlapping payload ranges")

	// ErrPayloadOutOfBounds is returned when reading an entry's payload
	// would run past end of file.
	ErrPayloadOutOfBounds = errors.New("kom: payload out of bounds")
)

// Recoverable errors. Callers may retry with different arguments or
// report them as plain user messages.
var (
	// ErrConflict is returned when an insert would clobber an existing
	// entry and overwrite was not requested.
	ErrConflict = errors.New("kom: entry already exists")

	// ErrNotFound is returned when no entry has the requested name.
	ErrNotFound = errors.New("kom: entry not found")

	// ErrIgnoredFile is returned when an input file is skipped by
	// policy during archive creation, such as a stray crc.xml or a
	// file whose name does not fit the record layout.
	ErrIgnoredFile = errors.New("kom: ignored input file")
)
