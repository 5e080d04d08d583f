package kom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"

	"github.com/kompactor/kom/internal/wire"
)

// Reader gives random access to the entries of an existing archive.
//
// Open decodes the header and the full record table eagerly; payload
// bytes are read lazily on access, so list-only operations never load
// the payload region. Corruption in a payload range is therefore only
// detected when that entry is read.
type Reader struct {
	f            *os.File
	path         string
	idx          *Index
	payloadStart int64
	size         int64
	cfg          config
}

// Open opens an archive, validates its header, and decodes its record
// table into an index.
//
// A file that does not start with the KOM format tag fails with
// ErrBadMagic; a valid tag with any version other than V.0.0.2. fails
// with ErrUnsupportedVersion. Neither returns a partial index. The
// caller must Close the reader to release the file handle.
func Open(path string, opts ...Option) (*Reader, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := newReader(f, path, cfg)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func newReader(f *os.File, path string, cfg config) (*Reader, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()

	head := make([]byte, wire.HeaderSize)
	if err := readFull(f, head, path); err != nil {
		return nil, err
	}
	header, err := wire.DecodeHeader(head)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	tableSize := int64(header.Count) * wire.RecordSize
	payloadStart := int64(wire.HeaderSize) + tableSize
	if payloadStart > size {
		return nil, fmt.Errorf("%w: %s declares %d records but is only %d bytes",
			wire.ErrTruncated, path, header.Count, size)
	}

	table := make([]byte, tableSize)
	if err := readFull(f, table, path); err != nil {
		return nil, err
	}

	records := make([]wire.Record, header.Count)
	for i := range records {
		rec, err := wire.DecodeRecord(table[int64(i)*wire.RecordSize:])
		if err != nil {
			return nil, fmt.Errorf("open %s: record %d: %w", path, i, err)
		}
		records[i] = rec
	}

	idx, err := BuildIndex(records, size-payloadStart)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	cfg.log().Debug("archive opened", "path", path, "entries", idx.Len(), "size", size)

	return &Reader{
		f:            f,
		path:         path,
		idx:          idx,
		payloadStart: payloadStart,
		size:         size,
		cfg:          cfg,
	}, nil
}

// Index returns the reader's index. The reader retains ownership; treat
// the index as read-only and use [Load] for an edit session.
func (r *Reader) Index() *Index {
	return r.idx
}

// Entries returns all entry metadata in table order.
func (r *Reader) Entries() []Entry {
	return r.idx.Entries()
}

// Len returns the number of entries, crc.xml included when present.
func (r *Reader) Len() int {
	return r.idx.Len()
}

// Path returns the path the archive was opened from.
func (r *Reader) Path() string {
	return r.path
}

// ReadStored returns the named entry's payload exactly as stored, which
// is its zlib stream. A read running past end of file fails with
// ErrPayloadOutOfBounds.
func (r *Reader) ReadStored(name string) ([]byte, error) {
	e, ok := r.idx.Get(name)
	if !ok {
		return nil, fmt.Errorf("read %q: %w", name, ErrNotFound)
	}

	off := r.payloadStart + int64(e.Offset)
	if off+int64(e.StoredSize) > r.size {
		return nil, fmt.Errorf("read %q: %w", name, ErrPayloadOutOfBounds)
	}

	buf := make([]byte, e.StoredSize)
	if _, err := r.f.ReadAt(buf, off); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("read %q: %w", name, ErrPayloadOutOfBounds)
		}
		return nil, fmt.Errorf("read %q from %s: %w", name, r.path, err)
	}
	return buf, nil
}

// ReadPayload returns the named entry's decompressed payload bytes.
func (r *Reader) ReadPayload(name string) ([]byte, error) {
	stored, err := r.ReadStored(name)
	if err != nil {
		return nil, err
	}

	e, _ := r.idx.Get(name)
	data, err := inflate(stored)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", name, err)
	}
	if uint32(len(data)) != e.Size {
		return nil, fmt.Errorf("read %q: decompressed to %d bytes, record says %d: %w",
			name, len(data), e.Size, ErrInvalidField)
	}
	return data, nil
}

// Close releases the archive file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}

// readFull fills buf from r. Running out of bytes means the archive is
// shorter than its header claims; any other failure is an I/O fault and
// keeps its own identity.
func readFull(r io.Reader, buf []byte, path string) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %s", wire.ErrTruncated, path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// inflate decompresses one entry's zlib stream.
func inflate(stored []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(stored))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// deflate compresses payload bytes into the stream stored in an archive.
func deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		// Writes to a bytes.Buffer cannot fail.
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
