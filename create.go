package kom

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kompactor/kom/internal/wire"
)

// AddFile reads one input file and appends it as an entry named after
// the file's base name.
//
// Inputs the format cannot represent are refused with ErrIgnoredFile:
// a stray crc.xml (the writer owns that entry) and names that do not
// fit the record's name slot. A second file with an already-present
// name fails with ErrConflict.
func (a *Archive) AddFile(path string) error {
	name := filepath.Base(path)
	if name == ChecksumEntryName {
		return fmt.Errorf("%w: %s is generated by the writer", ErrIgnoredFile, name)
	}
	if err := wire.ValidateName(name); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrIgnoredFile, name, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("add %s: %w", path, err)
	}
	return a.Append(name, data, false)
}

// CreateFromFiles builds a fresh edit session from a list of input
// files.
//
// With skipInvalid true, an unreadable source is dropped with a logged
// warning and the remaining files are kept; with skipInvalid false the
// first unreadable source aborts the whole build. Any I/O failure while
// reading a candidate counts as invalidity. Inputs refused by format
// policy (ErrIgnoredFile) are always skipped with a warning; they are
// not I/O failures.
func CreateFromFiles(paths []string, skipInvalid bool, opts ...Option) (*Archive, error) {
	a := New(opts...)
	log := a.cfg.log()

	for _, path := range paths {
		err := a.AddFile(path)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrIgnoredFile) {
			log.Warn("input file ignored", "path", path, "reason", err)
			continue
		}
		if skipInvalid {
			log.Warn("input file skipped", "path", path, "error", err)
			continue
		}
		return nil, err
	}
	return a, nil
}

// CreateFromDir builds a fresh edit session from every regular file
// directly inside dir, in name order. Subdirectories are ignored, as
// the format has no notion of nested paths.
func CreateFromDir(dir string, skipInvalid bool, opts ...Option) (*Archive, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("create from %s: %w", dir, err)
	}

	paths := make([]string, 0, len(dirents))
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, d.Name()))
	}
	return CreateFromFiles(paths, skipInvalid, opts...)
}
