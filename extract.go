package kom

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extract materializes the named entries' decompressed payloads as
// files under destDir, creating the directory as needed.
//
// A nil names slice selects every entry except crc.xml; pass
// ChecksumEntryName explicitly to extract the manifest too. policy
// decides what happens when a destination file already exists:
// DestSkip logs and moves on, DestOverwrite replaces it, DestFail
// aborts with fs.ErrExist.
//
// Each file is written to a temporary path and renamed into place, so
// an aborted extraction never leaves half-written files behind.
func (a *Archive) Extract(destDir string, names []string, policy DestPolicy) error {
	if names == nil {
		for _, e := range a.idx.Entries() {
			if e.Name == ChecksumEntryName {
				continue
			}
			names = append(names, e.Name)
		}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("extract to %s: %w", destDir, err)
	}

	log := a.cfg.log()
	for _, name := range names {
		// Decoded names are separator-free, but an index built by hand
		// may not be; never let a name climb out of destDir.
		if !fs.ValidPath(name) || strings.ContainsAny(name, `/\`) {
			return &fs.PathError{Op: "extract", Path: name, Err: fs.ErrInvalid}
		}
		dest := filepath.Join(destDir, name)

		if policy != DestOverwrite {
			if _, err := os.Stat(dest); err == nil {
				if policy == DestSkip {
					log.Info("extract skipped, file exists", "name", name, "dest", dest)
					continue
				}
				return &fs.PathError{Op: "extract", Path: dest, Err: fs.ErrExist}
			}
		}

		payload, err := a.ReadPayload(name)
		if err != nil {
			return err
		}
		if err := writeFileAtomic(dest, payload); err != nil {
			return fmt.Errorf("extract %q: %w", name, err)
		}
		log.Debug("entry extracted", "name", name, "dest", dest, "size", len(payload))
	}
	return nil
}

// writeFileAtomic writes data to dest via a temp file and rename.
func writeFileAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".kom-")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return err
	}
	success = true
	return nil
}
