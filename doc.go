// Package kom reads, mutates, and writes KOM game-archive containers.
//
// A KOM archive bundles many named binary entries into one file: a
// fixed-width header, a table of fixed-width entry records, and a payload
// region holding each entry's zlib stream. Only format version V.0.0.2.
// is supported; any other version fails fast with ErrUnsupportedVersion.
//
// The package is split along the archive's life cycle:
//   - [Open] parses an existing archive and gives random access to entry
//     payloads by name.
//   - [Archive] is an in-memory edit session: append, replace, and remove
//     entries, or build a fresh set from input files.
//   - [Write] serializes an [Index] plus payloads back into a valid
//     archive, recomputing every offset.
//
// Mutation never patches the source file in place; an edit session always
// produces a new archive artifact.
//
// # Quick start
//
// Repack an archive with one entry replaced:
//
//	a, err := kom.Load("data.kom")
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//	if err := a.Replace("item.tbl", newTable); err != nil {
//	    return err
//	}
//	err = a.Save("data.kom", kom.CrcRegenerate)
//
// # crc.xml
//
// By convention the last entry of an archive is crc.xml, an XML manifest
// of per-entry checksums. Storage-wise it is an ordinary entry; the
// writer's [CrcPolicy] decides whether it is regenerated, kept as stored,
// or omitted.
package kom
