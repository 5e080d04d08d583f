// Command kompactor packs, inspects, and unpacks KOM game archives.
//
// Usage:
//
//	kompactor <command> [flags] <args>
//
// Commands: list, extract, create, append, replace, remove, print.
// Run kompactor help for details.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kompactor/kom"
)

// Exit codes. Format errors cover unsupported versions and corrupt
// archives; anything unclassified is reported as an I/O failure.
const (
	exitOK     = 0
	exitUsage  = 2
	exitFormat = 3
	exitIO     = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage(os.Stderr)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list":
		return cmdList(rest)
	case "extract":
		return cmdExtract(rest)
	case "create":
		return cmdCreate(rest)
	case "append":
		return cmdAppend(rest)
	case "replace":
		return cmdReplace(rest)
	case "remove":
		return cmdRemove(rest)
	case "print":
		return cmdPrint(rest)
	case "help", "-h", "--help":
		usage(os.Stdout)
		return exitOK
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmd)
		usage(os.Stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: kompactor <command> [flags] <args>

Commands:
  list    <archive>                 List entries with sizes.
  extract [flags] <archive> [name…] Extract entries (all by default).
  create  [flags] <dir>             Create an archive from a directory.
  append  [flags] <archive> <file…> Add files as new entries.
  replace <archive> <file…>         Swap payloads of existing entries.
  remove  <archive> <name…>         Drop entries by name.
  print   [flags] <archive> <name>  Dump one entry to standard output.

Run kompactor <command> -h for command flags.
`)
}

// newFlagSet builds a flag set with the flags every command shares.
func newFlagSet(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	verbose := fs.Bool("v", false, "enable debug logging")
	return fs, verbose
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// fail prints err and maps it to an exit code.
func fail(err error) int {
	fmt.Fprintln(os.Stderr, "Error:", err)
	switch {
	case errors.Is(err, kom.ErrBadMagic),
		errors.Is(err, kom.ErrUnsupportedVersion),
		errors.Is(err, kom.ErrTruncated),
		errors.Is(err, kom.ErrInvalidField),
		errors.Is(err, kom.ErrNameTooLong),
		errors.Is(err, kom.ErrDuplicateName),
		errors.Is(err, kom.ErrOverlappingPayload),
		errors.Is(err, kom.ErrPayloadOutOfBounds):
		return exitFormat
	case errors.Is(err, kom.ErrConflict),
		errors.Is(err, kom.ErrNotFound),
		errors.Is(err, kom.ErrIgnoredFile):
		return exitUsage
	default:
		return exitIO
	}
}

func cmdList(args []string) int {
	fs, verbose := newFlagSet("list")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: list takes exactly one archive")
		return exitUsage
	}

	r, err := kom.Open(fs.Arg(0), kom.WithLogger(newLogger(*verbose)))
	if err != nil {
		return fail(err)
	}
	defer r.Close()

	for _, e := range r.Entries() {
		fmt.Printf("%-60s %10d %10d\n", e.Name, e.Size, e.StoredSize)
	}
	return exitOK
}

func cmdExtract(args []string) int {
	fs, verbose := newFlagSet("extract")
	outDir := fs.String("o", "", "output directory (default: archive name minus suffix)")
	policyName := fs.String("policy", "skip", "existing-file policy: overwrite, skip, or fail")
	keepCrc := fs.Bool("keep-crc", false, "also extract crc.xml")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: extract needs an archive")
		return exitUsage
	}

	policy, ok := parseDestPolicy(*policyName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown policy %q\n", *policyName)
		return exitUsage
	}

	path := fs.Arg(0)
	dest := *outDir
	if dest == "" {
		dest = strings.TrimSuffix(path, ".kom")
		if dest == path {
			dest = path + ".out"
		}
	}

	a, err := kom.Load(path, kom.WithLogger(newLogger(*verbose)))
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	var names []string
	if fs.NArg() > 1 {
		names = fs.Args()[1:]
	} else if *keepCrc {
		for _, e := range a.Entries() {
			names = append(names, e.Name)
		}
	}
	if err := a.Extract(dest, names, policy); err != nil {
		return fail(err)
	}
	return exitOK
}

func cmdCreate(args []string) int {
	fs, verbose := newFlagSet("create")
	outPath := fs.String("o", "", "output archive (default: <dir>.kom)")
	skipInvalid := fs.Bool("skip-invalid", false, "skip unreadable input files instead of aborting")
	crcName := fs.String("crc", "regenerate", "crc.xml policy: regenerate, keep, or omit")
	keepCrc := fs.Bool("keep-crc", false, "also write crc.xml next to the archive")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: create takes exactly one input directory")
		return exitUsage
	}

	policy, ok := parseCrcPolicy(*crcName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown crc policy %q\n", *crcName)
		return exitUsage
	}

	dir := fs.Arg(0)
	out := *outPath
	if out == "" {
		out = strings.TrimSuffix(dir, "/") + ".kom"
	}

	logger := newLogger(*verbose)
	a, err := kom.CreateFromDir(dir, *skipInvalid, kom.WithLogger(logger))
	if err != nil {
		return fail(err)
	}
	a.SortEntries()

	if err := a.Save(out, policy); err != nil {
		return fail(err)
	}

	if *keepCrc {
		if code := writeCrcSidecar(a, out); code != exitOK {
			return code
		}
	}
	return exitOK
}

// writeCrcSidecar writes the regenerated crc.xml next to the archive.
func writeCrcSidecar(a *kom.Archive, archivePath string) int {
	m, err := a.ChecksumManifest()
	if err != nil {
		return fail(err)
	}
	sidecar := filepath.Join(filepath.Dir(archivePath), "crc.xml")
	if err := os.WriteFile(sidecar, m.Encode(), 0o644); err != nil {
		return fail(err)
	}
	return exitOK
}

func cmdAppend(args []string) int {
	fs, verbose := newFlagSet("append")
	force := fs.Bool("f", false, "overwrite entries that already exist")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: append needs an archive and at least one file")
		return exitUsage
	}

	path := fs.Arg(0)
	a, err := kom.Load(path, kom.WithLogger(newLogger(*verbose)))
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	for _, file := range fs.Args()[1:] {
		data, err := os.ReadFile(file)
		if err != nil {
			return fail(err)
		}
		if err := a.Append(entryName(file), data, *force); err != nil {
			return fail(err)
		}
	}
	if err := a.Save(path, kom.CrcRegenerate); err != nil {
		return fail(err)
	}
	return exitOK
}

func cmdReplace(args []string) int {
	fs, verbose := newFlagSet("replace")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: replace needs an archive and at least one file")
		return exitUsage
	}

	path := fs.Arg(0)
	a, err := kom.Load(path, kom.WithLogger(newLogger(*verbose)))
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	for _, file := range fs.Args()[1:] {
		data, err := os.ReadFile(file)
		if err != nil {
			return fail(err)
		}
		if err := a.Replace(entryName(file), data); err != nil {
			return fail(err)
		}
	}
	if err := a.Save(path, kom.CrcRegenerate); err != nil {
		return fail(err)
	}
	return exitOK
}

func cmdRemove(args []string) int {
	fs, verbose := newFlagSet("remove")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: remove needs an archive and at least one entry name")
		return exitUsage
	}

	path := fs.Arg(0)
	a, err := kom.Load(path, kom.WithLogger(newLogger(*verbose)))
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	for _, name := range fs.Args()[1:] {
		if err := a.Remove(name); err != nil {
			return fail(err)
		}
	}
	if err := a.Save(path, kom.CrcRegenerate); err != nil {
		return fail(err)
	}
	return exitOK
}

func cmdPrint(args []string) int {
	fs, verbose := newFlagSet("print")
	meta := fs.Bool("meta", false, "print entry metadata instead of its payload")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: print needs an archive and one entry name")
		return exitUsage
	}

	r, err := kom.Open(fs.Arg(0), kom.WithLogger(newLogger(*verbose)))
	if err != nil {
		return fail(err)
	}
	defer r.Close()

	name := fs.Arg(1)
	if *meta {
		e, ok := r.Index().Get(name)
		if !ok {
			return fail(fmt.Errorf("%w: %q", kom.ErrNotFound, name))
		}
		fmt.Printf("name:   %s\nsize:   %d\nstored: %d\noffset: %d\n", e.Name, e.Size, e.StoredSize, e.Offset)
		return exitOK
	}

	payload, err := r.ReadPayload(name)
	if err != nil {
		return fail(err)
	}
	if _, err := os.Stdout.Write(payload); err != nil {
		return fail(err)
	}
	return exitOK
}

func entryName(path string) string {
	return filepath.Base(path)
}

func parseDestPolicy(s string) (kom.DestPolicy, bool) {
	switch s {
	case "overwrite":
		return kom.DestOverwrite, true
	case "skip":
		return kom.DestSkip, true
	case "fail":
		return kom.DestFail, true
	default:
		return 0, false
	}
}

func parseCrcPolicy(s string) (kom.CrcPolicy, bool) {
	switch s {
	case "regenerate":
		return kom.CrcRegenerate, true
	case "keep":
		return kom.CrcKeep, true
	case "omit":
		return kom.CrcOmit, true
	default:
		return 0, false
	}
}
