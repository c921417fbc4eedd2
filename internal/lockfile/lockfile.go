// Package lockfile records SHA-256 checksums of revision files in
// enumsync.lock, so edits, deletions and untracked revisions are caught
// before anything is applied.
package lockfile

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/hlop3z/enumsync/internal/alerr"
)

// FileName is the lock file's name inside the migrations directory.
const FileName = "enumsync.lock"

// Entry is one revision file and its checksum.
type Entry struct {
	Filename string
	Checksum string
}

// LockFile is a parsed enumsync.lock: an aggregate line followed by one
// "<checksum> <filename>" line per revision file.
type LockFile struct {
	Aggregate string
	Entries   []Entry
}

// Path returns the lock file path for a migrations directory.
func Path(migrationsDir string) string {
	return filepath.Join(migrationsDir, FileName)
}

// Read parses the lock file at path. It returns nil when the file does not
// exist.
func Read(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to read lock file").WithFile(path)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	lf := &LockFile{Aggregate: strings.TrimSpace(lines[0])}
	if lf.Aggregate == "" {
		return nil, alerr.New(alerr.ErrMigrationInvalid, "lock file is empty").WithFile(path)
	}
	for i, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sum, name, ok := strings.Cut(line, " ")
		if !ok {
			return nil, alerr.New(alerr.ErrMigrationInvalid, "malformed lock file line").
				WithFile(path).
				With("line", i+2)
		}
		lf.Entries = append(lf.Entries, Entry{Filename: strings.TrimSpace(name), Checksum: sum})
	}
	return lf, nil
}

// Write computes checksums for every revision file in migrationsDir and
// writes the lock file next to them.
func Write(migrationsDir string) error {
	entries, err := computeEntries(migrationsDir)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(computeAggregate(entries) + "\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s %s\n", e.Checksum, e.Filename)
	}

	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to create migrations directory").WithFile(migrationsDir)
	}
	path := Path(migrationsDir)
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to write lock file").WithFile(path)
	}
	return nil
}

// Result describes how the revision files differ from the lock file.
type Result struct {
	Exists   bool
	New      []string // on disk, not in the lock file
	Removed  []string // in the lock file, not on disk
	Modified []string // checksum differs
	Verified []string
}

// Valid reports whether the lock file exists and matches every file.
func (r *Result) Valid() bool {
	return r.Exists && len(r.New) == 0 && len(r.Removed) == 0 && len(r.Modified) == 0
}

// Check compares the revision files in migrationsDir with the lock file.
func Check(migrationsDir string) (*Result, error) {
	lf, err := Read(Path(migrationsDir))
	if err != nil {
		return nil, err
	}
	result := &Result{Exists: lf != nil}
	if lf == nil {
		return result, nil
	}

	entries, err := computeEntries(migrationsDir)
	if err != nil {
		return nil, err
	}

	locked := lo.Associate(lf.Entries, func(e Entry) (string, string) { return e.Filename, e.Checksum })
	for _, e := range entries {
		sum, ok := locked[e.Filename]
		switch {
		case !ok:
			result.New = append(result.New, e.Filename)
		case sum != e.Checksum:
			result.Modified = append(result.Modified, e.Filename)
		default:
			result.Verified = append(result.Verified, e.Filename)
		}
	}
	onDisk := lo.Associate(entries, func(e Entry) (string, bool) { return e.Filename, true })
	for _, e := range lf.Entries {
		if !onDisk[e.Filename] {
			result.Removed = append(result.Removed, e.Filename)
		}
	}
	return result, nil
}

// Verify returns an ErrMigrationChecksum error when the revision files
// differ from an existing lock file. A missing lock file passes.
func Verify(migrationsDir string) error {
	result, err := Check(migrationsDir)
	if err != nil {
		return err
	}
	if !result.Exists || result.Valid() {
		return nil
	}

	e := alerr.New(alerr.ErrMigrationChecksum, "revision files do not match "+FileName).
		WithFile(Path(migrationsDir))
	for _, name := range result.Modified {
		e = e.WithNote("modified: " + name)
	}
	for _, name := range result.New {
		e = e.WithNote("not locked: " + name)
	}
	for _, name := range result.Removed {
		e = e.WithNote("deleted: " + name)
	}
	return e.WithHelp("if the changes are intended, run 'enumsync lock' to record them")
}

// computeEntries checksums the revision files in dir, sorted by name.
func computeEntries(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to read migrations directory").WithFile(dir)
	}

	var entries []Entry
	for _, de := range dirEntries {
		ext := filepath.Ext(de.Name())
		if de.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, de.Name()))
		if err != nil {
			return nil, alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to read revision file").WithFile(de.Name())
		}
		sum := sha256.Sum256(data)
		entries = append(entries, Entry{Filename: de.Name(), Checksum: hex.EncodeToString(sum[:])})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Filename, b.Filename)
	})
	return entries, nil
}

// computeAggregate hashes the individual checksums in order.
func computeAggregate(entries []Entry) string {
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.Checksum))
	}
	return hex.EncodeToString(h.Sum(nil))
}
