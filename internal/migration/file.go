// Package migration renders enum operation batches into revision documents
// and loads them back. A revision is a YAML file named
// <revision>_<name>.yaml holding the upgrade operations, their inverse and
// the drift fingerprint of the catalog it was generated against.
package migration

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/engine"
	"github.com/hlop3z/enumsync/internal/strutil"
)

// RevisionLayout formats a revision id from the generation time.
const RevisionLayout = "20060102150405"

// File is one revision document.
type File struct {
	Revision  string
	Name      string
	Base      string // drift fingerprint, empty when unknown
	Upgrade   []ast.EnumOperation
	Downgrade []ast.EnumOperation

	Path     string // set by Load and Write
	Checksum string // SHA-256 of the rendered bytes
}

// New creates a revision for ops, deriving the downgrade by reversing them.
func New(revision, name, base string, ops []ast.EnumOperation) *File {
	return &File{
		Revision:  revision,
		Name:      strutil.Slug(name),
		Base:      base,
		Upgrade:   ops,
		Downgrade: ast.ReverseAll(ops),
	}
}

// NewRevision returns a revision id for t.
func NewRevision(t time.Time) string {
	return t.UTC().Format(RevisionLayout)
}

// FileName returns "<revision>_<name>.yaml".
func FileName(revision, name string) string {
	return revision + "_" + name + ".yaml"
}

// Checksum returns the hex SHA-256 of a rendered document.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Migration converts the file into the runner's revision model.
func (f *File) Migration() engine.Migration {
	return engine.Migration{
		Revision:  f.Revision,
		Name:      f.Name,
		Path:      f.Path,
		Checksum:  f.Checksum,
		Base:      f.Base,
		Upgrade:   f.Upgrade,
		Downgrade: f.Downgrade,
	}
}

// Migrations converts files in order.
func Migrations(files []*File) []engine.Migration {
	out := make([]engine.Migration, len(files))
	for i, f := range files {
		out[i] = f.Migration()
	}
	return out
}

// -----------------------------------------------------------------------------
// Render / Parse
// -----------------------------------------------------------------------------

// Render encodes f. The output is deterministic: keys keep a fixed order and
// affected columns are sorted by (schema, table, column).
func Render(f *File) ([]byte, error) {
	if f.Revision == "" || f.Name == "" {
		return nil, alerr.New(alerr.ErrMigrationInvalid, "revision and name are required").
			With("revision", f.Revision).
			With("name", f.Name)
	}

	up, err := encodeOps(f.Upgrade)
	if err != nil {
		return nil, err
	}
	downOps := f.Downgrade
	if downOps == nil {
		downOps = ast.ReverseAll(f.Upgrade)
	}
	down, err := encodeOps(downOps)
	if err != nil {
		return nil, err
	}

	doc := document{
		Revision:  f.Revision,
		Name:      f.Name,
		Base:      f.Base,
		Upgrade:   up,
		Downgrade: &down,
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to encode revision").
			With("revision", f.Revision)
	}
	if err := enc.Close(); err != nil {
		return nil, alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to encode revision").
			With("revision", f.Revision)
	}
	return buf.Bytes(), nil
}

// Parse decodes a revision document. Every operation is validated before
// Parse returns, so a malformed affected column fails here and not halfway
// through an upgrade. A document without a downgrade section gets the
// reverse of its upgrade.
func Parse(data []byte) (*File, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		var ae *alerr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to parse revision document")
	}

	if doc.Revision == "" {
		return nil, alerr.New(alerr.ErrMigrationInvalid, "revision is required")
	}
	if doc.Name == "" {
		return nil, alerr.New(alerr.ErrMigrationInvalid, "name is required").
			With("revision", doc.Revision)
	}

	up, err := decodeOps(doc.Upgrade, "upgrade")
	if err != nil {
		return nil, err
	}
	var down []ast.EnumOperation
	if doc.Downgrade != nil {
		if down, err = decodeOps(*doc.Downgrade, "downgrade"); err != nil {
			return nil, err
		}
	} else {
		down = ast.ReverseAll(up)
	}

	return &File{
		Revision:  doc.Revision,
		Name:      doc.Name,
		Base:      doc.Base,
		Upgrade:   up,
		Downgrade: down,
		Checksum:  Checksum(data),
	}, nil
}

// -----------------------------------------------------------------------------
// Files on disk
// -----------------------------------------------------------------------------

// Load reads and parses one revision file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, alerr.New(alerr.ErrMigrationNotFound, "revision file not found").WithFile(path)
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to read revision file").WithFile(path)
	}

	f, err := Parse(data)
	if err != nil {
		var ae *alerr.Error
		if errors.As(err, &ae) {
			return nil, ae.WithFile(path)
		}
		return nil, err
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, f.Revision+"_") {
		return nil, alerr.New(alerr.ErrMigrationInvalid, "file name does not start with its revision").
			WithFile(path).
			With("revision", f.Revision).
			WithHelp(fmt.Sprintf("rename the file to %s", FileName(f.Revision, f.Name)))
	}
	f.Path = path
	return f, nil
}

// LoadDir loads every *.yaml and *.yml revision in dir, ordered by revision.
// A missing directory holds no revisions.
func LoadDir(dir string) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to read migrations directory").WithFile(dir)
	}

	var files []*File
	seen := make(map[string]string)
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		f, err := Load(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[f.Revision]; ok {
			return nil, alerr.New(alerr.ErrMigrationInvalid, "two files share a revision").
				With("revision", f.Revision).
				WithFile(path).
				WithNote("also declared in " + prev)
		}
		seen[f.Revision] = path
		files = append(files, f)
	}

	slices.SortFunc(files, func(a, b *File) int { return strings.Compare(a.Revision, b.Revision) })
	return files, nil
}

// Write renders f into dir and sets its Path and Checksum. An existing file
// is never overwritten.
func Write(dir string, f *File) (string, error) {
	data, err := Render(f)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to create migrations directory").WithFile(dir)
	}

	path := filepath.Join(dir, FileName(f.Revision, f.Name))
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to create revision file").WithFile(path)
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return "", alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to write revision file").WithFile(path)
	}

	f.Path = path
	f.Checksum = Checksum(data)
	return path, nil
}
