// Package schemafile loads the declared schema from YAML files. Every file
// may declare enums and tables; enum references resolve across all files of
// a directory.
package schemafile

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/strutil"
)

// Schema is the declared model loaded from one or more files.
type Schema struct {
	Tables []*ast.TableDef  // sorted by qualified name
	Enums  []*ast.EnumType // sorted by (schema, name)
}

// Unused returns the declared enums no column refers to. They are not part
// of reconciliation.
func (s *Schema) Unused() []*ast.EnumType {
	used := make(map[*ast.EnumType]bool)
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			if _, enum := ast.Classify(c.Type); enum != nil {
				used[enum] = true
			}
		}
	}
	return lo.Filter(s.Enums, func(e *ast.EnumType, _ int) bool { return !used[e] })
}

type parsedFile struct {
	path string
	doc  fileDoc
}

// Load reads a single schema file.
func Load(path string) (*Schema, error) {
	pf, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	return resolve([]parsedFile{pf})
}

// LoadDir reads every *.yaml and *.yml file under dir, recursively.
func LoadDir(dir string) (*Schema, error) {
	if err := validateSchemaDir(dir); err != nil {
		return nil, err
	}

	var files []parsedFile
	var parseErrors []error

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if ext := filepath.Ext(info.Name()); ext != ".yaml" && ext != ".yml" {
			return nil
		}

		pf, err := parseFile(path)
		if err != nil {
			parseErrors = append(parseErrors, err)
			return nil // keep going so every broken file is reported
		}
		files = append(files, pf)
		return nil
	})
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrSchemaNotFound, err, "failed to walk schema directory").
			With("path", dir)
	}

	switch len(parseErrors) {
	case 0:
	case 1:
		return nil, parseErrors[0]
	default:
		msgs := lo.Map(parseErrors, func(e error, _ int) string { return e.Error() })
		return nil, alerr.Wrap(alerr.ErrSchemaInvalid, errors.Join(parseErrors...), "some schema files failed to load").
			With("errors", strings.Join(msgs, "; ")).
			With("failed_count", len(parseErrors)).
			With("success_count", len(files))
	}

	return resolve(files)
}

func parseFile(path string) (parsedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return parsedFile{}, alerr.Wrap(alerr.ErrSchemaNotFound, err, "failed to read schema file").
			WithFile(path)
	}

	var doc fileDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		var ae *alerr.Error
		if errors.As(err, &ae) {
			return parsedFile{}, ae.WithFile(path)
		}
		return parsedFile{}, alerr.Wrap(alerr.ErrSchemaInvalid, err, "failed to parse schema file").
			WithFile(path)
	}
	return parsedFile{path: path, doc: doc}, nil
}

// resolve builds the model: enums first, then tables whose columns refer
// to them by name.
func resolve(files []parsedFile) (*Schema, error) {
	slices.SortFunc(files, func(a, b parsedFile) int { return cmp.Compare(a.path, b.path) })

	enums := make(map[string]*ast.EnumType) // keyed by qualified name
	enumFile := make(map[string]string)

	for _, f := range files {
		for _, name := range sortedKeys(f.doc.Enums) {
			decl := f.doc.Enums[name]
			e := &ast.EnumType{
				Name:      name,
				Schema:    cmp.Or(decl.Schema, f.doc.Schema),
				Values:    decl.Values,
				Labels:    decl.Labels,
				NonNative: decl.NonNative,
			}
			if err := validateEnum(e); err != nil {
				return nil, err.WithFile(f.path)
			}

			key := strutil.QualifiedName(e.Schema, e.Name)
			if _, ok := enums[key]; ok {
				return nil, alerr.Newf(alerr.ErrSchemaInvalid, "enum %s is declared twice", key).
					WithFile(f.path).
					WithNote("first declared in " + enumFile[key])
			}
			enums[key] = e
			enumFile[key] = f.path
		}
	}

	r := &resolver{enums: enums}
	var tables []*ast.TableDef
	seen := make(map[string]string)

	for _, f := range files {
		for _, name := range sortedKeys(f.doc.Tables) {
			td := f.doc.Tables[name]
			table := &ast.TableDef{
				Schema:     cmp.Or(td.Schema, f.doc.Schema),
				Name:       name,
				SourceFile: f.path,
			}

			for _, colName := range sortedKeys(td.Columns) {
				col, err := r.column(colName, td.Columns[colName], f.doc.Schema)
				if err != nil {
					return nil, err.WithFile(f.path).WithTable(table.Schema, table.Name)
				}
				table.Columns = append(table.Columns, col)
			}

			if err := table.Validate(); err != nil {
				return nil, alerr.Wrap(alerr.ErrSchemaInvalid, err, "invalid table").
					WithFile(f.path).
					WithTable(table.Schema, table.Name)
			}

			key := table.QualifiedName()
			if prev, ok := seen[key]; ok {
				return nil, alerr.Newf(alerr.ErrSchemaInvalid, "table %s is declared twice", key).
					WithFile(f.path).
					WithNote("first declared in " + prev)
			}
			seen[key] = f.path
			tables = append(tables, table)
		}
	}

	slices.SortFunc(tables, func(a, b *ast.TableDef) int {
		return cmp.Compare(a.QualifiedName(), b.QualifiedName())
	})

	declared := lo.Values(enums)
	slices.SortFunc(declared, func(a, b *ast.EnumType) int {
		return cmp.Or(cmp.Compare(a.Schema, b.Schema), cmp.Compare(a.Name, b.Name))
	})

	return &Schema{Tables: tables, Enums: declared}, nil
}

type resolver struct {
	enums map[string]*ast.EnumType
}

func (r *resolver) column(name string, c columnDoc, fileSchema string) (*ast.ColumnDef, *alerr.Error) {
	set := lo.Filter([]string{c.Type, c.Enum, c.ArrayOf}, func(s string, _ int) bool { return s != "" })
	if len(set) != 1 {
		return nil, alerr.New(alerr.ErrSchemaInvalid, "column needs exactly one of type, enum, array_of").
			WithColumn(name).
			With("line", c.line)
	}

	col := &ast.ColumnDef{Name: name, ServerDefault: c.Default}
	switch {
	case c.Enum != "":
		e, err := r.lookup(c.Enum, fileSchema)
		if err != nil {
			return nil, err.WithColumn(name).With("line", c.line)
		}
		col.Type = ast.ColumnType{Base: ast.BaseEnum, Enum: e}

	case c.ArrayOf != "":
		elem := ast.ColumnType{Base: c.ArrayOf}
		if e, err := r.lookup(c.ArrayOf, fileSchema); err == nil {
			elem = ast.ColumnType{Base: ast.BaseEnum, Enum: e}
		}
		col.Type = ast.ColumnType{Base: ast.BaseArray, Elem: &elem}

	default:
		if c.Type == ast.BaseEnum || c.Type == ast.BaseArray {
			return nil, alerr.Newf(alerr.ErrSchemaInvalid, "type %q needs the enum or array_of key", c.Type).
				WithColumn(name).
				With("line", c.line)
		}
		col.Type = ast.ColumnType{Base: c.Type}
	}
	return col, nil
}

// lookup resolves "name" or "schema.name". An unqualified name prefers the
// referencing file's schema, then any schema where the name is unique.
func (r *resolver) lookup(ref, fileSchema string) (*ast.EnumType, *alerr.Error) {
	schema, name := strutil.ParseRef(ref)
	if schema != "" {
		if e, ok := r.enums[strutil.QualifiedName(schema, name)]; ok {
			return e, nil
		}
		return nil, r.unknown(ref)
	}

	if e, ok := r.enums[strutil.QualifiedName(fileSchema, name)]; ok {
		return e, nil
	}

	matches := lo.Filter(lo.Values(r.enums), func(e *ast.EnumType, _ int) bool { return e.Name == name })
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, r.unknown(ref)
	default:
		names := lo.Map(matches, func(e *ast.EnumType, _ int) string { return strutil.QualifiedName(e.Schema, e.Name) })
		slices.Sort(names)
		return nil, alerr.Newf(alerr.ErrSchemaInvalid, "enum %q is ambiguous", ref).
			WithHelp(fmt.Sprintf("qualify it as one of %s", strings.Join(names, ", ")))
	}
}

func (r *resolver) unknown(ref string) *alerr.Error {
	err := alerr.Newf(alerr.ErrSchemaInvalid, "unknown enum %q", ref)
	options := sortedKeys(r.enums)
	for _, e := range r.enums {
		options = append(options, e.Name)
	}
	if hint := alerr.DidYouMean(ref, lo.Uniq(options)); hint != "" {
		err = err.WithHelp(hint)
	}
	return err
}

func validateEnum(e *ast.EnumType) *alerr.Error {
	if len(e.Values) == 0 {
		return alerr.New(alerr.ErrSchemaInvalid, "enum needs at least one value").
			WithEnum(e.Schema, e.Name)
	}
	if dups := lo.FindDuplicates(e.EncodedValues()); len(dups) > 0 {
		return alerr.Newf(alerr.ErrSchemaInvalid, "enum has duplicate labels %s", strings.Join(dups, ", ")).
			WithEnum(e.Schema, e.Name)
	}
	for value := range e.Labels {
		if !slices.Contains(e.Values, value) {
			return alerr.Newf(alerr.ErrSchemaInvalid, "label given for undeclared value %q", value).
				WithEnum(e.Schema, e.Name)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}

// validateSchemaDir checks that dir exists and is a directory.
func validateSchemaDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return alerr.New(alerr.ErrSchemaNotFound, "schema directory does not exist").
				With("path", dir)
		}
		return alerr.Wrap(alerr.ErrSchemaNotFound, err, "failed to access schema directory").
			With("path", dir)
	}
	if !info.IsDir() {
		return alerr.New(alerr.ErrSchemaNotFound, "schema path is not a directory").
			With("path", dir)
	}
	return nil
}
