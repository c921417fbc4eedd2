package migration

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/strutil"
)

// document is the on-disk shape of a revision. Field order is the rendered
// key order.
type document struct {
	Revision  string     `yaml:"revision"`
	Name      string     `yaml:"name"`
	Base      string     `yaml:"base,omitempty"`
	Upgrade   []opEntry  `yaml:"upgrade"`
	Downgrade *[]opEntry `yaml:"downgrade,omitempty"`
}

// opEntry holds exactly one operation under its type key.
type opEntry struct {
	CreateEnum     *enumDoc `yaml:"create_enum,omitempty"`
	DropEnum       *enumDoc `yaml:"drop_enum,omitempty"`
	SyncEnumValues *syncDoc `yaml:"sync_enum_values,omitempty"`
}

type enumDoc struct {
	Schema string   `yaml:"schema,omitempty"`
	Name   string   `yaml:"name"`
	Values []string `yaml:"values,flow"`
}

type syncDoc struct {
	Schema          string      `yaml:"schema,omitempty"`
	Name            string      `yaml:"name"`
	OldValues       []string    `yaml:"old_values,flow"`
	NewValues       []string    `yaml:"new_values,flow"`
	AffectedColumns []yaml.Node `yaml:"affected_columns"`
	Renames         []renameDoc `yaml:"enum_values_to_rename"`
	Indexes         *[]indexDoc `yaml:"indexes_to_recreate,omitempty"`
}

// columnDoc is the structured form of an affected column.
type columnDoc struct {
	TableSchema           string  `yaml:"table_schema,omitempty"`
	TableName             string  `yaml:"table_name"`
	ColumnName            string  `yaml:"column_name"`
	ColumnType            string  `yaml:"column_type,omitempty"`
	ExistingServerDefault *string `yaml:"existing_server_default,omitempty"`
	LookupDefault         bool    `yaml:"lookup_default,omitempty"`
}

type renameDoc struct {
	Old string `yaml:"old"`
	New string `yaml:"new"`
}

// UnmarshalYAML accepts {old: a, new: b} or the pair form [a, b].
func (r *renameDoc) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.SequenceNode {
		if len(n.Content) != 2 || !allScalars(n.Content) {
			return alerr.New(alerr.ErrInvalidRename, "rename pair must have exactly two labels").
				With("line", n.Line)
		}
		r.Old, r.New = n.Content[0].Value, n.Content[1].Value
		return nil
	}
	type plain renameDoc
	return n.Decode((*plain)(r))
}

type indexDoc struct {
	Name       string `yaml:"name"`
	Definition string `yaml:"definition"`
}

// -----------------------------------------------------------------------------
// Encoding
// -----------------------------------------------------------------------------

func encodeOps(ops []ast.EnumOperation) ([]opEntry, error) {
	entries := make([]opEntry, 0, len(ops))
	for _, op := range ops {
		var e opEntry
		switch op := op.(type) {
		case *ast.CreateEnum:
			e.CreateEnum = &enumDoc{Schema: op.Schema, Name: op.Name, Values: nonNil(op.Values)}
		case *ast.DropEnum:
			e.DropEnum = &enumDoc{Schema: op.Schema, Name: op.Name, Values: nonNil(op.Values)}
		case *ast.SyncEnumValues:
			doc, err := encodeSync(op)
			if err != nil {
				return nil, err
			}
			e.SyncEnumValues = doc
		default:
			return nil, alerr.Newf(alerr.ErrMigrationInvalid, "operation %s can not be rendered", op.Type())
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func encodeSync(op *ast.SyncEnumValues) (*syncDoc, error) {
	doc := &syncDoc{
		Schema:          op.Schema,
		Name:            op.Name,
		OldValues:       nonNil(op.OldValues),
		NewValues:       nonNil(op.NewValues),
		AffectedColumns: []yaml.Node{},
		Renames:         []renameDoc{},
	}

	refs := append([]ast.TableReference(nil), op.AffectedColumns...)
	ast.SortReferences(refs)
	for _, ref := range refs {
		col := columnDoc{
			TableSchema:           ref.Schema,
			TableName:             ref.Table,
			ColumnName:            ref.Column,
			LookupDefault:         ref.LookupDefault,
			ExistingServerDefault: ref.ExistingDefault,
		}
		if ref.Kind == ast.ColumnArray {
			col.ColumnType = ref.Kind.String()
		}
		if ref.LookupDefault {
			col.ExistingServerDefault = nil
		}

		var n yaml.Node
		if err := n.Encode(col); err != nil {
			return nil, alerr.Wrap(alerr.ErrMigrationInvalid, err, "failed to encode affected column").
				WithTable(ref.Schema, ref.Table).
				WithColumn(ref.Column)
		}
		n.Style = yaml.FlowStyle
		doc.AffectedColumns = append(doc.AffectedColumns, n)
	}

	for _, r := range op.Renames {
		doc.Renames = append(doc.Renames, renameDoc{Old: r.Old, New: r.New})
	}

	if op.Indexes != nil {
		idx := make([]indexDoc, 0, len(op.Indexes))
		for _, ix := range op.Indexes {
			idx = append(idx, indexDoc{Name: ix.Name, Definition: ix.Definition})
		}
		doc.Indexes = &idx
	}
	return doc, nil
}

// nonNil keeps empty lists rendering as [] instead of null.
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// -----------------------------------------------------------------------------
// Decoding
// -----------------------------------------------------------------------------

func decodeOps(entries []opEntry, section string) ([]ast.EnumOperation, error) {
	ops := make([]ast.EnumOperation, 0, len(entries))
	for i, e := range entries {
		op, err := decodeOp(e)
		if err != nil {
			var ae *alerr.Error
			if errors.As(err, &ae) {
				return nil, ae.With("section", section).With("index", i)
			}
			return nil, err
		}
		if err := op.Validate(); err != nil {
			return nil, alerr.Wrap(alerr.ErrMigrationInvalid, err, "invalid operation").
				With("section", section).
				With("index", i)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func decodeOp(e opEntry) (ast.EnumOperation, error) {
	set := 0
	for _, present := range []bool{e.CreateEnum != nil, e.DropEnum != nil, e.SyncEnumValues != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, alerr.New(alerr.ErrMigrationInvalid, "each operation needs exactly one of create_enum, drop_enum, sync_enum_values")
	}

	switch {
	case e.CreateEnum != nil:
		d := e.CreateEnum
		return &ast.CreateEnum{EnumOp: ast.EnumOp{Schema: d.Schema, Name: d.Name}, Values: d.Values}, nil
	case e.DropEnum != nil:
		d := e.DropEnum
		return &ast.DropEnum{EnumOp: ast.EnumOp{Schema: d.Schema, Name: d.Name}, Values: d.Values}, nil
	default:
		op, err := decodeSync(e.SyncEnumValues)
		if err != nil {
			return nil, err
		}
		return op, nil
	}
}

func decodeSync(d *syncDoc) (*ast.SyncEnumValues, error) {
	op := &ast.SyncEnumValues{
		EnumOp:    ast.EnumOp{Schema: d.Schema, Name: d.Name},
		OldValues: d.OldValues,
		NewValues: d.NewValues,
	}

	for i := range d.AffectedColumns {
		ref, err := decodeColumn(&d.AffectedColumns[i])
		if err != nil {
			return nil, err.WithEnum(d.Schema, d.Name)
		}
		op.AffectedColumns = append(op.AffectedColumns, ref)
	}

	for _, r := range d.Renames {
		op.Renames = append(op.Renames, ast.RenamePair{Old: r.Old, New: r.New})
	}

	if d.Indexes != nil {
		op.Indexes = make([]ast.TableIndex, 0, len(*d.Indexes))
		for _, ix := range *d.Indexes {
			op.Indexes = append(op.Indexes, ast.TableIndex{Name: ix.Name, Definition: ix.Definition})
		}
	}
	return op, nil
}

// decodeColumn reads one affected column. A mapping is a structured
// reference carrying its own default; a [table, column] or
// [table, column, kind] sequence asks the executor to look the default up.
func decodeColumn(n *yaml.Node) (ast.TableReference, *alerr.Error) {
	switch n.Kind {
	case yaml.MappingNode:
		var col columnDoc
		if err := n.Decode(&col); err != nil {
			return ast.TableReference{}, alerr.Wrap(alerr.ErrInvalidColumnRef, err, "malformed affected column").
				With("line", n.Line)
		}
		kind, err := ast.ParseColumnKind(col.ColumnType)
		if err != nil {
			return ast.TableReference{}, alerr.Wrap(alerr.ErrInvalidColumnRef, err, "malformed affected column").
				With("line", n.Line)
		}
		return ast.TableReference{
			Schema:          col.TableSchema,
			Table:           col.TableName,
			Column:          col.ColumnName,
			Kind:            kind,
			ExistingDefault: col.ExistingServerDefault,
			LookupDefault:   col.LookupDefault,
		}, nil

	case yaml.SequenceNode:
		if (len(n.Content) != 2 && len(n.Content) != 3) || !allScalars(n.Content) {
			break
		}
		kind := ast.ColumnCommon
		if len(n.Content) == 3 {
			k, err := ast.ParseColumnKind(n.Content[2].Value)
			if err != nil {
				return ast.TableReference{}, alerr.Wrap(alerr.ErrInvalidColumnRef, err, "malformed affected column").
					With("line", n.Line)
			}
			kind = k
		}
		schema, table := strutil.ParseRef(n.Content[0].Value)
		return ast.TableReference{
			Schema:        schema,
			Table:         table,
			Column:        n.Content[1].Value,
			Kind:          kind,
			LookupDefault: true,
		}, nil
	}

	return ast.TableReference{}, alerr.New(alerr.ErrInvalidColumnRef, "affected column must be a mapping or a [table, column] pair").
		With("line", n.Line).
		With("value", nodeText(n)).
		WithHelp("write {table_name: t, column_name: c, existing_server_default: ...} or [t, c]")
}

func allScalars(nodes []*yaml.Node) bool {
	for _, n := range nodes {
		if n.Kind != yaml.ScalarNode {
			return false
		}
	}
	return true
}

func nodeText(n *yaml.Node) string {
	out, err := yaml.Marshal(n)
	if err != nil {
		return n.Value
	}
	return strings.TrimSpace(string(out))
}
