package engine

import (
	"cmp"
	"context"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/hlop3z/enumsync/internal/ast"
)

// DefaultReader reads a column's stored default from the catalog.
type DefaultReader interface {
	ColumnDefault(ctx context.Context, schema, table, column string) (*string, error)
}

// DeclaredEnums walks the declared tables and returns the enums that live in
// schema together with the columns using them. An unqualified table or enum
// belongs to defaultSchema.
//
// A column's current default comes from pending when the host batch is about
// to set or drop it, and from the catalog otherwise. The catalog is only read.
func DeclaredEnums(
	ctx context.Context,
	tables []*ast.TableDef,
	schema, defaultSchema string,
	include func(string) bool,
	pending map[ast.RefKey]*string,
	catalog DefaultReader,
) (ast.DeclaredEnums, error) {
	declared := ast.DeclaredEnums{
		Values:     make(ast.EnumValues),
		References: make(map[string][]ast.TableReference),
	}
	seen := make(map[string]mapset.Set[ast.RefKey])

	for _, table := range tables {
		tableSchema := cmp.Or(table.Schema, defaultSchema)

		for _, col := range table.Columns {
			kind, enum := ast.Classify(col.Type)
			if kind == ast.ColumnNotEnum {
				continue
			}
			if cmp.Or(enum.Schema, defaultSchema) != schema {
				continue
			}
			if include != nil && !include(enum.Name) {
				continue
			}

			if _, ok := declared.Values[enum.Name]; !ok {
				declared.Values[enum.Name] = enum.EncodedValues()
				seen[enum.Name] = mapset.NewThreadUnsafeSet[ast.RefKey]()
			}

			key := ast.RefKey{Schema: tableSchema, Table: table.Name, Column: col.Name}
			if !seen[enum.Name].Add(key) {
				continue
			}

			def, ok := pending[key]
			if !ok && catalog != nil {
				var err error
				def, err = catalog.ColumnDefault(ctx, tableSchema, table.Name, col.Name)
				if err != nil {
					return ast.DeclaredEnums{}, err
				}
			}

			declared.References[enum.Name] = append(declared.References[enum.Name], ast.TableReference{
				Schema:          tableSchema,
				Table:           table.Name,
				Column:          col.Name,
				Kind:            kind,
				ExistingDefault: def,
			})
		}
	}

	for _, refs := range declared.References {
		ast.SortReferences(refs)
	}
	return declared, nil
}
