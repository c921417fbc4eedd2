package engine

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/dialect"
)

// Catalog is the read side of the database the comparator needs.
type Catalog interface {
	DefaultReader
	DefinedEnums(ctx context.Context, schema string, include func(string) bool) (ast.EnumValues, error)
}

// Comparator diffs declared enums against the catalog.
type Comparator struct {
	catalog Catalog
	dialect dialect.Dialect
	cfg     Config
	logger  *slog.Logger
}

// NewComparator creates a comparator. A nil logger uses slog.Default().
func NewComparator(catalog Catalog, d dialect.Dialect, cfg Config, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparator{catalog: catalog, dialect: d, cfg: cfg, logger: logger}
}

// DefaultSchema is the schema unqualified declarations resolve to.
func (c *Comparator) DefaultSchema() string {
	return cmp.Or(c.cfg.DefaultSchema, c.dialect.DefaultSchema())
}

// Compare diffs every schema in schemas ("" meaning the default schema) and
// returns batch with the enum operations merged in: the batch's CreateSchema
// ops, then enum creates, then the rest of the host operations, then drops
// and value syncs. Schemas the batch creates are diffed too.
func (c *Comparator) Compare(ctx context.Context, schemas []string, tables []*ast.TableDef, batch []ast.Operation) ([]ast.Operation, error) {
	if !c.dialect.SupportsNativeEnums() && !c.cfg.ForceDialectSupport {
		c.logger.Warn("dialect has no enumerated types, skipping enum comparison", "dialect", c.dialect.Name())
		return batch, nil
	}

	if len(schemas) == 0 {
		schemas = []string{""}
	}
	defaultSchema := c.DefaultSchema()
	targets := lo.Uniq(lo.Map(schemas, func(s string, _ int) string { return cmp.Or(s, defaultSchema) }))
	for _, s := range pendingSchemas(batch) {
		if !lo.Contains(targets, s) {
			targets = append(targets, s)
		}
	}

	pending := PendingDefaults(batch, defaultSchema)

	var creates, tail []ast.Operation
	for _, schema := range targets {
		defined, err := c.catalog.DefinedEnums(ctx, schema, c.cfg.IncludeName)
		if err != nil {
			return nil, err
		}
		declared, err := DeclaredEnums(ctx, tables, schema, defaultSchema, c.cfg.IncludeName, pending, c.catalog)
		if err != nil {
			return nil, err
		}

		creates = append(creates, c.creates(schema, defined, declared)...)
		if c.cfg.DropUnusedEnums {
			tail = append(tail, c.drops(schema, defined, declared)...)
		}
		if c.cfg.SyncEnumValues {
			tail = append(tail, c.syncs(schema, defined, declared)...)
		}
	}

	isCreateSchema := func(op ast.Operation, _ int) bool {
		_, ok := op.(*ast.CreateSchema)
		return ok
	}
	createSchemas, rest := lo.Filter(batch, isCreateSchema), lo.Reject(batch, isCreateSchema)

	out := make([]ast.Operation, 0, len(creates)+len(batch)+len(tail))
	out = append(out, createSchemas...)
	out = append(out, creates...)
	out = append(out, rest...)
	out = append(out, tail...)
	return out, nil
}

func (c *Comparator) creates(schema string, defined ast.EnumValues, declared ast.DeclaredEnums) []ast.Operation {
	var ops []ast.Operation
	for _, name := range declared.Values.Names() {
		if _, ok := defined[name]; ok {
			continue
		}
		values := declared.Values[name]
		c.logger.Info("detected new enum", "schema", schema, "enum", name, "values", values)
		ops = append(ops, &ast.CreateEnum{EnumOp: ast.EnumOp{Schema: schema, Name: name}, Values: slices.Clone(values)})
	}
	return ops
}

func (c *Comparator) drops(schema string, defined ast.EnumValues, declared ast.DeclaredEnums) []ast.Operation {
	var ops []ast.Operation
	for _, name := range defined.Names() {
		if _, ok := declared.Values[name]; ok {
			continue
		}
		values := defined[name]
		c.logger.Info("detected unused enum", "schema", schema, "enum", name, "values", values)
		ops = append(ops, &ast.DropEnum{EnumOp: ast.EnumOp{Schema: schema, Name: name}, Values: slices.Clone(values)})
	}
	return ops
}

func (c *Comparator) syncs(schema string, defined ast.EnumValues, declared ast.DeclaredEnums) []ast.Operation {
	var ops []ast.Operation
	for _, name := range declared.Values.Names() {
		oldValues, ok := defined[name]
		if !ok {
			continue
		}
		newValues := declared.Values[name]
		if c.sameValues(oldValues, newValues) {
			continue
		}
		c.logger.Info("detected changed enum values", "schema", schema, "enum", name, "was", oldValues, "become", newValues)

		refs := slices.Clone(declared.References[name])
		ast.SortReferences(refs)
		ops = append(ops, &ast.SyncEnumValues{
			EnumOp:          ast.EnumOp{Schema: schema, Name: name},
			OldValues:       slices.Clone(oldValues),
			NewValues:       slices.Clone(newValues),
			AffectedColumns: refs,
		})
	}
	return ops
}

func (c *Comparator) sameValues(a, b []string) bool {
	if !c.cfg.IgnoreEnumValuesOrder {
		return slices.Equal(a, b)
	}
	return mapset.NewThreadUnsafeSet(a...).Equal(mapset.NewThreadUnsafeSet(b...))
}

// EnumOperations returns the enum operations of a batch, in order.
func EnumOperations(ops []ast.Operation) []ast.EnumOperation {
	out := make([]ast.EnumOperation, 0, len(ops))
	for _, op := range ops {
		if eo, ok := op.(ast.EnumOperation); ok {
			out = append(out, eo)
		}
	}
	return out
}
