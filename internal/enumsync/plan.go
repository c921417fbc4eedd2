// Package enumsync executes enum operations against a live PostgreSQL
// database.
//
// A value sync replaces an enum's label set without losing row data:
//
//	STABLE(E) -> RENAMED_OLD -> COLUMNS_MIGRATING -> DEFAULTS_RESTORING
//	          -> INDEXES_REBUILDING -> STABLE(E)
//
// The Syncer never begins, commits or rolls back a transaction. It issues
// statements on the Querier it was given and relies on the caller's
// transaction to undo everything when a step fails.
package enumsync

import (
	"cmp"

	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/dialect"
	"github.com/hlop3z/enumsync/internal/rewrite"
	"github.com/hlop3z/enumsync/internal/sqlgen"
)

// Phase identifies the step of the protocol a statement belongs to.
type Phase int

const (
	PhaseCreateType Phase = iota
	PhaseDropType
	PhaseRenameOld
	PhaseCreateNew
	PhaseOperators
	PhaseDropIndexes
	PhaseMigrateColumns
	PhaseRestoreDefaults
	PhaseRebuildIndexes
	PhaseCleanup
)

func (p Phase) String() string {
	switch p {
	case PhaseCreateType:
		return "create_type"
	case PhaseDropType:
		return "drop_type"
	case PhaseRenameOld:
		return "rename_old"
	case PhaseCreateNew:
		return "create_new"
	case PhaseOperators:
		return "operators"
	case PhaseDropIndexes:
		return "drop_indexes"
	case PhaseMigrateColumns:
		return "migrate_columns"
	case PhaseRestoreDefaults:
		return "restore_defaults"
	case PhaseRebuildIndexes:
		return "rebuild_indexes"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// Statement is one SQL statement of a plan.
type Statement struct {
	Phase Phase
	SQL   string

	// Column is set on the cast statement of an affected column so a
	// data-validity failure can name it.
	Column *Column
}

// Column is an affected column with its table schema and default resolved.
type Column struct {
	Ref     ast.TableReference
	Schema  string  // table schema, the reference's own or the enum's
	Default *string // default before the sync; nil when none
}

// Plan is the ordered statement list for one enum operation.
type Plan struct {
	Schema     string
	Enum       string
	Statements []Statement
}

// SQL returns the statements as text.
func (p *Plan) SQL() []string {
	out := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		out[i] = s.SQL
	}
	return out
}

func (p *Plan) add(phase Phase, sql string) {
	p.Statements = append(p.Statements, Statement{Phase: phase, SQL: sql})
}

// ResolveColumns pairs every affected column with its table schema and the
// default it had before the sync. defaults supplies looked-up defaults for
// references that ask for one; other references use ExistingDefault.
func ResolveColumns(op *ast.SyncEnumValues, defaults map[ast.RefKey]*string) []Column {
	cols := make([]Column, len(op.AffectedColumns))
	for i, ref := range op.AffectedColumns {
		def := ref.ExistingDefault
		if ref.LookupDefault {
			def = defaults[ref.Key()]
		}
		cols[i] = Column{
			Ref:     ref,
			Schema:  cmp.Or(ref.Schema, op.Schema),
			Default: def,
		}
	}
	return cols
}

// BuildSyncPlan renders the full value-sync protocol:
//
//  1. rename E to E_old
//  2. create E with the new labels
//  3. install = and <> between E and E_old
//  4. drop dependent partial indexes
//  5. per column: drop the default, cast to E
//  6. restore rewritten defaults
//  7. recreate indexes with renamed labels
//  8. drop the comparison functions
//  9. drop E_old
func BuildSyncPlan(f dialect.SQLFormatter, op *ast.SyncEnumValues, cols []Column, indexes []ast.TableIndex) *Plan {
	p := &Plan{Schema: op.Schema, Enum: op.Name}
	old := sqlgen.OldName(op.Name)

	p.add(PhaseRenameOld, sqlgen.RenameType(f, op.Schema, op.Name, old))
	p.add(PhaseCreateNew, sqlgen.CreateType(f, op.Schema, op.Name, op.NewValues))

	for _, cmpOp := range sqlgen.ComparisonOperators {
		p.add(PhaseOperators, sqlgen.CreateComparisonFunction(f, op.Schema, op.Name, cmpOp, op.Renames))
		p.add(PhaseOperators, sqlgen.CreateOperator(f, op.Schema, op.Name, cmpOp))
	}

	for _, idx := range indexes {
		p.add(PhaseDropIndexes, sqlgen.DropIndex(idx.Name))
	}

	for i := range cols {
		col := &cols[i]
		if col.Default != nil {
			p.add(PhaseMigrateColumns, sqlgen.DropDefault(f, col.Schema, col.Ref.Table, col.Ref.Column))
		}
		p.Statements = append(p.Statements, Statement{
			Phase: PhaseMigrateColumns,
			SQL: sqlgen.AlterColumnType(f, col.Schema, col.Ref.Table, col.Ref.Column,
				col.Ref.Kind, op.Schema, op.Name, op.Renames),
			Column: col,
		})
	}

	for _, col := range cols {
		if col.Default == nil {
			continue
		}
		def := rewrite.RenameDefault(op.Schema, *col.Default, op.Name, op.Renames)
		p.add(PhaseRestoreDefaults, sqlgen.SetDefault(f, col.Schema, col.Ref.Table, col.Ref.Column, def))
	}

	for _, idx := range rewrite.TransformIndexes(indexes, op.Name, op.Renames, op.Schema) {
		p.add(PhaseRebuildIndexes, idx.Definition)
	}

	for _, cmpOp := range sqlgen.ComparisonOperators {
		p.add(PhaseCleanup, sqlgen.DropComparisonFunction(f, op.Schema, op.Name, cmpOp))
	}
	p.add(PhaseCleanup, sqlgen.DropType(f, op.Schema, old))

	return p
}

// BuildCreatePlan renders CREATE TYPE.
func BuildCreatePlan(f dialect.SQLFormatter, op *ast.CreateEnum) *Plan {
	p := &Plan{Schema: op.Schema, Enum: op.Name}
	p.add(PhaseCreateType, sqlgen.CreateType(f, op.Schema, op.Name, op.Values))
	return p
}

// BuildDropPlan renders DROP TYPE.
func BuildDropPlan(f dialect.SQLFormatter, op *ast.DropEnum) *Plan {
	p := &Plan{Schema: op.Schema, Enum: op.Name}
	p.add(PhaseDropType, sqlgen.DropType(f, op.Schema, op.Name))
	return p
}
