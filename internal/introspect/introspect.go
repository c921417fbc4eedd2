// Package introspect reads the live database catalog: defined enums, column
// defaults and partial indexes that depend on an enum.
//
// Every reader takes a Querier so it can run on the caller's transaction.
// "Nothing here" is never an error: a schema without enums yields an empty
// map and a missing enum yields no indexes.
package introspect

import (
	"context"
	"database/sql"

	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/dialect"
)

// Querier is the connection the readers and the syncer run on. *sql.DB,
// *sql.Conn and *sql.Tx all satisfy it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Introspector queries database catalogs for enum information.
type Introspector interface {
	// DefinedEnums returns every enum in schema with its labels in storage
	// order. include filters by name; nil includes everything.
	DefinedEnums(ctx context.Context, schema string, include func(string) bool) (ast.EnumValues, error)

	// ColumnDefault returns the stored default expression of a column, or
	// nil when the column has none or does not exist.
	ColumnDefault(ctx context.Context, schema, table, column string) (*string, error)

	// DependentIndexes returns the partial indexes whose predicate depends on
	// the enum, in name order.
	DependentIndexes(ctx context.Context, schema, enum string) ([]ast.TableIndex, error)

	// SchemaExists reports whether a schema exists.
	SchemaExists(ctx context.Context, schema string) (bool, error)
}

// New creates an Introspector for the given dialect.
// Returns nil if the dialect is not supported.
func New(q Querier, d dialect.Dialect) Introspector {
	switch d.Name() {
	case "postgres":
		return &postgresIntrospector{q: q}
	case "sqlite":
		return &sqliteIntrospector{q: q}
	default:
		return nil
	}
}

func includeAll(string) bool { return true }
