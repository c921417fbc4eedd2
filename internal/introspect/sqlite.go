package introspect

import (
	"cmp"
	"context"
	"database/sql"
	"errors"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/ast"
)

// sqliteIntrospector answers the same questions for SQLite, which has no
// enumerated types. Declared enums there are stored as text, so no enum is
// ever defined and nothing can depend on one.
type sqliteIntrospector struct {
	q Querier
}

func (s *sqliteIntrospector) DefinedEnums(ctx context.Context, schema string, include func(string) bool) (ast.EnumValues, error) {
	return ast.EnumValues{}, nil
}

func (s *sqliteIntrospector) ColumnDefault(ctx context.Context, schema, table, column string) (*string, error) {
	var def sql.NullString
	err := s.q.QueryRowContext(ctx,
		`SELECT dflt_value FROM pragma_table_info(?, ?) WHERE name = ?`,
		table, cmp.Or(schema, "main"), column,
	).Scan(&def)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrIntrospection, err, "failed to read column default").
			WithTable(schema, table).
			WithColumn(column)
	}
	if !def.Valid {
		return nil, nil
	}
	return &def.String, nil
}

func (s *sqliteIntrospector) DependentIndexes(ctx context.Context, schema, enum string) ([]ast.TableIndex, error) {
	return nil, nil
}

func (s *sqliteIntrospector) SchemaExists(ctx context.Context, schema string) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT count(*) FROM pragma_database_list WHERE name = ?`,
		cmp.Or(schema, "main"),
	).Scan(&n)
	if err != nil {
		return false, alerr.Wrap(alerr.ErrIntrospection, err, "failed to check schema").
			With("schema", schema)
	}
	return n > 0, nil
}
