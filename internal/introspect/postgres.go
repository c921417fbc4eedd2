package introspect

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/ast"
)

type postgresIntrospector struct {
	q Querier
}

// typname is used instead of format_type so names come back unqualified and
// unquoted regardless of the search_path.
const definedEnumsQuery = `
	SELECT
		t.typname,
		ARRAY(
			SELECT e.enumlabel
			FROM pg_catalog.pg_enum e
			WHERE e.enumtypid = t.oid
			ORDER BY e.enumsortorder
		)
	FROM pg_catalog.pg_type t
	JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
	WHERE t.typtype = 'e'
		AND n.nspname = $1
	ORDER BY t.typname
`

func (p *postgresIntrospector) DefinedEnums(ctx context.Context, schema string, include func(string) bool) (ast.EnumValues, error) {
	if include == nil {
		include = includeAll
	}

	rows, err := p.q.QueryContext(ctx, definedEnumsQuery, schema)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrIntrospection, err, "failed to list enums").
			With("schema", schema)
	}
	defer rows.Close()

	enums := make(ast.EnumValues)
	for rows.Next() {
		var name string
		var labels []string
		if err := rows.Scan(&name, pq.Array(&labels)); err != nil {
			return nil, alerr.Wrap(alerr.ErrIntrospection, err, "failed to scan enum").
				With("schema", schema)
		}
		if !include(name) {
			continue
		}
		if labels == nil {
			labels = []string{}
		}
		enums[name] = labels
	}
	if err := rows.Err(); err != nil {
		return nil, alerr.Wrap(alerr.ErrIntrospection, err, "failed to list enums").
			With("schema", schema)
	}
	return enums, nil
}

const columnDefaultQuery = `
	SELECT column_default
	FROM information_schema.columns
	WHERE table_schema = $1
		AND table_name = $2
		AND column_name = $3
`

func (p *postgresIntrospector) ColumnDefault(ctx context.Context, schema, table, column string) (*string, error) {
	var def sql.NullString
	err := p.q.QueryRowContext(ctx, columnDefaultQuery, schema, table, column).Scan(&def)
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

const enumOIDQuery = `
	SELECT t.oid
	FROM pg_catalog.pg_type t
	JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
	WHERE n.nspname = $1 AND t.typname = $2
`

// dependentIndexesQuery unions two lookups. The first follows pg_depend from
// the type to partial indexes. The second matches the enum name inside the
// predicate text and keeps only rows that pg_depend confirms, so a same-named
// type in another schema is not picked up.
const dependentIndexesQuery = `
	SELECT
		quote_ident(idx_ns.nspname) || '.' || quote_ident(idx_class.relname) AS index_name,
		pg_catalog.pg_get_indexdef(idx_class.oid) AS index_def
	FROM pg_catalog.pg_depend dep
	JOIN pg_catalog.pg_class idx_class ON dep.objid = idx_class.oid
	JOIN pg_catalog.pg_namespace idx_ns ON idx_class.relnamespace = idx_ns.oid
	JOIN pg_catalog.pg_index idx ON idx.indexrelid = idx_class.oid
	WHERE dep.refobjid = $1
		AND dep.refclassid = 'pg_catalog.pg_type'::regclass
		AND dep.classid = 'pg_catalog.pg_class'::regclass
		AND idx_class.relkind = 'i'
		AND idx.indpred IS NOT NULL

	UNION

	SELECT
		quote_ident(n.nspname) || '.' || quote_ident(c.relname) AS index_name,
		pg_catalog.pg_get_indexdef(i.indexrelid) AS index_def
	FROM pg_catalog.pg_index i
	JOIN pg_catalog.pg_class c ON c.oid = i.indexrelid
	JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
	WHERE i.indpred IS NOT NULL
		AND pg_catalog.pg_get_expr(i.indpred, i.indrelid) LIKE '%' || $2 || '%'
		AND EXISTS (
			SELECT 1 FROM pg_catalog.pg_depend d
			WHERE d.objid = i.indexrelid
				AND d.refobjid = $1
				AND d.refclassid = 'pg_catalog.pg_type'::regclass
		)

	ORDER BY index_name
`

func (p *postgresIntrospector) DependentIndexes(ctx context.Context, schema, enum string) ([]ast.TableIndex, error) {
	var oid uint32
	err := p.q.QueryRowContext(ctx, enumOIDQuery, schema, enum).Scan(&oid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrIntrospection, err, "failed to look up enum").
			WithEnum(schema, enum)
	}

	rows, err := p.q.QueryContext(ctx, dependentIndexesQuery, oid, enum)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrIntrospection, err, "failed to list dependent indexes").
			WithEnum(schema, enum)
	}
	defer rows.Close()

	var indexes []ast.TableIndex
	for rows.Next() {
		var idx ast.TableIndex
		if err := rows.Scan(&idx.Name, &idx.Definition); err != nil {
			return nil, alerr.Wrap(alerr.ErrIntrospection, err, "failed to scan index").
				WithEnum(schema, enum)
		}
		indexes = append(indexes, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, alerr.Wrap(alerr.ErrIntrospection, err, "failed to list dependent indexes").
			WithEnum(schema, enum)
	}
	return indexes, nil
}

func (p *postgresIntrospector) SchemaExists(ctx context.Context, schema string) (bool, error) {
	var exists bool
	err := p.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_catalog.pg_namespace WHERE nspname = $1)`,
		schema,
	).Scan(&exists)
	if err != nil {
		return false, alerr.Wrap(alerr.ErrIntrospection, err, "failed to check schema").
			With("schema", schema)
	}
	return exists, nil
}
