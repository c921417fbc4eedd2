package enumsync

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/dialect"
	"github.com/hlop3z/enumsync/internal/introspect"
)

// Syncer applies enum operations on one connection.
type Syncer struct {
	q             introspect.Querier
	dialect       dialect.Dialect
	catalog       introspect.Introspector
	defaultSchema string
	logger        *slog.Logger
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Syncer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultSchema sets the schema used for catalog lookups when an
// operation or reference has none. The default is the dialect's.
func WithDefaultSchema(schema string) Option {
	return func(s *Syncer) {
		if schema != "" {
			s.defaultSchema = schema
		}
	}
}

// WithIntrospector replaces the catalog reader, mainly for tests.
func WithIntrospector(in introspect.Introspector) Option {
	return func(s *Syncer) {
		if in != nil {
			s.catalog = in
		}
	}
}

// New creates a Syncer issuing statements on q.
func New(q introspect.Querier, d dialect.Dialect, opts ...Option) *Syncer {
	s := &Syncer{
		q:             q,
		dialect:       d,
		catalog:       introspect.New(q, d),
		defaultSchema: d.DefaultSchema(),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply validates op, plans it and executes the plan.
func (s *Syncer) Apply(ctx context.Context, op ast.EnumOperation) error {
	plan, err := s.Plan(ctx, op)
	if err != nil {
		return err
	}
	return s.Execute(ctx, plan)
}

// Sync runs the value-sync protocol for one enum.
func (s *Syncer) Sync(ctx context.Context, op *ast.SyncEnumValues) error {
	return s.Apply(ctx, op)
}

// Plan validates op and renders its statements. For a value sync it reads
// defaults of references that ask for a lookup and, when the operation
// carries no explicit index list, snapshots the dependent partial indexes.
// Plan only reads from the database.
func (s *Syncer) Plan(ctx context.Context, op ast.EnumOperation) (*Plan, error) {
	if !s.dialect.SupportsNativeEnums() {
		return nil, alerr.Newf(alerr.EUnsupportedDialect, "dialect %s has no enumerated types", s.dialect.Name()).
			WithEnum(op.EnumSchema(), op.EnumName())
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}

	switch op := op.(type) {
	case *ast.CreateEnum:
		return BuildCreatePlan(s.dialect, op), nil
	case *ast.DropEnum:
		return BuildDropPlan(s.dialect, op), nil
	case *ast.SyncEnumValues:
		return s.planSync(ctx, op)
	default:
		return nil, alerr.Newf(alerr.ErrMigrationInvalid, "unsupported operation %s", op.Type())
	}
}

func (s *Syncer) planSync(ctx context.Context, op *ast.SyncEnumValues) (*Plan, error) {
	defaults := make(map[ast.RefKey]*string)
	for _, ref := range op.AffectedColumns {
		if !ref.LookupDefault {
			continue
		}
		schema := cmp.Or(ref.Schema, op.Schema, s.defaultSchema)
		def, err := s.catalog.ColumnDefault(ctx, schema, ref.Table, ref.Column)
		if err != nil {
			return nil, err
		}
		defaults[ref.Key()] = def
	}

	indexes := op.Indexes
	if indexes == nil {
		var err error
		indexes, err = s.catalog.DependentIndexes(ctx, cmp.Or(op.Schema, s.defaultSchema), op.Name)
		if err != nil {
			return nil, err
		}
	}

	return BuildSyncPlan(s.dialect, op, ResolveColumns(op, defaults), indexes), nil
}

// Execute runs a plan statement by statement. The first failure stops it;
// nothing is undone here.
func (s *Syncer) Execute(ctx context.Context, plan *Plan) error {
	phase := Phase(-1)
	for _, stmt := range plan.Statements {
		if stmt.Phase != phase {
			phase = stmt.Phase
			s.logger.Info("enum sync phase",
				"schema", plan.Schema,
				"enum", plan.Enum,
				"phase", phase.String())
		}
		s.logger.Debug("executing statement", "sql", stmt.SQL)

		if _, err := s.q.ExecContext(ctx, stmt.SQL); err != nil {
			return s.statementError(plan, stmt, err)
		}
	}
	return nil
}

func (s *Syncer) statementError(plan *Plan, stmt Statement, err error) error {
	if stmt.Column != nil && isDataError(err) {
		return alerr.Wrap(alerr.ErrEnumValueConflict, err,
			"new enum values can not be set because a row still holds a removed value").
			WithEnum(plan.Schema, plan.Enum).
			WithTable(stmt.Column.Schema, stmt.Column.Ref.Table).
			WithColumn(stmt.Column.Ref.Column).
			WithSQL(stmt.SQL).
			WithHelp("add the value to the renames of this operation, or update or delete those rows before the sync")
	}
	return alerr.Wrap(alerr.ErrSQLExecution, err, "failed to execute "+stmt.Phase.String()+" statement").
		WithEnum(plan.Schema, plan.Enum).
		WithSQL(stmt.SQL)
}

// isDataError reports whether err is a PostgreSQL data exception
// (SQLSTATE class 22), from either lib/pq or pgx.
func isDataError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "22"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "22")
	}
	return false
}
