// Package runner applies and rolls back migration revisions. It owns the
// transactions: every revision runs in its own BEGIN ... COMMIT, and the enum
// operations inside it are executed by the value-sync executor.
package runner

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/dialect"
	"github.com/hlop3z/enumsync/internal/drift"
	"github.com/hlop3z/enumsync/internal/engine"
	"github.com/hlop3z/enumsync/internal/enumsync"
)

// Runner executes migration plans against a database.
type Runner struct {
	db       *sql.DB
	dialect  dialect.Dialect
	versions *VersionManager
	detector *drift.Detector
	strict   bool
	logger   *slog.Logger
	syncOpts []enumsync.Option
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDriftDetector enables the pre-apply check of each revision's base
// fingerprint against the live catalog.
func WithDriftDetector(d *drift.Detector) Option {
	return func(r *Runner) { r.detector = d }
}

// WithStrict turns detected drift into an error instead of a warning.
func WithStrict(strict bool) Option {
	return func(r *Runner) { r.strict = strict }
}

// WithSyncOptions passes options to the syncer created per revision.
func WithSyncOptions(opts ...enumsync.Option) Option {
	return func(r *Runner) { r.syncOpts = append(r.syncOpts, opts...) }
}

// NewRunner creates a new migration runner.
// Returns nil if db or dialect is nil.
func NewRunner(db *sql.DB, d dialect.Dialect, opts ...Option) *Runner {
	if db == nil || d == nil {
		return nil
	}
	r := &Runner{
		db:       db,
		dialect:  d,
		versions: NewVersionManager(db, d),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply applies the pending revisions of all, in order, up to and including
// target when it is set. It returns the revisions that were applied.
func (r *Runner) Apply(ctx context.Context, all []engine.Migration, target string) ([]engine.Migration, error) {
	plan, err := r.plan(ctx, all, target, engine.Up, 0)
	if err != nil {
		return nil, err
	}
	return plan.Migrations, r.Run(ctx, plan)
}

// Rollback runs the downgrades of the latest steps applied revisions,
// newest first. Zero steps rolls back everything.
func (r *Runner) Rollback(ctx context.Context, all []engine.Migration, steps int) ([]engine.Migration, error) {
	plan, err := r.plan(ctx, all, "", engine.Down, steps)
	if err != nil {
		return nil, err
	}
	return plan.Migrations, r.Run(ctx, plan)
}

// Plan returns the revisions Apply or Rollback would run.
func (r *Runner) Plan(ctx context.Context, all []engine.Migration, target string, dir engine.Direction, steps int) (*engine.Plan, error) {
	return r.plan(ctx, all, target, dir, steps)
}

func (r *Runner) plan(ctx context.Context, all []engine.Migration, target string, dir engine.Direction, steps int) (*engine.Plan, error) {
	if err := r.versions.EnsureTable(ctx); err != nil {
		return nil, err
	}
	applied, err := r.versions.GetApplied(ctx)
	if err != nil {
		return nil, err
	}
	return engine.PlanMigrations(all, applied, target, dir, steps)
}

// History returns the applied revisions ordered by revision.
func (r *Runner) History(ctx context.Context) ([]engine.AppliedMigration, error) {
	if err := r.versions.EnsureTable(ctx); err != nil {
		return nil, err
	}
	return r.versions.GetApplied(ctx)
}

// Status reports every revision known on disk or in the tracking table.
func (r *Runner) Status(ctx context.Context, all []engine.Migration) ([]engine.MigrationStatus, error) {
	applied, err := r.History(ctx)
	if err != nil {
		return nil, err
	}
	return engine.GetStatus(all, applied), nil
}

// Run executes all migrations in the plan.
// Returns an error if any migration fails.
func (r *Runner) Run(ctx context.Context, plan *engine.Plan) error {
	if plan.IsEmpty() {
		return nil
	}

	for _, m := range plan.Migrations {
		if plan.Direction == engine.Up {
			if err := r.checkDrift(ctx, m); err != nil {
				return err
			}
		}
		if err := r.runInTransaction(ctx, m, plan.Direction); err != nil {
			return alerr.Wrap(alerr.ErrMigrationFailed, err, "migration failed").
				With("revision", m.Revision).
				With("name", m.Name).
				With("direction", plan.Direction.String())
		}
	}

	return nil
}

// checkDrift compares the revision's base with the live catalog.
func (r *Runner) checkDrift(ctx context.Context, m engine.Migration) error {
	if r.detector == nil || m.Base == "" {
		return nil
	}
	actual, ok, err := r.detector.CheckBase(ctx, m.Base)
	if err != nil || ok {
		return err
	}
	if r.strict {
		return alerr.New(alerr.ErrDrift, "database enums differ from the revision's base").
			With("revision", m.Revision).
			With("expected", m.Base).
			With("actual", actual).
			WithHelp("run 'enumsync check' to see the differences, or apply without --strict")
	}
	r.logger.Warn("database enums drifted since the revision was generated",
		"revision", m.Revision,
		"expected", m.Base,
		"actual", actual)
	return nil
}

// runInTransaction executes one revision atomically together with its
// tracking-table update.
func (r *Runner) runInTransaction(ctx context.Context, m engine.Migration, dir engine.Direction) error {
	start := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return alerr.Wrap(alerr.ErrSQLTransaction, err, "failed to begin transaction")
	}

	// Track if we need to rollback
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	syncer := enumsync.New(tx, r.dialect, append([]enumsync.Option{enumsync.WithLogger(r.logger)}, r.syncOpts...)...)
	for _, op := range m.Operations(dir) {
		if err := syncer.Apply(ctx, op); err != nil {
			return err
		}
	}

	versions := r.versions.On(tx)
	if dir == engine.Up {
		err = versions.RecordApplied(ctx, m, time.Since(start))
	} else {
		err = versions.RecordRollback(ctx, m.Revision)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return alerr.Wrap(alerr.ErrSQLTransaction, err, "failed to commit transaction")
	}
	committed = true

	r.logger.Info("revision "+dirVerb(dir),
		"revision", m.Revision,
		"name", m.Name,
		"elapsed", time.Since(start))
	return nil
}

func dirVerb(dir engine.Direction) string {
	if dir == engine.Down {
		return "rolled back"
	}
	return "applied"
}

// DryRun returns the SQL each revision of the plan would execute, without
// changing the database. Catalog lookups see the current state, so later
// revisions are planned as if earlier ones had not run yet.
func (r *Runner) DryRun(ctx context.Context, plan *engine.Plan) (map[string][]string, error) {
	out := make(map[string][]string, len(plan.Migrations))
	syncer := enumsync.New(r.db, r.dialect, append([]enumsync.Option{enumsync.WithLogger(r.logger)}, r.syncOpts...)...)

	for _, m := range plan.Migrations {
		var sqls []string
		for _, op := range m.Operations(plan.Direction) {
			p, err := syncer.Plan(ctx, op)
			if err != nil {
				return nil, err
			}
			sqls = append(sqls, p.SQL()...)
		}
		out[m.Revision] = sqls
	}
	return out, nil
}
