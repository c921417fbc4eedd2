package enumsync

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hlop3z/enumsync/internal/engine"
	"github.com/hlop3z/enumsync/internal/lockfile"
	"github.com/hlop3z/enumsync/internal/migration"
)

// Revision is a loaded revision file.
type Revision = engine.Migration

// RevisionStatus is the state of one revision on disk or in the database.
type RevisionStatus = engine.MigrationStatus

// LockResult describes how revision files differ from enumsync.lock.
type LockResult = lockfile.Result

// GenerateResult describes a newly written revision.
type GenerateResult struct {
	Revision string
	Path     string
	Diff     *DiffResult
}

// now is replaced in tests.
var now = time.Now

// loadRevisions reads every revision file in the migrations directory.
func (c *Client) loadRevisions() ([]engine.Migration, error) {
	files, err := migration.LoadDir(c.config.MigrationsDir)
	if err != nil {
		return nil, err
	}
	return migration.Migrations(files), nil
}

// Generate diffs the declared schema against the database and writes the
// result as a new revision file. The revision records the database's
// fingerprint so applying it later can detect drift. Returns ErrNoChanges
// when there is nothing to write.
func (c *Client) Generate(ctx context.Context, name string) (*GenerateResult, error) {
	ctx, cancel := c.context(ctx)
	defer cancel()

	schema, err := c.loadSchema()
	if err != nil {
		return nil, err
	}
	diff, err := c.diff(ctx, schema)
	if err != nil {
		return nil, err
	}
	if diff.IsEmpty() {
		return nil, ErrNoChanges
	}

	base, err := c.detector().Fingerprint(ctx)
	if err != nil {
		return nil, err
	}

	f := migration.New(migration.NewRevision(now()), name, base, diff.Operations)
	path, err := migration.Write(c.config.MigrationsDir, f)
	if err != nil {
		return nil, err
	}
	if err := lockfile.Write(c.config.MigrationsDir); err != nil {
		return nil, err
	}
	c.logger.Info("wrote revision", "revision", f.Revision, "path", path, "operations", len(diff.Operations))

	return &GenerateResult{Revision: f.Revision, Path: path, Diff: diff}, nil
}

// Migrate applies the pending revisions in order. With DryRun it writes the
// SQL each revision would run and changes nothing.
func (c *Client) Migrate(ctx context.Context, opts ...MigrationOption) ([]Revision, error) {
	return c.run(ctx, engine.Up, applyMigrationOptions(opts))
}

// Rollback runs the downgrades of the latest applied revisions, newest
// first. The default is one revision; Steps(0) rolls back everything.
func (c *Client) Rollback(ctx context.Context, opts ...MigrationOption) ([]Revision, error) {
	return c.run(ctx, engine.Down, applyMigrationOptions(opts))
}

func (c *Client) run(ctx context.Context, dir engine.Direction, cfg *MigrationConfig) ([]Revision, error) {
	ctx, cancel := c.context(ctx)
	defer cancel()

	if err := lockfile.Verify(c.config.MigrationsDir); err != nil {
		return nil, err
	}
	all, err := c.loadRevisions()
	if err != nil {
		return nil, err
	}

	r := c.runner(cfg.Strict)
	steps := 0
	if dir == engine.Down {
		steps = cfg.Steps
	}
	plan, err := r.Plan(ctx, all, cfg.Target, dir, steps)
	if err != nil {
		return nil, err
	}

	if cfg.DryRun {
		return plan.Migrations, c.writeDryRun(ctx, plan, cfg.Output)
	}
	if err := r.Run(ctx, plan); err != nil {
		return nil, err
	}
	return plan.Migrations, nil
}

func (c *Client) writeDryRun(ctx context.Context, plan *engine.Plan, w io.Writer) error {
	if w == nil {
		w = io.Discard
	}
	sqls, err := c.runner(false).DryRun(ctx, plan)
	if err != nil {
		return err
	}
	for _, m := range plan.Migrations {
		fmt.Fprintf(w, "-- %s %s (%s)\n", m.Revision, m.Name, plan.Direction)
		for _, stmt := range sqls[m.Revision] {
			fmt.Fprintf(w, "%s;\n", stmt)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// Status reports every revision known on disk or in the database.
func (c *Client) Status(ctx context.Context) ([]RevisionStatus, error) {
	ctx, cancel := c.context(ctx)
	defer cancel()

	all, err := c.loadRevisions()
	if err != nil {
		return nil, err
	}
	return c.runner(false).Status(ctx, all)
}

// History returns the applied revisions recorded in the database.
func (c *Client) History(ctx context.Context) ([]engine.AppliedMigration, error) {
	ctx, cancel := c.context(ctx)
	defer cancel()
	return c.runner(false).History(ctx)
}

// Lock records the checksums of the current revision files in
// enumsync.lock. Migrate and Rollback refuse to run while the files differ
// from an existing lock file.
func (c *Client) Lock() error {
	return lockfile.Write(c.config.MigrationsDir)
}

// VerifyLock compares the revision files with enumsync.lock.
func (c *Client) VerifyLock() (*LockResult, error) {
	return lockfile.Check(c.config.MigrationsDir)
}
