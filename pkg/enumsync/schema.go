package enumsync

import (
	"context"

	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/drift"
	"github.com/hlop3z/enumsync/internal/engine"
	"github.com/hlop3z/enumsync/internal/schemafile"
	"github.com/hlop3z/enumsync/internal/strutil"
)

// Operation is one enum change: a create, a drop or a value sync.
type Operation = ast.EnumOperation

// Warning flags an operation that can lose data or fail against stored rows.
type Warning = engine.Warning

// DriftResult is the outcome of Check.
type DriftResult = drift.Result

// DiffResult holds the operations that would bring the database in line
// with the declared schema.
type DiffResult struct {
	Operations []Operation
	Warnings   []Warning

	// Unused lists declared enums no column uses. They are not reconciled.
	Unused []string
}

// IsEmpty reports whether the database already matches.
func (r *DiffResult) IsEmpty() bool {
	return len(r.Operations) == 0
}

// loadSchema reads the declared schema files.
func (c *Client) loadSchema() (*schemafile.Schema, error) {
	schema, err := schemafile.LoadDir(c.config.SchemasDir)
	if err != nil {
		return nil, err
	}
	for _, e := range schema.Unused() {
		c.logger.Warn("declared enum is not used by any column", "enum", strutil.QualifiedName(e.Schema, e.Name))
	}
	return schema, nil
}

// Diff compares the declared enums with the database and returns the
// operations a new revision would hold.
func (c *Client) Diff(ctx context.Context) (*DiffResult, error) {
	ctx, cancel := c.context(ctx)
	defer cancel()

	schema, err := c.loadSchema()
	if err != nil {
		return nil, err
	}
	return c.diff(ctx, schema)
}

func (c *Client) diff(ctx context.Context, schema *schemafile.Schema) (*DiffResult, error) {
	batch, err := c.comparator().Compare(ctx, c.schemas(), schema.Tables, nil)
	if err != nil {
		return nil, err
	}
	ops := engine.EnumOperations(batch)

	result := &DiffResult{
		Operations: ops,
		Warnings:   engine.LintOperations(ops),
	}
	for _, e := range schema.Unused() {
		result.Unused = append(result.Unused, strutil.QualifiedName(e.Schema, e.Name))
	}
	return result, nil
}

// Check compares the declared enums with the database catalog using the
// drift fingerprint. Enums outside the include filter are ignored.
func (c *Client) Check(ctx context.Context) (*DriftResult, error) {
	ctx, cancel := c.context(ctx)
	defer cancel()

	schema, err := c.loadSchema()
	if err != nil {
		return nil, err
	}
	expected, err := c.declaredSnapshot(ctx, schema)
	if err != nil {
		return nil, err
	}
	return c.detector().Detect(ctx, expected)
}

// declaredSnapshot collects the declared enum values per configured schema.
// Dialects without enumerated types declare nothing, like the comparator.
func (c *Client) declaredSnapshot(ctx context.Context, schema *schemafile.Schema) (drift.Snapshot, error) {
	snap := make(drift.Snapshot)
	if !c.dialect.SupportsNativeEnums() && !c.config.Reconcile.ForceDialectSupport {
		return snap, nil
	}
	for _, s := range c.schemas() {
		declared, err := engine.DeclaredEnums(ctx, schema.Tables, s, c.defaultSchema(),
			c.config.Reconcile.IncludeName, nil, nil)
		if err != nil {
			return nil, err
		}
		snap[s] = declared.Values
	}
	return snap, nil
}

// Fingerprint returns the drift fingerprint of the database enums in the
// configured schemas.
func (c *Client) Fingerprint(ctx context.Context) (string, error) {
	ctx, cancel := c.context(ctx)
	defer cancel()
	return c.detector().Fingerprint(ctx)
}
