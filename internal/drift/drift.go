package drift

import (
	"context"

	"github.com/hlop3z/enumsync/internal/ast"
)

// Catalog lists the enums defined in a schema.
type Catalog interface {
	DefinedEnums(ctx context.Context, schema string, include func(string) bool) (ast.EnumValues, error)
}

// Detector compares an expected enum snapshot against the live catalog.
type Detector struct {
	catalog Catalog
	schemas []string
	include func(string) bool
}

// NewDetector creates a detector over the given schemas. A nil include
// keeps every enum.
func NewDetector(catalog Catalog, schemas []string, include func(string) bool) *Detector {
	return &Detector{catalog: catalog, schemas: schemas, include: include}
}

// Result represents the complete drift detection result.
type Result struct {
	// HasDrift is true if any differences were found
	HasDrift bool

	// ExpectedHash is the merkle root of the expected snapshot
	ExpectedHash string

	// ActualHash is the merkle root of the catalog snapshot
	ActualHash string

	// Comparison contains detailed comparison results
	Comparison *HashComparison

	Expected Snapshot
	Actual   Snapshot
}

// Snapshot reads the enums of every configured schema.
func (d *Detector) Snapshot(ctx context.Context) (Snapshot, error) {
	snap := make(Snapshot, len(d.schemas))
	for _, schema := range d.schemas {
		enums, err := d.catalog.DefinedEnums(ctx, schema, d.include)
		if err != nil {
			return nil, err
		}
		snap[schema] = enums
	}
	return snap, nil
}

// Fingerprint returns the merkle root of the live catalog.
func (d *Detector) Fingerprint(ctx context.Context) (string, error) {
	snap, err := d.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	h, err := ComputeHash(snap)
	if err != nil {
		return "", err
	}
	return h.Root, nil
}

// Detect compares expected against the live catalog.
func (d *Detector) Detect(ctx context.Context, expected Snapshot) (*Result, error) {
	actual, err := d.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	comparison, err := Compare(expected, actual)
	if err != nil {
		return nil, err
	}

	return &Result{
		HasDrift:     !comparison.Match,
		ExpectedHash: comparison.ExpectedRoot,
		ActualHash:   comparison.ActualRoot,
		Comparison:   comparison,
		Expected:     expected,
		Actual:       actual,
	}, nil
}

// CheckBase compares a recorded base fingerprint with the live catalog. An
// empty base always matches.
func (d *Detector) CheckBase(ctx context.Context, base string) (actual string, ok bool, err error) {
	if base == "" {
		return "", true, nil
	}
	actual, err = d.Fingerprint(ctx)
	if err != nil {
		return "", false, err
	}
	return actual, actual == base, nil
}
