package enumsync

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/drift"
	"github.com/hlop3z/enumsync/internal/migration"
	"github.com/hlop3z/enumsync/internal/testutil"
)

const ordersSchema = `
enums:
  order_status: [active, passive, banned]
tables:
  orders:
    columns:
      status: {enum: order_status, default: "'active'"}
      note: text
`

// newMockClient returns a postgres client over sqlmock with a schemas
// directory holding ordersSchema.
func newMockClient(t *testing.T) (*Client, sqlmock.Sqlmock, string) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "schemas", "orders.yaml"), ordersSchema)

	client, err := New(
		WithDB(db),
		WithDialect("postgres"),
		WithSchemasDir(filepath.Join(root, "schemas")),
		WithMigrationsDir(filepath.Join(root, "migrations")),
		WithLogger(discardLogger()),
	)
	testutil.AssertNoError(t, err)
	return client, mock, root
}

func expectDefinedEnums(mock sqlmock.Sqlmock, name, labels string) {
	mock.ExpectQuery("FROM pg_catalog.pg_type t").
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"typname", "labels"}).AddRow(name, labels))
}

func expectColumnDefault(mock sqlmock.Sqlmock, def string) {
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("public", "orders", "status").
		WillReturnRows(sqlmock.NewRows([]string{"column_default"}).AddRow(def))
}

func TestDiff(t *testing.T) {
	client, mock, _ := newMockClient(t)

	expectDefinedEnums(mock, "order_status", "{active,passive}")
	expectColumnDefault(mock, "'active'::order_status")

	result, err := client.Diff(context.Background())
	testutil.AssertNoError(t, err)
	if len(result.Operations) != 1 {
		t.Fatalf("Diff() returned %d operations, want 1", len(result.Operations))
	}
	op, ok := result.Operations[0].(*ast.SyncEnumValues)
	if !ok {
		t.Fatalf("Diff() operation = %T, want *ast.SyncEnumValues", result.Operations[0])
	}
	if want := []string{"active", "passive", "banned"}; !slices.Equal(op.NewValues, want) {
		t.Errorf("NewValues = %v, want %v", op.NewValues, want)
	}
	if len(op.AffectedColumns) != 1 {
		t.Fatalf("AffectedColumns = %v, want one column", op.AffectedColumns)
	}
	ref := op.AffectedColumns[0]
	if ref.Table != "orders" || ref.Column != "status" || ref.ExistingDefault == nil || *ref.ExistingDefault != "'active'::order_status" {
		t.Errorf("AffectedColumns[0] = %+v", ref)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none for an added value", result.Warnings)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGenerate(t *testing.T) {
	client, mock, root := newMockClient(t)

	original := now
	now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = original })

	expectDefinedEnums(mock, "order_status", "{active,passive}")
	expectColumnDefault(mock, "'active'::order_status")
	expectDefinedEnums(mock, "order_status", "{active,passive}")

	result, err := client.Generate(context.Background(), "add banned")
	testutil.AssertNoError(t, err)

	wantPath := filepath.Join(root, "migrations", "20260101120000_add_banned.yaml")
	if result.Path != wantPath {
		t.Errorf("Generate() path = %q, want %q", result.Path, wantPath)
	}

	f, err := migration.Load(result.Path)
	testutil.AssertNoError(t, err)
	base, _ := drift.Fingerprint("public", ast.EnumValues{"order_status": {"active", "passive"}})
	if f.Base != base {
		t.Errorf("Base = %q, want %q", f.Base, base)
	}
	if len(f.Downgrade) != 1 {
		t.Fatalf("Downgrade has %d operations, want 1", len(f.Downgrade))
	}
	down := f.Downgrade[0].(*ast.SyncEnumValues)
	if !slices.Equal(down.NewValues, []string{"active", "passive"}) {
		t.Errorf("downgrade NewValues = %v", down.NewValues)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		labels    string
		wantDrift bool
	}{
		{"in sync", "{active,passive,banned}", false},
		{"changed", "{active,passive}", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock, _ := newMockClient(t)
			expectDefinedEnums(mock, "order_status", tt.labels)

			result, err := client.Check(context.Background())
			testutil.AssertNoError(t, err)
			if result.HasDrift != tt.wantDrift {
				t.Errorf("Check() HasDrift = %v, want %v", result.HasDrift, tt.wantDrift)
			}
			if tt.wantDrift && !slices.Contains(result.Comparison.Modified, "public.order_status") {
				t.Errorf("Check() modified = %v, want public.order_status", result.Comparison.Modified)
			}
		})
	}
}
