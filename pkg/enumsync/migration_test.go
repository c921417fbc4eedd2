package enumsync

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/engine"
	"github.com/hlop3z/enumsync/internal/migration"
	"github.com/hlop3z/enumsync/internal/testutil"
)

// newSQLiteClient returns a client over an in-memory SQLite database, which
// has no enumerated types.
func newSQLiteClient(t *testing.T) (*Client, string) {
	t.Helper()

	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "schemas", "orders.yaml"), ordersSchema)

	client, err := New(
		WithDB(testutil.SetupSQLite(t)),
		WithDialect("sqlite"),
		WithSchemasDir(filepath.Join(root, "schemas")),
		WithMigrationsDir(filepath.Join(root, "migrations")),
		WithLogger(discardLogger()),
	)
	testutil.AssertNoError(t, err)
	return client, root
}

func writeMoodRevision(t *testing.T, root string) {
	t.Helper()
	op := &ast.CreateEnum{EnumOp: ast.EnumOp{Name: "mood"}, Values: []string{"sad", "ok"}}
	f := migration.New("20260101120000", "add mood", "", []ast.EnumOperation{op})
	if _, err := migration.Write(filepath.Join(root, "migrations"), f); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
}

func TestGenerateNoChangesOnSQLite(t *testing.T) {
	client, root := newSQLiteClient(t)

	_, err := client.Generate(context.Background(), "nothing")
	if !errors.Is(err, ErrNoChanges) {
		t.Fatalf("Generate() error = %v, want ErrNoChanges", err)
	}
	files, err := migration.LoadDir(filepath.Join(root, "migrations"))
	if err != nil || len(files) != 0 {
		t.Errorf("LoadDir() = %d files, %v; want none", len(files), err)
	}
}

func TestCheckOnSQLite(t *testing.T) {
	client, _ := newSQLiteClient(t)

	result, err := client.Check(context.Background())
	testutil.AssertNoError(t, err)
	if result.HasDrift {
		t.Error("Check() reported drift on a dialect without enums")
	}
}

func TestStatusAndFailedMigrate(t *testing.T) {
	client, root := newSQLiteClient(t)
	writeMoodRevision(t, root)
	ctx := context.Background()

	statuses, err := client.Status(ctx)
	testutil.AssertNoError(t, err)
	if len(statuses) != 1 || statuses[0].Status != engine.StatusPending || statuses[0].Name != "add_mood" {
		t.Fatalf("Status() = %+v, want one pending add_mood", statuses)
	}

	_, err = client.Migrate(ctx)
	testutil.AssertError(t, err, alerr.ErrMigrationFailed)
	var ae *alerr.Error
	if !errors.As(err, &ae) || alerr.GetErrorCode(ae.GetCause()) != alerr.EUnsupportedDialect {
		t.Errorf("Migrate() cause = %v, want %s", err, alerr.EUnsupportedDialect)
	}

	// the failed revision was rolled back
	statuses, err = client.Status(ctx)
	testutil.AssertNoError(t, err)
	if statuses[0].Status != engine.StatusPending {
		t.Errorf("Status() after failure = %v, want pending", statuses[0].Status)
	}
	history, err := client.History(ctx)
	if err != nil || len(history) != 0 {
		t.Errorf("History() = %v, %v; want empty", history, err)
	}
}

func TestDryRunOnSQLite(t *testing.T) {
	client, root := newSQLiteClient(t)
	writeMoodRevision(t, root)

	var out bytes.Buffer
	_, err := client.Migrate(context.Background(), DryRunTo(&out))
	testutil.AssertError(t, err, alerr.EUnsupportedDialect)
	if out.Len() != 0 {
		t.Errorf("dry run wrote %q before failing", out.String())
	}
}

func TestMigrateNothingPending(t *testing.T) {
	client, _ := newSQLiteClient(t)
	ctx := context.Background()

	applied, err := client.Migrate(ctx)
	if err != nil || len(applied) != 0 {
		t.Errorf("Migrate() = %v, %v; want nothing applied", applied, err)
	}
	rolledBack, err := client.Rollback(ctx, Steps(2))
	if err != nil || len(rolledBack) != 0 {
		t.Errorf("Rollback() = %v, %v; want nothing rolled back", rolledBack, err)
	}
}

func TestMigrateRefusesEditedRevision(t *testing.T) {
	client, root := newSQLiteClient(t)
	writeMoodRevision(t, root)

	if err := client.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	result, err := client.VerifyLock()
	testutil.AssertNoError(t, err)
	if !result.Valid() {
		t.Fatalf("VerifyLock() = %+v, want valid", result)
	}

	path := filepath.Join(root, "migrations", "20260101120000_add_mood.yaml")
	testutil.WriteFile(t, path, "revision: \"20260101120000\"\nname: add_mood\nupgrade: []\n")

	_, err = client.Migrate(context.Background())
	testutil.AssertError(t, err, alerr.ErrMigrationChecksum)

	result, err = client.VerifyLock()
	testutil.AssertNoError(t, err)
	if len(result.Modified) != 1 {
		t.Errorf("VerifyLock().Modified = %v, want the edited revision", result.Modified)
	}
}
