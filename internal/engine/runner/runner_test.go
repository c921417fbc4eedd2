package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/dialect"
	"github.com/hlop3z/enumsync/internal/drift"
	"github.com/hlop3z/enumsync/internal/engine"
	"github.com/hlop3z/enumsync/internal/testutil"
)

var revisionColumns = []string{"revision", "name", "checksum", "applied_at", "exec_time_ms"}

func newMockRunner(t *testing.T, opts ...Option) (*Runner, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunner(db, dialect.Postgres(), append([]Option{WithLogger(logger)}, opts...)...), mock
}

func expectApplied(mock sqlmock.Sqlmock, revisions ...string) {
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS enumsync_revisions").WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows(revisionColumns)
	for _, rev := range revisions {
		rows.AddRow(rev, "rev_"+rev, "sum_"+rev, time.Now(), 3)
	}
	mock.ExpectQuery("SELECT revision, name, checksum, applied_at, exec_time_ms FROM enumsync_revisions").WillReturnRows(rows)
}

func migrations() []engine.Migration {
	mood := &ast.CreateEnum{EnumOp: ast.EnumOp{Schema: "public", Name: "mood"}, Values: []string{"sad", "ok"}}
	color := &ast.CreateEnum{EnumOp: ast.EnumOp{Schema: "public", Name: "color"}, Values: []string{"red"}}
	return []engine.Migration{
		{
			Revision: "001", Name: "rev_001", Checksum: "sum_001",
			Upgrade:   []ast.EnumOperation{mood},
			Downgrade: ast.ReverseAll([]ast.EnumOperation{mood}),
		},
		{
			Revision: "002", Name: "rev_002", Checksum: "sum_002",
			Upgrade:   []ast.EnumOperation{color},
			Downgrade: ast.ReverseAll([]ast.EnumOperation{color}),
		},
	}
}

func TestNewRunnerNil(t *testing.T) {
	if r := NewRunner(nil, dialect.Postgres()); r != nil {
		t.Error("NewRunner(nil db) should return nil")
	}
}

func TestApply(t *testing.T) {
	r, mock := newMockRunner(t)

	expectApplied(mock, "001")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TYPE public.color AS ENUM('red')")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO enumsync_revisions").
		WithArgs("002", "rev_002", "sum_002", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := r.Apply(context.Background(), migrations(), "")
	testutil.AssertNoError(t, err)
	if len(applied) != 1 || applied[0].Revision != "002" {
		t.Errorf("Apply() applied %v, want [002]", applied)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApplyFailureRollsBack(t *testing.T) {
	r, mock := newMockRunner(t)
	boom := errors.New("permission denied for schema public")

	expectApplied(mock)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TYPE public.mood AS ENUM('sad', 'ok')")).WillReturnError(boom)
	mock.ExpectRollback()

	_, err := r.Apply(context.Background(), migrations(), "")
	testutil.AssertError(t, err, alerr.ErrMigrationFailed)
	if !errors.Is(err, boom) {
		t.Errorf("Apply() error does not wrap the statement error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRollback(t *testing.T) {
	r, mock := newMockRunner(t)

	expectApplied(mock, "001", "002")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DROP TYPE public.color")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM enumsync_revisions").WithArgs("002").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rolled, err := r.Rollback(context.Background(), migrations(), 1)
	testutil.AssertNoError(t, err)
	if len(rolled) != 1 || rolled[0].Revision != "002" {
		t.Errorf("Rollback() = %v, want [002]", rolled)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestApplyChecksumMismatch(t *testing.T) {
	r, mock := newMockRunner(t)
	expectApplied(mock, "001")

	all := migrations()
	all[0].Checksum = "edited"

	_, err := r.Apply(context.Background(), all, "")
	testutil.AssertError(t, err, alerr.ErrMigrationChecksum)
}

// staticCatalog reports one fixed set of enums.
type staticCatalog ast.EnumValues

func (c staticCatalog) DefinedEnums(ctx context.Context, schema string, include func(string) bool) (ast.EnumValues, error) {
	return ast.EnumValues(c), nil
}

func TestApplyDrift(t *testing.T) {
	live := staticCatalog{"mood": {"sad", "ok", "happy"}}
	detector := drift.NewDetector(live, []string{"public"}, nil)
	base, _ := drift.Fingerprint("public", ast.EnumValues{"mood": {"sad", "ok"}})

	all := migrations()[1:]
	all[0].Base = base

	t.Run("strict", func(t *testing.T) {
		r, mock := newMockRunner(t, WithDriftDetector(detector), WithStrict(true))
		expectApplied(mock, "001")

		_, err := r.Apply(context.Background(), all, "")
		testutil.AssertError(t, err, alerr.ErrDrift)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("warn", func(t *testing.T) {
		r, mock := newMockRunner(t, WithDriftDetector(detector))
		expectApplied(mock, "001")
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("CREATE TYPE public.color")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO enumsync_revisions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		if _, err := r.Apply(context.Background(), all, ""); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	})
}

func TestStatus(t *testing.T) {
	r, mock := newMockRunner(t)
	expectApplied(mock, "001")

	statuses, err := r.Status(context.Background(), migrations())
	testutil.AssertNoError(t, err)

	var got []string
	for _, s := range statuses {
		got = append(got, s.Revision+":"+s.Status.String())
	}
	if want := []string{"001:applied", "002:pending"}; !slices.Equal(got, want) {
		t.Errorf("Status() = %v, want %v", got, want)
	}
}

func TestDryRun(t *testing.T) {
	r, mock := newMockRunner(t)
	expectApplied(mock, "001")

	plan, err := r.Plan(context.Background(), migrations(), "", engine.Up, 0)
	testutil.AssertNoError(t, err)

	sqls, err := r.DryRun(context.Background(), plan)
	testutil.AssertNoError(t, err)
	if want := []string{"CREATE TYPE public.color AS ENUM('red')"}; !slices.Equal(sqls["002"], want) {
		t.Errorf("DryRun()[002] = %v, want %v", sqls["002"], want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("DryRun() touched the database: %v", err)
	}
}
