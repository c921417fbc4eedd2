package enumsync

import (
	"slices"
	"strings"
	"testing"

	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/dialect"
	"github.com/hlop3z/enumsync/internal/testutil"
)

func strptr(s string) *string { return &s }

func renameOp() *ast.SyncEnumValues {
	return &ast.SyncEnumValues{
		EnumOp:    ast.EnumOp{Schema: "public", Name: "order_status"},
		OldValues: []string{"active", "passive"},
		NewValues: []string{"active", "inactive"},
		AffectedColumns: []ast.TableReference{
			{Table: "orders", Column: "history", Kind: ast.ColumnArray},
			{Table: "orders", Column: "status", Kind: ast.ColumnCommon, ExistingDefault: strptr("'passive'::order_status")},
		},
		Renames: []ast.RenamePair{{Old: "passive", New: "inactive"}},
	}
}

func TestBuildSyncPlan(t *testing.T) {
	op := renameOp()
	indexes := []ast.TableIndex{{
		Name:       "public.orders_passive_idx",
		Definition: "CREATE INDEX orders_passive_idx ON public.orders USING btree (id) WHERE (status = 'passive'::order_status)",
	}}

	plan := BuildSyncPlan(dialect.Postgres(), op, ResolveColumns(op, nil), indexes)

	want := []string{
		"ALTER TYPE public.order_status RENAME TO order_status_old",
		"CREATE TYPE public.order_status AS ENUM('active', 'inactive')",
		"CREATE FUNCTION public.new_old_equals(new_enum_val public.order_status, old_enum_val public.order_status_old) RETURNS boolean AS $$ SELECT new_enum_val::text = CASE WHEN old_enum_val::text = 'passive' THEN 'inactive' ELSE old_enum_val::text END; $$ LANGUAGE SQL IMMUTABLE",
		"CREATE OPERATOR public.= (leftarg = public.order_status, rightarg = public.order_status_old, procedure = public.new_old_equals)",
		"CREATE FUNCTION public.new_old_not_equals(new_enum_val public.order_status, old_enum_val public.order_status_old) RETURNS boolean AS $$ SELECT new_enum_val::text <> CASE WHEN old_enum_val::text = 'passive' THEN 'inactive' ELSE old_enum_val::text END; $$ LANGUAGE SQL IMMUTABLE",
		"CREATE OPERATOR public.<> (leftarg = public.order_status, rightarg = public.order_status_old, procedure = public.new_old_not_equals)",
		"DROP INDEX IF EXISTS public.orders_passive_idx",
		"ALTER TABLE public.orders ALTER COLUMN history TYPE public.order_status[] USING array_replace(history::text[], 'passive', 'inactive')::public.order_status[]",
		"ALTER TABLE public.orders ALTER COLUMN status DROP DEFAULT",
		"ALTER TABLE public.orders ALTER COLUMN status TYPE public.order_status USING CASE WHEN status::text = 'passive' THEN 'inactive'::public.order_status ELSE status::text::public.order_status END",
		"ALTER TABLE public.orders ALTER COLUMN status SET DEFAULT 'inactive'::public.order_status",
		"CREATE INDEX orders_passive_idx ON public.orders USING btree (id) WHERE (status = 'inactive'::order_status)",
		"DROP FUNCTION public.new_old_equals(new_enum_val public.order_status, old_enum_val public.order_status_old) CASCADE",
		"DROP FUNCTION public.new_old_not_equals(new_enum_val public.order_status, old_enum_val public.order_status_old) CASCADE",
		"DROP TYPE public.order_status_old",
	}

	testutil.AssertStatements(t, plan.SQL(), want)
}

func TestBuildSyncPlanPhases(t *testing.T) {
	op := renameOp()
	plan := BuildSyncPlan(dialect.Postgres(), op, ResolveColumns(op, nil), nil)

	var phases []Phase
	for _, s := range plan.Statements {
		if len(phases) == 0 || phases[len(phases)-1] != s.Phase {
			phases = append(phases, s.Phase)
		}
	}
	want := []Phase{
		PhaseRenameOld, PhaseCreateNew, PhaseOperators,
		PhaseMigrateColumns, PhaseRestoreDefaults, PhaseCleanup,
	}
	if !slices.Equal(phases, want) {
		t.Errorf("phases = %v, want %v", phases, want)
	}

	casts := 0
	for _, s := range plan.Statements {
		if s.Column != nil {
			casts++
			if !strings.Contains(s.SQL, " TYPE ") {
				t.Errorf("statement with a column is not a cast: %s", s.SQL)
			}
		}
	}
	if casts != len(op.AffectedColumns) {
		t.Errorf("cast statements = %d, want %d", casts, len(op.AffectedColumns))
	}
}

func TestBuildSyncPlanWithoutRenames(t *testing.T) {
	op := &ast.SyncEnumValues{
		EnumOp:    ast.EnumOp{Schema: "paint", Name: "color"},
		OldValues: []string{"red"},
		NewValues: []string{"red", "blue"},
		AffectedColumns: []ast.TableReference{
			{Schema: "shop", Table: "items", Column: "color", Kind: ast.ColumnCommon},
		},
	}
	plan := BuildSyncPlan(dialect.Postgres(), op, ResolveColumns(op, nil), nil)

	sql := strings.Join(plan.SQL(), "\n")
	testutil.AssertSQLContains(t, sql, "SELECT new_enum_val::text = old_enum_val::text;")
	testutil.AssertSQLContains(t, sql, "ALTER TABLE shop.items ALTER COLUMN color TYPE paint.color USING color::text::paint.color")
	if strings.Contains(sql, "DEFAULT") {
		t.Errorf("plan touches defaults of a column without one:\n%s", sql)
	}
}

func TestResolveColumns(t *testing.T) {
	op := &ast.SyncEnumValues{
		EnumOp: ast.EnumOp{Schema: "public", Name: "mood"},
		AffectedColumns: []ast.TableReference{
			{Table: "people", Column: "mood", Kind: ast.ColumnCommon, LookupDefault: true},
			{Schema: "other", Table: "pets", Column: "mood", Kind: ast.ColumnCommon, ExistingDefault: strptr("'ok'::mood")},
			{Table: "logs", Column: "mood", Kind: ast.ColumnCommon, LookupDefault: true},
		},
	}
	defaults := map[ast.RefKey]*string{
		{Table: "people", Column: "mood"}: strptr("'sad'::mood"),
	}

	cols := ResolveColumns(op, defaults)

	if cols[0].Schema != "public" || cols[0].Default == nil || *cols[0].Default != "'sad'::mood" {
		t.Errorf("cols[0] = %+v", cols[0])
	}
	if cols[1].Schema != "other" || cols[1].Default == nil || *cols[1].Default != "'ok'::mood" {
		t.Errorf("cols[1] = %+v", cols[1])
	}
	if cols[2].Default != nil {
		t.Errorf("cols[2].Default = %q, want nil", *cols[2].Default)
	}
}

func TestBuildCreateAndDropPlan(t *testing.T) {
	pg := dialect.Postgres()
	create := BuildCreatePlan(pg, &ast.CreateEnum{EnumOp: ast.EnumOp{Schema: "public", Name: "mood"}, Values: []string{"sad", "ok"}})
	testutil.AssertStatements(t, create.SQL(), []string{"CREATE TYPE public.mood AS ENUM('sad', 'ok')"})

	drop := BuildDropPlan(pg, &ast.DropEnum{EnumOp: ast.EnumOp{Name: "mood"}})
	testutil.AssertStatements(t, drop.SQL(), []string{"DROP TYPE mood"})
}

func TestPhaseString(t *testing.T) {
	if got := PhaseMigrateColumns.String(); got != "migrate_columns" {
		t.Errorf("PhaseMigrateColumns.String() = %q", got)
	}
	if got := Phase(99).String(); got != "unknown" {
		t.Errorf("Phase(99).String() = %q", got)
	}
}
