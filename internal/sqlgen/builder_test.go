package sqlgen

import (
	"testing"

	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/dialect"
	"github.com/hlop3z/enumsync/internal/testutil"
)

var pg = dialect.Postgres()

// -----------------------------------------------------------------------------
// Builder Tests
// -----------------------------------------------------------------------------

func TestBuilder(t *testing.T) {
	got := New(pg).AlterTable("public", "order").AlterColumn("status").
		Raw(" SET DEFAULT ").Literal("it's").String()
	want := `ALTER TABLE public."order" ALTER COLUMN status SET DEFAULT 'it''s'`
	if got != want {
		t.Errorf("Builder.String() = %q, want %q", got, want)
	}
}

func TestBuilderLiterals(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"empty", nil, ""},
		{"single", []string{"a"}, "'a'"},
		{"several", []string{"a", "b", "c"}, "'a', 'b', 'c'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(pg).Literals(tt.values).String(); got != tt.want {
				t.Errorf("Literals() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Type Statement Tests
// -----------------------------------------------------------------------------

func TestTypeStatements(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			"create",
			CreateType(pg, "public", "order_status", []string{"active", "inactive"}),
			"CREATE TYPE public.order_status AS ENUM('active', 'inactive')",
		},
		{
			"create without schema",
			CreateType(pg, "", "Mood", []string{"ok"}),
			`CREATE TYPE "Mood" AS ENUM('ok')`,
		},
		{
			"rename",
			RenameType(pg, "public", "order_status", OldName("order_status")),
			"ALTER TYPE public.order_status RENAME TO order_status_old",
		},
		{
			"drop",
			DropType(pg, "public", "order_status_old"),
			"DROP TYPE public.order_status_old",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertSQL(t, tt.got, tt.want)
		})
	}
}

// -----------------------------------------------------------------------------
// Comparison Operator Tests
// -----------------------------------------------------------------------------

func TestCreateComparisonFunction(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		op      ComparisonOperator
		renames []ast.RenamePair
		want    string
	}{
		{
			name:   "equals without renames",
			schema: "public",
			op:     ComparisonOperators[0],
			want: "CREATE FUNCTION public.new_old_equals(new_enum_val public.order_status, old_enum_val public.order_status_old) " +
				"RETURNS boolean AS $$ SELECT new_enum_val::text = old_enum_val::text; $$ LANGUAGE SQL IMMUTABLE",
		},
		{
			name:    "not equals with rename",
			op:      ComparisonOperators[1],
			renames: []ast.RenamePair{{Old: "passive", New: "inactive"}},
			want: "CREATE FUNCTION new_old_not_equals(new_enum_val order_status, old_enum_val order_status_old) " +
				"RETURNS boolean AS $$ SELECT new_enum_val::text <> CASE WHEN old_enum_val::text = 'passive' THEN 'inactive' " +
				"ELSE old_enum_val::text END; $$ LANGUAGE SQL IMMUTABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertSQL(t, CreateComparisonFunction(pg, tt.schema, "order_status", tt.op, tt.renames), tt.want)
		})
	}
}

func TestCreateOperator(t *testing.T) {
	testutil.AssertSQL(t, CreateOperator(pg, "public", "order_status", ComparisonOperators[0]),
		"CREATE OPERATOR public.= (leftarg = public.order_status, rightarg = public.order_status_old, procedure = public.new_old_equals)")
	testutil.AssertSQL(t, CreateOperator(pg, "", "order_status", ComparisonOperators[1]),
		"CREATE OPERATOR <> (leftarg = order_status, rightarg = order_status_old, procedure = new_old_not_equals)")
}

func TestDropComparisonFunction(t *testing.T) {
	testutil.AssertSQL(t, DropComparisonFunction(pg, "public", "order_status", ComparisonOperators[0]),
		"DROP FUNCTION public.new_old_equals(new_enum_val public.order_status, old_enum_val public.order_status_old) CASCADE")
}

// -----------------------------------------------------------------------------
// Column Statement Tests
// -----------------------------------------------------------------------------

func TestDefaultStatements(t *testing.T) {
	if got, want := DropDefault(pg, "public", "orders", "status"),
		"ALTER TABLE public.orders ALTER COLUMN status DROP DEFAULT"; got != want {
		t.Errorf("DropDefault() = %q, want %q", got, want)
	}
	if got, want := SetDefault(pg, "public", "orders", "status", "'active'::public.order_status"),
		"ALTER TABLE public.orders ALTER COLUMN status SET DEFAULT 'active'::public.order_status"; got != want {
		t.Errorf("SetDefault() = %q, want %q", got, want)
	}
	if got, want := DropIndex(`public."ix orders"`), `DROP INDEX IF EXISTS public."ix orders"`; got != want {
		t.Errorf("DropIndex() = %q, want %q", got, want)
	}
}

func TestAlterColumnType(t *testing.T) {
	passive := []ast.RenamePair{{Old: "passive", New: "inactive"}}

	tests := []struct {
		name    string
		kind    ast.ColumnKind
		renames []ast.RenamePair
		want    string
	}{
		{
			name: "common without renames",
			kind: ast.ColumnCommon,
			want: "ALTER TABLE sales.orders ALTER COLUMN status TYPE public.order_status USING status::text::public.order_status",
		},
		{
			name:    "common with rename",
			kind:    ast.ColumnCommon,
			renames: passive,
			want: "ALTER TABLE sales.orders ALTER COLUMN status TYPE public.order_status USING CASE " +
				"WHEN status::text = 'passive' THEN 'inactive'::public.order_status " +
				"ELSE status::text::public.order_status END",
		},
		{
			name: "array without renames",
			kind: ast.ColumnArray,
			want: "ALTER TABLE sales.orders ALTER COLUMN status TYPE public.order_status[] USING status::text[]::public.order_status[]",
		},
		{
			name:    "array with two renames",
			kind:    ast.ColumnArray,
			renames: []ast.RenamePair{{Old: "a", New: "b"}, {Old: "c", New: "d"}},
			want: "ALTER TABLE sales.orders ALTER COLUMN status TYPE public.order_status[] USING " +
				"array_replace(array_replace(status::text[], 'a', 'b'), 'c', 'd')::public.order_status[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AlterColumnType(pg, "sales", "orders", "status", tt.kind, "public", "order_status", tt.renames)
			testutil.AssertSQL(t, got, tt.want)
		})
	}
}
