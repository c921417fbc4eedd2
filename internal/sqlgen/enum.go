package sqlgen

import (
	"github.com/hlop3z/enumsync/internal/ast"
	"github.com/hlop3z/enumsync/internal/dialect"
)

// OldSuffix is appended to an enum's name while it is being replaced.
const OldSuffix = "_old"

// Comparison operators installed between the new and the old type.
const (
	EqualsFunc    = "new_old_equals"
	NotEqualsFunc = "new_old_not_equals"
)

// ComparisonOperator pairs an operator with its backing function.
type ComparisonOperator struct {
	Operator string
	Function string
}

// ComparisonOperators lists the temporary operators in creation order.
var ComparisonOperators = []ComparisonOperator{
	{Operator: "=", Function: EqualsFunc},
	{Operator: "<>", Function: NotEqualsFunc},
}

// OldName returns the temporary name of an enum being replaced.
func OldName(enum string) string {
	return enum + OldSuffix
}

// ----------------------------------------------------------------------------
// Type statements
// ----------------------------------------------------------------------------

// CreateType renders CREATE TYPE schema.name AS ENUM('a', 'b').
func CreateType(f dialect.SQLFormatter, schema, name string, values []string) string {
	return New(f).Raw("CREATE TYPE ").Qualified(schema, name).
		Raw(" AS ENUM(").Literals(values).Raw(")").String()
}

// RenameType renders ALTER TYPE schema.name RENAME TO new_name.
func RenameType(f dialect.SQLFormatter, schema, name, newName string) string {
	return New(f).AlterType(schema, name).Raw(" RENAME TO ").Ident(newName).String()
}

// DropType renders DROP TYPE schema.name.
func DropType(f dialect.SQLFormatter, schema, name string) string {
	return New(f).Raw("DROP TYPE ").Qualified(schema, name).String()
}

// ----------------------------------------------------------------------------
// Comparison operators
// ----------------------------------------------------------------------------

func comparisonSignature(b *Builder, schema, enum, fn string) *Builder {
	return b.Qualified(schema, fn).
		Raw("(new_enum_val ").Qualified(schema, enum).
		Raw(", old_enum_val ").Qualified(schema, OldName(enum)).
		Raw(")")
}

// CreateComparisonFunction renders the SQL function behind one temporary
// operator. With renames the old value is mapped to its new label before the
// text comparison.
func CreateComparisonFunction(f dialect.SQLFormatter, schema, enum string, op ComparisonOperator, renames []ast.RenamePair) string {
	b := New(f).Raw("CREATE FUNCTION ")
	comparisonSignature(b, schema, enum, op.Function)
	b.Raw(" RETURNS boolean AS $$ SELECT new_enum_val::text ").Raw(op.Operator).Space()
	if len(renames) == 0 {
		b.Raw("old_enum_val::text")
	} else {
		b.Raw("CASE")
		for _, r := range renames {
			b.Raw(" WHEN old_enum_val::text = ").Literal(r.Old).Raw(" THEN ").Literal(r.New)
		}
		b.Raw(" ELSE old_enum_val::text END")
	}
	return b.Raw("; $$ LANGUAGE SQL IMMUTABLE").String()
}

// CreateOperator renders CREATE OPERATOR between the new and old type.
func CreateOperator(f dialect.SQLFormatter, schema, enum string, op ComparisonOperator) string {
	b := New(f).Raw("CREATE OPERATOR ")
	if schema != "" {
		b.Ident(schema).Raw(".")
	}
	return b.Raw(op.Operator).
		Raw(" (leftarg = ").Qualified(schema, enum).
		Raw(", rightarg = ").Qualified(schema, OldName(enum)).
		Raw(", procedure = ").Qualified(schema, op.Function).
		Raw(")").String()
}

// DropComparisonFunction renders DROP FUNCTION ... CASCADE, which also drops
// the operator built on it.
func DropComparisonFunction(f dialect.SQLFormatter, schema, enum string, op ComparisonOperator) string {
	b := New(f).Raw("DROP FUNCTION ")
	comparisonSignature(b, schema, enum, op.Function)
	return b.Raw(" CASCADE").String()
}

// ----------------------------------------------------------------------------
// Indexes
// ----------------------------------------------------------------------------

// DropIndex renders DROP INDEX IF EXISTS. The name is used verbatim since
// the scanner returns it already quoted and qualified.
func DropIndex(qualifiedName string) string {
	return "DROP INDEX IF EXISTS " + qualifiedName
}

// ----------------------------------------------------------------------------
// Columns
// ----------------------------------------------------------------------------

// DropDefault renders ALTER TABLE ... ALTER COLUMN ... DROP DEFAULT.
func DropDefault(f dialect.SQLFormatter, schema, table, column string) string {
	return New(f).AlterTable(schema, table).AlterColumn(column).Raw(" DROP DEFAULT").String()
}

// SetDefault renders ALTER TABLE ... ALTER COLUMN ... SET DEFAULT expr.
// expr is written as-is.
func SetDefault(f dialect.SQLFormatter, schema, table, column, expr string) string {
	return New(f).AlterTable(schema, table).AlterColumn(column).Raw(" SET DEFAULT ").Raw(expr).String()
}

// AlterColumnType renders the cast of one column from the old enum to the new
// one:
//
//	USING col::text::schema.enum
//	USING CASE WHEN col::text = 'old' THEN 'new'::schema.enum ... ELSE col::text::schema.enum END
//	USING array_replace(col::text[], 'old', 'new')::schema.enum[]
func AlterColumnType(f dialect.SQLFormatter, tableSchema, table, column string, kind ast.ColumnKind, enumSchema, enum string, renames []ast.RenamePair) string {
	typ := f.Qualify(enumSchema, enum)
	col := f.QuoteIdent(column)

	b := New(f).AlterTable(tableSchema, table).AlterColumn(column).Raw(" TYPE ").Raw(typ)

	if kind == ast.ColumnArray {
		cast := col + "::text[]"
		for _, r := range renames {
			cast = "array_replace(" + cast + ", " + f.QuoteLiteral(r.Old) + ", " + f.QuoteLiteral(r.New) + ")"
		}
		return b.Raw("[] USING ").Raw(cast).Raw("::").Raw(typ).Raw("[]").String()
	}

	b.Raw(" USING ")
	if len(renames) == 0 {
		return b.Raw(col).Raw("::text::").Raw(typ).String()
	}
	b.Raw("CASE")
	for _, r := range renames {
		b.Raw(" WHEN ").Raw(col).Raw("::text = ").Literal(r.Old).
			Raw(" THEN ").Literal(r.New).Raw("::").Raw(typ)
	}
	return b.Raw(" ELSE ").Raw(col).Raw("::text::").Raw(typ).Raw(" END").String()
}
