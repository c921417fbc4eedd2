// Package sqlgen builds the statements of the enum swap protocol. Every
// function is pure: it only formats text through a dialect.SQLFormatter.
package sqlgen

import (
	"strings"

	"github.com/hlop3z/enumsync/internal/dialect"
)

// Builder provides fluent SQL construction over a formatter.
type Builder struct {
	f   dialect.SQLFormatter
	buf strings.Builder
}

// New creates a Builder that quotes through f.
func New(f dialect.SQLFormatter) *Builder {
	return &Builder{f: f}
}

// ----------------------------------------------------------------------------
// DDL Helpers
// ----------------------------------------------------------------------------

// AlterTable appends "ALTER TABLE <schema.table>".
func (b *Builder) AlterTable(schema, table string) *Builder {
	b.buf.WriteString("ALTER TABLE ")
	b.buf.WriteString(b.f.Qualify(schema, table))
	return b
}

// AlterColumn appends " ALTER COLUMN <name>".
func (b *Builder) AlterColumn(name string) *Builder {
	b.buf.WriteString(" ALTER COLUMN ")
	b.buf.WriteString(b.f.QuoteIdent(name))
	return b
}

// AlterType appends "ALTER TYPE <schema.name>".
func (b *Builder) AlterType(schema, name string) *Builder {
	b.buf.WriteString("ALTER TYPE ")
	b.buf.WriteString(b.f.Qualify(schema, name))
	return b
}

// Ident appends a quoted identifier.
func (b *Builder) Ident(name string) *Builder {
	b.buf.WriteString(b.f.QuoteIdent(name))
	return b
}

// Qualified appends a quoted, schema-qualified name.
func (b *Builder) Qualified(schema, name string) *Builder {
	b.buf.WriteString(b.f.Qualify(schema, name))
	return b
}

// Literal appends a quoted string literal.
func (b *Builder) Literal(s string) *Builder {
	b.buf.WriteString(b.f.QuoteLiteral(s))
	return b
}

// Literals appends "'a', 'b', ...".
func (b *Builder) Literals(values []string) *Builder {
	for i, v := range values {
		if i > 0 {
			b.buf.WriteString(", ")
		}
		b.Literal(v)
	}
	return b
}

// ----------------------------------------------------------------------------
// Utilities
// ----------------------------------------------------------------------------

// Raw appends raw SQL without modification.
func (b *Builder) Raw(sql string) *Builder {
	b.buf.WriteString(sql)
	return b
}

// Space appends a single space.
func (b *Builder) Space() *Builder {
	b.buf.WriteString(" ")
	return b
}

// String returns the accumulated SQL.
func (b *Builder) String() string {
	return b.buf.String()
}
