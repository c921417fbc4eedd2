package dialect

// sqlite implements Dialect for SQLite. It has no enumerated types, so the
// comparator skips it; the runner still keeps its revision table here.
type sqlite struct{}

// SQLite returns the SQLite dialect.
func SQLite() Dialect {
	return &sqlite{}
}

func (d *sqlite) Name() string {
	return "sqlite"
}

func (d *sqlite) DefaultSchema() string {
	return "main"
}

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

// SQLite accepts unquoted identifiers case-insensitively, so anything that is
// not plain lower-case gets quoted.
func (d *sqlite) QuoteIdent(name string) string {
	if isPlainIdent(name, pgReserved) {
		return name
	}
	return quoteIdentAlways(name)
}

func (d *sqlite) QuoteLiteral(s string) string {
	return quoteLiteral(s)
}

func (d *sqlite) Qualify(schema, name string) string {
	if schema == "" || schema == d.DefaultSchema() {
		return d.QuoteIdent(name)
	}
	return d.QuoteIdent(schema) + "." + d.QuoteIdent(name)
}

func (d *sqlite) Placeholder(index int) string {
	return "?"
}

// -----------------------------------------------------------------------------
// Types
// -----------------------------------------------------------------------------

func (d *sqlite) TimestampType() string {
	return "TEXT"
}

func (d *sqlite) CurrentTimestamp() string {
	return "datetime('now')"
}

// -----------------------------------------------------------------------------
// Feature support
// -----------------------------------------------------------------------------

func (d *sqlite) SupportsNativeEnums() bool {
	return false
}

func (d *sqlite) SupportsTransactionalDDL() bool {
	return true
}
