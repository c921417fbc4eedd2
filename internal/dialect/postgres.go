package dialect

import (
	"strconv"
)

// postgres implements Dialect for PostgreSQL.
type postgres struct{}

// Postgres returns the PostgreSQL dialect.
func Postgres() Dialect {
	return &postgres{}
}

func (d *postgres) Name() string {
	return "postgres"
}

func (d *postgres) DefaultSchema() string {
	return "public"
}

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

// pgReserved lists keywords that cannot appear unquoted as a type, table or
// column name (the "reserved" and "reserved (can be function or type)"
// categories of the PostgreSQL keyword appendix).
var pgReserved = map[string]bool{
	"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
	"array": true, "as": true, "asc": true, "asymmetric": true, "authorization": true,
	"binary": true, "both": true, "case": true, "cast": true, "check": true,
	"collate": true, "collation": true, "column": true, "concurrently": true,
	"constraint": true, "create": true, "cross": true, "current_catalog": true,
	"current_date": true, "current_role": true, "current_schema": true,
	"current_time": true, "current_timestamp": true, "current_user": true,
	"default": true, "deferrable": true, "desc": true, "distinct": true, "do": true,
	"else": true, "end": true, "except": true, "false": true, "fetch": true,
	"for": true, "foreign": true, "freeze": true, "from": true, "full": true,
	"grant": true, "group": true, "having": true, "ilike": true, "in": true,
	"initially": true, "inner": true, "intersect": true, "into": true, "is": true,
	"isnull": true, "join": true, "lateral": true, "leading": true, "left": true,
	"like": true, "limit": true, "localtime": true, "localtimestamp": true,
	"natural": true, "not": true, "notnull": true, "null": true, "offset": true,
	"on": true, "only": true, "or": true, "order": true, "outer": true,
	"overlaps": true, "placing": true, "primary": true, "references": true,
	"returning": true, "right": true, "select": true, "session_user": true,
	"similar": true, "some": true, "symmetric": true, "system_user": true,
	"table": true, "tablesample": true, "then": true, "to": true, "trailing": true,
	"true": true, "union": true, "unique": true, "user": true, "using": true,
	"variadic": true, "verbose": true, "when": true, "where": true, "window": true,
	"with": true,
}

func (d *postgres) QuoteIdent(name string) string {
	if isPlainIdent(name, pgReserved) {
		return name
	}
	return quoteIdentAlways(name)
}

func (d *postgres) QuoteLiteral(s string) string {
	return quoteLiteral(s)
}

func (d *postgres) Qualify(schema, name string) string {
	if schema == "" {
		return d.QuoteIdent(name)
	}
	return d.QuoteIdent(schema) + "." + d.QuoteIdent(name)
}

func (d *postgres) Placeholder(index int) string {
	return "$" + strconv.Itoa(index)
}

// -----------------------------------------------------------------------------
// Types
// -----------------------------------------------------------------------------

func (d *postgres) TimestampType() string {
	return "TIMESTAMPTZ"
}

func (d *postgres) CurrentTimestamp() string {
	return "now()"
}

// -----------------------------------------------------------------------------
// Feature support
// -----------------------------------------------------------------------------

func (d *postgres) SupportsNativeEnums() bool {
	return true
}

func (d *postgres) SupportsTransactionalDDL() bool {
	return true
}
