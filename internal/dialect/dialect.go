// Package dialect holds the per-database details enumsync needs: identifier
// and literal quoting, default schema, and feature detection.
// Only PostgreSQL has native enumerated types; SQLite is supported so the
// reconciliation pass can run against it as a no-op.
package dialect

import (
	"strings"

	"github.com/hlop3z/enumsync/internal/alerr"
)

// SQLFormatter renders identifiers and literals.
type SQLFormatter interface {
	// QuoteIdent quotes a name only when it would not survive unquoted.
	// PostgreSQL: order_status, "Order Status", "user"
	QuoteIdent(name string) string

	// QuoteLiteral renders a string literal with embedded quotes doubled.
	QuoteLiteral(s string) string

	// Qualify returns schema.name, or just name when schema is empty.
	Qualify(schema, name string) string

	// Placeholder returns a parameter placeholder for the given index (1-based).
	// PostgreSQL: $1, $2, ...  SQLite: ?
	Placeholder(index int) string
}

// FeatureDetector reports what the database can do.
type FeatureDetector interface {
	// SupportsNativeEnums reports whether CREATE TYPE ... AS ENUM exists.
	SupportsNativeEnums() bool

	// SupportsTransactionalDDL reports whether DDL can be rolled back.
	SupportsTransactionalDDL() bool
}

// Dialect is the full per-database surface.
type Dialect interface {
	SQLFormatter
	FeatureDetector

	// Name returns the dialect name (postgres, sqlite).
	Name() string

	// DefaultSchema is the schema unqualified names resolve to.
	DefaultSchema() string

	// TimestampType is the column type for wall-clock timestamps.
	TimestampType() string

	// CurrentTimestamp is the expression for "now".
	CurrentTimestamp() string
}

// Get returns the dialect for a name or driver alias, or nil when unsupported.
func Get(name string) Dialect {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return Postgres()
	case "sqlite", "sqlite3":
		return SQLite()
	default:
		return nil
	}
}

// Names returns the supported dialect names.
func Names() []string {
	return []string{"postgres", "sqlite"}
}

// Lookup is Get with a coded error for unknown names.
func Lookup(name string) (Dialect, error) {
	if d := Get(name); d != nil {
		return d, nil
	}
	err := alerr.Newf(alerr.EUnsupportedDialect, "unsupported dialect %q", name).
		With("supported", strings.Join(Names(), ", "))
	if hint := alerr.DidYouMean(strings.ToLower(name), Names()); hint != "" {
		err.WithHelp(hint)
	}
	return nil, err
}

// -----------------------------------------------------------------------------
// Shared quoting
// -----------------------------------------------------------------------------

func quoteIdentAlways(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// isPlainIdent reports whether name is lower-case snake_case and not a
// reserved word, i.e. it folds to itself when left unquoted.
func isPlainIdent(name string, reserved map[string]bool) bool {
	if name == "" || reserved[name] {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c == '_':
		case c >= '0' && c <= '9', c == '$':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
