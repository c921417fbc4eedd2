package ast

import (
	"regexp"

	"github.com/hlop3z/enumsync/internal/alerr"
)

const (
	msgTableNameRequired  = "table name is required"
	msgColumnNameRequired = "column name is required"
	msgTableNeedsColumn   = "table must have at least one column"

	// maxIdentifierLength is NAMEDATALEN-1 in a default Postgres build.
	maxIdentifierLength = 63
)

// ValidateIdentifier checks that name can be used as a Postgres identifier.
// Mixed case and spaces are allowed; they are quoted when rendered.
func ValidateIdentifier(name string) error {
	if name == "" {
		return alerr.New(alerr.ErrInvalidIdentifier, "identifier must not be empty")
	}
	if len(name) > maxIdentifierLength {
		return alerr.Newf(alerr.ErrInvalidIdentifier, "identifier %q is longer than %d bytes", name, maxIdentifierLength)
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			return alerr.Newf(alerr.ErrInvalidIdentifier, "identifier %q contains a NUL byte", name)
		}
	}
	return nil
}

// dangerousSQLPattern matches statement separators, comments and DDL/DML keywords.
var dangerousSQLPattern = regexp.MustCompile(
	`(?i)(;\s*|--|\b(DROP|ALTER|CREATE|GRANT|REVOKE|TRUNCATE|INSERT|UPDATE|DELETE|EXEC|EXECUTE|UNION|INTO|COPY|pg_read_file|lo_import|pg_sleep)\b)`,
)

// ValidateSQLExpression checks a server default expression for dangerous patterns.
func ValidateSQLExpression(expr string) error {
	if expr == "" {
		return nil
	}
	if dangerousSQLPattern.MatchString(expr) {
		return alerr.New(alerr.ErrSchemaInvalid, "SQL expression contains potentially dangerous pattern").
			With("expression", expr).
			WithHelp("defaults must not contain ';', '--', or DDL/DML keywords")
	}
	return nil
}

// -----------------------------------------------------------------------------
// TableDef / ColumnDef
// -----------------------------------------------------------------------------

// TableDef is one table of the declared schema model.
type TableDef struct {
	Schema  string // empty inherits the default schema
	Name    string
	Columns []*ColumnDef

	SourceFile string // schema file that declared the table
}

// QualifiedName returns "schema.table", or "table" when unqualified.
func (t *TableDef) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// GetColumn returns the column with the given name, or nil.
func (t *TableDef) GetColumn(name string) *ColumnDef {
	for _, col := range t.Columns {
		if col.Name == name {
			return col
		}
	}
	return nil
}

func (t *TableDef) Validate() error {
	if t.Name == "" {
		return alerr.New(alerr.ErrSchemaInvalid, msgTableNameRequired)
	}
	if err := ValidateIdentifier(t.Name); err != nil {
		return err
	}
	if t.Schema != "" {
		if err := ValidateIdentifier(t.Schema); err != nil {
			return err
		}
	}
	if len(t.Columns) == 0 {
		return alerr.New(alerr.ErrSchemaInvalid, msgTableNeedsColumn).
			WithTable(t.Schema, t.Name)
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		if err := col.Validate(); err != nil {
			return alerr.Wrap(alerr.ErrSchemaInvalid, err, "invalid column").
				WithTable(t.Schema, t.Name).
				WithColumn(col.Name)
		}
		if seen[col.Name] {
			return alerr.New(alerr.ErrSchemaInvalid, "duplicate column name").
				WithTable(t.Schema, t.Name).
				WithColumn(col.Name)
		}
		seen[col.Name] = true
	}
	return nil
}

// ColumnDef is one declared column.
type ColumnDef struct {
	Name          string
	Type          ColumnType
	ServerDefault *string // raw SQL expression, nil when the column has no default
}

func (c *ColumnDef) Validate() error {
	if c.Name == "" {
		return alerr.New(alerr.ErrSchemaInvalid, msgColumnNameRequired)
	}
	if err := ValidateIdentifier(c.Name); err != nil {
		return err
	}
	if c.Type.Base == "" {
		return alerr.New(alerr.ErrSchemaInvalid, "column type is required").WithColumn(c.Name)
	}
	if c.ServerDefault != nil {
		return ValidateSQLExpression(*c.ServerDefault)
	}
	return nil
}
