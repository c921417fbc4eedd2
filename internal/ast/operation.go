package ast

import (
	"github.com/hlop3z/enumsync/internal/alerr"
)

// Operation is a single change in a migration batch. Enum operations are
// produced by the comparator; the table-level operations model the host batch
// the comparator reads to resolve pending defaults and new schemas.
type Operation interface {
	// Type returns the operation type (OpCreateEnum, OpAddColumn, etc.)
	Type() OpType

	// Table returns "schema.table" for table-level operations and "" otherwise.
	Table() string

	// Validate checks that the operation is well-formed.
	Validate() error
}

// -----------------------------------------------------------------------------
// Embedded types
// -----------------------------------------------------------------------------

// TableOp provides Schema+Name for operations that create or drop a table.
type TableOp struct {
	Schema string
	Name   string
}

func (t TableOp) Table() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// TableRef provides Schema+Table_ for column operations.
type TableRef struct {
	Schema string
	Table_ string
}

func (t TableRef) Table() string {
	if t.Schema == "" {
		return t.Table_
	}
	return t.Schema + "." + t.Table_
}

func requireColumn(ref TableRef, column string) error {
	if ref.Table_ == "" {
		return alerr.New(alerr.ErrInvalidIdentifier, msgTableNameRequired)
	}
	if column == "" {
		return alerr.New(alerr.ErrInvalidIdentifier, msgColumnNameRequired).
			WithTable(ref.Schema, ref.Table_)
	}
	return nil
}

// -----------------------------------------------------------------------------
// CreateSchema
// -----------------------------------------------------------------------------

// CreateSchema creates a new schema in the same batch.
type CreateSchema struct {
	Name string
}

func (op *CreateSchema) Type() OpType { return OpCreateSchema }
func (op *CreateSchema) Table() string { return "" }
func (op *CreateSchema) Validate() error { return ValidateIdentifier(op.Name) }

// -----------------------------------------------------------------------------
// CreateTable / DropTable
// -----------------------------------------------------------------------------

// CreateTable creates a table with columns.
type CreateTable struct {
	TableOp
	Columns []*ColumnDef
}

func (op *CreateTable) Type() OpType { return OpCreateTable }

func (op *CreateTable) Validate() error {
	def := TableDef{Schema: op.Schema, Name: op.Name, Columns: op.Columns}
	return def.Validate()
}

// DropTable drops a table.
type DropTable struct {
	TableOp
}

func (op *DropTable) Type() OpType { return OpDropTable }

func (op *DropTable) Validate() error {
	if op.Name == "" {
		return alerr.New(alerr.ErrInvalidIdentifier, "table name is required for drop")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Column operations
// -----------------------------------------------------------------------------

// AddColumn adds a column to an existing table.
type AddColumn struct {
	TableRef
	Column *ColumnDef
}

func (op *AddColumn) Type() OpType { return OpAddColumn }

func (op *AddColumn) Validate() error {
	if op.Column == nil {
		return alerr.New(alerr.ErrInvalidIdentifier, "column definition is required").
			WithTable(op.Schema, op.Table_)
	}
	if err := requireColumn(op.TableRef, op.Column.Name); err != nil {
		return err
	}
	return op.Column.Validate()
}

// DropColumn removes a column.
type DropColumn struct {
	TableRef
	Name string
}

func (op *DropColumn) Type() OpType { return OpDropColumn }

func (op *DropColumn) Validate() error {
	return requireColumn(op.TableRef, op.Name)
}

// AlterColumn changes a column's default. DropDefault wins over ServerDefault.
type AlterColumn struct {
	TableRef
	Name          string
	ServerDefault *string
	DropDefault   bool
}

func (op *AlterColumn) Type() OpType { return OpAlterColumn }

func (op *AlterColumn) Validate() error {
	if err := requireColumn(op.TableRef, op.Name); err != nil {
		return err
	}
	if op.ServerDefault != nil {
		return ValidateSQLExpression(*op.ServerDefault)
	}
	return nil
}
