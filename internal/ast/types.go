// Package ast defines the operations a reconciliation pass produces and the
// declared schema model it reads. Operations are plain values that can be
// validated, reversed and rendered without touching a database.
package ast

// OpType represents the type of an operation.
type OpType int

const (
	// OpCreateSchema creates a new schema (host batch only).
	OpCreateSchema OpType = iota

	// OpCreateTable creates a new table (host batch only).
	OpCreateTable

	// OpDropTable removes a table (host batch only).
	OpDropTable

	// OpAddColumn adds a column to an existing table (host batch only).
	OpAddColumn

	// OpDropColumn removes a column (host batch only).
	OpDropColumn

	// OpAlterColumn changes a column's default (host batch only).
	OpAlterColumn

	// OpCreateEnum creates an enumerated type.
	OpCreateEnum

	// OpDropEnum drops an enumerated type.
	OpDropEnum

	// OpSyncEnumValues replaces the value set of an existing enumerated type.
	OpSyncEnumValues
)

// String returns the string representation of an OpType.
func (o OpType) String() string {
	switch o {
	case OpCreateSchema:
		return "CreateSchema"
	case OpCreateTable:
		return "CreateTable"
	case OpDropTable:
		return "DropTable"
	case OpAddColumn:
		return "AddColumn"
	case OpDropColumn:
		return "DropColumn"
	case OpAlterColumn:
		return "AlterColumn"
	case OpCreateEnum:
		return "CreateEnum"
	case OpDropEnum:
		return "DropEnum"
	case OpSyncEnumValues:
		return "SyncEnumValues"
	default:
		return "Unknown"
	}
}

// IsEnumOp reports whether operations of this type mutate an enumerated type.
func (o OpType) IsEnumOp() bool {
	return o == OpCreateEnum || o == OpDropEnum || o == OpSyncEnumValues
}
