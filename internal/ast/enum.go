package ast

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hlop3z/enumsync/internal/alerr"
)

// -----------------------------------------------------------------------------
// Column classification
// -----------------------------------------------------------------------------

// ColumnKind says whether and how a column stores an enumerated type.
type ColumnKind int

const (
	ColumnNotEnum ColumnKind = iota
	ColumnCommon             // scalar enum column
	ColumnArray              // array of enum
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnCommon:
		return "COMMON"
	case ColumnArray:
		return "ARRAY"
	default:
		return "NOT_ENUM"
	}
}

// ParseColumnKind parses "COMMON" or "ARRAY" (case-insensitive).
// An empty string means COMMON.
func ParseColumnKind(s string) (ColumnKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "COMMON":
		return ColumnCommon, nil
	case "ARRAY":
		return ColumnArray, nil
	default:
		return ColumnNotEnum, alerr.Newf(alerr.ErrInvalidColumnRef, "unknown column kind %q", s).
			WithHelp("use COMMON or ARRAY")
	}
}

// EnumType describes a declared enumerated type.
type EnumType struct {
	Name   string
	Schema string // empty inherits the enclosing default schema
	Values []string

	// NonNative enums are stored as text with a check constraint and have no
	// database type to reconcile.
	NonNative bool

	// Labels maps an application value to the label stored in the database.
	Labels map[string]string
}

// EncodedValues returns the stored labels in declaration order.
func (e *EnumType) EncodedValues() []string {
	out := make([]string, len(e.Values))
	for i, v := range e.Values {
		if label, ok := e.Labels[v]; ok {
			out[i] = label
		} else {
			out[i] = v
		}
	}
	return out
}

// ColumnType is the declared type of a column. Exactly one shape applies:
// Base "enum" with Enum set, Base "array" with Elem set, or any other base.
type ColumnType struct {
	Base string
	Enum *EnumType
	Elem *ColumnType
}

const (
	BaseEnum  = "enum"
	BaseArray = "array"
)

// Classify reports how a column of type t uses an enum, and which one.
// Arrays of arrays and non-native enums are not enum columns.
func Classify(t ColumnType) (ColumnKind, *EnumType) {
	switch t.Base {
	case BaseEnum:
		if t.Enum == nil || t.Enum.NonNative {
			return ColumnNotEnum, nil
		}
		return ColumnCommon, t.Enum
	case BaseArray:
		if t.Elem == nil {
			return ColumnNotEnum, nil
		}
		if kind, enum := Classify(*t.Elem); kind == ColumnCommon {
			return ColumnArray, enum
		}
	}
	return ColumnNotEnum, nil
}

// -----------------------------------------------------------------------------
// Value objects
// -----------------------------------------------------------------------------

// EnumValues maps an unqualified enum name to its ordered labels.
type EnumValues map[string][]string

// Names returns the enum names in sorted order.
func (v EnumValues) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TableReference identifies one column that uses an enum.
type TableReference struct {
	Schema string // empty means unqualified
	Table  string
	Column string
	Kind   ColumnKind

	// ExistingDefault is the column's default expression before the sync,
	// e.g. "'active'::order_status". Nil means no default.
	ExistingDefault *string

	// LookupDefault asks the executor to read the default from the catalog
	// instead of trusting ExistingDefault.
	LookupDefault bool
}

// RefKey is the identity of a TableReference inside a set.
type RefKey struct {
	Schema, Table, Column string
}

func (r TableReference) Key() RefKey {
	return RefKey{r.Schema, r.Table, r.Column}
}

// QualifiedTable returns "schema.table", or "table" when unqualified.
func (r TableReference) QualifiedTable() string {
	if r.Schema == "" {
		return r.Table
	}
	return r.Schema + "." + r.Table
}

func (r TableReference) Validate() error {
	if r.Table == "" || r.Column == "" {
		return alerr.New(alerr.ErrInvalidColumnRef, "affected column needs a table and a column").
			WithTable(r.Schema, r.Table).
			WithColumn(r.Column)
	}
	if r.Kind != ColumnCommon && r.Kind != ColumnArray {
		return alerr.New(alerr.ErrInvalidColumnRef, "affected column kind must be COMMON or ARRAY").
			WithTable(r.Schema, r.Table).
			WithColumn(r.Column)
	}
	return nil
}

// CompareReferences orders references by (schema, table, column).
func CompareReferences(a, b TableReference) int {
	return cmp.Or(
		cmp.Compare(a.Schema, b.Schema),
		cmp.Compare(a.Table, b.Table),
		cmp.Compare(a.Column, b.Column),
	)
}

// SortReferences sorts refs in place by (schema, table, column).
func SortReferences(refs []TableReference) {
	slices.SortFunc(refs, CompareReferences)
}

// RenamePair renames one label in place.
type RenamePair struct {
	Old string
	New string
}

// InvertRenames returns the pairs with Old and New swapped.
func InvertRenames(renames []RenamePair) []RenamePair {
	if renames == nil {
		return nil
	}
	out := make([]RenamePair, len(renames))
	for i, r := range renames {
		out[i] = RenamePair{Old: r.New, New: r.Old}
	}
	return out
}

// ValidateRenames rejects empty labels and batches where two pairs share an
// old label or a new label.
func ValidateRenames(renames []RenamePair) error {
	olds := make(map[string]bool, len(renames))
	news := make(map[string]bool, len(renames))
	for _, r := range renames {
		if r.Old == "" || r.New == "" {
			return alerr.New(alerr.ErrInvalidRename, "rename labels must not be empty").
				With("old", r.Old).
				With("new", r.New)
		}
		if olds[r.Old] {
			return alerr.Newf(alerr.ErrInvalidRename, "label %q is renamed twice", r.Old)
		}
		if news[r.New] {
			return alerr.Newf(alerr.ErrInvalidRename, "two labels are renamed to %q", r.New)
		}
		olds[r.Old] = true
		news[r.New] = true
	}
	return nil
}

// TableIndex is a dependent partial index captured before a sync.
type TableIndex struct {
	Name       string // qualified, e.g. "public.orders_active_idx"
	Definition string // pg_get_indexdef output
}

// DeclaredEnums is the declared side of one reconciliation pass.
type DeclaredEnums struct {
	Values     EnumValues
	References map[string][]TableReference // sorted by (schema, table, column)
}

// -----------------------------------------------------------------------------
// Enum operations
// -----------------------------------------------------------------------------

// EnumOperation is an Operation that targets one enumerated type and has an
// exact inverse.
type EnumOperation interface {
	Operation
	EnumSchema() string
	EnumName() string
	Reverse() EnumOperation
}

// EnumOp holds the schema and name shared by every enum operation.
type EnumOp struct {
	Schema string
	Name   string
}

func (e EnumOp) EnumSchema() string { return e.Schema }
func (e EnumOp) EnumName() string { return e.Name }

// Table returns "" since enum operations do not target a table.
func (e EnumOp) Table() string { return "" }

// QualifiedName returns "schema.name", or "name" when unqualified.
func (e EnumOp) QualifiedName() string {
	if e.Schema == "" {
		return e.Name
	}
	return e.Schema + "." + e.Name
}

func (e EnumOp) validateName() error {
	if e.Name == "" {
		return alerr.New(alerr.ErrInvalidIdentifier, "enum name is required")
	}
	return ValidateIdentifier(e.Name)
}

func validateLabels(e EnumOp, values []string) error {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return alerr.Newf(alerr.ErrSchemaInvalid, "duplicate enum value %q", v).
				WithEnum(e.Schema, e.Name)
		}
		seen[v] = true
	}
	return nil
}

// CreateEnum creates an enumerated type.
type CreateEnum struct {
	EnumOp
	Values []string
}

func (op *CreateEnum) Type() OpType { return OpCreateEnum }

func (op *CreateEnum) Validate() error {
	if err := op.validateName(); err != nil {
		return err
	}
	return validateLabels(op.EnumOp, op.Values)
}

func (op *CreateEnum) Reverse() EnumOperation {
	return &DropEnum{EnumOp: op.EnumOp, Values: slices.Clone(op.Values)}
}

// DropEnum drops an enumerated type. Values are kept so the drop can be reversed.
type DropEnum struct {
	EnumOp
	Values []string
}

func (op *DropEnum) Type() OpType { return OpDropEnum }

func (op *DropEnum) Validate() error {
	if err := op.validateName(); err != nil {
		return err
	}
	return validateLabels(op.EnumOp, op.Values)
}

func (op *DropEnum) Reverse() EnumOperation {
	return &CreateEnum{EnumOp: op.EnumOp, Values: slices.Clone(op.Values)}
}

// SyncEnumValues replaces an enum's labels, migrating every affected column.
type SyncEnumValues struct {
	EnumOp
	OldValues       []string
	NewValues       []string
	AffectedColumns []TableReference
	Renames         []RenamePair

	// Indexes, when non-nil, is the explicit list of partial indexes to drop
	// and recreate. Nil means snapshot them from the catalog at execution.
	Indexes []TableIndex
}

func (op *SyncEnumValues) Type() OpType { return OpSyncEnumValues }

func (op *SyncEnumValues) Validate() error {
	if err := op.validateName(); err != nil {
		return err
	}
	if len(op.NewValues) == 0 {
		return alerr.New(alerr.ErrSchemaInvalid, "new enum values must not be empty").
			WithEnum(op.Schema, op.Name)
	}
	if err := validateLabels(op.EnumOp, op.NewValues); err != nil {
		return err
	}
	if err := ValidateRenames(op.Renames); err != nil {
		return alerr.Wrap(alerr.ErrInvalidRename, err, "invalid rename batch").
			WithEnum(op.Schema, op.Name)
	}
	seen := make(map[RefKey]bool, len(op.AffectedColumns))
	for _, ref := range op.AffectedColumns {
		if err := ref.Validate(); err != nil {
			return err
		}
		if seen[ref.Key()] {
			return alerr.New(alerr.ErrInvalidColumnRef, "affected column listed twice").
				WithTable(ref.Schema, ref.Table).
				WithColumn(ref.Column)
		}
		seen[ref.Key()] = true
	}
	return nil
}

// Reverse swaps the value lists and inverts the renames. The affected columns
// and any explicit index list are reused as-is.
func (op *SyncEnumValues) Reverse() EnumOperation {
	return &SyncEnumValues{
		EnumOp:          op.EnumOp,
		OldValues:       slices.Clone(op.NewValues),
		NewValues:       slices.Clone(op.OldValues),
		AffectedColumns: slices.Clone(op.AffectedColumns),
		Renames:         InvertRenames(op.Renames),
		Indexes:         slices.Clone(op.Indexes),
	}
}

// ReverseAll returns the inverse of a batch: each op reversed, last first.
func ReverseAll(ops []EnumOperation) []EnumOperation {
	out := make([]EnumOperation, 0, len(ops))
	for i := len(ops) - 1; i >= 0; i-- {
		out = append(out, ops[i].Reverse())
	}
	return out
}
