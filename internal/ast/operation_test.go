package ast

import (
	"reflect"
	"testing"

	"github.com/hlop3z/enumsync/internal/alerr"
)

func strptr(s string) *string { return &s }

// -----------------------------------------------------------------------------
// OpType Tests
// -----------------------------------------------------------------------------

func TestOpTypeString(t *testing.T) {
	tests := []struct {
		op   OpType
		want string
	}{
		{OpCreateSchema, "CreateSchema"},
		{OpCreateTable, "CreateTable"},
		{OpDropTable, "DropTable"},
		{OpAddColumn, "AddColumn"},
		{OpDropColumn, "DropColumn"},
		{OpAlterColumn, "AlterColumn"},
		{OpCreateEnum, "CreateEnum"},
		{OpDropEnum, "DropEnum"},
		{OpSyncEnumValues, "SyncEnumValues"},
		{OpType(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.op.String(); got != tt.want {
				t.Errorf("OpType.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsEnumOp(t *testing.T) {
	if !OpSyncEnumValues.IsEnumOp() || !OpCreateEnum.IsEnumOp() || !OpDropEnum.IsEnumOp() {
		t.Error("enum op types should report IsEnumOp")
	}
	if OpAddColumn.IsEnumOp() {
		t.Error("AddColumn should not report IsEnumOp")
	}
}

// -----------------------------------------------------------------------------
// Host operation Tests
// -----------------------------------------------------------------------------

func TestTableNames(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{"create table qualified", &CreateTable{TableOp: TableOp{Schema: "sales", Name: "orders"}}, "sales.orders"},
		{"drop table unqualified", &DropTable{TableOp: TableOp{Name: "orders"}}, "orders"},
		{"add column", &AddColumn{TableRef: TableRef{Schema: "public", Table_: "orders"}}, "public.orders"},
		{"create schema", &CreateSchema{Name: "sales"}, ""},
		{"create enum", &CreateEnum{EnumOp: EnumOp{Schema: "public", Name: "mood"}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.Table(); got != tt.want {
				t.Errorf("Table() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHostOpValidate(t *testing.T) {
	statusCol := &ColumnDef{Name: "status", Type: ColumnType{Base: BaseEnum, Enum: &EnumType{Name: "order_status"}}}

	tests := []struct {
		name     string
		op       Operation
		wantCode alerr.Code
	}{
		{"create schema ok", &CreateSchema{Name: "sales"}, ""},
		{"create schema empty", &CreateSchema{}, alerr.ErrInvalidIdentifier},
		{"create table ok", &CreateTable{TableOp: TableOp{Name: "orders"}, Columns: []*ColumnDef{statusCol}}, ""},
		{"create table no columns", &CreateTable{TableOp: TableOp{Name: "orders"}}, alerr.ErrSchemaInvalid},
		{"drop table empty", &DropTable{}, alerr.ErrInvalidIdentifier},
		{"add column ok", &AddColumn{TableRef: TableRef{Table_: "orders"}, Column: statusCol}, ""},
		{"add column nil", &AddColumn{TableRef: TableRef{Table_: "orders"}}, alerr.ErrInvalidIdentifier},
		{"drop column no table", &DropColumn{Name: "status"}, alerr.ErrInvalidIdentifier},
		{"alter column ok", &AlterColumn{TableRef: TableRef{Table_: "orders"}, Name: "status", ServerDefault: strptr("'active'")}, ""},
		{"alter column dangerous default", &AlterColumn{TableRef: TableRef{Table_: "orders"}, Name: "status", ServerDefault: strptr("'a'; DROP TABLE x")}, alerr.ErrSchemaInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if alerr.GetErrorCode(err) != tt.wantCode {
				t.Errorf("Validate() error code = %q, want %q (err: %v)", alerr.GetErrorCode(err), tt.wantCode, err)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	status := &EnumType{Name: "order_status", Values: []string{"active"}}
	legacy := &EnumType{Name: "legacy", NonNative: true}

	tests := []struct {
		name     string
		typ      ColumnType
		wantKind ColumnKind
		wantEnum *EnumType
	}{
		{"scalar enum", ColumnType{Base: BaseEnum, Enum: status}, ColumnCommon, status},
		{"array of enum", ColumnType{Base: BaseArray, Elem: &ColumnType{Base: BaseEnum, Enum: status}}, ColumnArray, status},
		{"text", ColumnType{Base: "text"}, ColumnNotEnum, nil},
		{"array of text", ColumnType{Base: BaseArray, Elem: &ColumnType{Base: "text"}}, ColumnNotEnum, nil},
		{"array without element", ColumnType{Base: BaseArray}, ColumnNotEnum, nil},
		{"non-native enum", ColumnType{Base: BaseEnum, Enum: legacy}, ColumnNotEnum, nil},
		{"enum without type", ColumnType{Base: BaseEnum}, ColumnNotEnum, nil},
		{"nested array", ColumnType{Base: BaseArray, Elem: &ColumnType{Base: BaseArray, Elem: &ColumnType{Base: BaseEnum, Enum: status}}}, ColumnNotEnum, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, enum := Classify(tt.typ)
			if kind != tt.wantKind {
				t.Errorf("Classify() kind = %v, want %v", kind, tt.wantKind)
			}
			if enum != tt.wantEnum {
				t.Errorf("Classify() enum = %v, want %v", enum, tt.wantEnum)
			}
		})
	}
}

func TestParseColumnKind(t *testing.T) {
	for in, want := range map[string]ColumnKind{"": ColumnCommon, "common": ColumnCommon, "ARRAY": ColumnArray} {
		got, err := ParseColumnKind(in)
		if err != nil || got != want {
			t.Errorf("ParseColumnKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseColumnKind("matrix"); !alerr.Is(err, alerr.ErrInvalidColumnRef) {
		t.Errorf("ParseColumnKind(matrix) error = %v, want %s", err, alerr.ErrInvalidColumnRef)
	}
}

func TestEncodedValues(t *testing.T) {
	e := &EnumType{
		Name:   "color",
		Values: []string{"Red", "Blue", "green"},
		Labels: map[string]string{"Red": "red", "Blue": "blue"},
	}
	want := []string{"red", "blue", "green"}
	if got := e.EncodedValues(); !reflect.DeepEqual(got, want) {
		t.Errorf("EncodedValues() = %v, want %v", got, want)
	}
}

// -----------------------------------------------------------------------------
// Enum operation Tests
// -----------------------------------------------------------------------------

func TestCreateDropAreInverses(t *testing.T) {
	create := &CreateEnum{EnumOp: EnumOp{Schema: "public", Name: "mood"}, Values: []string{"happy", "sad"}}

	drop, ok := create.Reverse().(*DropEnum)
	if !ok {
		t.Fatalf("CreateEnum.Reverse() = %T, want *DropEnum", create.Reverse())
	}
	if drop.QualifiedName() != "public.mood" || !reflect.DeepEqual(drop.Values, create.Values) {
		t.Errorf("Reverse() = %+v", drop)
	}

	back := drop.Reverse()
	if !reflect.DeepEqual(back, create) {
		t.Errorf("Reverse().Reverse() = %+v, want %+v", back, create)
	}
}

func TestSyncReverse(t *testing.T) {
	refs := []TableReference{
		{Schema: "public", Table: "orders", Column: "status", Kind: ColumnCommon, ExistingDefault: strptr("'passive'::order_status")},
	}
	op := &SyncEnumValues{
		EnumOp:          EnumOp{Schema: "public", Name: "order_status"},
		OldValues:       []string{"active", "passive"},
		NewValues:       []string{"active", "inactive"},
		AffectedColumns: refs,
		Renames:         []RenamePair{{Old: "passive", New: "inactive"}},
	}

	rev, ok := op.Reverse().(*SyncEnumValues)
	if !ok {
		t.Fatalf("Reverse() = %T, want *SyncEnumValues", op.Reverse())
	}
	if !reflect.DeepEqual(rev.OldValues, op.NewValues) || !reflect.DeepEqual(rev.NewValues, op.OldValues) {
		t.Errorf("Reverse() values = %v -> %v", rev.OldValues, rev.NewValues)
	}
	if !reflect.DeepEqual(rev.AffectedColumns, op.AffectedColumns) {
		t.Errorf("Reverse() affected columns = %v, want %v", rev.AffectedColumns, op.AffectedColumns)
	}
	if want := []RenamePair{{Old: "inactive", New: "passive"}}; !reflect.DeepEqual(rev.Renames, want) {
		t.Errorf("Reverse() renames = %v, want %v", rev.Renames, want)
	}
	if rev.Indexes != nil {
		t.Errorf("Reverse() indexes = %v, want nil", rev.Indexes)
	}

	rev.AffectedColumns[0].Table = "mutated"
	if op.AffectedColumns[0].Table != "orders" {
		t.Error("Reverse() should not share the affected columns slice")
	}
}

func TestReverseAll(t *testing.T) {
	ops := []EnumOperation{
		&CreateEnum{EnumOp: EnumOp{Name: "a"}, Values: []string{"x"}},
		&DropEnum{EnumOp: EnumOp{Name: "b"}, Values: []string{"y"}},
	}
	got := ReverseAll(ops)
	if len(got) != 2 {
		t.Fatalf("ReverseAll() = %d ops, want 2", len(got))
	}
	if got[0].Type() != OpCreateEnum || got[0].EnumName() != "b" {
		t.Errorf("ReverseAll()[0] = %s %s, want CreateEnum b", got[0].Type(), got[0].EnumName())
	}
	if got[1].Type() != OpDropEnum || got[1].EnumName() != "a" {
		t.Errorf("ReverseAll()[1] = %s %s, want DropEnum a", got[1].Type(), got[1].EnumName())
	}
}

func TestEnumOpValidate(t *testing.T) {
	base := EnumOp{Schema: "public", Name: "order_status"}
	ref := TableReference{Table: "orders", Column: "status", Kind: ColumnCommon}

	tests := []struct {
		name     string
		op       Operation
		wantCode alerr.Code
	}{
		{"create ok", &CreateEnum{EnumOp: base, Values: []string{"a", "b"}}, ""},
		{"create no name", &CreateEnum{Values: []string{"a"}}, alerr.ErrInvalidIdentifier},
		{"create duplicate value", &CreateEnum{EnumOp: base, Values: []string{"a", "a"}}, alerr.ErrSchemaInvalid},
		{"drop ok", &DropEnum{EnumOp: base}, ""},
		{"sync ok", &SyncEnumValues{EnumOp: base, OldValues: []string{"a"}, NewValues: []string{"a", "b"}, AffectedColumns: []TableReference{ref}}, ""},
		{"sync empty new values", &SyncEnumValues{EnumOp: base, OldValues: []string{"a"}}, alerr.ErrSchemaInvalid},
		{"sync rename collision", &SyncEnumValues{EnumOp: base, NewValues: []string{"c"}, Renames: []RenamePair{{"a", "c"}, {"b", "c"}}}, alerr.ErrInvalidRename},
		{"sync rename twice", &SyncEnumValues{EnumOp: base, NewValues: []string{"c", "d"}, Renames: []RenamePair{{"a", "c"}, {"a", "d"}}}, alerr.ErrInvalidRename},
		{"sync empty rename label", &SyncEnumValues{EnumOp: base, NewValues: []string{"c"}, Renames: []RenamePair{{"", "c"}}}, alerr.ErrInvalidRename},
		{"sync bad reference", &SyncEnumValues{EnumOp: base, NewValues: []string{"a"}, AffectedColumns: []TableReference{{Table: "orders"}}}, alerr.ErrInvalidColumnRef},
		{"sync not-enum kind", &SyncEnumValues{EnumOp: base, NewValues: []string{"a"}, AffectedColumns: []TableReference{{Table: "orders", Column: "status"}}}, alerr.ErrInvalidColumnRef},
		{"sync duplicate reference", &SyncEnumValues{EnumOp: base, NewValues: []string{"a"}, AffectedColumns: []TableReference{ref, ref}}, alerr.ErrInvalidColumnRef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if alerr.GetErrorCode(err) != tt.wantCode {
				t.Errorf("Validate() error code = %q, want %q (err: %v)", alerr.GetErrorCode(err), tt.wantCode, err)
			}
		})
	}
}

func TestSortReferences(t *testing.T) {
	refs := []TableReference{
		{Schema: "public", Table: "orders", Column: "status"},
		{Schema: "", Table: "zeta", Column: "a"},
		{Schema: "public", Table: "customers", Column: "tier"},
		{Schema: "public", Table: "orders", Column: "previous"},
	}
	SortReferences(refs)

	want := []string{"zeta.a", "public.customers.tier", "public.orders.previous", "public.orders.status"}
	for i, ref := range refs {
		if got := ref.QualifiedTable() + "." + ref.Column; got != want[i] {
			t.Errorf("refs[%d] = %s, want %s", i, got, want[i])
		}
	}
}
