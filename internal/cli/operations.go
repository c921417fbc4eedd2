package cli

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/hlop3z/enumsync/internal/ast"
)

// FormatOperations renders a batch of enum operations as a diff.
//
//	+ create public.mood ('happy', 'sad')
//	~ sync public.order_status
//	    + 'archived'
//	    - 'cancelled'
//	    'done' -> 'completed'
//	    column public.orders.status (COMMON)
//	- drop public.legacy
func FormatOperations(ops []ast.EnumOperation) string {
	if len(ops) == 0 {
		return Dim("no changes") + "\n"
	}
	var b strings.Builder
	for _, op := range ops {
		b.WriteString(FormatOperation(op))
	}
	return b.String()
}

// FormatOperation renders a single enum operation.
func FormatOperation(op ast.EnumOperation) string {
	switch op := op.(type) {
	case *ast.CreateEnum:
		return Added(fmt.Sprintf("+ create %s (%s)", op.QualifiedName(), quoteList(op.Values))) + "\n"
	case *ast.DropEnum:
		return Removed(fmt.Sprintf("- drop %s", op.QualifiedName())) + "\n"
	case *ast.SyncEnumValues:
		return formatSync(op)
	default:
		return fmt.Sprintf("? %s %s\n", op.Type(), op.EnumName())
	}
}

func formatSync(op *ast.SyncEnumValues) string {
	var b strings.Builder
	b.WriteString(Changed("~ sync "+op.QualifiedName()) + "\n")

	renamedFrom := make(map[string]bool, len(op.Renames))
	renamedTo := make(map[string]bool, len(op.Renames))
	for _, r := range op.Renames {
		renamedFrom[r.Old] = true
		renamedTo[r.New] = true
	}

	for _, v := range lo.Without(op.NewValues, op.OldValues...) {
		if !renamedTo[v] {
			b.WriteString("    " + Added("+ "+quote(v)) + "\n")
		}
	}
	for _, v := range lo.Without(op.OldValues, op.NewValues...) {
		if !renamedFrom[v] {
			b.WriteString("    " + Removed("- "+quote(v)) + "\n")
		}
	}
	for _, r := range op.Renames {
		fmt.Fprintf(&b, "    %s -> %s\n", quote(r.Old), Highlight(quote(r.New)))
	}
	if len(lo.Without(op.NewValues, op.OldValues...)) == 0 &&
		len(lo.Without(op.OldValues, op.NewValues...)) == 0 && len(op.Renames) == 0 {
		b.WriteString("    " + Dim("reorder ("+quoteList(op.NewValues)+")") + "\n")
	}
	for _, ref := range op.AffectedColumns {
		fmt.Fprintf(&b, "    %s %s.%s %s\n", Dim("column"), ref.QualifiedTable(), ref.Column, Dim("("+ref.Kind.String()+")"))
	}
	return b.String()
}

func quote(s string) string {
	return "'" + s + "'"
}

func quoteList(values []string) string {
	return strings.Join(lo.Map(values, func(v string, _ int) string { return quote(v) }), ", ")
}
