package engine

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/hlop3z/enumsync/internal/ast"
)

// Warning represents a safety warning for a migration operation.
type Warning struct {
	Severity string // "warning" or "error"
	Type     string // "drop_enum", "remove_values", "reorder_values"
	Enum     string
	Values   []string
	Message  string
}

// LintOperations checks enum operations for changes that can lose data or
// fail against existing rows.
func LintOperations(ops []ast.EnumOperation) []Warning {
	var warnings []Warning

	for _, op := range ops {
		name := ast.EnumOp{Schema: op.EnumSchema(), Name: op.EnumName()}.QualifiedName()

		switch op := op.(type) {
		case *ast.DropEnum:
			warnings = append(warnings, Warning{
				Severity: "warning",
				Type:     "drop_enum",
				Enum:     name,
				Message:  fmt.Sprintf("Will DROP enum '%s'", name),
			})
		case *ast.SyncEnumValues:
			renamed := lo.Map(op.Renames, func(r ast.RenamePair, _ int) string { return r.Old })
			removed := lo.Without(lo.Without(op.OldValues, op.NewValues...), renamed...)
			if len(removed) > 0 {
				warnings = append(warnings, Warning{
					Severity: "warning",
					Type:     "remove_values",
					Enum:     name,
					Values:   removed,
					Message: fmt.Sprintf("Will REMOVE %s from enum '%s'; rows holding them make the sync fail",
						quoteAll(removed), name),
				})
			}
			if reordered(op.OldValues, op.NewValues) {
				warnings = append(warnings, Warning{
					Severity: "warning",
					Type:     "reorder_values",
					Enum:     name,
					Message:  fmt.Sprintf("Will REORDER values of enum '%s'; ORDER BY on its columns changes", name),
				})
			}
		}
	}

	return warnings
}

// reordered reports whether the labels kept by both lists appear in a
// different relative order.
func reordered(oldValues, newValues []string) bool {
	kept := lo.Intersect(oldValues, newValues)
	oldOrder := lo.Filter(oldValues, func(v string, _ int) bool { return lo.Contains(kept, v) })
	newOrder := lo.Filter(newValues, func(v string, _ int) bool { return lo.Contains(kept, v) })
	for i := range oldOrder {
		if oldOrder[i] != newOrder[i] {
			return true
		}
	}
	return false
}

func quoteAll(values []string) string {
	return strings.Join(lo.Map(values, func(v string, _ int) string { return "'" + v + "'" }), ", ")
}

// FormatWarnings returns a human-readable string of warnings.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}

	var result string
	result = "\nWARNING: Destructive enum changes detected\n\n"

	for _, w := range warnings {
		result += fmt.Sprintf("  - %s\n", w.Message)
	}

	result += "\n  Add renames to the sync operation, or clean the rows first.\n"
	return result
}
