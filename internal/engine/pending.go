package engine

import (
	"cmp"

	"github.com/hlop3z/enumsync/internal/ast"
)

// PendingDefaults collects the column defaults the host batch is about to
// install, keyed by resolved (schema, table, column). A key present with a
// nil value means the batch drops the default. Later operations win.
func PendingDefaults(ops []ast.Operation, defaultSchema string) map[ast.RefKey]*string {
	defaults := make(map[ast.RefKey]*string)
	for _, op := range ops {
		switch op := op.(type) {
		case *ast.CreateTable:
			schema := cmp.Or(op.Schema, defaultSchema)
			for _, col := range op.Columns {
				if col.ServerDefault != nil {
					defaults[ast.RefKey{Schema: schema, Table: op.Name, Column: col.Name}] = col.ServerDefault
				}
			}
		case *ast.AddColumn:
			if op.Column != nil && op.Column.ServerDefault != nil {
				key := ast.RefKey{Schema: cmp.Or(op.Schema, defaultSchema), Table: op.Table_, Column: op.Column.Name}
				defaults[key] = op.Column.ServerDefault
			}
		case *ast.AlterColumn:
			key := ast.RefKey{Schema: cmp.Or(op.Schema, defaultSchema), Table: op.Table_, Column: op.Name}
			switch {
			case op.DropDefault:
				defaults[key] = nil
			case op.ServerDefault != nil:
				defaults[key] = op.ServerDefault
			}
		}
	}
	return defaults
}

// pendingSchemas returns the schemas the batch creates, in batch order.
func pendingSchemas(ops []ast.Operation) []string {
	var schemas []string
	for _, op := range ops {
		if cs, ok := op.(*ast.CreateSchema); ok {
			schemas = append(schemas, cs.Name)
		}
	}
	return schemas
}
