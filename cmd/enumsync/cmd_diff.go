package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hlop3z/enumsync/internal/cli"
	"github.com/hlop3z/enumsync/internal/engine"
	"github.com/hlop3z/enumsync/pkg/enumsync"
)

// diffCmd shows the enum operations a new revision would hold.
func diffCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show enum differences between schema files and database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Diff(cmd.Context())
			if err != nil {
				return err
			}
			printDiff(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

// printDiff writes the operations, lint warnings and unused declarations.
func printDiff(w io.Writer, result *enumsync.DiffResult) {
	for _, name := range result.Unused {
		fmt.Fprint(w, cli.FormatNote(fmt.Sprintf("enum %s is declared but no column uses it", name)))
	}
	if result.IsEmpty() {
		fmt.Fprintln(w, cli.Success("No enum changes detected."))
		return
	}

	fmt.Fprintf(w, "Found %s:\n\n", cli.FormatCount(len(result.Operations), "operation", "operations"))
	fmt.Fprint(w, cli.FormatOperations(result.Operations))
	if len(result.Warnings) > 0 {
		fmt.Fprint(w, cli.Warning(engine.FormatWarnings(result.Warnings)))
	}
}
