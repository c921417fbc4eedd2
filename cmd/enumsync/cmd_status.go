package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/enumsync/internal/cli"
	"github.com/hlop3z/enumsync/internal/drift"
)

// statusCmd shows the status of all revisions.
func statusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied/pending revisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			statuses, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}

			result, err := client.Check(cmd.Context())
			if err != nil {
				return err
			}
			enums := cli.FormatKeyValue("Enums", drift.FormatQuickStatus(result.HasDrift, result.ExpectedHash, result.ActualHash))

			out := cmd.OutOrStdout()
			if len(statuses) == 0 {
				fmt.Fprintln(out, cli.Info("No revisions found."))
				fmt.Fprintf(out, "  %s\n", enums)
				return nil
			}

			fmt.Fprint(out, cli.RenderTitle("Revision Status"))
			fmt.Fprintf(out, "  %s\n", cli.StatusSummary(statuses))
			fmt.Fprintf(out, "  %s\n\n", enums)
			fmt.Fprint(out, cli.StatusTable(statuses))
			return nil
		},
	}
}
