package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/enumsync/internal/cli"
	"github.com/hlop3z/enumsync/internal/drift"
)

// checkCmd exits non-zero when the database enums differ from the declared ones.
func checkCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fail when database enums drift from the schema files",
		Long: `Compare the declared enums with the database using a merkle fingerprint
per enum. Exits with status 1 when anything was added, removed or changed, so
it can gate a CI pipeline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Check(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !result.HasDrift {
				fmt.Fprint(out, cli.Success(drift.FormatResult(result)))
				return nil
			}
			fmt.Fprintln(out, cli.Error(drift.FormatSummary(result.Comparison)))
			fmt.Fprint(out, cli.RenderPanel("", drift.FormatResult(result)))
			fmt.Fprint(out, cli.FormatHelp("run 'enumsync new <name>' to write a revision, then 'enumsync migrate'"))
			return errSilent
		},
	}
}
