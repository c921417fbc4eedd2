package main

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlop3z/enumsync/internal/alerr"
	"github.com/hlop3z/enumsync/pkg/enumsync"
)

// rollbackCmd rolls back applied revisions.
func rollbackCmd(flags *globalFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rollback [steps]",
		Short: "Roll back revisions (default: 1 step)",
		Example: `  enumsync rollback            # Roll back the latest revision
  enumsync rollback 3          # Roll back three revisions
  enumsync rollback --dry-run  # Preview the downgrade SQL`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseSteps(args)
			if err != nil {
				return err
			}

			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			opts := []enumsync.MigrationOption{enumsync.Steps(steps)}
			if dryRun {
				opts = append(opts, enumsync.DryRunTo(out))
			}

			start := time.Now()
			rolledBack, err := client.Rollback(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			if !dryRun {
				printRevisions(out, rolledBack, "rolled back", time.Since(start))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print SQL without executing")
	return cmd
}

// parseSteps reads the optional positive step count.
func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps < 1 {
		return 0, alerr.Newf(alerr.ErrMigrationInvalid, "invalid steps argument %q", args[0]).
			WithHelp("pass a positive integer, e.g. 'enumsync rollback 3'")
	}
	return steps, nil
}
