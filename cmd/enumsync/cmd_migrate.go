package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlop3z/enumsync/internal/cli"
	"github.com/hlop3z/enumsync/internal/git"
	"github.com/hlop3z/enumsync/pkg/enumsync"
)

// migrateCmd applies pending revisions.
func migrateCmd(flags *globalFlags) *cobra.Command {
	var dryRun, strict bool
	var target string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending revisions",
		Long: `Apply pending revisions to the database. Each revision runs in its own
transaction. A revision whose base fingerprint no longer matches the database
is applied with a warning, or refused with --strict.`,
		Example: `  # Apply all pending revisions
  enumsync migrate

  # Print the SQL without executing it
  enumsync migrate --dry-run

  # Refuse revisions generated against a different database state
  enumsync migrate --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			if check, err := git.CheckBeforeMigrate(client.Config().MigrationsDir); err == nil {
				fmt.Fprint(cmd.ErrOrStderr(), git.FormatPreMigrateWarnings(check))
			}

			opts := []enumsync.MigrationOption{enumsync.Target(target)}
			if dryRun {
				opts = append(opts, enumsync.DryRunTo(out))
			}
			if strict {
				opts = append(opts, enumsync.Strict())
			}

			start := time.Now()
			applied, err := client.Migrate(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			if !dryRun {
				printRevisions(out, applied, "applied", time.Since(start))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print SQL without executing")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the database drifted from a revision's base")
	cmd.Flags().StringVar(&target, "target", "", "Stop after this revision")
	return cmd
}

// printRevisions lists the revisions a migrate or rollback ran.
func printRevisions(w io.Writer, revisions []enumsync.Revision, verb string, elapsed time.Duration) {
	if len(revisions) == 0 {
		fmt.Fprintln(w, cli.Success("Database is up to date."))
		return
	}
	list := cli.NewList()
	for _, r := range revisions {
		list.AddSuccess(fmt.Sprintf("%s %s", r.Revision, r.Name))
	}
	fmt.Fprint(w, list.String())
	fmt.Fprint(w, cli.FormatSuccess(fmt.Sprintf("%s %s in %s", verb,
		cli.FormatCount(len(revisions), "revision", "revisions"), elapsed.Round(time.Millisecond))))
}
