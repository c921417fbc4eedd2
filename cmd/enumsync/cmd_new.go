package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/enumsync/internal/cli"
	"github.com/hlop3z/enumsync/internal/git"
	"github.com/hlop3z/enumsync/internal/lockfile"
	"github.com/hlop3z/enumsync/pkg/enumsync"
)

// newCmd writes a revision file from the current diff.
func newCmd(flags *globalFlags) *cobra.Command {
	var commit bool

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Write a revision from the current enum diff",
		Example: `  enumsync new add_banned_status
  enumsync new "rename done to completed"
  enumsync new add_banned_status --commit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			result, err := client.Generate(cmd.Context(), args[0])
			if errors.Is(err, enumsync.ErrNoChanges) {
				fmt.Fprintln(out, cli.Success("No enum changes detected; nothing written."))
				return nil
			}
			if err != nil {
				return err
			}

			printDiff(out, result.Diff)
			fmt.Fprintln(out)
			fmt.Fprint(out, cli.FormatSuccess("wrote "+cli.FilePath(result.Path)))

			if commit {
				dir := client.Config().MigrationsDir
				res, err := git.CommitRevision(dir, args[0], result.Path, lockfile.Path(dir))
				if err != nil {
					return err
				}
				if res == nil {
					fmt.Fprint(out, cli.FormatWarning("not in a git repository; nothing committed"))
				} else {
					fmt.Fprint(out, git.FormatCommitResult(res))
				}
			}
			fmt.Fprint(out, cli.FormatHelp("add renames under enum_values_to_rename before applying, then run 'enumsync migrate'"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&commit, "commit", false, "Commit the revision and lock file to git")
	return cmd
}
