package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/enumsync/internal/cli"
	"github.com/hlop3z/enumsync/internal/lockfile"
	"github.com/hlop3z/enumsync/pkg/enumsync"
)

// lockCmd records or verifies revision file checksums.
func lockCmd(flags *globalFlags) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Record revision file checksums in " + lockfile.FileName,
		Long: `Record the SHA-256 of every revision file in ` + lockfile.FileName + `. migrate and
rollback refuse to run while revision files differ from the lock file.
'enumsync new' updates the lock file automatically.`,
		Example: `  enumsync lock          # Accept the current revision files
  enumsync lock --check  # Exit 1 when revision files were edited`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			if !check {
				if err := client.Lock(); err != nil {
					return err
				}
				fmt.Fprint(out, cli.FormatSuccess("wrote "+cli.FilePath(lockfile.FileName)))
				return nil
			}

			result, err := client.VerifyLock()
			if err != nil {
				return err
			}
			printLockResult(cmd, result)
			if !result.Valid() {
				return errSilent
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Verify instead of writing")
	return cmd
}

func printLockResult(cmd *cobra.Command, result *enumsync.LockResult) {
	out := cmd.OutOrStdout()
	if !result.Exists {
		fmt.Fprint(out, cli.FormatWarning(lockfile.FileName+" not found", "run 'enumsync lock' to create it"))
		return
	}

	list := cli.NewList()
	for _, name := range result.Verified {
		list.AddSuccess(name)
	}
	for _, name := range result.Modified {
		list.AddError(name + " " + cli.Dim("(modified)"))
	}
	for _, name := range result.New {
		list.AddWarning(name + " " + cli.Dim("(not locked)"))
	}
	for _, name := range result.Removed {
		list.AddError(name + " " + cli.Dim("(deleted)"))
	}
	fmt.Fprint(out, list.String())

	if result.Valid() {
		fmt.Fprint(out, cli.FormatSuccess(cli.FormatCount(len(result.Verified), "revision", "revisions")+" verified"))
		return
	}
	fmt.Fprint(out, cli.FormatHelp("if the changes are intended, run 'enumsync lock' to record them"))
}
