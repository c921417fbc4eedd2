// Package main provides the enumsync CLI, which keeps Postgres enumerated
// types in line with the enums declared in YAML schema files.
//
// Usage:
//
//	enumsync diff              # Show the enum changes a new revision would hold
//	enumsync new <name>        # Write a revision from the current diff
//	enumsync migrate           # Apply pending revisions
//	enumsync rollback [steps]  # Roll back applied revisions (default: 1)
//	enumsync status            # Show applied/pending revisions
//	enumsync check             # Exit non-zero when the database drifted
//	enumsync lock              # Record revision file checksums
//	enumsync watch             # Re-run diff whenever a schema file changes
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hlop3z/enumsync/internal/cli"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configFile    string
	databaseURL   string
	schemasDir    string
	migrationsDir string
	schemas       []string
	verbose       bool
}

// errSilent reports failure through the exit code only; the command already
// printed its output.
var errSilent = errors.New("enumsync: failed")

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "enumsync",
		Short: "Reconcile Postgres enum types with declared schema files",
		Long: `enumsync compares the enums declared in YAML schema files with the
enumerated types in a Postgres database, writes revision files for the
differences, and applies them, migrating every column that uses a changed enum.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", defaultConfigFile, "Path to config file")
	pf.StringVarP(&flags.databaseURL, "database-url", "d", "", "Database connection URL")
	pf.StringVar(&flags.schemasDir, "schemas-dir", "", "Directory holding schema files (default ./schemas)")
	pf.StringVar(&flags.migrationsDir, "migrations-dir", "", "Directory holding revision files (default ./migrations)")
	pf.StringSliceVarP(&flags.schemas, "schema", "s", nil, "Database schemas to reconcile (repeatable; default from config)")
	pf.BoolVar(&flags.verbose, "verbose", false, "Log engine activity at debug level")
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	rootCmd.AddCommand(
		diffCmd(flags),
		newCmd(flags),
		migrateCmd(flags),
		rollbackCmd(flags),
		statusCmd(flags),
		checkCmd(flags),
		lockCmd(flags),
		watchCmd(flags),
	)
	return rootCmd
}

// normalizeFlagName lets flags be spelled like their config keys, so
// --database_url works as --database-url.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
			printError(os.Stderr, err, verbose)
		}
		os.Exit(1)
	}
}

// printError writes err to w, with troubleshooting help for setup failures
// and rustc-style diagnostics for engine errors. verbose adds the stack
// captured where the error was created.
func printError(w io.Writer, err error, verbose bool) {
	if handleClientError(err) {
		return
	}
	fmt.Fprint(w, cli.FormatError(err))
	if verbose {
		fmt.Fprint(w, cli.FormatStack(err))
	}
}
