package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hlop3z/enumsync/internal/cli"
	"github.com/hlop3z/enumsync/pkg/enumsync"
)

const watchDebounce = 200 * time.Millisecond

// watchCmd re-runs diff whenever a schema file changes.
func watchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-run diff whenever a schema file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchSchemas(ctx, client, cfg.SchemasDir, cmd.OutOrStdout())
		},
	}
}

// watchSchemas prints a diff now and after every burst of schema file
// changes, until ctx is done.
func watchSchemas(ctx context.Context, client *enumsync.Client, dir string, out io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("file watcher failed: %w", err)
	}
	defer watcher.Close()

	if err := addDirs(watcher, dir); err != nil {
		return err
	}
	fmt.Fprintf(out, "  Watching: %s (Ctrl+C to stop)\n\n", cli.FilePath(dir))
	runDiff(ctx, client, out)

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				// New subdirectories need their own watch.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addDirs(watcher, event.Name)
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				timer.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprint(out, cli.FormatWarning(err.Error()))
		case <-timer.C:
			fmt.Fprintf(out, "%s\n", cli.Dim(time.Now().Format("15:04:05")+" schema change"))
			runDiff(ctx, client, out)
		}
	}
}

// addDirs watches root and every directory below it.
func addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

// runDiff prints the current diff; errors are printed and watching goes on.
func runDiff(ctx context.Context, client *enumsync.Client, out io.Writer) {
	result, err := client.Diff(ctx)
	if err != nil {
		fmt.Fprint(out, cli.FormatError(err))
		return
	}
	printDiff(out, result)
	fmt.Fprintln(out)
}
