package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shelf-go/internal/app"
	"shelf-go/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a ShelfApp. The caller must call Close.
// operation names the CLI command being run (e.g. "bookmark add", "import").
func newApp(ctx context.Context, operation string) (*app.ShelfApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config (run `shelf config init` first): %w", err)
	}

	a, err := app.NewShelfApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

type appRunFunc func(cmd *cobra.Command, args []string, a *app.ShelfApp) error

// withApp wraps a command body with app setup and teardown. Failures are
// recorded on the operation and reported in the user's language.
func withApp(operation string, fn appRunFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), operation)
		if err != nil {
			return err
		}

		runErr := fn(cmd, args, a)
		if runErr != nil {
			a.Fail(runErr)
			runErr = a.Localize(runErr)
		}

		if err := a.Close(); err != nil && runErr == nil {
			runErr = a.Localize(err)
		}
		return runErr
	}
}

var rootCmd = &cobra.Command{
	Use:           "shelf",
	Short:         "Bookmark manager with folders, browser import and encrypted backups",
	SilenceUsage:  true,
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(bookmarkCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(langCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(serveCmd)
}
