package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shelf-go/internal/app"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a browser bookmark file or a JSON export",
	Long: `Import a Netscape bookmark file (as exported by Chrome, Firefox, Safari
or Edge) or a JSON export made with "shelf export --format json".

By default the existing bookmarks and categories are replaced. With --merge,
entries are added or updated by id and nothing is removed.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp("import", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		merge, _ := cmd.Flags().GetBool("merge")

		res, err := a.ImportFile(args[0], merge)
		if err != nil {
			return err
		}

		msg := a.T("settings.importSuccess")
		if res.Merged {
			msg = a.T("import.merged")
		}
		fmt.Printf("%s: %d bookmarks, %d categories (%s)\n", msg, res.Bookmarks, res.Categories, res.Format)
		return nil
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export bookmarks as a Netscape HTML file or JSON",
	Args:  cobra.NoArgs,
	RunE: withApp("export", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		if output == "" || output == "-" {
			return a.Export(os.Stdout, format)
		}
		if err := a.ExportFile(output, format); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s: %s\n", a.T("export.success"), output)
		return nil
	}),
}

var backupCmd = &cobra.Command{
	Use:   "backup FILE",
	Short: "Write an encrypted backup of all bookmarks and categories",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("backup", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		if err := a.Backup(args[0]); err != nil {
			return err
		}
		nb, nc := a.Repository().Counts()
		fmt.Printf("%s: %s (%d bookmarks, %d categories)\n", a.T("backup.success"), args[0], nb, nc)
		return nil
	}),
}

var restoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Replace all bookmarks and categories with an encrypted backup",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("restore", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			ok, err := confirm("Replace all current bookmarks with the backup?", a.T("confirm.yes"), a.T("confirm.no"))
			if err != nil || !ok {
				return err
			}
		}

		passphrase, err := readPassphrase("Backup passphrase: ")
		if err != nil {
			return err
		}
		if err := a.Restore(args[0], passphrase); err != nil {
			return err
		}

		nb, nc := a.Repository().Counts()
		fmt.Printf("%s: %d bookmarks, %d categories\n", a.T("restore.success"), nb, nc)
		return nil
	}),
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot FILE",
	Short: "Copy the raw store database to FILE (sqlite store only)",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("snapshot", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		if err := a.SnapshotStore(args[0]); err != nil {
			return err
		}
		fmt.Printf("Snapshot written to %s\n", args[0])
		return nil
	}),
}

func init() {
	importCmd.Flags().BoolP("merge", "m", false, "Merge into existing data instead of replacing it")
	exportCmd.Flags().StringP("format", "f", app.FormatHTML, "Export format: html or json")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	restoreCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
