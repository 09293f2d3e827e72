package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/convey/internal/backup"
	"github.com/thoreinstein/convey/internal/errors"
)

var (
	restoreList bool
	restoreDir  string
	restoreJSON bool
)

func init() {
	restoreCmd.Flags().BoolVar(&restoreList, "list", false, "list backups instead of restoring")
	restoreCmd.Flags().StringVar(&restoreDir, "dir", "", "backup root (default: configured backup dir)")
	restoreCmd.Flags().BoolVar(&restoreJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-id]",
	Short: "Restore files from a migration backup",
	Long: `Restore the files a migration overwrote.

With a backup ID, restores that snapshot. Without one, opens an
interactive picker over the available backups. Every file in the
snapshot is written back to its original location, replacing whatever
is there now.

Examples:
  # See what can be restored
  convey restore --list

  # Pick interactively
  convey restore

  # Restore a specific snapshot
  convey restore 20250601T120000`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	dir := restoreDir
	if dir == "" && loadedConfig != nil {
		dir = loadedConfig.Backup.Dir
	}
	manager := backup.NewManager(dir)

	if restoreList {
		return listBackups(cmd, manager)
	}

	var id string
	if len(args) == 1 {
		id = args[0]
	} else {
		picked, err := pickBackup(manager)
		if err != nil {
			return err
		}
		if picked == "" {
			return nil
		}
		id = picked
	}

	result, err := manager.Restore(id)
	if err != nil {
		if errors.Is(err, errors.ErrNoBackupsFound) {
			return errors.NewUserError(err, "run 'convey restore --list' to see available backups")
		}
		return err
	}

	if restoreJSON {
		return printJSON(cmd, struct {
			Restored []string `json:"restored,omitempty"`
			Errors   []string `json:"errors,omitempty"`
		}{result.Restored, result.Errors})
	}

	out := cmd.OutOrStdout()
	for _, path := range result.Restored {
		fmt.Fprintf(out, "  %s %s\n", color.GreenString("✓"), path)
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(out, "  %s %s\n", color.RedString("✗"), msg)
	}
	fmt.Fprintf(out, "Restored %d file(s) from %s\n", len(result.Restored), id)

	if len(result.Errors) > 0 {
		return errors.NewExitError(
			errors.Newf("%d file(s) failed to restore", len(result.Errors)), errors.ExitSystem)
	}
	return nil
}

func listBackups(cmd *cobra.Command, manager *backup.Manager) error {
	manifests, err := manager.List()
	if err != nil {
		return err
	}
	if restoreJSON {
		return printJSON(cmd, manifests)
	}

	out := cmd.OutOrStdout()
	if len(manifests) == 0 {
		fmt.Fprintln(out, "No backups found.")
		return nil
	}
	for _, m := range manifests {
		label := m.Label
		if label != "" {
			label = "  " + label
		}
		fmt.Fprintf(out, "%s  %d file(s)%s\n", color.New(color.Bold).Sprint(m.ID), len(m.Files), label)
	}
	return nil
}

// pickBackup opens a fuzzy picker over the available backups. An
// aborted picker returns an empty ID and no error.
func pickBackup(manager *backup.Manager) (string, error) {
	manifests, err := manager.List()
	if err != nil {
		return "", err
	}
	if len(manifests) == 0 {
		return "", errors.NewUserError(errors.ErrNoBackupsFound, "run a migration first")
	}

	idx, err := fuzzyfinder.Find(
		manifests,
		func(i int) string {
			return fmt.Sprintf("%s  %s (%d files)", manifests[i].ID, manifests[i].Label, len(manifests[i].Files))
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			m := manifests[i]
			preview := fmt.Sprintf("Backup: %s\nCreated: %s\nLabel: %s\n\nFiles:\n",
				m.ID, m.CreatedAt.Format("2006-01-02 15:04:05"), m.Label)
			for _, f := range m.Files {
				preview += "  " + f.Path + "\n"
			}
			return preview
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", nil
		}
		return "", errors.Wrap(err, "picking backup")
	}
	return manifests[idx].ID, nil
}
