package commands

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/convey/internal/backup"
	"github.com/thoreinstein/convey/internal/convert"
	"github.com/thoreinstein/convey/internal/errors"
	"github.com/thoreinstein/convey/internal/history"
	"github.com/thoreinstein/convey/internal/logging"
	"github.com/thoreinstein/convey/internal/scan"
	"github.com/thoreinstein/convey/internal/write"
)

var (
	migrateFrom           string
	migrateTo             string
	migrateGlobal         bool
	migrateProject        string
	migrateIncludeHistory bool
	migrateSince          string
	migrateDryRun         bool
	migrateForce          bool
	migrateBackup         bool
	migrateStrategy       string
	migrateJSON           bool
)

func init() {
	addMigrateFlags(migrateCmd)
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "compute everything, write nothing")
	rootCmd.AddCommand(migrateCmd)
}

func addMigrateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&migrateFrom, "from", "", "source format: claude, opencode, cursor")
	cmd.Flags().StringVar(&migrateTo, "to", "", "target format: claude, opencode, cursor")
	cmd.Flags().BoolVar(&migrateGlobal, "global", false, "migrate the user-wide scope only")
	cmd.Flags().StringVar(&migrateProject, "project", "", "migrate this project root")
	cmd.Flags().BoolVar(&migrateIncludeHistory, "include-history", false, "also convert chat sessions")
	cmd.Flags().StringVar(&migrateSince, "since", "", "only sessions modified since (duration or date)")
	cmd.Flags().BoolVar(&migrateForce, "force", false, "overwrite existing target files")
	cmd.Flags().BoolVar(&migrateBackup, "backup", true, "snapshot overwritten files (--backup=false to skip)")
	cmd.Flags().StringVar(&migrateStrategy, "merge-strategy", "",
		"how to treat existing target files: preserve-existing, overwrite, merge")
	cmd.Flags().BoolVar(&migrateJSON, "json", false, "output as JSON")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate configuration from one tool to another",
	Long: `Migrate configuration from one tool to another.

The source is scanned, translated into the target tool's layout, and
written out. Existing target files are handled according to
--merge-strategy; anything overwritten is snapshotted first so
'convey restore' can undo the migration.

Examples:
  # Claude Code to OpenCode, current project plus global scope
  convey migrate --from claude --to opencode

  # Only this project, overwriting what's there
  convey migrate --from claude --to cursor --project . --force

  # Bring chat history along
  convey migrate --from claude --to opencode --include-history`,
	RunE: runMigrate,
}

// migrationOutput is the --json rendering of one migration.
type migrationOutput struct {
	Report      *convert.Report `json:"report"`
	Written     []string        `json:"written,omitempty"`
	Skipped     []string        `json:"skipped,omitempty"`
	WriteErrors []string        `json:"writeErrors,omitempty"`
	BackupID    string          `json:"backupId,omitempty"`
	DryRun      bool            `json:"dryRun,omitempty"`
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	out, err := executeMigration(cmd, migrateDryRun)
	if err != nil {
		return err
	}
	if migrateJSON {
		return printJSON(cmd, out)
	}
	printMigration(cmd, out)
	return nil
}

// executeMigration is the scan-convert-write pipeline shared by
// migrate and plan.
func executeMigration(cmd *cobra.Command, dryRun bool) (*migrationOutput, error) {
	logger := logging.FromContext(cmd.Context())

	from, err := parseFormatFlag(migrateFrom, "from")
	if err != nil {
		return nil, err
	}
	to, err := parseFormatFlag(migrateTo, "to")
	if err != nil {
		return nil, err
	}
	if from == to {
		return nil, errors.NewUserError(
			errors.Wrapf(errors.ErrSameFormat, "%s", from),
			"pick different --from and --to formats")
	}
	since, err := parseSince(migrateSince)
	if err != nil {
		return nil, err
	}

	opts := scopeOptions(migrateGlobal, migrateProject, migrateIncludeHistory, since)
	logger.Info("scanning", slog.String("format", from.String()))
	scanned, err := scan.Scan(from, opts)
	if err != nil {
		return nil, err
	}

	result, err := convert.Convert(scanned, to)
	if err != nil {
		return nil, err
	}
	result.Report.Warnings = append(scanned.Warnings, result.Report.Warnings...)

	if migrateIncludeHistory {
		if !history.Supported(to) {
			result.Report.Skipped = append(result.Report.Skipped, convert.Entry{
				Category: "history",
				Name:     fmt.Sprintf("%d session(s)", len(scanned.History)),
				Reason:   fmt.Sprintf("%s has no writable session store", to),
			})
		} else {
			sessions, warnings := history.Parse(scanned.History)
			result.Report.Warnings = append(result.Report.Warnings, warnings...)
			files, warnings, err := history.Render(sessions, to)
			if err != nil {
				return nil, err
			}
			result.Report.Warnings = append(result.Report.Warnings, warnings...)
			for path, data := range files {
				result.Files[path] = data
			}
			for _, session := range sessions {
				result.Report.Converted = append(result.Report.Converted, convert.Entry{
					Category: "history", Name: session.ID,
				})
			}
		}
	}

	strategy := migrateStrategy
	if strategy == "" && loadedConfig != nil {
		strategy = loadedConfig.MergeStrategy
	}

	writeOpts := write.Options{
		DryRun:   dryRun,
		Force:    migrateForce,
		Strategy: strategy,
	}

	var manager *backup.Manager
	var session *backup.Session
	if !dryRun && migrateBackup {
		backupDir := ""
		if loadedConfig != nil {
			backupDir = loadedConfig.Backup.Dir
		}
		manager = backup.NewManager(backupDir)
		session = manager.Begin(fmt.Sprintf("%s to %s", from, to))
		writeOpts.Session = session
	}

	written, err := write.Write(result.Files, writeOpts)
	if session != nil {
		if finishErr := session.Finish(); finishErr != nil && err == nil {
			err = finishErr
		}
	}
	if err != nil {
		return nil, err
	}

	if manager != nil && loadedConfig != nil && loadedConfig.Backup.Retention > 0 {
		if pruned, pruneErr := manager.Prune(loadedConfig.Backup.Retention); pruneErr != nil {
			logger.Warn("pruning old backups failed", slog.Any("error", pruneErr))
		} else if len(pruned) > 0 {
			logger.Debug("pruned old backups", slog.Int("count", len(pruned)))
		}
	}

	output := &migrationOutput{
		Report:      result.Report,
		Written:     written.Written,
		Skipped:     written.Skipped,
		WriteErrors: written.Errors,
		DryRun:      dryRun,
	}
	if session != nil && !session.Empty() {
		output.BackupID = session.ID()
	}
	return output, nil
}

func printMigration(cmd *cobra.Command, out *migrationOutput) {
	w := cmd.OutOrStdout()
	printWarnings(cmd.ErrOrStderr(), out.Report.Warnings)

	verb := "wrote"
	if out.DryRun {
		verb = "would write"
	}
	fmt.Fprintf(w, "%s %s: %s %d file(s), skipped %d\n",
		color.New(color.Bold).Sprintf("%s → %s", out.Report.Source.DisplayName(), out.Report.Target.DisplayName()),
		migrationSummary(out.Report), verb, len(out.Written), len(out.Skipped))

	for _, path := range out.Written {
		fmt.Fprintf(w, "  %s %s\n", color.GreenString("+"), path)
	}
	for _, path := range out.Skipped {
		fmt.Fprintf(w, "  %s %s (exists)\n", color.New(color.Faint).Sprint("="), path)
	}
	for _, entry := range out.Report.Skipped {
		fmt.Fprintf(w, "  %s %s %q: %s\n", color.YellowString("-"), entry.Category, entry.Name, entry.Reason)
	}
	for _, entry := range out.Report.Manual {
		fmt.Fprintf(w, "  %s %s %q: %s\n", color.RedString("!"), entry.Category, entry.Name, entry.Reason)
	}
	for _, entry := range out.Report.Errors {
		fmt.Fprintf(w, "  %s %s %q: %s\n", color.RedString("✗"), entry.Category, entry.Name, entry.Reason)
	}
	for _, msg := range out.WriteErrors {
		fmt.Fprintf(w, "  %s %s\n", color.RedString("✗"), msg)
	}
	if out.BackupID != "" {
		fmt.Fprintf(w, "\nBackup: %s (undo with 'convey restore %s')\n", out.BackupID, out.BackupID)
	}
}

func migrationSummary(r *convert.Report) string {
	return fmt.Sprintf("%d item(s) converted", len(r.Converted))
}
