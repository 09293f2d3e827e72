package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	addMigrateFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview a migration without writing anything",
	Long: `Preview a migration: scan, convert, and report exactly what
'convey migrate' would write, skip, and flag for manual follow-up,
without touching the filesystem.

Examples:
  convey plan --from claude --to opencode
  convey plan --from opencode --to cursor --project . --json`,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, _ []string) error {
	out, err := executeMigration(cmd, true)
	if err != nil {
		return err
	}
	if migrateJSON {
		return printJSON(cmd, out)
	}
	printMigration(cmd, out)
	return nil
}
