package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/errors"
	"github.com/thoreinstein/convey/internal/scan"
)

var (
	validateFormat  string
	validateGlobal  bool
	validateProject string
	validateJSON    bool
)

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "", "format to validate: claude, opencode, cursor")
	validateCmd.Flags().BoolVar(&validateGlobal, "global", false, "validate the user-wide scope only")
	validateCmd.Flags().StringVar(&validateProject, "project", "", "validate this project root")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a tool's configuration for problems",
	Long: `Rescan a tool's configuration and check it for problems:
duplicate names, MCP servers with neither a command nor a URL, invalid
agent modes, out-of-range temperatures.

Run it after a migration to confirm the target is coherent. Exits
non-zero when issues are found.

Examples:
  convey validate --format opencode
  convey validate --format claude --project . --json`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, _ []string) error {
	format, err := parseFormatFlag(validateFormat, "format")
	if err != nil {
		return err
	}

	result, err := scan.Scan(format, scopeOptions(validateGlobal, validateProject, false, zeroTime))
	if err != nil {
		return err
	}
	printWarnings(cmd.ErrOrStderr(), result.Warnings)

	issues := canonical.Validate(result)
	if validateJSON {
		if err := printJSON(cmd, struct {
			Issues []canonical.Issue `json:"issues"`
		}{issues}); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		if len(issues) == 0 {
			fmt.Fprintf(out, "%s %s configuration is valid.\n", color.GreenString("OK:"), format.DisplayName())
			return nil
		}
		for _, issue := range issues {
			name := issue.Name
			if name != "" {
				name = " " + name
			}
			fmt.Fprintf(out, "%s [%s] %s%s: %s\n",
				color.RedString("Issue:"), issue.Scope, issue.Category, name, issue.Message)
		}
	}

	if len(issues) > 0 {
		return errors.NewExitError(
			errors.Newf("%d validation issue(s) found", len(issues)), errors.ExitUser)
	}
	return nil
}
