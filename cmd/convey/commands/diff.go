package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/convey/internal/diff"
	"github.com/thoreinstein/convey/internal/errors"
	"github.com/thoreinstein/convey/internal/scan"
)

var (
	diffFrom    string
	diffTo      string
	diffGlobal  bool
	diffProject string
	diffJSON    bool
)

func init() {
	diffCmd.Flags().StringVar(&diffFrom, "from", "", "source format: claude, opencode, cursor")
	diffCmd.Flags().StringVar(&diffTo, "to", "", "target format: claude, opencode, cursor")
	diffCmd.Flags().BoolVar(&diffGlobal, "global", false, "compare the user-wide scope only")
	diffCmd.Flags().StringVar(&diffProject, "project", "", "compare this project root")
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(diffCmd)
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare two tools' configurations",
	Long: `Compare two tools' configurations in the common model: which
MCP servers, agents, commands, skills, and rules exist on one side but
not the other, and which differ.

The comparison is semantic, not file-level, so layout differences
between the tools do not show up as changes.

Examples:
  convey diff --from claude --to opencode
  convey diff --from claude --to cursor --project . --json`,
	RunE: runDiff,
}

func runDiff(cmd *cobra.Command, _ []string) error {
	from, err := parseFormatFlag(diffFrom, "from")
	if err != nil {
		return err
	}
	to, err := parseFormatFlag(diffTo, "to")
	if err != nil {
		return err
	}
	if from == to {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrSameFormat, "%s", from),
			"pick different --from and --to formats")
	}

	opts := scopeOptions(diffGlobal, diffProject, false, zeroTime)
	fromScan, err := scan.Scan(from, opts)
	if err != nil {
		return err
	}
	toScan, err := scan.Scan(to, opts)
	if err != nil {
		return err
	}

	printWarnings(cmd.ErrOrStderr(), fromScan.Warnings)
	printWarnings(cmd.ErrOrStderr(), toScan.Warnings)

	summary := diff.Compare(fromScan, toScan)
	if diffJSON {
		return printJSON(cmd, summary)
	}

	out := cmd.OutOrStdout()
	if summary.Identical() {
		fmt.Fprintf(out, "%s and %s match.\n", from.DisplayName(), to.DisplayName())
		return nil
	}

	printItems(out, summary.OnlyInSource, color.RedString("-"), fmt.Sprintf("only in %s", from))
	printItems(out, summary.OnlyInTarget, color.GreenString("+"), fmt.Sprintf("only in %s", to))
	for _, item := range summary.InBoth {
		if !item.Differs {
			continue
		}
		fmt.Fprintf(out, "  %s %s %s %q differs\n", color.YellowString("~"), item.Scope, item.Category, item.Name)
	}
	return nil
}

func printItems(out io.Writer, items []diff.Item, marker, suffix string) {
	for _, item := range items {
		fmt.Fprintf(out, "  %s %s %s %q %s\n", marker, item.Scope, item.Category, item.Name, suffix)
	}
}
