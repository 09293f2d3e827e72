package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/diff"
	"github.com/thoreinstein/convey/internal/logging"
	"github.com/thoreinstein/convey/internal/platform"
	"github.com/thoreinstein/convey/internal/scan"
)

var (
	scanFormat         string
	scanGlobal         bool
	scanProject        string
	scanIncludeHistory bool
	scanSince          string
	scanShowSecrets    bool
	scanJSON           bool
)

func init() {
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "", "source format: claude, opencode, cursor")
	scanCmd.Flags().BoolVar(&scanGlobal, "global", false, "scan the user-wide scope only")
	scanCmd.Flags().StringVar(&scanProject, "project", "", "scan this project root")
	scanCmd.Flags().BoolVar(&scanIncludeHistory, "include-history", false, "include chat sessions")
	scanCmd.Flags().StringVar(&scanSince, "since", "", `only sessions modified since (duration or date)`)
	scanCmd.Flags().BoolVar(&scanShowSecrets, "show-secrets", false, "print MCP env values unmasked")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan one tool's configuration",
	Long: `Scan one tool's on-disk configuration and show it in convey's
common model: default model, MCP servers, agents, slash commands,
skills, and rules, per scope. Without --format, lists which tools look
installed on this machine.

Examples:
  # Which tools are installed here?
  convey scan

  # Everything Claude Code has configured
  convey scan --format claude

  # Just the current project's OpenCode config, as JSON
  convey scan --format opencode --project . --json`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, _ []string) error {
	if scanFormat == "" {
		return printDetections(cmd)
	}
	format, err := parseFormatFlag(scanFormat, "format")
	if err != nil {
		return err
	}
	since, err := parseSince(scanSince)
	if err != nil {
		return err
	}

	result, err := scan.Scan(format, scopeOptions(scanGlobal, scanProject, scanIncludeHistory, since))
	if err != nil {
		return err
	}

	if scanJSON {
		return printJSON(cmd, result)
	}

	printWarnings(cmd.ErrOrStderr(), result.Warnings)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", color.New(color.Bold).Sprintf("%s configuration", format.DisplayName()))

	printScope(cmd, diff.GlobalScope, result.Global)
	for _, p := range result.Projects {
		printScope(cmd, p.Root, p.ScopeConfig)
	}
	if len(result.History) > 0 {
		fmt.Fprintf(out, "\n  %d chat session(s)\n", len(result.History))
	}
	return nil
}

// printDetections lists every supported tool and whether its global
// config directory exists.
func printDetections(cmd *cobra.Command) error {
	results := platform.DetectAll()
	if scanJSON {
		return printJSON(cmd, results)
	}
	out := cmd.OutOrStdout()
	for _, r := range results {
		marker := color.GreenString("✓")
		if r.Status != platform.StatusInstalled {
			marker = color.New(color.Faint).Sprint("-")
		}
		fmt.Fprintf(out, "%s %-9s %s\n", marker, r.Format, r.GlobalConfig)
	}
	return nil
}

func printScope(cmd *cobra.Command, label string, sc canonical.ScopeConfig) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", color.CyanString(label))
	if sc.Empty() {
		fmt.Fprintln(out, "  (nothing configured)")
		return
	}
	if sc.Model != "" {
		fmt.Fprintf(out, "  model:    %s\n", sc.Model)
	}
	printServers(out, sc)
	printNames(out, "agents", sc.AgentNames())
	printNames(out, "commands", sc.CommandNames())
	printNames(out, "skills", sc.SkillNames())
	printNames(out, "rules", sc.RuleNames())
}

func printNames(out io.Writer, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(out, "  %-9s", label+":")
	for i, name := range names {
		if i > 0 {
			fmt.Fprint(out, ", ")
		}
		fmt.Fprint(out, name)
	}
	fmt.Fprintln(out)
}

// printServers lists MCP servers with their env, masking values whose
// keys look like secrets unless --show-secrets is set.
func printServers(out io.Writer, sc canonical.ScopeConfig) {
	names := make([]string, 0, len(sc.MCPServers))
	for name := range sc.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		server := sc.MCPServers[name]
		fmt.Fprintf(out, "  mcp:      %s (%s)\n", name, server.Transport)
		env := logging.MaskEnv(server.Env, scanShowSecrets)
		keys := make([]string, 0, len(env))
		for k := range env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "            %s=%s\n", k, env[k])
		}
	}
}
