package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/convey/internal/errors"
	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/internal/platform"
)

// zeroTime is the unset --since cutoff.
var zeroTime time.Time

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return errors.Wrap(enc.Encode(v), "encoding output")
}

// parseFormatFlag validates a --from/--to/--format value.
func parseFormatFlag(name, flag string) (paths.Format, error) {
	if name == "" {
		return "", errors.NewUserError(
			errors.Newf("--%s is required", flag),
			"valid formats: claude, opencode, cursor")
	}
	f, err := paths.ParseFormat(name)
	if err != nil {
		return "", errors.NewUserError(err, "valid formats: claude, opencode, cursor")
	}
	return f, nil
}

// parseSince accepts a duration ("72h"), a date ("2025-06-01"), or a
// full RFC 3339 timestamp and returns the cutoff time.
func parseSince(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return time.Now().Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, errors.NewUserError(
		errors.Newf("invalid --since value %q", value),
		`use a duration like "72h", a date like "2025-06-01", or a timestamp like "2025-06-01T10:00:00Z"`)
}

// scopeOptions builds scan options from the shared scope flags. With
// neither --global nor --project given, both scopes are scanned with
// the project defaulting to the current directory.
func scopeOptions(global bool, project string, includeHistory bool, since time.Time) platform.ScanOptions {
	opts := platform.ScanOptions{
		Global:         global,
		Project:        project,
		IncludeHistory: includeHistory,
		Since:          since,
	}
	if !global && project == "" {
		opts.Global = true
		opts.Project = "."
	}
	return opts
}

// printWarnings reports scan or conversion warnings on stderr.
func printWarnings(w io.Writer, warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "%s %s\n", color.YellowString("Warning:"), warning)
	}
}
