// Package commands implements the CLI commands for convey.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/convey/internal/config"
	"github.com/thoreinstein/convey/internal/errors"
	"github.com/thoreinstein/convey/internal/logging"
)

// version is set at build time via ldflags.
// Default to a development version for local builds.
const version = "0.1.0"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

// loadedConfig is the configuration resolved at startup.
var loadedConfig *config.Config

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("convey version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	loadedConfig, configLoadErr = config.Load("")
}

var rootCmd = &cobra.Command{
	Use:   "convey",
	Short: "Migrate AI coding assistant configurations between tools",
	Long: `convey migrates AI coding assistant configurations between
Claude Code, OpenCode, and Cursor.

It scans a source tool's settings, MCP servers, agents, slash
commands, skills, and rules, translates them into a common model, and
writes them out in the target tool's native layout. Existing target
files are backed up before anything is overwritten, and every
migration can be previewed with 'convey plan' first.`,
	Example: `  # See what a migration would do
  convey plan --from claude --to opencode

  # Migrate, backing up anything it overwrites
  convey migrate --from claude --to opencode

  # Compare two tools' effective configuration
  convey diff --left claude --right cursor

  # Undo the most recent migration
  convey restore`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		if configLoadErr != nil {
			return errors.NewConfigError(configLoadErr)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity
		if v == 0 {
			if val, ok := os.LookupEnv("CONVEY_DEBUG"); ok && (val == "1" || val == "true") {
				v = 2
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{Level: level}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// Execute runs the root command and decorates user-facing errors.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	fmt.Fprintf(rootCmd.ErrOrStderr(), "%s %v\n", color.RedString("Error:"), err)
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "%s %s\n", color.YellowString("Hint:"), exitErr.Suggestion)
	}
	return err
}
