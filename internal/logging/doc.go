// Package logging provides structured logging for the convey CLI using slog.
//
// It supports colorized TTY text output, JSON output, verbosity-derived
// levels, and helpers for tests:
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("scanned", "format", "claude", "agents", 4)
//
// Values whose keys look like secrets (TOKEN, KEY, SECRET, PASSWORD,
// AUTH, CREDENTIAL) are masked in text output; the same masking rules
// are exported for report printing.
package logging
