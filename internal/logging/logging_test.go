package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		want      slog.Level
	}{
		{0, slog.LevelWarn},
		{1, slog.LevelInfo},
		{2, slog.LevelDebug},
		{5, slog.LevelDebug},
		{-1, slog.LevelWarn},
	}

	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: FormatText,
		Output: &buf,
	})

	logger.Info("scan complete", "format", "claude", "agents", 3)

	out := buf.String()
	if !strings.Contains(out, "scan complete") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "format=claude") {
		t.Errorf("output missing attr: %q", out)
	}

	buf.Reset()
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug message should be suppressed at info level: %q", buf.String())
	}
}

func TestHandlerMasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: FormatText,
		Output: &buf,
	})

	logger.Info("server env", "API_TOKEN", "sk-abcdef123456")

	out := buf.String()
	if strings.Contains(out, "sk-abcdef123456") {
		t.Errorf("secret leaked into output: %q", out)
	}
	if !strings.Contains(out, "3456") {
		t.Errorf("masked value should keep the tail: %q", out)
	}
}

func TestMaskEnv(t *testing.T) {
	env := map[string]string{
		"GITHUB_TOKEN": "ghp_secret9876",
		"PATH":         "/usr/bin",
	}

	masked := MaskEnv(env, false)
	if masked["GITHUB_TOKEN"] != "****9876" {
		t.Errorf("GITHUB_TOKEN = %q", masked["GITHUB_TOKEN"])
	}
	if masked["PATH"] != "/usr/bin" {
		t.Errorf("PATH should be untouched, got %q", masked["PATH"])
	}

	shown := MaskEnv(env, true)
	if shown["GITHUB_TOKEN"] != "ghp_secret9876" {
		t.Errorf("show-secrets should return originals, got %q", shown["GITHUB_TOKEN"])
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: FormatJSON,
		Output: &buf,
	})

	logger.Info("hello")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestMultiHandlerLevelGating(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	))

	logger.Debug("quiet detail")
	logger.Warn("loud problem")

	if !strings.Contains(debugBuf.String(), "quiet detail") || !strings.Contains(debugBuf.String(), "loud problem") {
		t.Errorf("debug handler should see both records, got %q", debugBuf.String())
	}
	if strings.Contains(warnBuf.String(), "quiet detail") {
		t.Errorf("warn handler should not see debug records, got %q", warnBuf.String())
	}
	if !strings.Contains(warnBuf.String(), "loud problem") {
		t.Errorf("warn handler should see warnings, got %q", warnBuf.String())
	}
}
