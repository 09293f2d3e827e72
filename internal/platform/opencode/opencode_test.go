package opencode

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/mcp"
	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/internal/platform"
)

func TestParseAgent(t *testing.T) {
	data := []byte(`---
description: Reviews pull requests
mode: subagent
model: anthropic/claude-sonnet-4-5
temperature: 0.1
tools:
  bash: true
  edit: false
---

Focus on correctness over style.
`)

	agent, err := ParseAgent("pr-reviewer", data)
	require.NoError(t, err)

	assert.Equal(t, "pr-reviewer", agent.Name)
	assert.Equal(t, "subagent", agent.Mode)
	assert.Equal(t, "anthropic/claude-sonnet-4-5", agent.Model)
	require.NotNil(t, agent.Temperature)
	assert.Equal(t, 0.1, *agent.Temperature)
	assert.Equal(t, map[string]bool{"bash": true, "edit": false}, agent.Tools)
	assert.Equal(t, "Focus on correctness over style.", agent.Body)
}

func TestParseCommand(t *testing.T) {
	data := []byte(`---
description: Summarize recent changes
agent: pr-reviewer
---

Summarize $ARGUMENTS.
`)

	cmd, err := ParseCommand("summarize", data)
	require.NoError(t, err)
	assert.Equal(t, "summarize", cmd.Name)
	assert.Equal(t, "pr-reviewer", cmd.Agent)
	assert.Equal(t, "Summarize $ARGUMENTS.", cmd.Body)
}

func TestConfigJSONCAndRoundTrip(t *testing.T) {
	src := []byte(`{
  // default model for new sessions
  "$schema": "https://opencode.ai/config.json",
  "model": "anthropic/claude-opus-4-1",
  "theme": "tokyonight",
  "mcp": {
    "fs": {
      "type": "local",
      "command": ["mcp-fs", "--root", "/"],
      "environment": {"FS_TOKEN": "tok"},
      "startupTimeout": 10,
    },
  },
}`)

	cfg, err := parseConfig(src)
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-opus-4-1", cfg.Model)

	fs := cfg.MCP["fs"]
	require.NotNil(t, fs)
	assert.Equal(t, "fs", fs.Name)
	assert.Equal(t, []string{"mcp-fs", "--root", "/"}, fs.Command)
	assert.Contains(t, fs.Extra(), "startupTimeout")
	assert.True(t, fs.IsEnabled())

	out, err := json.Marshal(cfg)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "tokyonight", got["theme"])
	assert.Equal(t, "https://opencode.ai/config.json", got["$schema"])
	server := got["mcp"].(map[string]any)["fs"].(map[string]any)
	assert.Equal(t, float64(10), server["startupTimeout"])
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestScanner(t *testing.T) (*Scanner, string) {
	t.Helper()
	root := t.TempDir()
	return &Scanner{
		GlobalDir:   filepath.Join(root, ".config", "opencode"),
		HistoryRoot: filepath.Join(root, "storage"),
	}, root
}

func TestScanGlobal(t *testing.T) {
	s, _ := newTestScanner(t)

	writeTestFile(t, filepath.Join(s.GlobalDir, "opencode.json"),
		`{"model": "anthropic/claude-sonnet-4-5", "mcp": {"db": {"type": "remote", "url": "https://db.example/mcp"}}}`)
	writeTestFile(t, filepath.Join(s.GlobalDir, "agent", "tester.md"),
		"---\ndescription: Writes tests\nmode: subagent\n---\nWrite table-driven tests.\n")
	writeTestFile(t, filepath.Join(s.GlobalDir, "command", "lint.md"),
		"---\ndescription: Lint the project\n---\nRun the linters.\n")

	res, err := s.Scan(platform.ScanOptions{Global: true})
	require.NoError(t, err)

	require.NotNil(t, res.Global.Config)
	assert.Equal(t, "anthropic/claude-sonnet-4-5", res.Global.Config.Model)
	assert.Contains(t, res.Global.Config.MCP, "db")
	require.Len(t, res.Global.Agents, 1)
	assert.Equal(t, "tester", res.Global.Agents[0].Name)
	require.Len(t, res.Global.Commands, 1)
	assert.Empty(t, res.Warnings)
}

func TestScanProject(t *testing.T) {
	s, root := newTestScanner(t)
	project := filepath.Join(root, "proj")

	writeTestFile(t, filepath.Join(project, "opencode.json"), `{"model": "anthropic/claude-haiku-4-5"}`)
	writeTestFile(t, filepath.Join(project, ".opencode", "agent", "docs.md"),
		"---\ndescription: Writes docs\n---\nKeep prose short.\n")
	writeTestFile(t, filepath.Join(project, "AGENTS.md"), "Run make check before committing.\n")

	res, err := s.Scan(platform.ScanOptions{Project: project})
	require.NoError(t, err)

	require.Len(t, res.Projects, 1)
	p := res.Projects[0]
	require.NotNil(t, p.Config)
	assert.Equal(t, "anthropic/claude-haiku-4-5", p.Config.Model)
	require.Len(t, p.Agents, 1)
	assert.Equal(t, "Run make check before committing.", p.Instructions)
}

func TestScanHistory(t *testing.T) {
	s, _ := newTestScanner(t)

	writeTestFile(t, filepath.Join(s.HistoryRoot, "session", "proj-slug", "ses_abc.json"),
		`{"id":"ses_abc","title":"Fix the build"}`)
	writeTestFile(t, filepath.Join(s.HistoryRoot, "message", "ses_abc", "msg_001.json"),
		`{"id":"msg_001","role":"user"}`)
	writeTestFile(t, filepath.Join(s.HistoryRoot, "message", "ses_abc", "msg_002.json"),
		`{"id":"msg_002","role":"assistant"}`)

	res, err := s.Scan(platform.ScanOptions{Global: true, IncludeHistory: true})
	require.NoError(t, err)

	require.Len(t, res.History, 1)
	tr := res.History[0]
	assert.Equal(t, paths.FormatOpenCode, tr.Format)
	assert.Equal(t, "ses_abc", tr.SessionID)
	assert.Len(t, tr.Parts, 2)
	assert.Contains(t, tr.Parts, "msg_001.json")
}

func TestToCanonical(t *testing.T) {
	enabled := false
	native := &ScanResult{
		Global: Scope{
			Config: &Config{
				Model: "anthropic/claude-opus-4-1",
				MCP: map[string]*MCPServer{
					"fs": {Name: "fs", Type: TypeLocal, Command: []string{"mcp-fs", "--root", "/"}, Enabled: &enabled},
				},
			},
			Agents: []*AgentFile{
				{Name: "tester", Mode: "subagent", Model: "anthropic/claude-sonnet-4-5",
					Tools: map[string]bool{"bash": true, "edit": true}},
			},
		},
	}

	got := ToCanonical(native)

	assert.Equal(t, paths.FormatOpenCode, got.Format)
	assert.Equal(t, "claude-opus-4-1", got.Global.Model)

	fs := got.Global.MCPServers["fs"]
	require.NotNil(t, fs)
	assert.Equal(t, "mcp-fs", fs.Command)
	assert.Equal(t, []string{"--root", "/"}, fs.Args)
	assert.Equal(t, mcp.TransportStdio, fs.Transport)
	assert.True(t, fs.Disabled)

	require.Len(t, got.Global.Agents, 1)
	agent := got.Global.Agents[0]
	assert.Equal(t, canonical.ModeSubagent, agent.Mode)
	assert.Equal(t, "claude-sonnet-4-5", agent.Model)
	assert.ElementsMatch(t, []string{"Bash", "Edit"}, agent.Tools)
}

func TestCanonicalModeUnknownIsDefault(t *testing.T) {
	assert.Equal(t, canonical.ModeDefault, canonicalMode("all"))
	assert.Equal(t, canonical.ModeDefault, canonicalMode(""))
}
