package claude

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/convey/internal/mcp"
	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/internal/platform"
)

func TestParseAgent(t *testing.T) {
	data := []byte(`---
description: Reviews code for correctness
model: opus
tools: Read, Grep, Bash
reviewDepth: thorough
---

Look closely at every diff.
`)

	agent, err := ParseAgent("code-reviewer", data)
	require.NoError(t, err)

	assert.Equal(t, "code-reviewer", agent.Name)
	assert.Equal(t, "Reviews code for correctness", agent.Description)
	assert.Equal(t, "opus", agent.Model)
	assert.Equal(t, ToolList{"Read", "Grep", "Bash"}, agent.Tools)
	assert.Equal(t, "Look closely at every diff.", agent.Body)
	assert.Equal(t, map[string]any{"reviewDepth": "thorough"}, agent.Extra)
}

func TestParseAgentNoFrontmatter(t *testing.T) {
	agent, err := ParseAgent("plain", []byte("Just a body.\n"))
	require.NoError(t, err)
	assert.Equal(t, "plain", agent.Name)
	assert.Equal(t, "Just a body.", agent.Body)
	assert.Nil(t, agent.Extra)
}

func TestParseCommand(t *testing.T) {
	data := []byte(`---
description: Run the test suite
argument-hint: "[package]"
allowed-tools:
  - Bash
  - Read
---

Run tests for $ARGUMENTS.
`)

	cmd, err := ParseCommand("test", data)
	require.NoError(t, err)

	assert.Equal(t, "test", cmd.Name)
	assert.Equal(t, "Run the test suite", cmd.Description)
	assert.Equal(t, "[package]", cmd.ArgumentHint)
	assert.Equal(t, ToolList{"Bash", "Read"}, cmd.AllowedTools)
}

func TestToolListForms(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want ToolList
	}{
		{"comma separated", `tools: Read, Write, Bash`, ToolList{"Read", "Write", "Bash"}},
		{"space separated", `tools: Read Write`, ToolList{"Read", "Write"}},
		{"list form", "tools:\n  - Read\n  - Write", ToolList{"Read", "Write"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc struct {
				Tools ToolList `yaml:"tools"`
			}
			require.NoError(t, yaml.Unmarshal([]byte(tt.yaml), &doc))
			assert.Equal(t, tt.want, doc.Tools)
		})
	}
}

func TestMCPConfigRoundTrip(t *testing.T) {
	src := []byte(`{
  "numStartups": 42,
  "mcpServers": {
    "github": {
      "type": "stdio",
      "command": "gh-mcp",
      "args": ["serve"],
      "env": {"GITHUB_TOKEN": "tok"},
      "customTimeout": 30
    }
  }
}`)

	var cfg MCPConfig
	require.NoError(t, json.Unmarshal(src, &cfg))

	server := cfg.MCPServers["github"]
	require.NotNil(t, server)
	assert.Equal(t, "github", server.Name)
	assert.Equal(t, "gh-mcp", server.Command)
	assert.Contains(t, server.Extra(), "customTimeout")

	out, err := json.Marshal(&cfg)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, float64(42), got["numStartups"])
	servers := got["mcpServers"].(map[string]any)
	gh := servers["github"].(map[string]any)
	assert.Equal(t, float64(30), gh["customTimeout"])
	assert.Equal(t, "gh-mcp", gh["command"])
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
		GlobalDir:     filepath.Join(root, ".claude"),
		GlobalMCPPath: filepath.Join(root, ".claude.json"),
		HistoryRoot:   filepath.Join(root, ".claude", "projects"),
	}, root
}

func TestScanGlobal(t *testing.T) {
	s, root := newTestScanner(t)

	writeTestFile(t, filepath.Join(s.GlobalDir, "settings.json"), `{"model": "opus", "theme": "dark"}`)
	writeTestFile(t, s.GlobalMCPPath, `{"mcpServers": {"fs": {"command": "mcp-fs"}}}`)
	writeTestFile(t, filepath.Join(s.GlobalDir, "agents", "reviewer.md"),
		"---\ndescription: Reviews code\n---\nReview it.\n")
	writeTestFile(t, filepath.Join(s.GlobalDir, "commands", "deploy.md"),
		"---\ndescription: Deploy\n---\nShip it.\n")
	writeTestFile(t, filepath.Join(s.GlobalDir, "skills", "changelog", "SKILL.md"),
		"---\ndescription: Writes changelogs\n---\nSummarize commits.\n")
	_ = root

	res, err := s.Scan(platform.ScanOptions{Global: true})
	require.NoError(t, err)

	require.NotNil(t, res.Global.Settings)
	assert.Equal(t, "opus", res.Global.Settings.Model)
	require.NotNil(t, res.Global.MCP)
	assert.Contains(t, res.Global.MCP.MCPServers, "fs")
	require.Len(t, res.Global.Agents, 1)
	assert.Equal(t, "reviewer", res.Global.Agents[0].Name)
	require.Len(t, res.Global.Commands, 1)
	require.Len(t, res.Global.Skills, 1)
	assert.Equal(t, "changelog", res.Global.Skills[0].Name)
	assert.Empty(t, res.Warnings)
}

func TestScanGlobalMissingEverything(t *testing.T) {
	s, _ := newTestScanner(t)

	res, err := s.Scan(platform.ScanOptions{Global: true})
	require.NoError(t, err)
	assert.Nil(t, res.Global.Settings)
	assert.Nil(t, res.Global.MCP)
	assert.Empty(t, res.Global.Agents)
	assert.Empty(t, res.Warnings)
}

func TestScanMalformedSettingsWarns(t *testing.T) {
	s, _ := newTestScanner(t)
	writeTestFile(t, filepath.Join(s.GlobalDir, "settings.json"), `{not json`)

	res, err := s.Scan(platform.ScanOptions{Global: true})
	require.NoError(t, err)
	assert.Nil(t, res.Global.Settings)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "settings.json")
}

func TestScanProject(t *testing.T) {
	s, root := newTestScanner(t)
	project := filepath.Join(root, "myproj")

	writeTestFile(t, filepath.Join(project, ".claude", "settings.json"), `{"model": "sonnet"}`)
	writeTestFile(t, filepath.Join(project, ".mcp.json"), `{"mcpServers": {"db": {"url": "https://db.example/mcp"}}}`)
	writeTestFile(t, filepath.Join(project, "CLAUDE.md"), "Use tabs, not spaces.\n")

	res, err := s.Scan(platform.ScanOptions{Project: project})
	require.NoError(t, err)

	require.Len(t, res.Projects, 1)
	p := res.Projects[0]
	assert.Equal(t, project, p.Root)
	require.NotNil(t, p.Settings)
	assert.Equal(t, "sonnet", p.Settings.Model)
	assert.Contains(t, p.MCP.MCPServers, "db")
	assert.Equal(t, "Use tabs, not spaces.", p.Instructions)
}

func TestScanHistory(t *testing.T) {
	s, root := newTestScanner(t)
	project := filepath.Join(root, "work", "api")
	histDir := filepath.Join(s.HistoryRoot, HistoryDirName(project))

	writeTestFile(t, filepath.Join(histDir, "session-1.jsonl"),
		`{"sessionId":"session-1","type":"user"}`+"\n")
	writeTestFile(t, filepath.Join(histDir, "session-2.jsonl"),
		`{"sessionId":"session-2","type":"user"}`+"\n")

	res, err := s.Scan(platform.ScanOptions{Project: project, IncludeHistory: true})
	require.NoError(t, err)

	require.Len(t, res.History, 2)
	assert.Equal(t, paths.FormatClaude, res.History[0].Format)
	assert.Equal(t, "session-1", res.History[0].SessionID)
	assert.NotEmpty(t, res.History[0].Raw)
}

func TestScanHistorySinceFilter(t *testing.T) {
	s, _ := newTestScanner(t)
	histDir := filepath.Join(s.HistoryRoot, "some-project")

	oldPath := filepath.Join(histDir, "old.jsonl")
	newPath := filepath.Join(histDir, "new.jsonl")
	writeTestFile(t, oldPath, `{}`+"\n")
	writeTestFile(t, newPath, `{}`+"\n")

	cutoff := time.Now().Add(-time.Hour)
	stale := cutoff.Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	res, err := s.Scan(platform.ScanOptions{Global: true, IncludeHistory: true, Since: cutoff})
	require.NoError(t, err)

	require.Len(t, res.History, 1)
	assert.Equal(t, "new", res.History[0].SessionID)
}

func TestHistoryDirName(t *testing.T) {
	assert.Equal(t, "-home-jim-work-api", HistoryDirName("/home/jim/work/api"))
	assert.Equal(t, "-home-jim--dotfiles", HistoryDirName("/home/jim/.dotfiles"))
}

func TestToCanonical(t *testing.T) {
	native := &ScanResult{
		Global: Scope{
			Settings: &Settings{Model: "opus"},
			MCP: &MCPConfig{MCPServers: map[string]*MCPServer{
				"local":  {Name: "local", Command: "mcp-fs", Type: TypeStdio},
				"remote": {Name: "remote", URL: "https://example.com/mcp", Type: TypeHTTP},
			}},
			Agents: []*AgentFile{
				{Name: "reviewer", Description: "Reviews code", Model: "sonnet", Tools: ToolList{"Read", "Bash"}},
			},
		},
		Projects: []ProjectScan{{
			Root: "/work/api",
			Scope: Scope{
				Instructions: "Prefer small commits.",
			},
		}},
	}

	got := ToCanonical(native)

	assert.Equal(t, paths.FormatClaude, got.Format)
	assert.Equal(t, "claude-opus-4-1", got.Global.Model)

	require.Contains(t, got.Global.MCPServers, "local")
	assert.Equal(t, mcp.TransportStdio, got.Global.MCPServers["local"].Transport)
	assert.Equal(t, mcp.TransportSSE, got.Global.MCPServers["remote"].Transport)

	require.Len(t, got.Global.Agents, 1)
	agent := got.Global.Agents[0]
	assert.Equal(t, "claude-sonnet-4-5", agent.Model)
	assert.Empty(t, agent.Mode, "mode inference happens at conversion, not scan")
	assert.Nil(t, agent.Temperature)

	require.Len(t, got.Projects, 1)
	require.Len(t, got.Projects[0].Rules, 1)
	rule := got.Projects[0].Rules[0]
	assert.Equal(t, InstructionsRuleName, rule.Name)
	assert.Equal(t, "Prefer small commits.", rule.Body)
	assert.True(t, rule.AlwaysApply)
}
