// Package claude reads Claude Code's on-disk configuration layout and
// canonicalizes it. The native shapes here mirror the files faithfully
// so no information is lost before canonicalization.
package claude

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/convey/internal/canonical"
)

// Claude Code transport spellings.
const (
	// TypeStdio is Claude Code's type for local process servers.
	TypeStdio = "stdio"
	// TypeHTTP is Claude Code's type for remote servers. The canonical
	// model spells this transport "sse".
	TypeHTTP = "http"
)

// MCPServer is a Claude Code MCP server entry as it appears in
// .mcp.json or ~/.claude.json.
type MCPServer struct {
	// Name is populated from the map key when loading; it is not
	// serialized back (the key carries it).
	Name string `json:"-"`

	Type    string            `json:"type,omitempty"`
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	URL     string            `json:"url,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	Disabled bool `json:"disabled,omitempty"`

	// unknownFields preserves fields this struct does not model.
	unknownFields map[string]json.RawMessage
}

// knownMCPServerFields lists the JSON keys MCPServer models.
var knownMCPServerFields = []string{
	"type", "command", "args", "url", "env", "headers", "disabled",
}

// UnmarshalJSON captures unknown fields for round-tripping.
func (s *MCPServer) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	targets := map[string]any{
		"type":     &s.Type,
		"command":  &s.Command,
		"args":     &s.Args,
		"url":      &s.URL,
		"env":      &s.Env,
		"headers":  &s.Headers,
		"disabled": &s.Disabled,
	}
	for _, key := range knownMCPServerFields {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, targets[key]); err != nil {
			return err
		}
		delete(raw, key)
	}
	if len(raw) > 0 {
		s.unknownFields = raw
	}
	return nil
}

// MarshalJSON re-emits preserved unknown fields alongside known ones.
func (s *MCPServer) MarshalJSON() ([]byte, error) {
	result := make(map[string]any)
	for k, v := range s.unknownFields {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		result[k] = val
	}
	if s.Type != "" {
		result["type"] = s.Type
	}
	if s.Command != "" {
		result["command"] = s.Command
	}
	if len(s.Args) > 0 {
		result["args"] = s.Args
	}
	if s.URL != "" {
		result["url"] = s.URL
	}
	if len(s.Env) > 0 {
		result["env"] = s.Env
	}
	if len(s.Headers) > 0 {
		result["headers"] = s.Headers
	}
	if s.Disabled {
		result["disabled"] = s.Disabled
	}
	return json.Marshal(result)
}

// Extra returns the preserved unknown fields, or nil.
func (s *MCPServer) Extra() map[string]json.RawMessage { return s.unknownFields }

// SetExtra attaches preserved unknown fields.
func (s *MCPServer) SetExtra(extra map[string]json.RawMessage) {
	if len(extra) == 0 {
		s.unknownFields = nil
		return
	}
	s.unknownFields = extra
}

// MCPConfig is the root of a Claude Code MCP configuration file:
// {"mcpServers": {...}}. Top-level unknown fields (the rest of
// ~/.claude.json) are preserved.
type MCPConfig struct {
	MCPServers map[string]*MCPServer `json:"mcpServers"`

	unknownFields map[string]json.RawMessage
}

// UnmarshalJSON captures unknown top-level fields.
func (c *MCPConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if serversData, ok := raw["mcpServers"]; ok {
		if err := json.Unmarshal(serversData, &c.MCPServers); err != nil {
			return err
		}
		delete(raw, "mcpServers")
	}
	for name, server := range c.MCPServers {
		if server != nil {
			server.Name = name
		}
	}
	if len(raw) > 0 {
		c.unknownFields = raw
	}
	return nil
}

// MarshalJSON re-emits preserved top-level fields.
func (c *MCPConfig) MarshalJSON() ([]byte, error) {
	result := make(map[string]any)
	for k, v := range c.unknownFields {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		result[k] = val
	}
	result["mcpServers"] = c.MCPServers
	return json.Marshal(result)
}

// Settings models settings.json. Only the default model is understood;
// everything else is preserved opaquely.
type Settings struct {
	Model string `json:"model,omitempty"`

	unknownFields map[string]json.RawMessage
}

// UnmarshalJSON captures unknown settings fields.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["model"]; ok {
		if err := json.Unmarshal(v, &s.Model); err != nil {
			return err
		}
		delete(raw, "model")
	}
	if len(raw) > 0 {
		s.unknownFields = raw
	}
	return nil
}

// MarshalJSON re-emits preserved settings fields.
func (s *Settings) MarshalJSON() ([]byte, error) {
	result := make(map[string]any)
	for k, v := range s.unknownFields {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		result[k] = val
	}
	if s.Model != "" {
		result["model"] = s.Model
	}
	return json.Marshal(result)
}

// ToolList is a list of tool names. Claude Code frontmatter writes it
// either as a YAML list or as a single comma- or space-delimited
// string.
type ToolList []string

// UnmarshalYAML accepts both spellings.
func (t *ToolList) UnmarshalYAML(value *yaml.Node) error {
	var multi []string
	if err := value.Decode(&multi); err == nil {
		*t = multi
		return nil
	}

	var single string
	if err := value.Decode(&single); err == nil {
		*t = splitToolString(single)
		return nil
	}

	return errors.Newf("tools must be a string or list of strings, got %s", value.Tag)
}

// MarshalYAML renders the comma-delimited string form Claude Code uses.
func (t ToolList) MarshalYAML() (any, error) {
	return strings.Join(t, ", "), nil
}

func splitToolString(s string) ToolList {
	var out ToolList
	for _, sep := range []string{","} {
		s = strings.ReplaceAll(s, sep, " ")
	}
	for _, part := range strings.Fields(s) {
		out = append(out, part)
	}
	return out
}

// String returns the comma-delimited representation.
func (t ToolList) String() string {
	return strings.Join(t, ", ")
}

// AgentFile is one agents/*.md document.
type AgentFile struct {
	// Name comes from the filename, not the frontmatter.
	Name string `yaml:"-"`

	Description string   `yaml:"description,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	Tools       ToolList `yaml:"tools,omitempty"`

	// Body is the markdown content below the frontmatter.
	Body string `yaml:"-"`

	// Extra preserves frontmatter keys this struct does not model.
	Extra map[string]any `yaml:"-"`
}

// CommandFile is one commands/*.md document.
type CommandFile struct {
	Name string `yaml:"-"`

	Description  string   `yaml:"description,omitempty"`
	ArgumentHint string   `yaml:"argument-hint,omitempty"`
	AllowedTools ToolList `yaml:"allowed-tools,omitempty"`
	Model        string   `yaml:"model,omitempty"`

	Body  string         `yaml:"-"`
	Extra map[string]any `yaml:"-"`
}

// SkillFile is one skills/<name>/SKILL.md document.
type SkillFile struct {
	// Name comes from the skill directory name; the frontmatter name,
	// when present, must agree but the directory wins.
	Name string `yaml:"-"`

	Description  string            `yaml:"description,omitempty"`
	AllowedTools ToolList          `yaml:"allowed-tools,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`

	Body  string         `yaml:"-"`
	Extra map[string]any `yaml:"-"`
}

// Scope is one scope's worth of native Claude Code configuration.
type Scope struct {
	Settings *Settings
	MCP      *MCPConfig
	Agents   []*AgentFile
	Commands []*CommandFile
	Skills   []*SkillFile

	// Instructions is the CLAUDE.md body; project scope only.
	Instructions string
}

// ProjectScan is a scope anchored at a project root.
type ProjectScan struct {
	Root string
	Scope
}

// ScanResult is the native result of scanning Claude Code's layout.
type ScanResult struct {
	Global   Scope
	Projects []ProjectScan
	History  []canonical.Transcript
	Warnings []string
}
