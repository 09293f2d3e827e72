// Package cursor reads Cursor's on-disk configuration layout and
// canonicalizes it. Cursor has no default-model setting, no agent
// definitions, and no readable session store; its surface is MCP
// servers, rules, and commands.
package cursor

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/convey/internal/canonical"
)

// MCPServer is a Cursor MCP server entry in mcp.json. The shape
// matches Claude Code's apart from lacking a type field; transport is
// inferred from which of command/url is set.
type MCPServer struct {
	Name string `json:"-"`

	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	URL     string            `json:"url,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	unknownFields map[string]json.RawMessage
}

var knownMCPServerFields = []string{"command", "args", "url", "env", "headers"}

// UnmarshalJSON captures unknown fields for round-tripping.
func (s *MCPServer) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	targets := map[string]any{
		"command": &s.Command,
		"args":    &s.Args,
		"url":     &s.URL,
		"env":     &s.Env,
		"headers": &s.Headers,
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

// MCPConfig is the root of a Cursor mcp.json file.
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

// GlobList is a list of glob patterns. Cursor's .mdc frontmatter
// writes it either as a YAML list or a comma-delimited string.
type GlobList []string

// UnmarshalYAML accepts both spellings.
func (g *GlobList) UnmarshalYAML(value *yaml.Node) error {
	var multi []string
	if err := value.Decode(&multi); err == nil {
		*g = multi
		return nil
	}

	var single string
	if err := value.Decode(&single); err == nil {
		for _, part := range strings.Split(single, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				*g = append(*g, trimmed)
			}
		}
		return nil
	}

	return errors.Newf("globs must be a string or list of strings, got %s", value.Tag)
}

// MarshalYAML renders the comma-delimited string form.
func (g GlobList) MarshalYAML() (any, error) {
	return strings.Join(g, ","), nil
}

// RuleFile is one rules/*.mdc document.
type RuleFile struct {
	Name string `yaml:"-"`

	Description string   `yaml:"description,omitempty"`
	Globs       GlobList `yaml:"globs,omitempty"`
	AlwaysApply bool     `yaml:"alwaysApply,omitempty"`

	Body string `yaml:"-"`
}

// CommandFile is one commands/*.md document. Cursor commands are plain
// markdown with no frontmatter.
type CommandFile struct {
	Name string
	Body string
}

// Scope is one scope's worth of native Cursor configuration.
type Scope struct {
	MCP      *MCPConfig
	Rules    []*RuleFile
	Commands []*CommandFile
}

// ProjectScan is a scope anchored at a project root.
type ProjectScan struct {
	Root string
	Scope
}

// ScanResult is the native result of scanning Cursor's layout.
type ScanResult struct {
	Global   Scope
	Projects []ProjectScan
	History  []canonical.Transcript
	Warnings []string
}
