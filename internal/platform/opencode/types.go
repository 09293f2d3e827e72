// Package opencode reads OpenCode's on-disk configuration layout and
// canonicalizes it. OpenCode config files are JSONC; comments are
// stripped on read and not preserved.
package opencode

import (
	"encoding/json"

	"github.com/thoreinstein/convey/internal/canonical"
)

// OpenCode transport spellings.
const (
	// TypeLocal is OpenCode's type for stdio servers.
	TypeLocal = "local"
	// TypeRemote is OpenCode's type for URL-backed servers.
	TypeRemote = "remote"
)

// MCPServer is an OpenCode MCP server entry. Local servers carry the
// full command line as a single array; remote servers carry a URL.
type MCPServer struct {
	Name string `json:"-"`

	Type        string            `json:"type,omitempty"`
	Command     []string          `json:"command,omitempty"`
	URL         string            `json:"url,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`

	// Enabled defaults to true when absent.
	Enabled *bool `json:"enabled,omitempty"`

	unknownFields map[string]json.RawMessage
}

var knownMCPServerFields = []string{
	"type", "command", "url", "environment", "headers", "enabled",
}

// UnmarshalJSON captures unknown fields for round-tripping.
func (s *MCPServer) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	targets := map[string]any{
		"type":        &s.Type,
		"command":     &s.Command,
		"url":         &s.URL,
		"environment": &s.Environment,
		"headers":     &s.Headers,
		"enabled":     &s.Enabled,
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
	if len(s.Command) > 0 {
		result["command"] = s.Command
	}
	if s.URL != "" {
		result["url"] = s.URL
	}
	if len(s.Environment) > 0 {
		result["environment"] = s.Environment
	}
	if len(s.Headers) > 0 {
		result["headers"] = s.Headers
	}
	if s.Enabled != nil {
		result["enabled"] = *s.Enabled
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

// IsEnabled reports the effective enabled state.
func (s *MCPServer) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Config is the root of an opencode.json document. Only the model and
// MCP map are understood; the rest (theme, keybinds, providers) is
// preserved opaquely.
type Config struct {
	Model string                `json:"model,omitempty"`
	MCP   map[string]*MCPServer `json:"mcp,omitempty"`

	unknownFields map[string]json.RawMessage
}

// UnmarshalJSON captures unknown top-level fields.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["model"]; ok {
		if err := json.Unmarshal(v, &c.Model); err != nil {
			return err
		}
		delete(raw, "model")
	}
	if v, ok := raw["mcp"]; ok {
		if err := json.Unmarshal(v, &c.MCP); err != nil {
			return err
		}
		delete(raw, "mcp")
	}
	for name, server := range c.MCP {
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
func (c *Config) MarshalJSON() ([]byte, error) {
	result := make(map[string]any)
	for k, v := range c.unknownFields {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		result[k] = val
	}
	if c.Model != "" {
		result["model"] = c.Model
	}
	if len(c.MCP) > 0 {
		result["mcp"] = c.MCP
	}
	return json.Marshal(result)
}

// AgentFile is one agent/*.md document.
type AgentFile struct {
	Name string `yaml:"-"`

	Description string          `yaml:"description,omitempty"`
	Mode        string          `yaml:"mode,omitempty"`
	Model       string          `yaml:"model,omitempty"`
	Temperature *float64        `yaml:"temperature,omitempty"`
	Tools       map[string]bool `yaml:"tools,omitempty"`

	Body  string         `yaml:"-"`
	Extra map[string]any `yaml:"-"`
}

// CommandFile is one command/*.md document.
type CommandFile struct {
	Name string `yaml:"-"`

	Description string `yaml:"description,omitempty"`
	Agent       string `yaml:"agent,omitempty"`
	Model       string `yaml:"model,omitempty"`

	Body  string         `yaml:"-"`
	Extra map[string]any `yaml:"-"`
}

// Scope is one scope's worth of native OpenCode configuration.
type Scope struct {
	Config   *Config
	Agents   []*AgentFile
	Commands []*CommandFile

	// Instructions is the AGENTS.md body; project scope only.
	Instructions string
}

// ProjectScan is a scope anchored at a project root.
type ProjectScan struct {
	Root string
	Scope
}

// ScanResult is the native result of scanning OpenCode's layout.
type ScanResult struct {
	Global   Scope
	Projects []ProjectScan
	History  []canonical.Transcript
	Warnings []string
}
