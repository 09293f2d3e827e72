// Package mcp defines the canonical MCP (Model Context Protocol) server
// model that every format's native MCP configuration is translated
// through. Diff and migrate only ever compare and convert this shape.
package mcp

import (
	"encoding/json"
	"sort"
)

// Transport type constants for MCP server communication.
const (
	// TransportStdio indicates local process communication via stdin/stdout.
	TransportStdio = "stdio"

	// TransportSSE indicates remote server communication over HTTP.
	// Claude Code spells this transport "http", OpenCode "remote".
	TransportSSE = "sse"
)

// Server is the canonical MCP server configuration.
type Server struct {
	// Name is the server's unique identifier within a scope.
	Name string `json:"name"`

	// Command is the executable path for local (stdio) servers.
	Command string `json:"command,omitempty"`

	// Args are command-line arguments passed to Command.
	Args []string `json:"args,omitempty"`

	// URL is the endpoint for remote (sse) servers.
	URL string `json:"url,omitempty"`

	// Transport is "stdio" or "sse". Inferred from Command/URL when the
	// source format left it unset.
	Transport string `json:"transport,omitempty"`

	// Env contains environment variables passed to the server process.
	Env map[string]string `json:"env,omitempty"`

	// Headers contains HTTP headers for remote connections.
	Headers map[string]string `json:"headers,omitempty"`

	// Disabled indicates the server is configured but switched off.
	Disabled bool `json:"disabled,omitempty"`

	// unknownFields preserves source-format fields this model does not
	// understand. They are only re-emitted when converting back to the
	// same format.
	unknownFields map[string]json.RawMessage
}

// IsLocal reports whether the server uses local (stdio) transport.
func (s *Server) IsLocal() bool {
	if s.Transport == TransportStdio {
		return true
	}
	return s.Transport == "" && s.Command != ""
}

// IsRemote reports whether the server uses remote (sse) transport.
func (s *Server) IsRemote() bool {
	if s.Transport == TransportSSE {
		return true
	}
	return s.Transport == "" && s.URL != "" && s.Command == ""
}

// Extra returns the preserved unknown fields, or nil.
func (s *Server) Extra() map[string]json.RawMessage {
	return s.unknownFields
}

// SetExtra attaches unknown fields preserved from a source format.
func (s *Server) SetExtra(extra map[string]json.RawMessage) {
	if len(extra) == 0 {
		s.unknownFields = nil
		return
	}
	s.unknownFields = extra
}

// MarshalJSON includes preserved unknown fields in the output.
// Known fields take precedence over unknown fields with the same key.
func (s *Server) MarshalJSON() ([]byte, error) {
	result := make(map[string]any)

	for k, v := range s.unknownFields {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		result[k] = val
	}

	result["name"] = s.Name
	if s.Command != "" {
		result["command"] = s.Command
	}
	if len(s.Args) > 0 {
		result["args"] = s.Args
	}
	if s.URL != "" {
		result["url"] = s.URL
	}
	if s.Transport != "" {
		result["transport"] = s.Transport
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

// knownServerFields lists the JSON keys this model understands.
var knownServerFields = []string{
	"name", "command", "args", "url", "transport", "env", "headers", "disabled",
}

// UnmarshalJSON captures unrecognized fields for round-tripping.
func (s *Server) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	targets := map[string]any{
		"name":      &s.Name,
		"command":   &s.Command,
		"args":      &s.Args,
		"url":       &s.URL,
		"transport": &s.Transport,
		"env":       &s.Env,
		"headers":   &s.Headers,
		"disabled":  &s.Disabled,
	}
	for _, key := range knownServerFields {
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

// SortedNames returns the keys of a server map in lexical order, for
// deterministic iteration.
func SortedNames(servers map[string]*Server) []string {
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
