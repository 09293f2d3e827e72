package cursor

import (
	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/mcp"
	"github.com/thoreinstein/convey/internal/paths"
)

// ToCanonical converts a native scan into the canonical model. Cursor
// contributes MCP servers, rules, and commands; model, agents, and
// skills stay empty.
func ToCanonical(res *ScanResult) *canonical.ScanResult {
	out := &canonical.ScanResult{
		Format:   paths.FormatCursor,
		Global:   canonicalScope(res.Global),
		Warnings: append([]string(nil), res.Warnings...),
	}
	for _, p := range res.Projects {
		out.AddProject(canonical.ProjectConfig{
			Root:        p.Root,
			ScopeConfig: canonicalScope(p.Scope),
		})
	}
	out.Normalize()
	return out
}

func canonicalScope(s Scope) canonical.ScopeConfig {
	var sc canonical.ScopeConfig

	if s.MCP != nil && len(s.MCP.MCPServers) > 0 {
		sc.MCPServers = make(map[string]*mcp.Server, len(s.MCP.MCPServers))
		for name, server := range s.MCP.MCPServers {
			sc.MCPServers[name] = canonicalServer(name, server)
		}
	}

	for _, r := range s.Rules {
		sc.Rules = append(sc.Rules, canonical.Rule{
			Name:        r.Name,
			Description: r.Description,
			Body:        r.Body,
			Globs:       r.Globs,
			AlwaysApply: r.AlwaysApply,
		})
	}

	for _, c := range s.Commands {
		sc.Commands = append(sc.Commands, canonical.Command{
			Name: c.Name,
			Body: c.Body,
		})
	}

	return sc
}

func canonicalServer(name string, s *MCPServer) *mcp.Server {
	out := &mcp.Server{
		Name:    name,
		Command: s.Command,
		Args:    s.Args,
		URL:     s.URL,
		Env:     s.Env,
		Headers: s.Headers,
	}
	if s.URL != "" && s.Command == "" {
		out.Transport = mcp.TransportSSE
	} else {
		out.Transport = mcp.TransportStdio
	}
	out.SetExtra(s.Extra())
	return out
}
