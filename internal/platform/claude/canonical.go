package claude

import (
	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/mcp"
	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/internal/translate"
)

// InstructionsRuleName is the canonical name given to the project
// instructions document (CLAUDE.md / AGENTS.md).
const InstructionsRuleName = "instructions"

// ToCanonical converts a native scan into the canonical model. Mode
// and temperature are left unset here; inference belongs to the
// converters, where its warnings can be reported.
func ToCanonical(res *ScanResult) *canonical.ScanResult {
	out := &canonical.ScanResult{
		Format:   paths.FormatClaude,
		Global:   canonicalScope(res.Global),
		History:  res.History,
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

	if s.Settings != nil {
		sc.Model = translate.CanonicalModel(s.Settings.Model)
	}

	if s.MCP != nil && len(s.MCP.MCPServers) > 0 {
		sc.MCPServers = make(map[string]*mcp.Server, len(s.MCP.MCPServers))
		for name, server := range s.MCP.MCPServers {
			sc.MCPServers[name] = canonicalServer(name, server)
		}
	}

	for _, a := range s.Agents {
		sc.Agents = append(sc.Agents, canonical.Agent{
			Name:        a.Name,
			Description: a.Description,
			Body:        a.Body,
			Model:       translate.CanonicalModel(a.Model),
			Tools:       a.Tools,
			Extra:       a.Extra,
		})
	}

	for _, c := range s.Commands {
		sc.Commands = append(sc.Commands, canonical.Command{
			Name:         c.Name,
			Description:  c.Description,
			Body:         c.Body,
			Model:        translate.CanonicalModel(c.Model),
			ArgumentHint: c.ArgumentHint,
			Tools:        c.AllowedTools,
			Extra:        c.Extra,
		})
	}

	for _, sk := range s.Skills {
		sc.Skills = append(sc.Skills, canonical.Skill{
			Name:        sk.Name,
			Description: sk.Description,
			Body:        sk.Body,
			Tools:       sk.AllowedTools,
			Metadata:    sk.Metadata,
			Extra:       sk.Extra,
		})
	}

	if s.Instructions != "" {
		sc.Rules = append(sc.Rules, canonical.Rule{
			Name:        InstructionsRuleName,
			Body:        s.Instructions,
			AlwaysApply: true,
		})
	}

	return sc
}

func canonicalServer(name string, s *MCPServer) *mcp.Server {
	out := &mcp.Server{
		Name:     name,
		Command:  s.Command,
		Args:     s.Args,
		URL:      s.URL,
		Env:      s.Env,
		Headers:  s.Headers,
		Disabled: s.Disabled,
	}
	switch {
	case s.Type == TypeHTTP || (s.Type == "" && s.URL != ""):
		out.Transport = mcp.TransportSSE
	default:
		out.Transport = mcp.TransportStdio
	}
	out.SetExtra(s.Extra())
	return out
}
