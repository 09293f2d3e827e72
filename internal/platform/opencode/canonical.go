package opencode

import (
	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/mcp"
	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/internal/translate"
)

// InstructionsRuleName names the AGENTS.md document in canonical form.
const InstructionsRuleName = "instructions"

// ToCanonical converts a native scan into the canonical model.
func ToCanonical(res *ScanResult) *canonical.ScanResult {
	out := &canonical.ScanResult{
		Format:   paths.FormatOpenCode,
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

	if s.Config != nil {
		sc.Model = translate.CanonicalModel(s.Config.Model)
		if len(s.Config.MCP) > 0 {
			sc.MCPServers = make(map[string]*mcp.Server, len(s.Config.MCP))
			for name, server := range s.Config.MCP {
				sc.MCPServers[name] = canonicalServer(name, server)
			}
		}
	}

	for _, a := range s.Agents {
		sc.Agents = append(sc.Agents, canonical.Agent{
			Name:        a.Name,
			Description: a.Description,
			Body:        a.Body,
			Model:       translate.CanonicalModel(a.Model),
			Mode:        canonicalMode(a.Mode),
			Temperature: a.Temperature,
			Tools:       translate.PermissionTools(a.Tools),
			Extra:       a.Extra,
		})
	}

	for _, c := range s.Commands {
		sc.Commands = append(sc.Commands, canonical.Command{
			Name:        c.Name,
			Description: c.Description,
			Body:        c.Body,
			Model:       translate.CanonicalModel(c.Model),
			Agent:       c.Agent,
			Extra:       c.Extra,
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

// canonicalMode maps an OpenCode mode string. OpenCode's "all" has no
// canonical equivalent and is treated as unset.
func canonicalMode(mode string) canonical.Mode {
	switch mode {
	case "primary":
		return canonical.ModePrimary
	case "subagent":
		return canonical.ModeSubagent
	default:
		return canonical.ModeDefault
	}
}

// canonicalServer splits OpenCode's single command array into the
// canonical command/args pair.
func canonicalServer(name string, s *MCPServer) *mcp.Server {
	out := &mcp.Server{
		Name:     name,
		URL:      s.URL,
		Env:      s.Environment,
		Headers:  s.Headers,
		Disabled: !s.IsEnabled(),
	}
	if len(s.Command) > 0 {
		out.Command = s.Command[0]
		if len(s.Command) > 1 {
			out.Args = s.Command[1:]
		}
	}
	switch {
	case s.Type == TypeRemote || (s.Type == "" && s.URL != ""):
		out.Transport = mcp.TransportSSE
	default:
		out.Transport = mcp.TransportStdio
	}
	out.SetExtra(s.Extra())
	return out
}
