package convert

import (
	"path/filepath"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/mcp"
	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/internal/platform/cursor"
	"github.com/thoreinstein/convey/pkg/frontmatter"
)

// cursorEmitter renders the canonical model as Cursor's layout.
// Cursor's surface is narrower than the other two: no default model,
// no agents, no skills. Those become skipped or manual entries.
type cursorEmitter struct{}

func (e cursorEmitter) emit(src *canonical.ScanResult, res *Result) {
	e.emitScope(src.Global, paths.GlobalConfigDir(paths.FormatCursor), res)
	for _, p := range src.Projects {
		e.emitScope(p.ScopeConfig, paths.ProjectConfigDir(paths.FormatCursor, p.Root), res)
	}
}

func (e cursorEmitter) emitScope(sc canonical.ScopeConfig, configDir string, res *Result) {
	if sc.Model != "" {
		res.skippedEntry("model", sc.Model, "cursor has no default model setting")
	}

	if len(sc.MCPServers) > 0 {
		mcpPath := filepath.Join(configDir, "mcp.json")
		cfg := &cursor.MCPConfig{MCPServers: make(map[string]*cursor.MCPServer, len(sc.MCPServers))}
		for _, name := range mcp.SortedNames(sc.MCPServers) {
			server := sc.MCPServers[name]
			if server.Disabled {
				res.skippedEntry("mcp", name, "cursor has no disabled flag; omitted rather than enabled")
				continue
			}
			cfg.MCPServers[name] = cursorServer(server)
			res.convertedEntry("mcp", name, mcpPath)
		}
		if len(cfg.MCPServers) > 0 {
			data, err := marshalJSON(cfg)
			if err != nil {
				res.errorEntry("mcp", "config", err)
			} else {
				res.Files[mcpPath] = data
			}
		}
	}

	for _, agent := range sc.Agents {
		res.manualEntry("agent", agent.Name, "cursor has no agent definitions; recreate as a custom mode by hand")
	}

	for _, cmd := range sc.Commands {
		path := filepath.Join(configDir, "commands", cmd.Name+".md")
		body := cmd.Body
		if cmd.Description != "" {
			// Cursor commands have no frontmatter; keep the description
			// as the opening line so nothing is lost.
			body = cmd.Description + "\n\n" + body
		}
		data, err := frontmatter.Format(nil, body)
		if err != nil {
			res.errorEntry("command", cmd.Name, err)
			continue
		}
		res.Files[path] = data
		res.convertedEntry("command", cmd.Name, path)
	}

	for _, skill := range sc.Skills {
		res.skippedEntry("skill", skill.Name, "cursor has no skill definitions")
	}

	for _, rule := range sc.Rules {
		path := filepath.Join(configDir, "rules", rule.Name+".mdc")
		native := &cursor.RuleFile{
			Description: rule.Description,
			Globs:       cursor.GlobList(rule.Globs),
			AlwaysApply: rule.AlwaysApply,
		}
		data, err := frontmatter.Format(native, rule.Body)
		if err != nil {
			res.errorEntry("rule", rule.Name, err)
			continue
		}
		res.Files[path] = data
		res.convertedEntry("rule", rule.Name, path)
	}
}

func cursorServer(s *mcp.Server) *cursor.MCPServer {
	return &cursor.MCPServer{
		Name:    s.Name,
		Command: s.Command,
		Args:    s.Args,
		URL:     s.URL,
		Env:     s.Env,
		Headers: s.Headers,
	}
}
