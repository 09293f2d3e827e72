package convert

import (
	"path/filepath"
	"strings"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/mcp"
	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/internal/platform/claude"
	"github.com/thoreinstein/convey/internal/translate"
	"github.com/thoreinstein/convey/pkg/frontmatter"
)

// claudeEmitter renders the canonical model as Claude Code's layout.
type claudeEmitter struct{}

func (e claudeEmitter) emit(src *canonical.ScanResult, res *Result) {
	e.emitScope(src.Global, claudeScopePaths{
		configDir:    paths.GlobalConfigDir(paths.FormatClaude),
		mcpPath:      paths.GlobalMCPConfigPath(paths.FormatClaude),
		instructions: filepath.Join(paths.GlobalConfigDir(paths.FormatClaude), "CLAUDE.md"),
	}, res)
	for _, p := range src.Projects {
		e.emitScope(p.ScopeConfig, claudeScopePaths{
			configDir:    paths.ProjectConfigDir(paths.FormatClaude, p.Root),
			mcpPath:      paths.ProjectMCPConfigPath(paths.FormatClaude, p.Root),
			instructions: paths.InstructionsPath(paths.FormatClaude, p.Root),
		}, res)
	}
}

type claudeScopePaths struct {
	configDir    string
	mcpPath      string
	instructions string
}

func (e claudeEmitter) emitScope(sc canonical.ScopeConfig, dest claudeScopePaths, res *Result) {
	if model, ok := translate.FormatModel(sc.Model, paths.FormatClaude); ok {
		path := filepath.Join(dest.configDir, "settings.json")
		data, err := marshalJSON(&claude.Settings{Model: model})
		if err != nil {
			res.errorEntry("model", "default", err)
		} else {
			res.Files[path] = data
			res.convertedEntry("model", model, path)
		}
	}

	if len(sc.MCPServers) > 0 {
		cfg := &claude.MCPConfig{MCPServers: make(map[string]*claude.MCPServer, len(sc.MCPServers))}
		for _, name := range mcp.SortedNames(sc.MCPServers) {
			cfg.MCPServers[name] = claudeServer(sc.MCPServers[name])
			res.convertedEntry("mcp", name, dest.mcpPath)
		}
		data, err := marshalJSON(cfg)
		if err != nil {
			res.errorEntry("mcp", "config", err)
		} else {
			res.Files[dest.mcpPath] = data
		}
	}

	for _, agent := range sc.Agents {
		path := filepath.Join(dest.configDir, "agents", agent.Name+".md")
		native := &claude.AgentFile{
			Description: agent.Description,
			Tools:       claude.ToolList(agent.Tools),
		}
		if model, ok := translate.FormatModel(agent.Model, paths.FormatClaude); ok {
			native.Model = model
		}
		data, err := frontmatter.Format(native, agent.Body)
		if err != nil {
			res.errorEntry("agent", agent.Name, err)
			continue
		}
		res.Files[path] = data
		res.convertedEntry("agent", agent.Name, path)
	}

	for _, cmd := range sc.Commands {
		path := filepath.Join(dest.configDir, "commands", cmd.Name+".md")
		native := &claude.CommandFile{
			Description:  cmd.Description,
			ArgumentHint: cmd.ArgumentHint,
			AllowedTools: claude.ToolList(cmd.Tools),
		}
		if model, ok := translate.FormatModel(cmd.Model, paths.FormatClaude); ok {
			native.Model = model
		}
		body := cmd.Body
		if cmd.Agent != "" {
			// Claude Code commands have no agent binding; keep the
			// association visible in the body.
			res.warnf("command %q: agent binding %q has no equivalent; noted in body", cmd.Name, cmd.Agent)
			body = "<!-- agent: " + cmd.Agent + " -->\n\n" + body
		}
		data, err := frontmatter.Format(native, body)
		if err != nil {
			res.errorEntry("command", cmd.Name, err)
			continue
		}
		res.Files[path] = data
		res.convertedEntry("command", cmd.Name, path)
	}

	for _, skill := range sc.Skills {
		path := filepath.Join(dest.configDir, "skills", skill.Name, "SKILL.md")
		native := &claude.SkillFile{
			Description:  skill.Description,
			AllowedTools: claude.ToolList(skill.Tools),
			Metadata:     skill.Metadata,
		}
		data, err := frontmatter.Format(native, skill.Body)
		if err != nil {
			res.errorEntry("skill", skill.Name, err)
			continue
		}
		res.Files[path] = data
		res.convertedEntry("skill", skill.Name, path)
	}

	if doc := instructionsDoc(sc.Rules); doc != "" && dest.instructions != "" {
		res.Files[dest.instructions] = []byte(doc)
		for _, rule := range sc.Rules {
			res.convertedEntry("rule", rule.Name, dest.instructions)
		}
	}
}

func claudeServer(s *mcp.Server) *claude.MCPServer {
	out := &claude.MCPServer{
		Name:     s.Name,
		Command:  s.Command,
		Args:     s.Args,
		URL:      s.URL,
		Env:      s.Env,
		Headers:  s.Headers,
		Disabled: s.Disabled,
	}
	if s.IsRemote() {
		out.Type = claude.TypeHTTP
	} else {
		out.Type = claude.TypeStdio
	}
	return out
}

// instructionsDoc folds a scope's rules into one instructions
// document. The instructions rule leads; other rules (Cursor .mdc
// files) become named sections.
func instructionsDoc(rules []canonical.Rule) string {
	var lead string
	var sections []string
	for _, rule := range rules {
		if rule.Name == "instructions" {
			lead = strings.TrimSpace(rule.Body)
			continue
		}
		var b strings.Builder
		b.WriteString("## " + rule.Name + "\n\n")
		if rule.Description != "" {
			b.WriteString(rule.Description + "\n\n")
		}
		b.WriteString(strings.TrimSpace(rule.Body))
		sections = append(sections, b.String())
	}

	parts := make([]string, 0, len(sections)+1)
	if lead != "" {
		parts = append(parts, lead)
	}
	parts = append(parts, sections...)
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}
