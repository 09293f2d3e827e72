package convert

import (
	"path/filepath"
	"strings"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/mcp"
	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/internal/platform/opencode"
	"github.com/thoreinstein/convey/internal/translate"
	"github.com/thoreinstein/convey/pkg/frontmatter"
)

// openCodeEmitter renders the canonical model as OpenCode's layout.
type openCodeEmitter struct{}

func (e openCodeEmitter) emit(src *canonical.ScanResult, res *Result) {
	globalDir := paths.GlobalConfigDir(paths.FormatOpenCode)
	e.emitScope(src.Global, globalDir, filepath.Join(globalDir, "opencode.json"), "", res)
	for _, p := range src.Projects {
		e.emitScope(p.ScopeConfig,
			paths.ProjectConfigDir(paths.FormatOpenCode, p.Root),
			paths.ProjectMCPConfigPath(paths.FormatOpenCode, p.Root),
			paths.InstructionsPath(paths.FormatOpenCode, p.Root),
			res)
	}
}

func (e openCodeEmitter) emitScope(sc canonical.ScopeConfig, configDir, configPath, instructionsPath string, res *Result) {
	cfg := &opencode.Config{}
	if model, ok := translate.FormatModel(sc.Model, paths.FormatOpenCode); ok {
		cfg.Model = model
		res.convertedEntry("model", model, configPath)
	}
	if len(sc.MCPServers) > 0 {
		cfg.MCP = make(map[string]*opencode.MCPServer, len(sc.MCPServers))
		for _, name := range mcp.SortedNames(sc.MCPServers) {
			cfg.MCP[name] = openCodeServer(sc.MCPServers[name])
			res.convertedEntry("mcp", name, configPath)
		}
	}
	if cfg.Model != "" || len(cfg.MCP) > 0 {
		data, err := marshalJSON(cfg)
		if err != nil {
			res.errorEntry("config", "opencode.json", err)
		} else {
			res.Files[configPath] = data
		}
	}

	for _, agent := range sc.Agents {
		path := filepath.Join(configDir, "agent", agent.Name+".md")
		native := &opencode.AgentFile{
			Description: agent.Description,
			Temperature: agent.Temperature,
		}

		mode := agent.Mode
		if mode == canonical.ModeDefault {
			if inferred := translate.InferMode(agent.Name, agent.Description); inferred != canonical.ModeDefault {
				mode = inferred
				res.warnf("agent %q: inferred mode %q from its name and description", agent.Name, mode)
			}
		}
		native.Mode = string(mode)

		if native.Temperature == nil {
			if temp := translate.InferTemperature(agent.Name, agent.Description); temp != nil {
				native.Temperature = temp
				res.warnf("agent %q: inferred temperature %.1f from its name and description", agent.Name, *temp)
			}
		}

		if model, ok := translate.FormatModel(agent.Model, paths.FormatOpenCode); ok {
			native.Model = model
		}

		perms, unknown := translate.ToolPermissions(agent.Tools)
		native.Tools = perms
		for _, tool := range unknown {
			res.warnf("agent %q: tool %q has no known permission mapping; passed through as %q",
				agent.Name, tool, strings.ToLower(tool))
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
		path := filepath.Join(configDir, "command", cmd.Name+".md")
		native := &opencode.CommandFile{
			Description: cmd.Description,
			Agent:       cmd.Agent,
		}
		if model, ok := translate.FormatModel(cmd.Model, paths.FormatOpenCode); ok {
			native.Model = model
		}
		data, err := frontmatter.Format(native, cmd.Body)
		if err != nil {
			res.errorEntry("command", cmd.Name, err)
			continue
		}
		res.Files[path] = data
		res.convertedEntry("command", cmd.Name, path)
	}

	for _, skill := range sc.Skills {
		res.skippedEntry("skill", skill.Name, "opencode has no skill definitions")
	}

	if doc := instructionsDoc(sc.Rules); doc != "" && instructionsPath != "" {
		res.Files[instructionsPath] = []byte(doc)
		for _, rule := range sc.Rules {
			res.convertedEntry("rule", rule.Name, instructionsPath)
		}
	}
}

// openCodeServer joins the canonical command/args pair into OpenCode's
// single command array.
func openCodeServer(s *mcp.Server) *opencode.MCPServer {
	out := &opencode.MCPServer{
		Name:        s.Name,
		URL:         s.URL,
		Environment: s.Env,
		Headers:     s.Headers,
	}
	if s.Command != "" {
		out.Command = append([]string{s.Command}, s.Args...)
	}
	if s.IsRemote() {
		out.Type = opencode.TypeRemote
	} else {
		out.Type = opencode.TypeLocal
	}
	if s.Disabled {
		enabled := false
		out.Enabled = &enabled
	}
	return out
}
