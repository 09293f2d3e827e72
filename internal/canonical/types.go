// Package canonical defines the format-neutral configuration model.
//
// Every format scanner produces a format-native scan result; the
// format's canonicalizer maps it into this package's ScanResult. Diff
// and migrate operate exclusively on canonical data, never on two
// different formats' native shapes directly.
package canonical

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/thoreinstein/convey/internal/mcp"
	"github.com/thoreinstein/convey/internal/paths"
)

// ModelInherit is the sentinel model value meaning "use the parent
// scope's default". It must never be emitted as a literal model value;
// converters omit the model key instead.
const ModelInherit = "inherit"

// Mode describes how an agent participates in a session.
type Mode string

const (
	// ModeDefault lets the target format pick its own default.
	ModeDefault Mode = ""
	// ModePrimary marks an agent that drives a session.
	ModePrimary Mode = "primary"
	// ModeSubagent marks an agent invoked as a helper by another agent.
	ModeSubagent Mode = "subagent"
)

// ScanResult is the root aggregate: one canonicalized view of a
// format's on-disk configuration.
type ScanResult struct {
	// Format records which ecosystem this scan came from.
	Format paths.Format `json:"format"`

	// Global holds user-wide settings.
	Global ScopeConfig `json:"global"`

	// Projects holds per-project settings, one entry per discovered
	// project root. Roots are unique by cleaned path.
	Projects []ProjectConfig `json:"projects,omitempty"`

	// History carries raw format-native chat transcripts, opaque until
	// a history converter consumes them.
	History []Transcript `json:"-"`

	// Warnings collects non-fatal scan problems (malformed files that
	// were skipped).
	Warnings []string `json:"warnings,omitempty"`
}

// ScopeConfig holds the configuration of one scope (global or project).
// Names are unique per category within a scope; the same name in
// another scope is a distinct item (project overrides global by
// convention, never merged implicitly).
type ScopeConfig struct {
	// Model is the scope's default model, already canonical.
	Model string `json:"model,omitempty"`

	MCPServers map[string]*mcp.Server `json:"mcpServers,omitempty"`
	Agents     []Agent                `json:"agents,omitempty"`
	Commands   []Command              `json:"commands,omitempty"`
	Skills     []Skill                `json:"skills,omitempty"`
	Rules      []Rule                 `json:"rules,omitempty"`
}

// ProjectConfig is a ScopeConfig anchored at a project root.
type ProjectConfig struct {
	Root string `json:"root"`
	ScopeConfig
}

// Agent is a canonical agent definition. Constructed once per scan from
// a single source file and immutable thereafter; converters produce new
// target-format descriptions rather than mutating this one.
type Agent struct {
	// Name comes from the source filename and is the agent's identity.
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Body is the agent's free-text instructions.
	Body string `json:"body,omitempty"`

	// Model may be a canonical model id or the ModelInherit sentinel.
	Model string `json:"model,omitempty"`

	Mode Mode `json:"mode,omitempty"`

	// Temperature is nil when the source did not state one.
	Temperature *float64 `json:"temperature,omitempty"`

	// Tools lists capability names in source-format vocabulary.
	Tools []string `json:"tools,omitempty"`

	// Extra preserves source frontmatter keys this model does not
	// understand; emitted only when target format equals source format.
	Extra map[string]any `json:"extra,omitempty"`
}

// Command is a canonical slash-command definition.
type Command struct {
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Body         string         `json:"body,omitempty"`
	Model        string         `json:"model,omitempty"`
	Agent        string         `json:"agent,omitempty"`
	ArgumentHint string         `json:"argumentHint,omitempty"`
	Tools        []string       `json:"tools,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// Skill is a canonical skill definition.
type Skill struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Body        string            `json:"body,omitempty"`
	Tools       []string          `json:"tools,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Extra       map[string]any    `json:"extra,omitempty"`
}

// Rule is a canonical rule or instruction document (CLAUDE.md,
// AGENTS.md, or a Cursor .mdc rule).
type Rule struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Body        string   `json:"body,omitempty"`
	Globs       []string `json:"globs,omitempty"`
	AlwaysApply bool     `json:"alwaysApply,omitempty"`
}

// Transcript is one raw, format-native chat session. The bytes are
// opaque to everything except the history converters.
type Transcript struct {
	// Format identifies the native shape of Raw and Parts.
	Format paths.Format

	// SessionID is the source's session identifier.
	SessionID string

	// Path is where the transcript was read from.
	Path string

	// ModTime is the session's last-modified time, used for --since
	// filtering.
	ModTime time.Time

	// Raw is the main transcript payload (the JSONL file for Claude
	// Code, the session info document for OpenCode).
	Raw []byte

	// Parts holds sibling payloads keyed by filename (OpenCode message
	// documents). Nil for single-file transcripts.
	Parts map[string][]byte
}

// Project returns the project config for root, or nil.
func (s *ScanResult) Project(root string) *ProjectConfig {
	clean := filepath.Clean(root)
	for i := range s.Projects {
		if filepath.Clean(s.Projects[i].Root) == clean {
			return &s.Projects[i]
		}
	}
	return nil
}

// AddProject appends a project config, replacing any previous entry
// with the same cleaned root so a project never appears twice.
func (s *ScanResult) AddProject(p ProjectConfig) {
	p.Root = filepath.Clean(p.Root)
	for i := range s.Projects {
		if s.Projects[i].Root == p.Root {
			s.Projects[i] = p
			return
		}
	}
	s.Projects = append(s.Projects, p)
}

// Normalize sorts every list by name so canonical results compare and
// serialize deterministically. Project order is preserved (it reflects
// discovery order, which diff's output ordering depends on).
func (s *ScanResult) Normalize() {
	s.Global.normalize()
	for i := range s.Projects {
		s.Projects[i].normalize()
	}
}

func (sc *ScopeConfig) normalize() {
	sort.Slice(sc.Agents, func(i, j int) bool { return sc.Agents[i].Name < sc.Agents[j].Name })
	sort.Slice(sc.Commands, func(i, j int) bool { return sc.Commands[i].Name < sc.Commands[j].Name })
	sort.Slice(sc.Skills, func(i, j int) bool { return sc.Skills[i].Name < sc.Skills[j].Name })
	sort.Slice(sc.Rules, func(i, j int) bool { return sc.Rules[i].Name < sc.Rules[j].Name })
}

// Empty reports whether the scope has no configuration at all.
func (sc *ScopeConfig) Empty() bool {
	return sc.Model == "" &&
		len(sc.MCPServers) == 0 &&
		len(sc.Agents) == 0 &&
		len(sc.Commands) == 0 &&
		len(sc.Skills) == 0 &&
		len(sc.Rules) == 0
}

// AgentNames returns the sorted agent names in this scope.
func (sc *ScopeConfig) AgentNames() []string {
	names := make([]string, 0, len(sc.Agents))
	for _, a := range sc.Agents {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}

// CommandNames returns the sorted command names in this scope.
func (sc *ScopeConfig) CommandNames() []string {
	names := make([]string, 0, len(sc.Commands))
	for _, c := range sc.Commands {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// SkillNames returns the sorted skill names in this scope.
func (sc *ScopeConfig) SkillNames() []string {
	names := make([]string, 0, len(sc.Skills))
	for _, s := range sc.Skills {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// RuleNames returns the sorted rule names in this scope.
func (sc *ScopeConfig) RuleNames() []string {
	names := make([]string, 0, len(sc.Rules))
	for _, r := range sc.Rules {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names
}
