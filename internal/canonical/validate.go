package canonical

import (
	"fmt"
)

// Issue is one validation finding.
type Issue struct {
	// Scope is "global" or the project root.
	Scope string `json:"scope"`

	// Category is mcp, agent, command, skill, rule, or model.
	Category string `json:"category"`

	// Name identifies the offending item within its category.
	Name string `json:"name,omitempty"`

	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Name == "" {
		return fmt.Sprintf("%s/%s: %s", i.Scope, i.Category, i.Message)
	}
	return fmt.Sprintf("%s/%s %q: %s", i.Scope, i.Category, i.Name, i.Message)
}

// Validate checks structural invariants of a canonical scan result:
// unique names per category within each scope, required fields, and
// MCP transport sanity. It reports problems; it never mutates.
func Validate(s *ScanResult) []Issue {
	var issues []Issue
	issues = append(issues, validateScope("global", &s.Global)...)

	seenRoots := make(map[string]struct{}, len(s.Projects))
	for i := range s.Projects {
		p := &s.Projects[i]
		if _, dup := seenRoots[p.Root]; dup {
			issues = append(issues, Issue{
				Scope:    p.Root,
				Category: "project",
				Message:  "project root appears more than once",
			})
		}
		seenRoots[p.Root] = struct{}{}
		issues = append(issues, validateScope(p.Root, &p.ScopeConfig)...)
	}
	return issues
}

func validateScope(scope string, sc *ScopeConfig) []Issue {
	var issues []Issue

	if sc.Model == ModelInherit {
		issues = append(issues, Issue{
			Scope:    scope,
			Category: "model",
			Message:  "scope default model must not be the inherit sentinel",
		})
	}

	for name, server := range sc.MCPServers {
		if name == "" {
			issues = append(issues, Issue{
				Scope:    scope,
				Category: "mcp",
				Message:  "server with empty name",
			})
			continue
		}
		if server == nil {
			issues = append(issues, Issue{
				Scope:    scope,
				Category: "mcp",
				Name:     name,
				Message:  "server definition is empty",
			})
			continue
		}
		if server.Command == "" && server.URL == "" {
			issues = append(issues, Issue{
				Scope:    scope,
				Category: "mcp",
				Name:     name,
				Message:  "server has neither command nor url",
			})
		}
	}

	issues = append(issues, checkNames(scope, "agent", agentKeys(sc.Agents))...)
	issues = append(issues, checkNames(scope, "command", commandKeys(sc.Commands))...)
	issues = append(issues, checkNames(scope, "skill", skillKeys(sc.Skills))...)
	issues = append(issues, checkNames(scope, "rule", ruleKeys(sc.Rules))...)

	for _, a := range sc.Agents {
		if a.Mode != ModeDefault && a.Mode != ModePrimary && a.Mode != ModeSubagent {
			issues = append(issues, Issue{
				Scope:    scope,
				Category: "agent",
				Name:     a.Name,
				Message:  fmt.Sprintf("invalid mode %q", a.Mode),
			})
		}
		if a.Temperature != nil && (*a.Temperature < 0 || *a.Temperature > 2) {
			issues = append(issues, Issue{
				Scope:    scope,
				Category: "agent",
				Name:     a.Name,
				Message:  fmt.Sprintf("temperature %v out of range [0, 2]", *a.Temperature),
			})
		}
	}

	return issues
}

func checkNames(scope, category string, names []string) []Issue {
	var issues []Issue
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			issues = append(issues, Issue{
				Scope:    scope,
				Category: category,
				Message:  "item with empty name",
			})
			continue
		}
		if _, dup := seen[name]; dup {
			issues = append(issues, Issue{
				Scope:    scope,
				Category: category,
				Name:     name,
				Message:  "duplicate name within scope",
			})
		}
		seen[name] = struct{}{}
	}
	return issues
}

func agentKeys(items []Agent) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}

func commandKeys(items []Command) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}

func skillKeys(items []Skill) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}

func ruleKeys(items []Rule) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}
