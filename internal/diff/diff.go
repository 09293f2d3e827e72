// Package diff compares two canonical scans. It works purely on the
// canonical model, so any two formats can be compared without either
// knowing the other's file layout.
package diff

import (
	"encoding/json"
	"path/filepath"
	"sort"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/mcp"
)

// GlobalScope labels items in the user-wide scope.
const GlobalScope = "global"

// Item is one configuration item placed in the summary.
type Item struct {
	// Scope is GlobalScope or a project root.
	Scope string `json:"scope"`

	// Category is the item kind: model, mcp, agent, command, skill,
	// rule, or project for a whole project present on one side only.
	Category string `json:"category"`

	// Name identifies the item within its category.
	Name string `json:"name"`

	// Differs marks an InBoth item whose two sides are not equal.
	Differs bool `json:"differs,omitempty"`
}

// Summary is the result of comparing two canonical scans.
//
// Ordering is deterministic: global items first (model, then mcp,
// agents, commands, skills, and rules, each by sorted name), then
// projects in union order: the source's projects in their scan order,
// followed by target-only projects in theirs. A project present on
// only one side appears as a single whole-project entry rather than
// item by item.
type Summary struct {
	OnlyInSource []Item `json:"onlyInSource"`
	OnlyInTarget []Item `json:"onlyInTarget"`
	InBoth       []Item `json:"inBoth"`
}

// Identical reports whether the two sides hold the same configuration.
func (s *Summary) Identical() bool {
	if len(s.OnlyInSource) > 0 || len(s.OnlyInTarget) > 0 {
		return false
	}
	for _, item := range s.InBoth {
		if item.Differs {
			return false
		}
	}
	return true
}

// Compare diffs two canonical scans. Swapping the arguments mirrors
// the summary: every onlyInSource item becomes onlyInTarget and vice
// versa.
func Compare(source, target *canonical.ScanResult) *Summary {
	s := &Summary{}
	s.compareScope(GlobalScope, source.Global, target.Global)

	seen := map[string]bool{}
	for _, p := range source.Projects {
		root := filepath.Clean(p.Root)
		seen[root] = true
		if tp := projectFor(target, root); tp != nil {
			s.compareScope(root, p.ScopeConfig, tp.ScopeConfig)
		} else {
			s.OnlyInSource = append(s.OnlyInSource, Item{Scope: root, Category: "project", Name: root})
		}
	}
	for _, p := range target.Projects {
		root := filepath.Clean(p.Root)
		if seen[root] {
			continue
		}
		s.OnlyInTarget = append(s.OnlyInTarget, Item{Scope: root, Category: "project", Name: root})
	}
	return s
}

func projectFor(s *canonical.ScanResult, root string) *canonical.ProjectConfig {
	for i := range s.Projects {
		if filepath.Clean(s.Projects[i].Root) == root {
			return &s.Projects[i]
		}
	}
	return nil
}

func (s *Summary) compareScope(scope string, src, tgt canonical.ScopeConfig) {
	switch {
	case src.Model != "" && tgt.Model != "":
		s.InBoth = append(s.InBoth, Item{Scope: scope, Category: "model", Name: "default", Differs: src.Model != tgt.Model})
	case src.Model != "":
		s.OnlyInSource = append(s.OnlyInSource, Item{Scope: scope, Category: "model", Name: "default"})
	case tgt.Model != "":
		s.OnlyInTarget = append(s.OnlyInTarget, Item{Scope: scope, Category: "model", Name: "default"})
	}

	s.compareServers(scope, src.MCPServers, tgt.MCPServers)
	compareNamed(s, scope, "agent", src.Agents, tgt.Agents, func(a canonical.Agent) string { return a.Name })
	compareNamed(s, scope, "command", src.Commands, tgt.Commands, func(c canonical.Command) string { return c.Name })
	compareNamed(s, scope, "skill", src.Skills, tgt.Skills, func(sk canonical.Skill) string { return sk.Name })
	compareNamed(s, scope, "rule", src.Rules, tgt.Rules, func(r canonical.Rule) string { return r.Name })
}

func (s *Summary) compareServers(scope string, src, tgt map[string]*mcp.Server) {
	names := map[string]bool{}
	for name := range src {
		names[name] = true
	}
	for name := range tgt {
		names[name] = true
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		sv, sok := src[name]
		tv, tok := tgt[name]
		s.place(Item{Scope: scope, Category: "mcp", Name: name, Differs: render(sv) != render(tv)}, sok, tok)
	}
}

// compareNamed places every item of one name-keyed category.
func compareNamed[T any](s *Summary, scope, category string, src, tgt []T, name func(T) string) {
	srcByName := map[string]T{}
	for _, item := range src {
		srcByName[name(item)] = item
	}
	tgtByName := map[string]T{}
	for _, item := range tgt {
		tgtByName[name(item)] = item
	}

	names := map[string]bool{}
	for n := range srcByName {
		names[n] = true
	}
	for n := range tgtByName {
		names[n] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	for _, n := range sorted {
		sv, sok := srcByName[n]
		tv, tok := tgtByName[n]
		differs := false
		if sok && tok {
			differs = render(sv) != render(tv)
		}
		s.place(Item{Scope: scope, Category: category, Name: n, Differs: differs}, sok, tok)
	}
}

func (s *Summary) place(item Item, inSource, inTarget bool) {
	switch {
	case inSource && inTarget:
		s.InBoth = append(s.InBoth, item)
	case inSource:
		item.Differs = false
		s.OnlyInSource = append(s.OnlyInSource, item)
	case inTarget:
		item.Differs = false
		s.OnlyInTarget = append(s.OnlyInTarget, item)
	}
}

// render produces a compact, comparable JSON rendering of an item.
func render(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
