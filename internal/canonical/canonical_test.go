package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/convey/internal/mcp"
	"github.com/thoreinstein/convey/internal/paths"
)

func TestAddProjectDeduplicates(t *testing.T) {
	s := &ScanResult{Format: paths.FormatClaude}

	s.AddProject(ProjectConfig{Root: "/work/app", ScopeConfig: ScopeConfig{Model: "first"}})
	s.AddProject(ProjectConfig{Root: "/work/app/", ScopeConfig: ScopeConfig{Model: "second"}})

	require.Len(t, s.Projects, 1)
	assert.Equal(t, "second", s.Projects[0].Model)

	s.AddProject(ProjectConfig{Root: "/work/other"})
	assert.Len(t, s.Projects, 2)
}

func TestNormalizeSortsByName(t *testing.T) {
	s := &ScanResult{
		Global: ScopeConfig{
			Agents: []Agent{{Name: "zeta"}, {Name: "alpha"}},
			Skills: []Skill{{Name: "second"}, {Name: "first"}},
		},
	}

	s.Normalize()

	assert.Equal(t, "alpha", s.Global.Agents[0].Name)
	assert.Equal(t, "zeta", s.Global.Agents[1].Name)
	assert.Equal(t, []string{"first", "second"}, s.Global.SkillNames())
}

func TestValidateCleanResult(t *testing.T) {
	temp := 0.3
	s := &ScanResult{
		Format: paths.FormatClaude,
		Global: ScopeConfig{
			Model: "claude-opus-4-1",
			MCPServers: map[string]*mcp.Server{
				"github": {Name: "github", Command: "npx"},
			},
			Agents: []Agent{
				{Name: "builder", Mode: ModePrimary, Temperature: &temp},
			},
		},
		Projects: []ProjectConfig{
			{Root: "/work/app", ScopeConfig: ScopeConfig{
				Agents: []Agent{{Name: "builder"}}, // cross-scope collision is allowed
			}},
		},
	}

	assert.Empty(t, Validate(s))
}

func TestValidateFindings(t *testing.T) {
	badTemp := 3.5
	s := &ScanResult{
		Global: ScopeConfig{
			Model: ModelInherit,
			MCPServers: map[string]*mcp.Server{
				"ghost": {Name: "ghost"},
			},
			Agents: []Agent{
				{Name: "dup"},
				{Name: "dup"},
				{Name: "hot", Temperature: &badTemp},
				{Name: "weird", Mode: Mode("sideways")},
			},
		},
		Projects: []ProjectConfig{
			{Root: "/work/app"},
			{Root: "/work/app"},
		},
	}

	issues := Validate(s)

	categories := make(map[string]int)
	for _, issue := range issues {
		categories[issue.Category]++
	}

	assert.Equal(t, 1, categories["model"], "inherit sentinel as scope model")
	assert.Equal(t, 1, categories["mcp"], "server without command or url")
	assert.Equal(t, 3, categories["agent"], "duplicate name, bad temperature, bad mode")
	assert.Equal(t, 1, categories["project"], "duplicate project root")
}

func TestIssueString(t *testing.T) {
	withName := Issue{Scope: "global", Category: "agent", Name: "dup", Message: "duplicate name within scope"}
	assert.Equal(t, `global/agent "dup": duplicate name within scope`, withName.String())

	noName := Issue{Scope: "global", Category: "mcp", Message: "server with empty name"}
	assert.Equal(t, "global/mcp: server with empty name", noName.String())
}
