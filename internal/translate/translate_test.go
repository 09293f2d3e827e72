package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/paths"
)

func TestCanonicalModel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "opus alias", input: "opus", want: "claude-opus-4-1"},
		{name: "sonnet alias", input: "sonnet", want: "claude-sonnet-4-5"},
		{name: "haiku alias", input: "haiku", want: "claude-haiku-4-5"},
		{name: "mixed case alias", input: "Opus", want: "claude-opus-4-1"},
		{name: "opencode provider prefix", input: "anthropic/claude-opus-4-1", want: "claude-opus-4-1"},
		{name: "prefixed alias", input: "anthropic/sonnet", want: "claude-sonnet-4-5"},
		{name: "already canonical", input: "claude-opus-4-1", want: "claude-opus-4-1"},
		{name: "inherit passes through", input: canonical.ModelInherit, want: canonical.ModelInherit},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalModel(tt.input))
		})
	}
}

func TestFormatModel(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		target   paths.Format
		want     string
		wantEmit bool
	}{
		{
			name:     "alias for claude target",
			model:    "opus",
			target:   paths.FormatClaude,
			want:     "claude-opus-4-1",
			wantEmit: true,
		},
		{
			name:     "alias for opencode target gets provider prefix",
			model:    "opus",
			target:   paths.FormatOpenCode,
			want:     "anthropic/claude-opus-4-1",
			wantEmit: true,
		},
		{
			name:   "inherit is never emitted",
			model:  canonical.ModelInherit,
			target: paths.FormatOpenCode,
		},
		{
			name:   "empty is never emitted",
			model:  "",
			target: paths.FormatClaude,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, emit := FormatModel(tt.model, tt.target)
			assert.Equal(t, tt.wantEmit, emit)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInferMode(t *testing.T) {
	tests := []struct {
		name        string
		agentName   string
		description string
		want        canonical.Mode
	}{
		{name: "code reviewer", agentName: "code-reviewer", want: canonical.ModeSubagent},
		{name: "security auditor", agentName: "sec", description: "audits dependencies", want: canonical.ModeSubagent},
		{name: "builder", agentName: "builder", want: canonical.ModePrimary},
		{name: "feature developer", agentName: "helper", description: "implements features", want: canonical.ModePrimary},
		{name: "review wins over build", agentName: "build-reviewer", want: canonical.ModeSubagent},
		{name: "no signal", agentName: "oracle", description: "answers questions", want: canonical.ModeDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferMode(tt.agentName, tt.description))
		})
	}
}

func TestInferModeDeterministic(t *testing.T) {
	for range 3 {
		assert.Equal(t, canonical.ModeSubagent, InferMode("code-reviewer", ""))
	}
}

func TestInferTemperature(t *testing.T) {
	if temp := InferTemperature("security-auditor", ""); assert.NotNil(t, temp) {
		assert.Equal(t, 0.1, *temp)
	}
	assert.Nil(t, InferTemperature("builder", "implements features"))
}

func TestToolPermissions(t *testing.T) {
	perms, unknown := ToolPermissions([]string{"Bash", "Read", "WebFetch", "CustomThing"})

	assert.Equal(t, map[string]bool{
		"bash":        true,
		"read":        true,
		"webfetch":    true,
		"customthing": true,
	}, perms)
	assert.Equal(t, []string{"CustomThing"}, unknown)

	perms, unknown = ToolPermissions(nil)
	assert.Nil(t, perms)
	assert.Nil(t, unknown)
}

func TestPermissionTools(t *testing.T) {
	tools := PermissionTools(map[string]bool{
		"bash":    true,
		"edit":    true,
		"grep":    false, // disabled, dropped
		"mystery": true,  // unknown, preserved
	})

	assert.Equal(t, []string{"Bash", "Edit", "mystery"}, tools)
}

func TestToolPermissionRoundTrip(t *testing.T) {
	in := []string{"Bash", "Edit", "Read"}
	perms, unknown := ToolPermissions(in)
	assert.Empty(t, unknown)
	assert.Equal(t, in, PermissionTools(perms))
}
