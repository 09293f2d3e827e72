package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportClassification(t *testing.T) {
	tests := []struct {
		name       string
		server     Server
		wantLocal  bool
		wantRemote bool
	}{
		{
			name:      "explicit stdio",
			server:    Server{Transport: TransportStdio, Command: "npx"},
			wantLocal: true,
		},
		{
			name:       "explicit sse",
			server:     Server{Transport: TransportSSE, URL: "https://mcp.example.com"},
			wantRemote: true,
		},
		{
			name:      "inferred local from command",
			server:    Server{Command: "uvx"},
			wantLocal: true,
		},
		{
			name:       "inferred remote from url",
			server:     Server{URL: "https://mcp.example.com"},
			wantRemote: true,
		},
		{
			name:   "ambiguous empty server",
			server: Server{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLocal, tt.server.IsLocal(), "IsLocal")
			assert.Equal(t, tt.wantRemote, tt.server.IsRemote(), "IsRemote")
		})
	}
}

func TestUnknownFieldRoundTrip(t *testing.T) {
	input := `{
		"name": "github",
		"command": "npx",
		"args": ["-y", "@modelcontextprotocol/server-github"],
		"env": {"GITHUB_TOKEN": "tok"},
		"experimental_timeout": 30
	}`

	var s Server
	require.NoError(t, json.Unmarshal([]byte(input), &s))

	assert.Equal(t, "github", s.Name)
	assert.Equal(t, "npx", s.Command)
	require.Contains(t, s.Extra(), "experimental_timeout")

	out, err := json.Marshal(&s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, float64(30), decoded["experimental_timeout"])
	assert.Equal(t, "npx", decoded["command"])
}

func TestMarshalOmitsZeroFields(t *testing.T) {
	s := Server{Name: "fetch", URL: "https://mcp.example.com", Transport: TransportSSE}

	out, err := json.Marshal(&s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.NotContains(t, decoded, "command")
	assert.NotContains(t, decoded, "disabled")
	assert.NotContains(t, decoded, "env")
}

func TestSortedNames(t *testing.T) {
	servers := map[string]*Server{
		"zeta":  {Name: "zeta"},
		"alpha": {Name: "alpha"},
		"mid":   {Name: "mid"},
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, SortedNames(servers))
}
