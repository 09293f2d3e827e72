package history

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/paths"
)

func claudeTranscript(lines ...string) canonical.Transcript {
	return canonical.Transcript{
		Format:    paths.FormatClaude,
		SessionID: "abc123",
		Path:      "/fake/abc123.jsonl",
		ModTime:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Raw:       []byte(strings.Join(lines, "\n") + "\n"),
	}
}

func TestFromClaude(t *testing.T) {
	tr := claudeTranscript(
		`{"sessionId":"abc123","type":"user","message":{"role":"user","content":"Fix the build"},"timestamp":"2025-06-01T10:00:00Z","uuid":"u1","cwd":"/work/api"}`,
		`{"sessionId":"abc123","type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Looking into it."}]},"timestamp":"2025-06-01T10:00:05Z","uuid":"a1"}`,
		`{"type":"summary","summary":"Build fix session"}`,
	)

	session, warnings := FromClaude(tr)
	require.NotNil(t, session)
	assert.Empty(t, warnings)

	assert.Equal(t, "abc123", session.ID)
	assert.Equal(t, "/work/api", session.ProjectRoot)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, RoleUser, session.Messages[0].Role)
	assert.Equal(t, "Fix the build", session.Messages[0].Text)
	assert.Equal(t, "Looking into it.", session.Messages[1].Text)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), session.CreatedAt)
}

func TestFromClaudeMalformedLinesFiltered(t *testing.T) {
	tr := claudeTranscript(
		`{"type":"user","message":{"role":"user","content":"hello"},"uuid":"u1"}`,
		`{not json at all`,
		`{"type":"assistant","message":{"role":"assistant","content":"hi"},"uuid":"a1"}`,
	)

	session, warnings := FromClaude(tr)
	require.Len(t, session.Messages, 2)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "line 2")
}

func TestFromOpenCode(t *testing.T) {
	tr := canonical.Transcript{
		Format:    paths.FormatOpenCode,
		SessionID: "ses_xyz",
		Raw:       []byte(`{"id":"ses_xyz","title":"Refactor storage","directory":"/work/api","time":{"created":1748800000000}}`),
		Parts: map[string][]byte{
			"msg_002.json": []byte(`{"id":"msg_002","role":"assistant","parts":[{"type":"text","text":"Done."}]}`),
			"msg_001.json": []byte(`{"id":"msg_001","role":"user","parts":[{"type":"text","text":"Refactor this."}]}`),
		},
	}

	session, warnings := FromOpenCode(tr)
	require.NotNil(t, session)
	assert.Empty(t, warnings)

	assert.Equal(t, "Refactor storage", session.Title)
	assert.Equal(t, "/work/api", session.ProjectRoot)
	require.Len(t, session.Messages, 2)
	// Lexical file order gives chronological message order.
	assert.Equal(t, "Refactor this.", session.Messages[0].Text)
	assert.Equal(t, "Done.", session.Messages[1].Text)
}

func TestParseSkipsUnreadableSessions(t *testing.T) {
	transcripts := []canonical.Transcript{
		{Format: paths.FormatOpenCode, SessionID: "bad", Raw: []byte("not json")},
		{Format: paths.FormatClaude, SessionID: "good",
			Raw: []byte(`{"type":"user","message":{"role":"user","content":"hi"},"uuid":"u1"}` + "\n")},
	}

	sessions, warnings := Parse(transcripts)
	require.Len(t, sessions, 1)
	assert.Equal(t, "good", sessions[0].ID)
	require.Len(t, warnings, 1)
}

func TestRenderClaudeToOpenCodeRoundTrip(t *testing.T) {
	tr := claudeTranscript(
		`{"type":"user","message":{"role":"user","content":"Fix it"},"timestamp":"2025-06-01T10:00:00Z","uuid":"u1","cwd":"/work/api"}`,
		`{"type":"assistant","message":{"role":"assistant","content":"Fixed."},"timestamp":"2025-06-01T10:01:00Z","uuid":"a1"}`,
	)
	sessions, warnings := Parse([]canonical.Transcript{tr})
	require.Empty(t, warnings)
	require.Len(t, sessions, 1)

	files, warnings, err := Render(sessions, paths.FormatOpenCode)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// One info document plus one file per message.
	require.Len(t, files, 3)

	var infoPath string
	for path := range files {
		if strings.Contains(path, "session") && strings.HasSuffix(path, "abc123.json") {
			infoPath = path
		}
	}
	require.NotEmpty(t, infoPath)

	var info map[string]any
	require.NoError(t, json.Unmarshal(files[infoPath], &info))
	assert.Equal(t, "abc123", info["id"])
	assert.Equal(t, "/work/api", info["directory"])
}

func TestRenderOpenCodeToClaude(t *testing.T) {
	sessions := []Session{{
		ID:          "ses_xyz",
		ProjectRoot: "/work/api",
		Messages: []Message{
			{ID: "m1", Role: RoleUser, Text: "Refactor this.", Timestamp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
			{ID: "m2", Role: RoleAssistant, Text: "Done."},
		},
	}}

	files, warnings, err := Render(sessions, paths.FormatClaude)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, files, 1)

	for path, data := range files {
		assert.True(t, strings.HasSuffix(path, "ses_xyz.jsonl"))
		assert.Contains(t, path, "-work-api")

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 2)

		var first map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
		assert.Equal(t, "ses_xyz", first["sessionId"])
		assert.Equal(t, "user", first["type"])
	}
}

func TestRenderCursorUnsupported(t *testing.T) {
	_, _, err := Render(nil, paths.FormatCursor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no writable session store")
}
