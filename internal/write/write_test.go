package write

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/convey/internal/backup"
	"github.com/thoreinstein/convey/internal/convert"
)

func TestWriteNewFiles(t *testing.T) {
	dir := t.TempDir()
	files := convert.FileSet{
		filepath.Join(dir, ".claude", "settings.json"): []byte(`{"model": "opus"}`),
		filepath.Join(dir, "CLAUDE.md"):                []byte("Be careful.\n"),
	}

	res, err := Write(files, Options{})
	require.NoError(t, err)
	assert.Len(t, res.Written, 2)
	assert.Empty(t, res.Skipped)

	got, err := os.ReadFile(filepath.Join(dir, ".claude", "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"model": "opus"}`, string(got))
}

func TestWritePreserveExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model": "old"}`), 0o644))

	res, err := Write(convert.FileSet{path: []byte(`{"model": "new"}`)}, Options{Strategy: StrategyPreserve})
	require.NoError(t, err)
	assert.Empty(t, res.Written)
	assert.Equal(t, []string{path}, res.Skipped)

	got, _ := os.ReadFile(path)
	assert.Equal(t, `{"model": "old"}`, string(got))
}

func TestWriteForceOverridesPreserve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model": "old"}`), 0o644))

	res, err := Write(convert.FileSet{path: []byte(`{"model": "new"}`)},
		Options{Strategy: StrategyPreserve, Force: true})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, res.Written)

	got, _ := os.ReadFile(path)
	assert.Equal(t, `{"model": "new"}`, string(got))
}

func TestWriteIdenticalContentSkipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	content := []byte(`{"model": "opus"}`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	res, err := Write(convert.FileSet{path: content}, Options{Strategy: StrategyOverwrite})
	require.NoError(t, err)
	assert.Empty(t, res.Written)
	assert.Equal(t, []string{path}, res.Skipped)
}

func TestWriteBackupBeforeOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model": "old"}`), 0o644))

	m := backup.NewManager(t.TempDir())
	session := m.Begin("test")

	_, err := Write(convert.FileSet{path: []byte(`{"model": "new"}`)},
		Options{Strategy: StrategyOverwrite, Session: session})
	require.NoError(t, err)
	require.NoError(t, session.Finish())

	// Restoring brings the old content back.
	restored, err := m.Restore(session.ID())
	require.NoError(t, err)
	require.Len(t, restored.Restored, 1)

	got, _ := os.ReadFile(path)
	assert.Equal(t, `{"model": "old"}`, string(got))
}

func TestWriteDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "settings.json")
	fresh := filepath.Join(dir, "new.json")
	require.NoError(t, os.WriteFile(existing, []byte(`{"a": 1}`), 0o644))

	res, err := Write(convert.FileSet{
		existing: []byte(`{"a": 2}`),
		fresh:    []byte(`{}`),
	}, Options{Strategy: StrategyOverwrite, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, res.Written, 2)

	got, _ := os.ReadFile(existing)
	assert.Equal(t, `{"a": 1}`, string(got))
	_, err = os.Stat(fresh)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteMergeDeepJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opencode.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "theme": "tokyonight",
  "mcp": {"existing": {"type": "local", "command": ["keep-me"]}}
}`), 0o644))

	incoming := []byte(`{
  "model": "anthropic/claude-opus-4-1",
  "mcp": {"incoming": {"type": "remote", "url": "https://x/mcp"}}
}`)

	res, err := Write(convert.FileSet{path: incoming}, Options{Strategy: StrategyMerge})
	require.NoError(t, err)
	require.Len(t, res.Written, 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "tokyonight", got["theme"])
	assert.Equal(t, "anthropic/claude-opus-4-1", got["model"])
	servers := got["mcp"].(map[string]any)
	assert.Contains(t, servers, "existing")
	assert.Contains(t, servers, "incoming")
}

func TestWriteMergeNonJSONFallsBackToOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CLAUDE.md")
	require.NoError(t, os.WriteFile(path, []byte("old instructions\n"), 0o644))

	res, err := Write(convert.FileSet{path: []byte("new instructions\n")}, Options{Strategy: StrategyMerge})
	require.NoError(t, err)
	require.Len(t, res.Written, 1)

	got, _ := os.ReadFile(path)
	assert.Equal(t, "new instructions\n", string(got))
}

func TestWriteFailedPathDoesNotStopOthers(t *testing.T) {
	dir := t.TempDir()
	// a-blocked is a regular file, so nothing can be created beneath it.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-blocked"), []byte("x"), 0o644))

	blocked := filepath.Join(dir, "a-blocked", "settings.json")
	healthy := filepath.Join(dir, "z-ok", "agents", "x.md")

	res, err := Write(convert.FileSet{
		blocked: []byte(`{}`),
		healthy: []byte("body\n"),
	}, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{healthy}, res.Written)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "a-blocked")

	got, readErr := os.ReadFile(healthy)
	require.NoError(t, readErr)
	assert.Equal(t, "body\n", string(got))
}

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{StrategyPreserve, StrategyOverwrite, StrategyMerge} {
		got, err := ParseStrategy(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, got)
	}
	_, err := ParseStrategy("clobber")
	require.Error(t, err)
}
