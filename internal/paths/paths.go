package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/convey/internal/errors"
)

// Format identifies one of the supported configuration ecosystems.
// The set is closed: every switch over Format handles exactly these
// three values plus a default that rejects the rest.
type Format string

// Supported formats.
const (
	FormatClaude   Format = "claude"
	FormatOpenCode Format = "opencode"
	FormatCursor   Format = "cursor"
)

// ErrUnknownFormat indicates a format name outside the supported set.
var ErrUnknownFormat = errors.ErrUnknownFormat

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// DefaultDirPerm is the default permission for directories convey creates.
const DefaultDirPerm = 0o755

// formatGlobalConfigs maps each format to its global config directory,
// relative to the user's home.
var formatGlobalConfigs = map[Format]string{
	FormatClaude:   ".claude",
	FormatOpenCode: ".config/opencode",
	FormatCursor:   ".cursor",
}

// formatProjectConfigs maps each format to its project-scoped config
// directory, relative to the project root.
var formatProjectConfigs = map[Format]string{
	FormatClaude:   ".claude",
	FormatOpenCode: ".opencode",
	FormatCursor:   ".cursor",
}

// formatInstructionFiles maps each format to its project instruction
// file name. Cursor has no single instruction file; its rules live in
// .cursor/rules/.
var formatInstructionFiles = map[Format]string{
	FormatClaude:   "CLAUDE.md",
	FormatOpenCode: "AGENTS.md",
	FormatCursor:   "",
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	f := Format(name)
	if _, ok := formatGlobalConfigs[f]; !ok {
		return "", errors.Wrapf(ErrUnknownFormat, "%q (valid: claude, opencode, cursor)", name)
	}
	return f, nil
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	_, ok := formatGlobalConfigs[f]
	return ok
}

// String returns the format identifier.
func (f Format) String() string { return string(f) }

// DisplayName returns a human-readable name for the format.
func (f Format) DisplayName() string {
	switch f {
	case FormatClaude:
		return "Claude Code"
	case FormatOpenCode:
		return "OpenCode"
	case FormatCursor:
		return "Cursor"
	default:
		return string(f)
	}
}

// Formats returns all supported formats in deterministic order.
func Formats() []Format {
	return []Format{FormatClaude, FormatOpenCode, FormatCursor}
}

// Home returns the user's home directory, or empty if unresolvable.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
func DataHome() string {
	return xdg.DataHome
}

// EnsureDir creates a directory and its parents if missing.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// GlobalConfigDir returns the format's global configuration directory.
//
//   - claude: ~/.claude/
//   - opencode: ~/.config/opencode/
//   - cursor: ~/.cursor/
func GlobalConfigDir(f Format) string {
	relPath, ok := formatGlobalConfigs[f]
	if !ok {
		return ""
	}
	home := Home()
	if home == "" {
		return ""
	}
	return filepath.Join(home, relPath)
}

// ProjectConfigDir returns the format's project-scoped config directory.
//
//   - claude: <root>/.claude/
//   - opencode: <root>/.opencode/
//   - cursor: <root>/.cursor/
func ProjectConfigDir(f Format, projectRoot string) string {
	if projectRoot == "" {
		return ""
	}
	relPath, ok := formatProjectConfigs[f]
	if !ok {
		return ""
	}
	return filepath.Join(projectRoot, relPath)
}

// InstructionsPath returns the project instruction file path
// (CLAUDE.md or AGENTS.md). Empty for cursor, which keeps rules
// under .cursor/rules/ instead.
func InstructionsPath(f Format, projectRoot string) string {
	if projectRoot == "" {
		return ""
	}
	filename, ok := formatInstructionFiles[f]
	if !ok || filename == "" {
		return ""
	}
	return filepath.Join(projectRoot, filename)
}

// GlobalMCPConfigPath returns the user-wide MCP config file.
//
//   - claude: ~/.claude.json (top-level user config, not inside .claude/)
//   - opencode: ~/.config/opencode/opencode.json
//   - cursor: ~/.cursor/mcp.json
func GlobalMCPConfigPath(f Format) string {
	home := Home()
	if home == "" {
		return ""
	}
	switch f {
	case FormatClaude:
		return filepath.Join(home, ".claude.json")
	case FormatOpenCode:
		return filepath.Join(GlobalConfigDir(f), "opencode.json")
	case FormatCursor:
		return filepath.Join(GlobalConfigDir(f), "mcp.json")
	default:
		return ""
	}
}

// ProjectMCPConfigPath returns the project-scoped MCP config file.
//
//   - claude: <root>/.mcp.json
//   - opencode: <root>/opencode.json
//   - cursor: <root>/.cursor/mcp.json
func ProjectMCPConfigPath(f Format, projectRoot string) string {
	if projectRoot == "" {
		return ""
	}
	switch f {
	case FormatClaude:
		return filepath.Join(projectRoot, ".mcp.json")
	case FormatOpenCode:
		return filepath.Join(projectRoot, "opencode.json")
	case FormatCursor:
		return filepath.Join(projectRoot, ".cursor", "mcp.json")
	default:
		return ""
	}
}

// HistoryDir returns the root of the format's chat-session store.
// Empty for cursor, which has no readable session storage.
//
//   - claude: ~/.claude/projects/
//   - opencode: $XDG_DATA_HOME/opencode/storage/
func HistoryDir(f Format) string {
	switch f {
	case FormatClaude:
		dir := GlobalConfigDir(f)
		if dir == "" {
			return ""
		}
		return filepath.Join(dir, "projects")
	case FormatOpenCode:
		return filepath.Join(DataHome(), "opencode", "storage")
	default:
		return ""
	}
}

// BackupRoot returns the root directory for convey's backup snapshots.
// Returns $XDG_CONFIG_HOME/convey/backups/.
func BackupRoot() string {
	return filepath.Join(ConfigHome(), "convey", "backups")
}
