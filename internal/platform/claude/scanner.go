package claude

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/internal/platform"
	"github.com/thoreinstein/convey/pkg/fileutil"
)

// Scanner reads Claude Code's on-disk configuration. The zero value is
// not useful; use NewScanner for the real locations or fill the fields
// explicitly in tests.
type Scanner struct {
	// GlobalDir is the global config directory (~/.claude).
	GlobalDir string

	// GlobalMCPPath is the user-wide MCP config file (~/.claude.json).
	GlobalMCPPath string

	// HistoryRoot is the session store root (~/.claude/projects).
	HistoryRoot string
}

// NewScanner creates a Scanner pointed at the standard locations.
func NewScanner() *Scanner {
	return &Scanner{
		GlobalDir:     paths.GlobalConfigDir(paths.FormatClaude),
		GlobalMCPPath: paths.GlobalMCPConfigPath(paths.FormatClaude),
		HistoryRoot:   paths.HistoryDir(paths.FormatClaude),
	}
}

// Scan reads the requested scopes. Missing optional files yield empty
// collections; only unexpected I/O errors are fatal.
func (s *Scanner) Scan(opts platform.ScanOptions) (*ScanResult, error) {
	res := &ScanResult{}

	if opts.Global {
		scope, warnings, err := s.scanScope(s.GlobalDir, s.GlobalMCPPath, "")
		if err != nil {
			return nil, err
		}
		res.Global = scope
		res.Warnings = append(res.Warnings, warnings...)
	}

	if opts.Project != "" {
		root := filepath.Clean(opts.Project)
		scope, warnings, err := s.scanScope(
			paths.ProjectConfigDir(paths.FormatClaude, root),
			paths.ProjectMCPConfigPath(paths.FormatClaude, root),
			paths.InstructionsPath(paths.FormatClaude, root),
		)
		if err != nil {
			return nil, err
		}
		res.Projects = append(res.Projects, ProjectScan{Root: root, Scope: scope})
		res.Warnings = append(res.Warnings, warnings...)
	}

	if opts.IncludeHistory {
		transcripts, warnings := s.scanHistory(opts)
		res.History = transcripts
		res.Warnings = append(res.Warnings, warnings...)
	}

	return res, nil
}

// scanScope reads one scope's settings, MCP config, category
// directories, and optional instructions file.
func (s *Scanner) scanScope(configDir, mcpPath, instructionsPath string) (Scope, []string, error) {
	var scope Scope
	var warnings []string

	if configDir == "" {
		return scope, nil, nil
	}

	settings, warning, err := readSettings(filepath.Join(configDir, "settings.json"))
	if err != nil {
		return scope, nil, err
	}
	scope.Settings = settings
	if warning != "" {
		warnings = append(warnings, warning)
	}

	if mcpPath != "" {
		mcpConfig, warning, err := readMCPConfig(mcpPath)
		if err != nil {
			return scope, nil, err
		}
		scope.MCP = mcpConfig
		if warning != "" {
			warnings = append(warnings, warning)
		}
	}

	agents, agentWarnings, err := platform.ReadCategory(filepath.Join(configDir, "agents"), ".md", ParseAgent)
	if err != nil {
		return scope, nil, err
	}
	scope.Agents = agents
	warnings = append(warnings, agentWarnings...)

	commands, cmdWarnings, err := platform.ReadCategory(filepath.Join(configDir, "commands"), ".md", ParseCommand)
	if err != nil {
		return scope, nil, err
	}
	scope.Commands = commands
	warnings = append(warnings, cmdWarnings...)

	skills, skillWarnings, err := readSkills(filepath.Join(configDir, "skills"))
	if err != nil {
		return scope, nil, err
	}
	scope.Skills = skills
	warnings = append(warnings, skillWarnings...)

	if instructionsPath != "" {
		data, err := fileutil.ReadFileCapped(instructionsPath)
		switch {
		case err == nil:
			scope.Instructions = strings.TrimSpace(string(data))
		case os.IsNotExist(err):
			// Optional file.
		default:
			return scope, nil, errors.Wrapf(err, "reading %s", instructionsPath)
		}
	}

	return scope, warnings, nil
}

// readSettings loads a settings.json. A missing file yields nil; a
// malformed one yields a warning, not a fatal error.
func readSettings(path string) (*Settings, string, error) {
	data, err := fileutil.ReadFileCapped(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", errors.Wrapf(err, "reading %s", path)
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Sprintf("skipping %s: %v", path, err), nil
	}
	return &settings, "", nil
}

// readMCPConfig loads an MCP config file (.mcp.json or ~/.claude.json).
func readMCPConfig(path string) (*MCPConfig, string, error) {
	data, err := fileutil.ReadFileCapped(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", errors.Wrapf(err, "reading %s", path)
	}
	var cfg MCPConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Sprintf("skipping %s: %v", path, err), nil
	}
	return &cfg, "", nil
}

// readSkills walks skills/<name>/SKILL.md subdirectories.
func readSkills(skillsDir string) ([]*SkillFile, []string, error) {
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, errors.Wrapf(err, "reading directory %s", skillsDir)
	}

	var skills []*SkillFile
	var warnings []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(skillsDir, entry.Name(), "SKILL.md")
		data, err := fileutil.ReadFileCapped(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			warnings = append(warnings, fmt.Sprintf("skipping %s: %v", path, err))
			continue
		}
		skill, err := ParseSkill(entry.Name(), data)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping %s: %v", path, err))
			continue
		}
		skills = append(skills, skill)
	}
	return skills, warnings, nil
}

// scanHistory reads JSONL session transcripts. Nothing here is fatal:
// the session store is best-effort input and problems become warnings.
func (s *Scanner) scanHistory(opts platform.ScanOptions) ([]canonical.Transcript, []string) {
	if s.HistoryRoot == "" {
		return nil, nil
	}

	var projectDirs []string
	if opts.Project != "" {
		projectDirs = []string{filepath.Join(s.HistoryRoot, HistoryDirName(opts.Project))}
	} else {
		entries, err := os.ReadDir(s.HistoryRoot)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, []string{fmt.Sprintf("reading history root %s: %v", s.HistoryRoot, err)}
		}
		for _, entry := range entries {
			if entry.IsDir() {
				projectDirs = append(projectDirs, filepath.Join(s.HistoryRoot, entry.Name()))
			}
		}
	}

	var transcripts []canonical.Transcript
	var warnings []string
	for _, dir := range projectDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				warnings = append(warnings, fmt.Sprintf("reading history dir %s: %v", dir, err))
			}
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			info, err := entry.Info()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("stat %s: %v", path, err))
				continue
			}
			if !opts.Since.IsZero() && info.ModTime().Before(opts.Since) {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("reading %s: %v", path, err))
				continue
			}
			transcripts = append(transcripts, canonical.Transcript{
				Format:    paths.FormatClaude,
				SessionID: strings.TrimSuffix(entry.Name(), ".jsonl"),
				Path:      path,
				ModTime:   info.ModTime(),
				Raw:       data,
			})
		}
	}
	return transcripts, warnings
}

// HistoryDirName converts a project root into Claude Code's munged
// history directory name: path separators and dots become dashes.
func HistoryDirName(projectRoot string) string {
	clean := filepath.Clean(projectRoot)
	replacer := strings.NewReplacer("/", "-", "\\", "-", ".", "-")
	return replacer.Replace(clean)
}
