package opencode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/jsonc"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/internal/platform"
	"github.com/thoreinstein/convey/pkg/fileutil"
)

// Scanner reads OpenCode's on-disk configuration. Fields exist so
// tests can point the scanner at a temp tree.
type Scanner struct {
	// GlobalDir is the global config directory (~/.config/opencode).
	GlobalDir string

	// HistoryRoot is the session store root
	// ($XDG_DATA_HOME/opencode/storage).
	HistoryRoot string
}

// NewScanner creates a Scanner pointed at the standard locations.
func NewScanner() *Scanner {
	return &Scanner{
		GlobalDir:   paths.GlobalConfigDir(paths.FormatOpenCode),
		HistoryRoot: paths.HistoryDir(paths.FormatOpenCode),
	}
}

// Scan reads the requested scopes.
func (s *Scanner) Scan(opts platform.ScanOptions) (*ScanResult, error) {
	res := &ScanResult{}

	if opts.Global {
		scope, warnings, err := scanScope(s.GlobalDir, filepath.Join(s.GlobalDir, "opencode.json"), "")
		if err != nil {
			return nil, err
		}
		res.Global = scope
		res.Warnings = append(res.Warnings, warnings...)
	}

	if opts.Project != "" {
		root := filepath.Clean(opts.Project)
		scope, warnings, err := scanScope(
			paths.ProjectConfigDir(paths.FormatOpenCode, root),
			paths.ProjectMCPConfigPath(paths.FormatOpenCode, root),
			paths.InstructionsPath(paths.FormatOpenCode, root),
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

func scanScope(configDir, configPath, instructionsPath string) (Scope, []string, error) {
	var scope Scope
	var warnings []string

	cfg, warning, err := readConfig(configPath)
	if err != nil {
		return scope, nil, err
	}
	scope.Config = cfg
	if warning != "" {
		warnings = append(warnings, warning)
	}

	if configDir != "" {
		agents, agentWarnings, err := platform.ReadCategory(filepath.Join(configDir, "agent"), ".md", ParseAgent)
		if err != nil {
			return scope, nil, err
		}
		scope.Agents = agents
		warnings = append(warnings, agentWarnings...)

		commands, cmdWarnings, err := platform.ReadCategory(filepath.Join(configDir, "command"), ".md", ParseCommand)
		if err != nil {
			return scope, nil, err
		}
		scope.Commands = commands
		warnings = append(warnings, cmdWarnings...)
	}

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

// readConfig loads an opencode.json document, stripping JSONC comments
// and trailing commas first.
func readConfig(path string) (*Config, string, error) {
	if path == "" {
		return nil, "", nil
	}
	data, err := fileutil.ReadFileCapped(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", errors.Wrapf(err, "reading %s", path)
	}
	cfg, err := parseConfig(data)
	if err != nil {
		return nil, fmt.Sprintf("skipping %s: %v", path, err), nil
	}
	return cfg, "", nil
}

// parseConfig decodes a JSONC config document.
func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// scanHistory reads OpenCode's split session store: one info document
// per session under session/, and its messages under
// message/<sessionID>/. Problems are warnings, never fatal.
func (s *Scanner) scanHistory(opts platform.ScanOptions) ([]canonical.Transcript, []string) {
	if s.HistoryRoot == "" {
		return nil, nil
	}
	sessionRoot := filepath.Join(s.HistoryRoot, "session")
	messageRoot := filepath.Join(s.HistoryRoot, "message")

	var transcripts []canonical.Transcript
	var warnings []string

	walkErr := filepath.WalkDir(sessionRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			warnings = append(warnings, fmt.Sprintf("walking %s: %v", path, err))
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("stat %s: %v", path, err))
			return nil
		}
		if !opts.Since.IsZero() && info.ModTime().Before(opts.Since) {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("reading %s: %v", path, err))
			return nil
		}
		sessionID := strings.TrimSuffix(d.Name(), ".json")
		parts, partWarnings := readMessages(filepath.Join(messageRoot, sessionID))
		warnings = append(warnings, partWarnings...)

		transcripts = append(transcripts, canonical.Transcript{
			Format:    paths.FormatOpenCode,
			SessionID: sessionID,
			Path:      path,
			ModTime:   info.ModTime(),
			Raw:       raw,
			Parts:     parts,
		})
		return nil
	})
	if walkErr != nil {
		warnings = append(warnings, fmt.Sprintf("walking %s: %v", sessionRoot, walkErr))
	}
	return transcripts, warnings
}

func readMessages(dir string) (map[string][]byte, []string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []string{fmt.Sprintf("reading %s: %v", dir, err)}
	}
	parts := make(map[string][]byte)
	var warnings []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("reading %s: %v", filepath.Join(dir, entry.Name()), err))
			continue
		}
		parts[entry.Name()] = data
	}
	if len(parts) == 0 {
		return nil, warnings
	}
	return parts, warnings
}
