package cursor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/internal/platform"
	"github.com/thoreinstein/convey/pkg/fileutil"
	"github.com/thoreinstein/convey/pkg/frontmatter"
)

// Scanner reads Cursor's on-disk configuration. Fields exist so tests
// can point the scanner at a temp tree.
type Scanner struct {
	// GlobalDir is the global config directory (~/.cursor).
	GlobalDir string
}

// NewScanner creates a Scanner pointed at the standard locations.
func NewScanner() *Scanner {
	return &Scanner{GlobalDir: paths.GlobalConfigDir(paths.FormatCursor)}
}

// Scan reads the requested scopes. Cursor has no session store, so
// IncludeHistory adds a warning instead of transcripts.
func (s *Scanner) Scan(opts platform.ScanOptions) (*ScanResult, error) {
	res := &ScanResult{}

	if opts.Global {
		scope, warnings, err := scanScope(s.GlobalDir)
		if err != nil {
			return nil, err
		}
		res.Global = scope
		res.Warnings = append(res.Warnings, warnings...)
	}

	if opts.Project != "" {
		root := filepath.Clean(opts.Project)
		scope, warnings, err := scanScope(paths.ProjectConfigDir(paths.FormatCursor, root))
		if err != nil {
			return nil, err
		}
		res.Projects = append(res.Projects, ProjectScan{Root: root, Scope: scope})
		res.Warnings = append(res.Warnings, warnings...)
	}

	if opts.IncludeHistory {
		res.Warnings = append(res.Warnings, "cursor has no readable session store; skipping history")
	}

	return res, nil
}

func scanScope(configDir string) (Scope, []string, error) {
	var scope Scope
	var warnings []string

	if configDir == "" {
		return scope, nil, nil
	}

	mcpConfig, warning, err := readMCPConfig(filepath.Join(configDir, "mcp.json"))
	if err != nil {
		return scope, nil, err
	}
	scope.MCP = mcpConfig
	if warning != "" {
		warnings = append(warnings, warning)
	}

	rules, ruleWarnings, err := platform.ReadCategory(filepath.Join(configDir, "rules"), ".mdc", ParseRule)
	if err != nil {
		return scope, nil, err
	}
	scope.Rules = rules
	warnings = append(warnings, ruleWarnings...)

	commands, cmdWarnings, err := platform.ReadCategory(filepath.Join(configDir, "commands"), ".md", ParseCommand)
	if err != nil {
		return scope, nil, err
	}
	scope.Commands = commands
	warnings = append(warnings, cmdWarnings...)

	return scope, warnings, nil
}

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

// ParseRule parses a rules/*.mdc document.
func ParseRule(name string, data []byte) (*RuleFile, error) {
	r := &RuleFile{Name: name}
	body, err := frontmatter.Parse(data, r)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing rule %q", name)
	}
	r.Body = strings.TrimSpace(string(body))
	return r, nil
}

// ParseCommand parses a commands/*.md document. Cursor commands carry
// no frontmatter; the whole file is the body.
func ParseCommand(name string, data []byte) (*CommandFile, error) {
	return &CommandFile{
		Name: name,
		Body: strings.TrimSpace(string(data)),
	}, nil
}
