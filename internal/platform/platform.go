// Package platform provides shared plumbing for the per-format
// scanners: installation detection and concurrent category reading.
package platform

import (
	"os"

	"github.com/thoreinstein/convey/internal/paths"
)

// InstallStatus indicates the installation state of a format's tooling.
type InstallStatus string

const (
	// StatusInstalled indicates the format's global config directory exists.
	StatusInstalled InstallStatus = "installed"

	// StatusNotInstalled indicates the global config directory does not exist.
	StatusNotInstalled InstallStatus = "not_installed"
)

// DetectionResult describes a detected format installation.
type DetectionResult struct {
	// Format is the ecosystem identifier.
	Format paths.Format `json:"format"`

	// GlobalConfig is the global configuration directory path. Always
	// set for valid formats, even if the directory does not exist.
	GlobalConfig string `json:"globalConfig"`

	// Status indicates whether the format appears installed.
	Status InstallStatus `json:"status"`
}

// Detect checks whether a format's global config directory exists.
func Detect(f paths.Format) *DetectionResult {
	if !f.Valid() {
		return nil
	}

	globalConfig := paths.GlobalConfigDir(f)
	status := StatusNotInstalled
	if dirExists(globalConfig) {
		status = StatusInstalled
	}

	return &DetectionResult{
		Format:       f,
		GlobalConfig: globalConfig,
		Status:       status,
	}
}

// DetectAll returns detection results for all formats in deterministic
// order: claude, opencode, cursor.
func DetectAll() []*DetectionResult {
	formats := paths.Formats()
	results := make([]*DetectionResult, 0, len(formats))
	for _, f := range formats {
		if result := Detect(f); result != nil {
			results = append(results, result)
		}
	}
	return results
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
