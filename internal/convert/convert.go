// Package convert turns a canonical scan into the file set a target
// format expects. Converters are pure: they compute bytes and a
// report, and never touch the filesystem.
package convert

import (
	"bytes"
	"encoding/json"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/errors"
	"github.com/thoreinstein/convey/internal/paths"
)

// Entry is one item the converter handled, skipped, or flagged for
// manual follow-up.
type Entry struct {
	// Category is the item kind: model, mcp, agent, command, skill,
	// rule.
	Category string `json:"category"`

	// Name identifies the item within its category.
	Name string `json:"name"`

	// Path is the destination file for converted entries.
	Path string `json:"path,omitempty"`

	// Reason explains skipped and manual entries.
	Reason string `json:"reason,omitempty"`
}

// Report describes what a conversion did and did not carry over.
type Report struct {
	Source paths.Format `json:"source"`
	Target paths.Format `json:"target"`

	Converted []Entry `json:"converted,omitempty"`

	// Skipped lists items with no target-format equivalent.
	Skipped []Entry `json:"skipped,omitempty"`

	// Manual lists items that need human follow-up after migration.
	Manual []Entry `json:"manual,omitempty"`

	// Errors lists items that failed to render. A failed item never
	// aborts the rest of the conversion.
	Errors []Entry `json:"errors,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

// FileSet maps destination paths to the bytes to write there.
type FileSet map[string][]byte

// Result is a computed conversion: the files to write plus the report.
type Result struct {
	Files  FileSet
	Report *Report
}

func (r *Result) convertedEntry(category, name, path string) {
	r.Report.Converted = append(r.Report.Converted, Entry{Category: category, Name: name, Path: path})
}

func (r *Result) skippedEntry(category, name, reason string) {
	r.Report.Skipped = append(r.Report.Skipped, Entry{Category: category, Name: name, Reason: reason})
}

func (r *Result) manualEntry(category, name, reason string) {
	r.Report.Manual = append(r.Report.Manual, Entry{Category: category, Name: name, Reason: reason})
}

func (r *Result) errorEntry(category, name string, err error) {
	r.Report.Errors = append(r.Report.Errors, Entry{Category: category, Name: name, Reason: err.Error()})
}

func (r *Result) warnf(format string, args ...any) {
	r.Report.Warnings = append(r.Report.Warnings, errors.Newf(format, args...).Error())
}

// emitter computes one target format's file set from a canonical scan.
type emitter interface {
	emit(src *canonical.ScanResult, res *Result)
}

// Convert computes the target-format rendition of src. Same-format
// conversion is a valid no-op rewrite: it re-emits the model in the
// source's own layout, so a rescan of the output canonicalizes back
// to src. Rejecting from == to is the CLI's job.
func Convert(src *canonical.ScanResult, target paths.Format) (*Result, error) {
	if !target.Valid() {
		return nil, errors.Wrapf(errors.ErrUnknownFormat, "%q", target)
	}

	var e emitter
	switch target {
	case paths.FormatClaude:
		e = claudeEmitter{}
	case paths.FormatOpenCode:
		e = openCodeEmitter{}
	case paths.FormatCursor:
		e = cursorEmitter{}
	default:
		return nil, errors.Wrapf(errors.ErrUnknownFormat, "%q", target)
	}

	res := &Result{
		Files:  make(FileSet),
		Report: &Report{Source: src.Format, Target: target},
	}
	e.emit(src, res)
	return res, nil
}

// marshalJSON renders v with the two-space indentation the target
// editors themselves write. Map keys marshal sorted, so output is
// deterministic.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
