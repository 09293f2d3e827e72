// Package write applies a computed file set to disk. It owns the merge
// strategies, dry-run behavior, and the backup-before-overwrite
// guarantee; it never computes content itself.
package write

import (
	"bytes"
	"os"
	"sort"

	"github.com/thoreinstein/convey/internal/backup"
	"github.com/thoreinstein/convey/internal/convert"
	"github.com/thoreinstein/convey/internal/errors"
	"github.com/thoreinstein/convey/pkg/fileutil"
)

// Merge strategies for files that already exist at the destination.
const (
	// StrategyPreserve keeps the existing file untouched.
	StrategyPreserve = "preserve-existing"

	// StrategyOverwrite replaces the existing file.
	StrategyOverwrite = "overwrite"

	// StrategyMerge deep-merges JSON documents, incoming values
	// winning scalars. Non-JSON files fall back to overwrite.
	StrategyMerge = "merge"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (string, error) {
	switch name {
	case StrategyPreserve, StrategyOverwrite, StrategyMerge:
		return name, nil
	default:
		return "", errors.Newf("unknown merge strategy %q (valid: %s, %s, %s)",
			name, StrategyPreserve, StrategyOverwrite, StrategyMerge)
	}
}

// Options control one Write call.
type Options struct {
	// DryRun computes the outcome without touching the filesystem.
	DryRun bool

	// Force overrides StrategyPreserve for existing files.
	Force bool

	// Strategy is one of the Strategy constants; empty means
	// StrategyPreserve.
	Strategy string

	// Session receives a snapshot of every file before it is
	// overwritten. Nil disables backups.
	Session *backup.Session
}

// Result reports what one Write call did (or, under DryRun, would do).
type Result struct {
	// Written lists paths written, in sorted order.
	Written []string

	// Skipped lists paths left alone, with existing content either
	// identical or preserved by strategy.
	Skipped []string

	// Errors lists per-path failures. A failed path never stops the
	// remaining paths from being attempted.
	Errors []string
}

func (r *Result) fail(err error) {
	r.Errors = append(r.Errors, err.Error())
}

// Write applies files to disk according to opts. Paths are processed
// in sorted order so output and backups are deterministic. A failure
// on one path is recorded in Result.Errors and the rest of the set is
// still attempted; the returned error covers setup problems only.
func Write(files convert.FileSet, opts Options) (*Result, error) {
	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyPreserve
	}
	if _, err := ParseStrategy(strategy); err != nil {
		return nil, err
	}

	sorted := make([]string, 0, len(files))
	for path := range files {
		sorted = append(sorted, path)
	}
	sort.Strings(sorted)

	res := &Result{}
	for _, path := range sorted {
		incoming := files[path]

		existing, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			if err := writeFile(path, incoming, opts, res); err != nil {
				res.fail(err)
			}
			continue
		case err != nil:
			res.fail(errors.Wrapf(err, "reading %s", path))
			continue
		}

		if bytes.Equal(existing, incoming) {
			res.Skipped = append(res.Skipped, path)
			continue
		}

		switch {
		case strategy == StrategyPreserve && !opts.Force:
			res.Skipped = append(res.Skipped, path)
		case strategy == StrategyMerge:
			merged, ok := mergeDocuments(existing, incoming)
			if !ok {
				merged = incoming
			}
			if bytes.Equal(existing, merged) {
				res.Skipped = append(res.Skipped, path)
				continue
			}
			if err := overwriteFile(path, merged, opts, res); err != nil {
				res.fail(err)
			}
		default:
			if err := overwriteFile(path, incoming, opts, res); err != nil {
				res.fail(err)
			}
		}
	}
	return res, nil
}

// writeFile creates a file that does not exist yet.
func writeFile(path string, data []byte, opts Options, res *Result) error {
	if !opts.DryRun {
		if err := fileutil.AtomicWriteFile(path, data, 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	res.Written = append(res.Written, path)
	return nil
}

// overwriteFile replaces an existing file, snapshotting it first.
func overwriteFile(path string, data []byte, opts Options, res *Result) error {
	if opts.DryRun {
		res.Written = append(res.Written, path)
		return nil
	}
	if opts.Session != nil {
		if err := opts.Session.Backup(path); err != nil {
			return errors.Wrapf(err, "backing up %s", path)
		}
	}
	if err := fileutil.AtomicWriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	res.Written = append(res.Written, path)
	return nil
}
