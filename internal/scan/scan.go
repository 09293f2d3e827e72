// Package scan dispatches scanning across the supported formats and
// returns one canonicalized view regardless of source.
package scan

import (
	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/errors"
	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/internal/platform"
	"github.com/thoreinstein/convey/internal/platform/claude"
	"github.com/thoreinstein/convey/internal/platform/cursor"
	"github.com/thoreinstein/convey/internal/platform/opencode"
)

// Scan reads format f's configuration and returns it in canonical
// form. The format set is closed; an unknown value is a programming
// error upstream (ParseFormat guards user input).
func Scan(f paths.Format, opts platform.ScanOptions) (*canonical.ScanResult, error) {
	switch f {
	case paths.FormatClaude:
		native, err := claude.NewScanner().Scan(opts)
		if err != nil {
			return nil, err
		}
		return claude.ToCanonical(native), nil
	case paths.FormatOpenCode:
		native, err := opencode.NewScanner().Scan(opts)
		if err != nil {
			return nil, err
		}
		return opencode.ToCanonical(native), nil
	case paths.FormatCursor:
		native, err := cursor.NewScanner().Scan(opts)
		if err != nil {
			return nil, err
		}
		return cursor.ToCanonical(native), nil
	default:
		return nil, errors.Wrapf(errors.ErrUnknownFormat, "%q", f)
	}
}
