// Package translate holds the pure translation heuristics used during
// conversion: model alias resolution, agent mode and temperature
// inference, and tool-to-permission mapping.
//
// Every function here is deterministic: the same inputs always produce
// the same outputs, so converted files are byte-identical across runs.
package translate

import (
	"strings"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/paths"
)

// modelAliases maps ecosystem short names to canonical fully-qualified
// model identifiers.
var modelAliases = map[string]string{
	"opus":   "claude-opus-4-1",
	"sonnet": "claude-sonnet-4-5",
	"haiku":  "claude-haiku-4-5",
}

// openCodeProviderPrefix is how OpenCode qualifies Anthropic models.
const openCodeProviderPrefix = "anthropic/"

// CanonicalModel normalizes a source-format model string into the
// canonical identifier. Short aliases are expanded, OpenCode's
// provider prefix is stripped, and the inherit sentinel passes through
// untouched (converters handle it by omitting the key).
func CanonicalModel(model string) string {
	if model == "" || model == canonical.ModelInherit {
		return model
	}
	trimmed := strings.TrimPrefix(model, openCodeProviderPrefix)
	if resolved, ok := modelAliases[strings.ToLower(trimmed)]; ok {
		return resolved
	}
	return trimmed
}

// FormatModel renders a canonical model identifier in the target
// format's spelling. The second return is false for the inherit
// sentinel and empty input, meaning "omit the model key entirely".
func FormatModel(model string, target paths.Format) (string, bool) {
	if model == "" || model == canonical.ModelInherit {
		return "", false
	}
	resolved := CanonicalModel(model)
	if target == paths.FormatOpenCode {
		return openCodeProviderPrefix + resolved, true
	}
	return resolved, true
}

// IsAlias reports whether the model string is a known short alias that
// CanonicalModel will expand.
func IsAlias(model string) bool {
	_, ok := modelAliases[strings.ToLower(strings.TrimPrefix(model, openCodeProviderPrefix))]
	return ok
}
