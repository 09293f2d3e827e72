package translate

import (
	"strings"

	"github.com/thoreinstein/convey/internal/canonical"
)

// subagentKeywords suggest a review or critique role.
var subagentKeywords = []string{
	"review", "audit", "critic", "security", "lint", "qa", "test",
	"verify", "inspect",
}

// primaryKeywords suggest a build or implement role.
var primaryKeywords = []string{
	"build", "implement", "create", "develop", "write", "scaffold",
	"author", "generate",
}

// conservativeKeywords mark agents whose output should vary as little
// as possible between runs.
var conservativeKeywords = []string{
	"audit", "security", "review", "compliance",
}

// conservativeTemperature is assigned to audit and security oriented
// agents when the source states no temperature.
const conservativeTemperature = 0.1

// InferMode guesses an agent's mode from its name and description.
// Review-flavored agents become subagents, build-flavored agents
// primary; anything else keeps ModeDefault so the target format can
// apply its own default. Subagent keywords win over primary keywords
// when both match.
func InferMode(name, description string) canonical.Mode {
	haystack := strings.ToLower(name + " " + description)
	for _, kw := range subagentKeywords {
		if strings.Contains(haystack, kw) {
			return canonical.ModeSubagent
		}
	}
	for _, kw := range primaryKeywords {
		if strings.Contains(haystack, kw) {
			return canonical.ModePrimary
		}
	}
	return canonical.ModeDefault
}

// InferTemperature guesses a temperature for an agent. Audit and
// security agents get a conservative value; nil means "use the target
// format's standard default".
func InferTemperature(name, description string) *float64 {
	haystack := strings.ToLower(name + " " + description)
	for _, kw := range conservativeKeywords {
		if strings.Contains(haystack, kw) {
			t := conservativeTemperature
			return &t
		}
	}
	return nil
}
