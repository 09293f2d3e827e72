package opencode

import (
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/convey/pkg/frontmatter"
)

// extraMatter decodes the frontmatter block generically and strips the
// keys the typed struct already captured.
func extraMatter(content []byte, known ...string) (map[string]any, error) {
	fm, _, err := frontmatter.Split(content)
	if err != nil {
		return nil, err
	}
	if fm == nil {
		return nil, nil
	}
	var all map[string]any
	if err := yaml.Unmarshal(fm, &all); err != nil {
		return nil, errors.Wrap(err, "decoding frontmatter")
	}
	for _, key := range known {
		delete(all, key)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// ParseAgent parses an agent/*.md document.
func ParseAgent(name string, data []byte) (*AgentFile, error) {
	a := &AgentFile{Name: name}
	body, err := frontmatter.Parse(data, a)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing agent %q", name)
	}
	a.Body = strings.TrimSpace(string(body))

	a.Extra, err = extraMatter(data, "name", "description", "mode", "model", "temperature", "tools")
	if err != nil {
		return nil, errors.Wrapf(err, "parsing agent %q", name)
	}
	return a, nil
}

// ParseCommand parses a command/*.md document.
func ParseCommand(name string, data []byte) (*CommandFile, error) {
	c := &CommandFile{Name: name}
	body, err := frontmatter.Parse(data, c)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing command %q", name)
	}
	c.Body = strings.TrimSpace(string(body))

	c.Extra, err = extraMatter(data, "name", "description", "agent", "model")
	if err != nil {
		return nil, errors.Wrapf(err, "parsing command %q", name)
	}
	return c, nil
}
