package claude

import (
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/convey/pkg/frontmatter"
)

// extraMatter decodes the frontmatter block into a generic map and
// strips the keys a typed struct already captured, leaving only the
// fields to preserve opaquely.
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

// ParseAgent parses an agents/*.md document. The filename provides the
// identity; a name key in the frontmatter is ignored.
func ParseAgent(name string, data []byte) (*AgentFile, error) {
	a := &AgentFile{Name: name}
	body, err := frontmatter.Parse(data, a)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing agent %q", name)
	}
	a.Body = strings.TrimSpace(string(body))

	a.Extra, err = extraMatter(data, "name", "description", "model", "tools")
	if err != nil {
		return nil, errors.Wrapf(err, "parsing agent %q", name)
	}
	return a, nil
}

// ParseCommand parses a commands/*.md document.
func ParseCommand(name string, data []byte) (*CommandFile, error) {
	c := &CommandFile{Name: name}
	body, err := frontmatter.Parse(data, c)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing command %q", name)
	}
	c.Body = strings.TrimSpace(string(body))

	c.Extra, err = extraMatter(data, "name", "description", "argument-hint", "allowed-tools", "model")
	if err != nil {
		return nil, errors.Wrapf(err, "parsing command %q", name)
	}
	return c, nil
}

// ParseSkill parses a skills/<name>/SKILL.md document. The directory
// name provides the identity.
func ParseSkill(name string, data []byte) (*SkillFile, error) {
	s := &SkillFile{Name: name}
	body, err := frontmatter.Parse(data, s)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing skill %q", name)
	}
	s.Body = strings.TrimSpace(string(body))

	s.Extra, err = extraMatter(data, "name", "description", "allowed-tools", "metadata")
	if err != nil {
		return nil, errors.Wrapf(err, "parsing skill %q", name)
	}
	return s, nil
}
