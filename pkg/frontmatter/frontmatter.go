// Package frontmatter parses and formats YAML frontmatter in markdown
// files. Agent, command, skill, and rule definitions across all three
// supported formats are markdown documents with an optional frontmatter
// block delimited by "---" lines.
package frontmatter

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// ErrUnclosedFrontmatter is returned when an opening delimiter has no
// matching close.
var ErrUnclosedFrontmatter = errors.New("unclosed frontmatter block")

// Split separates a markdown document into its YAML frontmatter block
// and body. If the document has no frontmatter, matter is nil and body
// is the whole content.
func Split(content []byte) (matter, body []byte, err error) {
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, content, nil
	}

	// Skip past the opening delimiter line.
	offset := 3
	if len(content) > offset && content[offset] == '\r' {
		offset++
	}
	if len(content) > offset && content[offset] == '\n' {
		offset++
	}

	rest := content[offset:]
	idx := closeIndex(rest)
	if idx < 0 {
		return nil, nil, ErrUnclosedFrontmatter
	}
	matter = rest[:idx+1]

	body = rest[idx+len("\n---"):]
	// Trim the delimiter's own line ending.
	if len(body) > 0 && body[0] == '\r' {
		body = body[1:]
	}
	if len(body) > 0 && body[0] == '\n' {
		body = body[1:]
	}
	// One blank separator line after the block is formatting, not body.
	if bytes.HasPrefix(body, []byte("\r\n")) {
		body = body[2:]
	} else if len(body) > 0 && body[0] == '\n' {
		body = body[1:]
	}
	return matter, body, nil
}

// closeIndex finds the newline that starts the closing delimiter. The
// delimiter must occupy a whole line: "---" followed by a line ending
// or end of input, so a YAML value containing "---text" or "----" does
// not close the block early.
func closeIndex(rest []byte) int {
	search := 0
	for {
		i := bytes.Index(rest[search:], []byte("\n---"))
		if i < 0 {
			return -1
		}
		i += search
		tail := rest[i+len("\n---"):]
		switch {
		case len(tail) == 0:
			return i
		case tail[0] == '\n':
			return i
		case tail[0] == '\r' && len(tail) > 1 && tail[1] == '\n':
			return i
		}
		search = i + 1
	}
}

// Parse decodes the frontmatter of content into matter and returns the
// body. A document without frontmatter leaves matter untouched and
// returns the full content as body.
func Parse[T any](content []byte, matter *T) (body []byte, err error) {
	fm, body, err := Split(content)
	if err != nil {
		return nil, err
	}
	if fm == nil {
		return body, nil
	}
	if err := yaml.Unmarshal(fm, matter); err != nil {
		return nil, errors.Wrap(err, "decoding frontmatter")
	}
	return body, nil
}

// Format renders matter as a YAML frontmatter block followed by body.
// A nil matter produces the body alone.
func Format(matter any, body string) ([]byte, error) {
	var buf bytes.Buffer

	if matter != nil {
		buf.WriteString("---\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(matter); err != nil {
			return nil, errors.Wrap(err, "encoding frontmatter")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "closing encoder")
		}
		buf.WriteString("---\n")
	}

	if body != "" {
		if matter != nil {
			buf.WriteString("\n")
		}
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}
