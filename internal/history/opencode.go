package history

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/convert"
	"github.com/thoreinstein/convey/internal/paths"
)

// openCodeSession is the session info document in OpenCode's store.
type openCodeSession struct {
	ID        string       `json:"id"`
	Title     string       `json:"title,omitempty"`
	Directory string       `json:"directory,omitempty"`
	Time      openCodeTime `json:"time"`
}

// openCodeMessage is one message document.
type openCodeMessage struct {
	ID    string         `json:"id"`
	Role  string         `json:"role"`
	Time  openCodeTime   `json:"time"`
	Parts []openCodePart `json:"parts,omitempty"`
}

type openCodePart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// openCodeTime carries millisecond epoch timestamps.
type openCodeTime struct {
	Created int64 `json:"created,omitempty"`
	Updated int64 `json:"updated,omitempty"`
}

// FromOpenCode decodes one split-store transcript: the info document
// in Raw, one message document per Parts entry.
func FromOpenCode(tr canonical.Transcript) (*Session, []string) {
	var warnings []string

	var info openCodeSession
	if err := json.Unmarshal(tr.Raw, &info); err != nil {
		return nil, []string{fmt.Sprintf("%s: %v", tr.Path, err)}
	}

	session := &Session{
		ID:          tr.SessionID,
		Title:       info.Title,
		ProjectRoot: info.Directory,
		UpdatedAt:   tr.ModTime,
	}
	if info.Time.Created > 0 {
		session.CreatedAt = time.UnixMilli(info.Time.Created).UTC()
	}
	if info.Time.Updated > 0 {
		session.UpdatedAt = time.UnixMilli(info.Time.Updated).UTC()
	}

	// Message files sort lexically into chronological order; OpenCode
	// message IDs are time-ordered.
	names := make([]string, 0, len(tr.Parts))
	for name := range tr.Parts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var msg openCodeMessage
		if err := json.Unmarshal(tr.Parts[name], &msg); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s message %s: %v", tr.SessionID, name, err))
			continue
		}
		if msg.Role != RoleUser && msg.Role != RoleAssistant {
			continue
		}
		var texts []string
		for _, part := range msg.Parts {
			if part.Type == "text" && part.Text != "" {
				texts = append(texts, part.Text)
			}
		}
		if len(texts) == 0 {
			continue
		}
		out := Message{ID: msg.ID, Role: msg.Role, Text: strings.Join(texts, "\n")}
		if msg.Time.Created > 0 {
			out.Timestamp = time.UnixMilli(msg.Time.Created).UTC()
		}
		session.Messages = append(session.Messages, out)
	}
	return session, warnings
}

// renderOpenCode emits one session into OpenCode's split store layout.
func renderOpenCode(session Session, files convert.FileSet) error {
	root := paths.HistoryDir(paths.FormatOpenCode)
	slug := "converted"
	if session.ProjectRoot != "" {
		slug = projectSlug(session.ProjectRoot)
	}

	info := openCodeSession{
		ID:        session.ID,
		Title:     session.Title,
		Directory: session.ProjectRoot,
	}
	if !session.CreatedAt.IsZero() {
		info.Time.Created = session.CreatedAt.UnixMilli()
	}
	if !session.UpdatedAt.IsZero() {
		info.Time.Updated = session.UpdatedAt.UnixMilli()
	}
	data, err := json.MarshalIndent(&info, "", "  ")
	if err != nil {
		return err
	}
	files[filepath.Join(root, "session", slug, session.ID+".json")] = append(data, '\n')

	for i, msg := range session.Messages {
		id := msg.ID
		if id == "" {
			id = fmt.Sprintf("msg_%04d", i)
		}
		doc := openCodeMessage{
			ID:    id,
			Role:  msg.Role,
			Parts: []openCodePart{{Type: "text", Text: msg.Text}},
		}
		if !msg.Timestamp.IsZero() {
			doc.Time.Created = msg.Timestamp.UnixMilli()
		}
		data, err := json.MarshalIndent(&doc, "", "  ")
		if err != nil {
			return err
		}
		files[filepath.Join(root, "message", session.ID, id+".json")] = append(data, '\n')
	}
	return nil
}

// projectSlug flattens a project root into a directory-safe name.
func projectSlug(root string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ".", "-")
	slug := replacer.Replace(filepath.Clean(root))
	return strings.Trim(slug, "-")
}
