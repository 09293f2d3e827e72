package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/convert"
	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/internal/platform/claude"
)

// claudeLine is one record of a Claude Code session JSONL file.
type claudeLine struct {
	SessionID string        `json:"sessionId,omitempty"`
	Type      string        `json:"type"`
	Message   claudeMessage `json:"message"`
	Timestamp string        `json:"timestamp,omitempty"`
	UUID      string        `json:"uuid,omitempty"`
	CWD       string        `json:"cwd,omitempty"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// contentText flattens Claude Code's message content, which is either
// a plain string or an array of typed blocks.
func contentText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var buf bytes.Buffer
	for _, block := range blocks {
		if block.Type != "text" || block.Text == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(block.Text)
	}
	return buf.String()
}

// FromClaude decodes one session JSONL transcript. Malformed lines and
// non-conversation records (summaries, tool results) are dropped with
// a warning for the former.
func FromClaude(tr canonical.Transcript) (*Session, []string) {
	session := &Session{ID: tr.SessionID, UpdatedAt: tr.ModTime}
	var warnings []string

	scanner := bufio.NewScanner(bytes.NewReader(tr.Raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var line claudeLine
		if err := json.Unmarshal(raw, &line); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s line %d: %v", tr.Path, lineNo, err))
			continue
		}
		if line.Type != RoleUser && line.Type != RoleAssistant {
			continue
		}
		text := contentText(line.Message.Content)
		if text == "" {
			continue
		}

		msg := Message{ID: line.UUID, Role: line.Type, Text: text}
		if ts, err := time.Parse(time.RFC3339, line.Timestamp); err == nil {
			msg.Timestamp = ts
			if session.CreatedAt.IsZero() || ts.Before(session.CreatedAt) {
				session.CreatedAt = ts
			}
		}
		if session.ProjectRoot == "" && line.CWD != "" {
			session.ProjectRoot = line.CWD
		}
		session.Messages = append(session.Messages, msg)
	}
	if err := scanner.Err(); err != nil {
		warnings = append(warnings, fmt.Sprintf("%s: %v", tr.Path, err))
	}
	return session, warnings
}

// renderClaude emits one session as a JSONL file in Claude Code's
// store layout.
func renderClaude(session Session, files convert.FileSet) error {
	projectDir := "converted"
	if session.ProjectRoot != "" {
		projectDir = claude.HistoryDirName(session.ProjectRoot)
	}
	path := filepath.Join(paths.HistoryDir(paths.FormatClaude), projectDir, session.ID+".jsonl")

	var buf bytes.Buffer
	for i, msg := range session.Messages {
		content, err := json.Marshal(msg.Text)
		if err != nil {
			return err
		}
		id := msg.ID
		if id == "" {
			id = fmt.Sprintf("%s-%04d", session.ID, i)
		}
		line := claudeLine{
			SessionID: session.ID,
			Type:      msg.Role,
			Message:   claudeMessage{Role: msg.Role, Content: content},
			UUID:      id,
			CWD:       session.ProjectRoot,
		}
		if !msg.Timestamp.IsZero() {
			line.Timestamp = msg.Timestamp.UTC().Format(time.RFC3339)
		}
		data, err := json.Marshal(&line)
		if err != nil {
			return err
		}
		buf.Write(data)
		buf.WriteString("\n")
	}
	files[path] = buf.Bytes()
	return nil
}
