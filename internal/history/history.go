// Package history converts chat transcripts between the formats'
// session stores. Claude Code keeps one JSONL file per session;
// OpenCode splits a session into an info document plus one file per
// message. Cursor has no readable store, so it is neither a source nor
// a target here.
package history

import (
	"time"

	"github.com/thoreinstein/convey/internal/canonical"
	"github.com/thoreinstein/convey/internal/convert"
	"github.com/thoreinstein/convey/internal/errors"
	"github.com/thoreinstein/convey/internal/paths"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	ID        string
	Role      string
	Text      string
	Timestamp time.Time
}

// Session is one canonical conversation.
type Session struct {
	ID    string
	Title string

	// ProjectRoot is the working directory the session ran in, when
	// the source recorded one.
	ProjectRoot string

	CreatedAt time.Time
	UpdatedAt time.Time

	Messages []Message
}

// Supported reports whether format f can act as a history source or
// target.
func Supported(f paths.Format) bool {
	return f == paths.FormatClaude || f == paths.FormatOpenCode
}

// Parse decodes raw transcripts into canonical sessions. A transcript
// that cannot be decoded becomes warnings, never a fatal error; the
// remaining sessions still convert.
func Parse(transcripts []canonical.Transcript) (sessions []Session, warnings []string) {
	for _, tr := range transcripts {
		var session *Session
		var w []string
		switch tr.Format {
		case paths.FormatClaude:
			session, w = FromClaude(tr)
		case paths.FormatOpenCode:
			session, w = FromOpenCode(tr)
		default:
			w = []string{errors.Newf("transcript %s: format %q has no history reader", tr.SessionID, tr.Format).Error()}
		}
		warnings = append(warnings, w...)
		if session != nil && len(session.Messages) > 0 {
			sessions = append(sessions, *session)
		}
	}
	return sessions, warnings
}

// Render computes the target-format files for the given sessions. Each
// session renders independently; one bad session does not stop the
// rest.
func Render(sessions []Session, target paths.Format) (convert.FileSet, []string, error) {
	if !Supported(target) {
		return nil, nil, errors.Newf("%s has no writable session store", target)
	}

	files := make(convert.FileSet)
	var warnings []string
	for _, session := range sessions {
		var err error
		switch target {
		case paths.FormatClaude:
			err = renderClaude(session, files)
		case paths.FormatOpenCode:
			err = renderOpenCode(session, files)
		}
		if err != nil {
			warnings = append(warnings, errors.Wrapf(err, "session %s", session.ID).Error())
		}
	}
	return files, warnings, nil
}
