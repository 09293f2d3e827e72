// Package backup snapshots files before the writer overwrites them and
// restores snapshots later. Backups are grouped into sessions: one
// migration produces one timestamped session directory with a manifest.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/thoreinstein/convey/internal/errors"
	"github.com/thoreinstein/convey/internal/paths"
	"github.com/thoreinstein/convey/pkg/fileutil"
)

// idFormat is the session directory timestamp layout.
const idFormat = "20060102T150405"

// manifestName is the per-session manifest file.
const manifestName = "manifest.json"

// FileRecord is one backed-up file in a manifest.
type FileRecord struct {
	// Path is the file's original absolute location.
	Path string `json:"path"`

	// Stored is the snapshot's location relative to the session dir.
	Stored string `json:"stored"`

	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// Manifest describes one backup session.
type Manifest struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	Label     string       `json:"label,omitempty"`
	Files     []FileRecord `json:"files,omitempty"`
}

// Manager finds, creates, and prunes backup sessions under one root.
type Manager struct {
	Root string
}

// NewManager returns a Manager rooted at dir, or at the default backup
// root when dir is empty.
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = paths.BackupRoot()
	}
	return &Manager{Root: dir}
}

// Session is one in-progress backup. Created by Begin, passed to the
// writer, and closed with Finish. A session that never backed up a
// file leaves nothing on disk.
type Session struct {
	manager  *Manager
	manifest Manifest
	dir      string
	created  bool
	seen     map[string]bool
}

// Begin opens a new session. The directory is created lazily on the
// first Backup call so dry runs and no-op writes leave no trace.
func (m *Manager) Begin(label string) *Session {
	now := time.Now().UTC()
	id := now.Format(idFormat)
	return &Session{
		manager: m,
		dir:     filepath.Join(m.Root, id),
		manifest: Manifest{
			ID:        id,
			CreatedAt: now,
			Label:     label,
		},
		seen: map[string]bool{},
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.manifest.ID }

// Dir returns the session directory. It may not exist yet.
func (s *Session) Dir() string { return s.dir }

// Empty reports whether the session has backed up any files.
func (s *Session) Empty() bool { return len(s.manifest.Files) == 0 }

// Backup snapshots path into the session. A path already captured in
// this session is not captured twice; a path that does not exist needs
// no backup and is a no-op.
func (s *Session) Backup(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", path)
	}
	if s.seen[abs] {
		return nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "reading %s", abs)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return errors.Wrapf(err, "stat %s", abs)
	}

	stored := filepath.Join("files", strings.TrimPrefix(abs, string(filepath.Separator)))
	dest := filepath.Join(s.dir, stored)
	if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirPerm); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(dest))
	}
	s.created = true
	if err := os.WriteFile(dest, data, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, "writing %s", dest)
	}

	sum := sha256.Sum256(data)
	s.manifest.Files = append(s.manifest.Files, FileRecord{
		Path:   abs,
		Stored: stored,
		SHA256: hex.EncodeToString(sum[:]),
		Size:   info.Size(),
	})
	s.seen[abs] = true
	return nil
}

// Finish writes the manifest. A session with no files is discarded.
func (s *Session) Finish() error {
	if s.Empty() {
		if s.created {
			return os.RemoveAll(s.dir)
		}
		return nil
	}
	sort.Slice(s.manifest.Files, func(i, j int) bool {
		return s.manifest.Files[i].Path < s.manifest.Files[j].Path
	})
	return fileutil.AtomicWriteJSON(filepath.Join(s.dir, manifestName), &s.manifest)
}

// List returns all session manifests, newest first.
func (m *Manager) List() ([]Manifest, error) {
	entries, err := os.ReadDir(m.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", m.Root)
	}

	var manifests []Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(entry.Name())
		if err != nil {
			// An aborted session without a manifest is not listable.
			continue
		}
		manifests = append(manifests, *manifest)
	}
	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].ID > manifests[j].ID
	})
	return manifests, nil
}

// Get loads one session manifest by ID.
func (m *Manager) Get(id string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(m.Root, id, manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNoBackupsFound, "%s", id)
		}
		return nil, errors.Wrapf(err, "reading manifest for %s", id)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest for %s", id)
	}
	return &manifest, nil
}

// Prune removes the oldest sessions beyond keep. It returns the IDs it
// removed. keep <= 0 disables pruning.
func (m *Manager) Prune(keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	manifests, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(manifests) <= keep {
		return nil, nil
	}

	var removed []string
	for _, manifest := range manifests[keep:] {
		if err := os.RemoveAll(filepath.Join(m.Root, manifest.ID)); err != nil {
			return removed, errors.Wrapf(err, "removing backup %s", manifest.ID)
		}
		removed = append(removed, manifest.ID)
	}
	return removed, nil
}

// RestoreResult reports a restore's per-file outcome.
type RestoreResult struct {
	// Restored lists the original paths written back.
	Restored []string

	// Errors lists per-file failures. One bad file does not stop the
	// rest of the restore.
	Errors []string
}

// Restore copies every file in the session back to its original
// location, overwriting whatever is there now.
func (m *Manager) Restore(id string) (*RestoreResult, error) {
	manifest, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	res := &RestoreResult{}
	for _, record := range manifest.Files {
		src := filepath.Join(m.Root, id, record.Stored)
		data, err := os.ReadFile(src)
		if err != nil {
			res.Errors = append(res.Errors, errors.Wrapf(err, "reading snapshot of %s", record.Path).Error())
			continue
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != record.SHA256 {
			res.Errors = append(res.Errors, errors.Newf("snapshot of %s is corrupt (checksum mismatch)", record.Path).Error())
			continue
		}
		if err := fileutil.AtomicWriteFile(record.Path, data, 0o644); err != nil {
			res.Errors = append(res.Errors, errors.Wrapf(err, "restoring %s", record.Path).Error())
			continue
		}
		res.Restored = append(res.Restored, record.Path)
	}
	return res, nil
}
