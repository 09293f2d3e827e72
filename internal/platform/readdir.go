package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/thoreinstein/convey/pkg/fileutil"
)

// readConcurrency bounds the fan-out when parsing sibling files in one
// category directory.
const readConcurrency = 8

// ReadCategory reads and parses every regular file in dir whose name
// ends with ext, concurrently. A missing directory yields empty
// results. One malformed file never aborts its siblings: parse and
// read failures are collected as warnings and the successes are kept.
// Only the initial directory listing can fail hard.
//
// The parse callback receives the entry name without its extension and
// the file contents. Results are returned in directory (lexical) order
// regardless of parse completion order.
func ReadCategory[T any](dir, ext string, parse func(name string, data []byte) (T, error)) (items []T, warnings []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, errors.Wrapf(err, "reading directory %s", dir)
	}

	type slot struct {
		item    T
		ok      bool
		warning string
	}

	var files []os.DirEntry
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		files = append(files, entry)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	slots := make([]slot, len(files))
	var g errgroup.Group
	g.SetLimit(readConcurrency)
	for i, entry := range files {
		g.Go(func() error {
			path := filepath.Join(dir, entry.Name())
			data, err := fileutil.ReadFileCapped(path)
			if err != nil {
				slots[i].warning = fmt.Sprintf("skipping %s: %v", path, err)
				return nil
			}
			name := strings.TrimSuffix(entry.Name(), ext)
			item, err := parse(name, data)
			if err != nil {
				slots[i].warning = fmt.Sprintf("skipping %s: %v", path, err)
				return nil
			}
			slots[i].item = item
			slots[i].ok = true
			return nil
		})
	}
	// Goroutines never return errors; Wait is a join point.
	_ = g.Wait()

	for _, s := range slots {
		if s.ok {
			items = append(items, s.item)
		} else if s.warning != "" {
			warnings = append(warnings, s.warning)
		}
	}
	return items, warnings, nil
}
