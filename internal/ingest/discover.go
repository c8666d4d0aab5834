package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrListMissing = errors.New("posts list not found")

func isMarkdown(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// Discover walks each configured folder under docsDir and returns the
// markdown files it finds as slash-separated paths relative to docsDir.
// Folders are visited in the given order; a missing folder is skipped.
func Discover(docsDir string, folders []string) ([]string, error) {
	var out []string
	for _, folder := range folders {
		root := filepath.Join(docsDir, filepath.FromSlash(folder))
		st, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		if !st.IsDir() {
			continue
		}

		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") && path != root {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !isMarkdown(name) {
				return nil
			}
			rel, err := filepath.Rel(docsDir, path)
			if err != nil {
				return err
			}
			found = append(found, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

// ReadList loads the posts list: a JSON array of paths relative to the docs
// directory.
func ReadList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrListMissing)
		}
		return nil, err
	}
	var rels []string
	if err := json.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rels, nil
}

func WriteList(path string, rels []string) error {
	if rels == nil {
		rels = []string{}
	}
	data, err := json.MarshalIndent(rels, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
