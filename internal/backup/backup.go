// Package backup replaces files under a root while keeping a copy of the
// previous contents under a parallel backup root.
package backup

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Writer struct {
	Root       string
	BackupRoot string
}

// Replace writes data to Root/rel. If the file already exists with different
// contents, the old bytes are copied to BackupRoot/rel first. Identical
// contents are a no-op and report changed=false. Backups are never pruned.
func (w Writer) Replace(rel string, data []byte) (changed bool, err error) {
	dst, err := w.resolve(w.Root, rel)
	if err != nil {
		return false, err
	}

	old, err := os.ReadFile(dst)
	switch {
	case err == nil:
		if bytes.Equal(old, data) {
			return false, nil
		}
		bak, err := w.resolve(w.BackupRoot, rel)
		if err != nil {
			return false, err
		}
		if err := writeAtomic(bak, old); err != nil {
			return false, fmt.Errorf("backup %s: %w", rel, err)
		}
	case os.IsNotExist(err):
	default:
		return false, err
	}

	if err := writeAtomic(dst, data); err != nil {
		return false, fmt.Errorf("write %s: %w", rel, err)
	}
	return true, nil
}

// BackupPath is where Replace keeps the previous version of rel.
func (w Writer) BackupPath(rel string) (string, error) {
	return w.resolve(w.BackupRoot, rel)
}

func (w Writer) resolve(root, rel string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("backup: empty root")
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("backup: path escapes root: %s", rel)
	}
	return filepath.Join(root, clean), nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
