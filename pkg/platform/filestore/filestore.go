// Package filestore persists a single JSON document on local disk. Every save
// first copies the current file to "<path>.backup" and then replaces the file
// atomically via a temp-file rename.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// BackupSuffix is appended to the document path to name the backup copy.
const BackupSuffix = ".backup"

// Document is a JSON file with a rolling single-generation backup.
type Document struct {
	path string
}

// New returns a Document rooted at path. The file need not exist yet.
func New(path string) *Document {
	return &Document{path: path}
}

// Path returns the document location.
func (d *Document) Path() string {
	return d.path
}

// BackupPath returns the backup location.
func (d *Document) BackupPath() string {
	return d.path + BackupSuffix
}

// Load decodes the document into v. It reports false when the file does not
// exist, leaving v untouched.
func (d *Document) Load(v any) (bool, error) {
	raw, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", d.path, err)
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", d.path, err)
	}
	return true, nil
}

// Save backs up the current file (if any) and writes v in its place.
func (d *Document) Save(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.path, err)
	}
	if dir := filepath.Dir(d.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if err := d.backup(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", d.path, err)
	}
	return nil
}

func (d *Document) backup() error {
	current, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s for backup: %w", d.path, err)
	}
	if err := os.WriteFile(d.BackupPath(), current, 0o644); err != nil {
		return fmt.Errorf("write backup %s: %w", d.BackupPath(), err)
	}
	return nil
}
