package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// backupSuffix is appended to a file's name to form its backup sibling.
const backupSuffix = ".autocoder.bak"

// Store provides whole-file read/write/backup/restore primitives. A Store is
// stateless; all state lives on disk and in the Backup values it hands out.
type Store struct{}

// NewStore creates a Store.
func NewStore() *Store {
	return &Store{}
}

// Read returns the file's content. A missing or unreadable file returns
// ok=false; absence of an optional file is not an error condition here.
func (s *Store) Read(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Write replaces the file's content in full, creating missing parent
// directories. The write goes through a temporary sibling and a rename so a
// reader never observes a partially written file.
func (s *Store) Write(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a file exists at path.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Backup relocates an existing file to a sibling name and returns a Backup
// describing how to undo the attempt. If the file does not exist yet, no
// relocation happens and the Backup records ExistedBefore=false so Restore
// knows to delete whatever the attempt created.
//
// Every Backup must be resolved with Restore on every exit path of the
// operation that took it, including error paths.
func (s *Store) Backup(path string) (*Backup, error) {
	if !s.Exists(path) {
		return &Backup{OriginalPath: path}, nil
	}

	backupPath := path + backupSuffix
	if err := os.Rename(path, backupPath); err != nil {
		return nil, fmt.Errorf("failed to back up %s: %w", path, err)
	}

	return &Backup{
		OriginalPath:  path,
		BackupPath:    backupPath,
		ExistedBefore: true,
	}, nil
}

// Restore undoes the attempt a Backup belongs to: the backed-up file is
// relocated back over the original path, or, when the file did not exist
// before the attempt, anything created there is deleted. Restore is
// idempotent; resolving a Backup twice is a no-op.
//
// A Restore failure means the tree's integrity can no longer be asserted and
// must be treated as fatal by the caller.
func (s *Store) Restore(b *Backup) error {
	if b == nil || b.resolved {
		return nil
	}

	if b.ExistedBefore {
		if err := os.Rename(b.BackupPath, b.OriginalPath); err != nil {
			return fmt.Errorf("failed to restore %s from %s: %w", b.OriginalPath, b.BackupPath, err)
		}
	} else if s.Exists(b.OriginalPath) {
		if err := os.Remove(b.OriginalPath); err != nil {
			return fmt.Errorf("failed to remove %s created during attempt: %w", b.OriginalPath, err)
		}
	}

	b.resolved = true
	return nil
}

// Backup is the ephemeral undo record for one attempt on one path. It is
// owned exclusively by the operation that created it.
type Backup struct {
	OriginalPath  string
	BackupPath    string
	ExistedBefore bool

	resolved bool
}

// Resolved reports whether the backup has already been restored.
func (b *Backup) Resolved() bool {
	return b.resolved
}
