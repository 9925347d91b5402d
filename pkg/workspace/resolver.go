// Package workspace owns the on-disk primitives for applying generated
// changes: declared-name resolution, whole-file reads and writes, and the
// backup/restore pair that makes a failed attempt undoable.
package workspace

import (
	"fmt"
	"path/filepath"
)

// Resolve maps a file name declared in backend output onto the filesystem,
// anchored at an existing file. A declared name whose base equals the
// anchor's base resolves to the anchor itself, so an "original file" section
// overwrites in place; any other name resolves as a sibling relative to the
// anchor's parent directory.
//
// Declared names are not canonicalized against a project-root boundary; a
// name with enough ".." components can escape the anchor's directory. That
// matches the behavior this was ported from and is flagged in DESIGN.md.
func Resolve(declaredName, anchorPath string) (string, error) {
	if declaredName == "" {
		return "", fmt.Errorf("declared name cannot be empty")
	}
	if anchorPath == "" {
		return "", fmt.Errorf("anchor path cannot be empty")
	}

	absAnchor, err := filepath.Abs(anchorPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve anchor path: %w", err)
	}

	if filepath.Base(declaredName) == filepath.Base(absAnchor) {
		return absAnchor, nil
	}

	return filepath.Clean(filepath.Join(filepath.Dir(absAnchor), declaredName)), nil
}
