package improve

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// skipDirs are never descended into when collecting candidates.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// Candidates builds the cycle's fixed, ordered candidate list: for each glob
// pattern, in configuration order, the workspace files matching it in lexical
// order, deduplicated. Returned paths are absolute. Patterns match against
// slash-separated paths relative to workDir.
func Candidates(workDir string, patterns []string) ([]string, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid candidate pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}

	var files []string
	err := filepath.WalkDir(workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != workDir && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan workspace: %w", err)
	}

	seen := make(map[string]bool)
	var candidates []string
	for _, g := range globs {
		for _, file := range files {
			rel, relErr := filepath.Rel(workDir, file)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if g.Match(rel) && !seen[file] {
				seen[file] = true
				candidates = append(candidates, file)
			}
		}
	}
	return candidates, nil
}
