// Package pipeline applies parsed proposal sets to disk. The gated path wraps
// every attempt in a backup that is resolved on every exit, so a failed or
// unverified proposal can never leave the working tree changed.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/SWORDIntel/autocoder-sub000/pkg/logging"
	"github.com/SWORDIntel/autocoder-sub000/pkg/parser"
	"github.com/SWORDIntel/autocoder-sub000/pkg/progress"
	"github.com/SWORDIntel/autocoder-sub000/pkg/verify"
	"github.com/SWORDIntel/autocoder-sub000/pkg/workspace"
)

// Pipeline owns the write path for generated content.
type Pipeline struct {
	store    *workspace.Store
	runner   *verify.Runner
	log      *logging.Logger
	reporter progress.Reporter
}

// New creates a Pipeline. A nil reporter is replaced with a no-op.
func New(store *workspace.Store, runner *verify.Runner, log *logging.Logger, reporter progress.Reporter) *Pipeline {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &Pipeline{
		store:    store,
		runner:   runner,
		log:      log,
		reporter: reporter,
	}
}

// Apply unconditionally writes every block in the set, resolving relative
// paths against baseDir. Used by ungated multi-file generation flows.
func (p *Pipeline) Apply(set *parser.ProposalSet, baseDir string) error {
	for _, block := range set.Blocks() {
		target := block.Path
		if !filepath.IsAbs(target) {
			target = filepath.Join(baseDir, target)
		}

		original, existed := p.store.Read(target)
		if err := p.store.Write(target, block.Content); err != nil {
			return fmt.Errorf("failed to apply %s: %w", block.Path, err)
		}

		added, removed := ChangeStats(original, block.Content)
		if existed {
			p.reporter.Statusf("overwrote %s (+%d/-%d lines)", block.Path, added, removed)
		} else {
			p.reporter.Statusf("created %s (+%d lines)", block.Path, added)
		}
	}
	return nil
}

// ApplyVerified runs a dry-run verification of proposedContent at path:
// it backs the file up, writes the proposal, runs verifyCommand, and then
// restores the original regardless of the result. It reports whether the
// proposal passed; the caller performs the final commit write explicitly.
// This keeps the primitive usable as a pure check independent of commit
// policy.
//
// If the proposal equals the current content (both trimmed), it returns false
// without touching disk or invoking verification.
//
// The returned error is non-nil only when the restore itself failed; the tree
// may then be inconsistent and the caller must abort.
func (p *Pipeline) ApplyVerified(ctx context.Context, path, proposedContent, verifyCommand string) (passed bool, err error) {
	original, _ := p.store.Read(path)
	if strings.TrimSpace(proposedContent) == strings.TrimSpace(original) {
		if p.log != nil {
			p.log.Debugf("proposal for %s matches current content, skipping", path)
		}
		return false, nil
	}

	backup, berr := p.store.Backup(path)
	if berr != nil {
		if p.log != nil {
			p.log.Errorf("backup failed for %s: %v", path, berr)
		}
		return false, nil
	}
	defer func() {
		if rerr := p.store.Restore(backup); rerr != nil {
			passed = false
			err = fmt.Errorf("restore failed for %s: %w", path, rerr)
		}
	}()

	if werr := p.store.Write(path, proposedContent); werr != nil {
		if p.log != nil {
			p.log.Warnf("write failed for %s: %v", path, werr)
		}
		return false, nil
	}

	result := p.runner.Run(ctx, verifyCommand)
	if !result.Passed {
		added, removed := ChangeStats(original, proposedContent)
		p.reporter.Statusf("verification failed for %s (+%d/-%d lines)", path, added, removed)
		if p.log != nil {
			p.log.Debugf("verification output for %s: %s", path, truncate(result.Output, 2000))
		}
		return false, nil
	}

	return true, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
