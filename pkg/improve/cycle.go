// Package improve runs the self-improvement cycle: iterate a fixed, ordered
// candidate file list, request a replacement body for each from the
// generation backend, and commit at most one verified change per run.
package improve

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/SWORDIntel/autocoder-sub000/pkg/llm"
	"github.com/SWORDIntel/autocoder-sub000/pkg/logging"
	"github.com/SWORDIntel/autocoder-sub000/pkg/memory"
	"github.com/SWORDIntel/autocoder-sub000/pkg/parser"
	"github.com/SWORDIntel/autocoder-sub000/pkg/pipeline"
	"github.com/SWORDIntel/autocoder-sub000/pkg/progress"
	"github.com/SWORDIntel/autocoder-sub000/pkg/workspace"
)

// Outcome is a cycle's terminal state.
type Outcome string

const (
	// OutcomeCommitted means exactly one verified change was written.
	OutcomeCommitted Outcome = "committed-one-change"
	// OutcomeNoChange means the candidate list was exhausted without a commit.
	OutcomeNoChange Outcome = "no-committed-change"
	// OutcomeAborted means tree integrity can no longer be asserted.
	OutcomeAborted Outcome = "aborted"
)

// AttemptRecord describes what happened to one candidate.
type AttemptRecord struct {
	File            string
	ProposedContent string
	Passed          bool
	Committed       bool
	Reason          string
}

// Report is the result of one cycle run.
type Report struct {
	Outcome  Outcome
	Attempts []AttemptRecord
}

// Committed returns the committed attempt, if any.
func (r *Report) Committed() *AttemptRecord {
	for i := range r.Attempts {
		if r.Attempts[i].Committed {
			return &r.Attempts[i]
		}
	}
	return nil
}

// Config wires a Cycle's collaborators.
type Config struct {
	Provider      llm.Provider
	Pipeline      *pipeline.Pipeline
	Store         *workspace.Store
	Saver         memory.Saver // optional, best-effort
	Logger        *logging.Logger
	Reporter      progress.Reporter
	Project       string
	WorkDir       string
	VerifyCommand string
}

// Cycle is one self-improvement run over a fixed candidate list. Candidates
// are processed strictly sequentially; safety comes from the pipeline's
// backup/restore discipline, not from locking.
type Cycle struct {
	cfg Config
}

// NewCycle creates a Cycle. A nil reporter is replaced with a no-op.
func NewCycle(cfg Config) *Cycle {
	if cfg.Reporter == nil {
		cfg.Reporter = progress.Nop{}
	}
	return &Cycle{cfg: cfg}
}

// Run walks the candidate list in order. Per candidate: propose, compare,
// verify; the first candidate that passes verification is committed and the
// run ends immediately. Generation and parse failures skip the candidate.
// Only a restore failure aborts the run, because after one the working tree
// may be inconsistent.
func (c *Cycle) Run(ctx context.Context, candidates []string) (*Report, error) {
	report := &Report{Outcome: OutcomeNoChange}

	for _, file := range candidates {
		if err := ctx.Err(); err != nil {
			report.Outcome = OutcomeNoChange
			return report, err
		}

		rel := c.relPath(file)
		c.cfg.Reporter.Statusf("selecting %s", rel)

		original, ok := c.cfg.Store.Read(file)
		if !ok {
			c.logf("candidate %s unreadable, skipping", rel)
			report.Attempts = append(report.Attempts, AttemptRecord{File: file, Reason: "unreadable"})
			continue
		}

		proposed, err := c.propose(ctx, file, original)
		if err != nil {
			c.cfg.Reporter.Statusf("skipped %s: %v", rel, err)
			report.Attempts = append(report.Attempts, AttemptRecord{File: file, Reason: err.Error()})
			continue
		}

		if strings.TrimSpace(proposed) == strings.TrimSpace(original) {
			c.cfg.Reporter.Statusf("skipped %s: no change proposed", rel)
			report.Attempts = append(report.Attempts, AttemptRecord{File: file, Reason: "no change proposed"})
			continue
		}

		passed, err := c.cfg.Pipeline.ApplyVerified(ctx, file, proposed, c.cfg.VerifyCommand)
		if err != nil {
			report.Outcome = OutcomeAborted
			report.Attempts = append(report.Attempts, AttemptRecord{File: file, ProposedContent: proposed, Reason: err.Error()})
			return report, fmt.Errorf("cycle aborted: %w", err)
		}
		if !passed {
			c.cfg.Reporter.Statusf("rejected %s: verification failed", rel)
			report.Attempts = append(report.Attempts, AttemptRecord{
				File:            file,
				ProposedContent: proposed,
				Reason:          "verification failed",
			})
			continue
		}

		// The one persistent mutation of the cycle.
		if err := c.cfg.Store.Write(file, proposed); err != nil {
			report.Outcome = OutcomeAborted
			report.Attempts = append(report.Attempts, AttemptRecord{File: file, ProposedContent: proposed, Passed: true, Reason: err.Error()})
			return report, fmt.Errorf("cycle aborted: commit write failed for %s: %w", rel, err)
		}

		c.cfg.Reporter.Statusf("committed %s", rel)
		report.Attempts = append(report.Attempts, AttemptRecord{
			File:            file,
			ProposedContent: proposed,
			Passed:          true,
			Committed:       true,
		})
		report.Outcome = OutcomeCommitted

		c.saveNote(ctx, file, proposed)
		return report, nil
	}

	c.cfg.Reporter.Statusf("candidate list exhausted, no change committed")
	return report, nil
}

// propose asks the backend for an analysis and then a full replacement body.
// Either call failing, or an unparseable reply, skips the candidate.
func (c *Cycle) propose(ctx context.Context, file, original string) (string, error) {
	rel := c.relPath(file)

	analysis, err := c.cfg.Provider.Generate(ctx, analysisPrompt(rel, original))
	if err != nil {
		return "", fmt.Errorf("analysis generation failed: %w", err)
	}
	c.logf("analysis for %s used %d prompt / %d completion tokens",
		rel, analysis.Usage.PromptTokens, analysis.Usage.CompletionTokens)

	replacement, err := c.cfg.Provider.Generate(ctx, replacementPrompt(rel, original, analysis.Text))
	if err != nil {
		return "", fmt.Errorf("replacement generation failed: %w", err)
	}

	// Backends sometimes answer in the section grammar despite being asked
	// for a bare block. Accept the section whose declared name resolves to
	// the candidate itself before falling back to the single grammar.
	if sections := parser.ParseSections(replacement.Text); sections.Len() > 0 {
		for _, block := range sections.Blocks() {
			target, rerr := workspace.Resolve(block.Path, file)
			if rerr == nil && target == file {
				return block.Content, nil
			}
		}
		return "", fmt.Errorf("response proposed other files, none for %s", rel)
	}

	set := parser.ParseSingle(replacement.Text, rel)
	block, ok := set.Get(rel)
	if !ok {
		return "", fmt.Errorf("no proposal in response")
	}
	return block.Content, nil
}

// saveNote informs the memory collaborator about the committed change.
// Best-effort: a failure is logged and never changes the cycle outcome.
func (c *Cycle) saveNote(ctx context.Context, file, content string) {
	if c.cfg.Saver == nil {
		return
	}

	rel := c.relPath(file)
	err := c.cfg.Saver.Save(ctx, &memory.Note{
		Project: c.cfg.Project,
		File:    rel,
		Content: content,
		Note:    fmt.Sprintf("self-improvement commit for %s: verification passed", rel),
		Tags:    []string{"self-improvement", "verified"},
	})
	if err != nil {
		c.logf("memory save failed for %s: %v", rel, err)
	}
}

func (c *Cycle) relPath(file string) string {
	if c.cfg.WorkDir == "" {
		return file
	}
	if rel, err := filepath.Rel(c.cfg.WorkDir, file); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return file
}

func (c *Cycle) logf(format string, args ...interface{}) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Infof(format, args...)
	}
}
