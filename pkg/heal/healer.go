// Package heal remediates unresolved-module diagnostics: it scans linter
// output for references to files that do not exist, creates stubs for them,
// and asks the generation backend to fill the stubs in.
package heal

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/SWORDIntel/autocoder-sub000/pkg/llm"
	"github.com/SWORDIntel/autocoder-sub000/pkg/logging"
	"github.com/SWORDIntel/autocoder-sub000/pkg/parser"
	"github.com/SWORDIntel/autocoder-sub000/pkg/pipeline"
	"github.com/SWORDIntel/autocoder-sub000/pkg/progress"
	"github.com/SWORDIntel/autocoder-sub000/pkg/workspace"
)

// unresolvedRegex recognizes the one diagnostic shape the healer acts on: the
// import-resolution message followed by a quoted module specifier.
var unresolvedRegex = regexp.MustCompile(`Unable to resolve path to module ['"]([^'"]+)['"]`)

// DefaultSourceExtension is appended to specifiers that carry no extension.
const DefaultSourceExtension = ".js"

// Config wires a Healer's collaborators.
type Config struct {
	Store           *workspace.Store
	Provider        llm.Provider
	Pipeline        *pipeline.Pipeline
	Logger          *logging.Logger
	Reporter        progress.Reporter
	Project         string
	WorkDir         string
	SourceExtension string // defaults to DefaultSourceExtension
}

// Healer synthesizes stub files for unresolved module references.
type Healer struct {
	cfg Config
}

// NewHealer creates a Healer, applying defaults for the reporter and the
// source extension.
func NewHealer(cfg Config) *Healer {
	if cfg.Reporter == nil {
		cfg.Reporter = progress.Nop{}
	}
	if cfg.SourceExtension == "" {
		cfg.SourceExtension = DefaultSourceExtension
	}
	return &Healer{cfg: cfg}
}

// Heal scans diagnosticText and returns the paths it created, in first
// appearance order. Existing files are never overwritten, which also makes
// Heal idempotent: a second run over the same diagnostics returns an empty
// result. A failure on one specifier is logged and does not block the rest.
func (h *Healer) Heal(ctx context.Context, diagnosticText string) ([]string, error) {
	created := []string{}

	for _, specifier := range h.specifiers(diagnosticText) {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		path := h.candidatePath(specifier)
		if h.cfg.Store.Exists(path) {
			continue
		}

		if err := h.cfg.Store.Write(path, ""); err != nil {
			h.logf("failed to create stub for %q: %v", specifier, err)
			continue
		}
		created = append(created, path)
		h.cfg.Reporter.Statusf("created stub %s for unresolved module %q", h.relPath(path), specifier)

		h.populate(ctx, specifier, path)
	}

	return created, nil
}

// specifiers extracts unique quoted module specifiers in first-appearance order.
func (h *Healer) specifiers(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range unresolvedRegex.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// candidatePath derives the on-disk path for a module specifier, appending
// the default source extension when the specifier has none.
func (h *Healer) candidatePath(specifier string) string {
	rel := filepath.FromSlash(strings.TrimPrefix(specifier, "./"))
	if filepath.Ext(rel) == "" {
		rel += h.cfg.SourceExtension
	}
	return filepath.Join(h.cfg.WorkDir, rel)
}

// populate asks the backend for the stub's content and applies it. Failures
// leave the empty stub in place; the created path already counts.
func (h *Healer) populate(ctx context.Context, specifier, path string) {
	if h.cfg.Provider == nil || h.cfg.Pipeline == nil {
		return
	}

	rel := h.relPath(path)
	result, err := h.cfg.Provider.Generate(ctx, populatePrompt(h.cfg.Project, specifier, rel))
	if err != nil {
		h.logf("population generation failed for %q: %v", specifier, err)
		return
	}

	set := parser.ParseSingle(result.Text, rel)
	if set.Len() == 0 {
		h.logf("population response for %q contained no content", specifier)
		return
	}
	if err := h.cfg.Pipeline.Apply(set, h.cfg.WorkDir); err != nil {
		h.logf("failed to apply population for %q: %v", specifier, err)
	}
}

func (h *Healer) relPath(path string) string {
	if rel, err := filepath.Rel(h.cfg.WorkDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func (h *Healer) logf(format string, args ...interface{}) {
	if h.cfg.Logger != nil {
		h.cfg.Logger.Warnf(format, args...)
	}
}

// populatePrompt asks for the initial content of a newly stubbed module.
func populatePrompt(project, specifier, relPath string) string {
	return fmt.Sprintf(`The project %q references a module %q that did not exist, so an empty file
was created at %s. Write a minimal initial implementation for it, consistent
with the reference. Respond with the complete file body in a single fenced
code block and nothing else.`, project, specifier, relPath)
}
