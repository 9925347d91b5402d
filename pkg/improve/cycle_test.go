package improve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SWORDIntel/autocoder-sub000/pkg/llm"
	"github.com/SWORDIntel/autocoder-sub000/pkg/memory"
	"github.com/SWORDIntel/autocoder-sub000/pkg/pipeline"
	"github.com/SWORDIntel/autocoder-sub000/pkg/verify"
	"github.com/SWORDIntel/autocoder-sub000/pkg/workspace"
)

// fakeProvider returns canned responses keyed by a substring of the prompt,
// or a fixed error.
type fakeProvider struct {
	respond func(prompt string) (string, error)
	calls   int
}

func (f *fakeProvider) Generate(_ context.Context, prompt string) (*llm.Result, error) {
	f.calls++
	text, err := f.respond(prompt)
	if err != nil {
		return nil, err
	}
	return &llm.Result{Text: text}, nil
}

func (f *fakeProvider) GetModel() string { return "fake" }

// fakeSaver records saved notes.
type fakeSaver struct {
	notes []*memory.Note
	err   error
}

func (f *fakeSaver) Save(_ context.Context, n *memory.Note) error {
	if f.err != nil {
		return f.err
	}
	f.notes = append(f.notes, n)
	return nil
}

// improver always proposes the same replacement body for every file.
func improver(body string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		if strings.Contains(prompt, "prioritized analysis") {
			return "analysis: tighten everything", nil
		}
		return "```\n" + body + "\n```", nil
	}
}

func writeCandidates(t *testing.T, dir string, names []string) []string {
	t.Helper()
	var paths []string
	for i, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(fmt.Sprintf("original %d", i)), 0600))
		paths = append(paths, p)
	}
	return paths
}

func newTestCycle(t *testing.T, dir string, provider llm.Provider, saver memory.Saver, verifyCmd string) *Cycle {
	t.Helper()
	store := workspace.NewStore()
	runner := verify.NewRunner(dir, nil)
	pipe := pipeline.New(store, runner, nil, nil)

	return NewCycle(Config{
		Provider:      provider,
		Pipeline:      pipe,
		Store:         store,
		Saver:         saver,
		Project:       "test-project",
		WorkDir:       dir,
		VerifyCommand: verifyCmd,
	})
}

func TestCycleCommitsExactlyOneChange(t *testing.T) {
	dir := t.TempDir()
	candidates := writeCandidates(t, dir, []string{"a.js", "b.js", "c.js"})

	provider := &fakeProvider{respond: improver("improved body")}
	saver := &fakeSaver{}
	cycle := newTestCycle(t, dir, provider, saver, "true")

	report, err := cycle.Run(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, report.Outcome)

	committed := report.Committed()
	require.NotNil(t, committed)
	assert.Equal(t, candidates[0], committed.File)

	// first candidate carries the change, the rest are untouched
	content, _ := os.ReadFile(candidates[0])
	assert.Equal(t, "improved body", string(content))
	for i, path := range candidates[1:] {
		content, _ := os.ReadFile(path)
		assert.Equal(t, fmt.Sprintf("original %d", i+1), string(content))
	}

	// no further candidates examined after the commit
	assert.Len(t, report.Attempts, 1)

	// success is reported to the memory collaborator
	require.Len(t, saver.notes, 1)
	assert.Equal(t, "a.js", saver.notes[0].File)
}

func TestCycleNoCommitWhenVerificationAlwaysFails(t *testing.T) {
	dir := t.TempDir()
	candidates := writeCandidates(t, dir, []string{"a.js", "b.js"})

	provider := &fakeProvider{respond: improver("improved body")}
	cycle := newTestCycle(t, dir, provider, nil, "false")

	report, err := cycle.Run(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoChange, report.Outcome)
	assert.Nil(t, report.Committed())

	// every candidate byte-identical to its pre-run content
	for i, path := range candidates {
		content, _ := os.ReadFile(path)
		assert.Equal(t, fmt.Sprintf("original %d", i), string(content))
	}
	assert.Len(t, report.Attempts, 2)
}

func TestCycleSkipsCandidateOnGenerationFailure(t *testing.T) {
	dir := t.TempDir()
	candidates := writeCandidates(t, dir, []string{"a.js", "b.js"})

	// first file fails generation, second succeeds
	provider := &fakeProvider{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "a.js") {
			return "", errors.New("backend unavailable")
		}
		return improver("improved body")(prompt)
	}}
	cycle := newTestCycle(t, dir, provider, nil, "true")

	report, err := cycle.Run(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, report.Outcome)

	committed := report.Committed()
	require.NotNil(t, committed)
	assert.Equal(t, candidates[1], committed.File)

	content, _ := os.ReadFile(candidates[0])
	assert.Equal(t, "original 0", string(content), "failed candidate must stay untouched")
}

func TestCycleSkipsUnchangedProposal(t *testing.T) {
	dir := t.TempDir()
	candidates := writeCandidates(t, dir, []string{"a.js"})

	provider := &fakeProvider{respond: improver("original 0")}
	cycle := newTestCycle(t, dir, provider, nil, "true")

	report, err := cycle.Run(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoChange, report.Outcome)
	require.Len(t, report.Attempts, 1)
	assert.Equal(t, "no change proposed", report.Attempts[0].Reason)
}

func TestCycleAcceptsSectionGrammarReply(t *testing.T) {
	dir := t.TempDir()
	candidates := writeCandidates(t, dir, []string{"a.js"})

	provider := &fakeProvider{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "prioritized analysis") {
			return "analysis", nil
		}
		return "# Original File: a.js\n```js\nimproved body\n```", nil
	}}
	cycle := newTestCycle(t, dir, provider, nil, "true")

	report, err := cycle.Run(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, report.Outcome)

	content, _ := os.ReadFile(candidates[0])
	assert.Equal(t, "improved body", string(content))
}

func TestCycleRejectsSectionReplyForOtherFile(t *testing.T) {
	dir := t.TempDir()
	candidates := writeCandidates(t, dir, []string{"a.js"})

	provider := &fakeProvider{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "prioritized analysis") {
			return "analysis", nil
		}
		return "# File: unrelated.js\n```js\nbody\n```", nil
	}}
	cycle := newTestCycle(t, dir, provider, nil, "true")

	report, err := cycle.Run(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoChange, report.Outcome)

	if _, statErr := os.Stat(filepath.Join(dir, "unrelated.js")); statErr == nil {
		t.Error("a section for another file must not be written by the cycle")
	}
}

func TestCycleMemorySaveFailureDoesNotChangeOutcome(t *testing.T) {
	dir := t.TempDir()
	candidates := writeCandidates(t, dir, []string{"a.js"})

	provider := &fakeProvider{respond: improver("improved body")}
	saver := &fakeSaver{err: errors.New("memory store down")}
	cycle := newTestCycle(t, dir, provider, saver, "true")

	report, err := cycle.Run(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, report.Outcome)
}

func TestCycleStopsOnCanceledContext(t *testing.T) {
	dir := t.TempDir()
	candidates := writeCandidates(t, dir, []string{"a.js"})

	provider := &fakeProvider{respond: improver("improved body")}
	cycle := newTestCycle(t, dir, provider, nil, "true")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cycle.Run(ctx, candidates)
	require.Error(t, err)
	assert.Zero(t, provider.calls)
}

func TestCandidatesOrderAndDedup(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0755))
	for _, name := range []string{"src/b.js", "src/a.js", "main.js", "README.md", ".git/config"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}

	candidates, err := Candidates(dir, []string{"main.js", "src/*.js"})
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "main.js"),
		filepath.Join(dir, "src", "a.js"),
		filepath.Join(dir, "src", "b.js"),
	}
	assert.Equal(t, want, candidates)
}

func TestCandidatesInvalidPattern(t *testing.T) {
	_, err := Candidates(t.TempDir(), []string{"[unclosed"})
	assert.Error(t, err)
}
