package heal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SWORDIntel/autocoder-sub000/pkg/llm"
	"github.com/SWORDIntel/autocoder-sub000/pkg/pipeline"
	"github.com/SWORDIntel/autocoder-sub000/pkg/verify"
	"github.com/SWORDIntel/autocoder-sub000/pkg/workspace"
)

type stubProvider struct {
	text string
	err  error
}

func (s *stubProvider) Generate(context.Context, string) (*llm.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Result{Text: s.text}, nil
}

func (s *stubProvider) GetModel() string { return "stub" }

func newTestHealer(t *testing.T, dir string, provider llm.Provider) *Healer {
	t.Helper()
	store := workspace.NewStore()
	pipe := pipeline.New(store, verify.NewRunner(dir, nil), nil, nil)
	return NewHealer(Config{
		Store:    store,
		Provider: provider,
		Pipeline: pipe,
		Project:  "test-project",
		WorkDir:  dir,
	})
}

func TestHealCreatesStubAndPopulates(t *testing.T) {
	dir := t.TempDir()
	h := newTestHealer(t, dir, &stubProvider{text: "```js\nmodule.exports = {};\n```"})

	diag := `1:1 error Unable to resolve path to module './util' import/no-unresolved`

	created, err := h.Heal(context.Background(), diag)
	require.NoError(t, err)
	require.Len(t, created, 1)

	want := filepath.Join(dir, "util.js")
	assert.Equal(t, want, created[0])

	content, readErr := os.ReadFile(want)
	require.NoError(t, readErr)
	assert.Equal(t, "module.exports = {};", string(content))
}

func TestHealDuplicateSpecifierCreatesOnce(t *testing.T) {
	dir := t.TempDir()
	h := newTestHealer(t, dir, &stubProvider{text: "x"})

	diag := strings.Repeat(`Unable to resolve path to module "./util"`+"\n", 2)

	created, err := h.Heal(context.Background(), diag)
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestHealIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	h := newTestHealer(t, dir, &stubProvider{text: "x"})
	diag := `Unable to resolve path to module './util'`

	first, err := h.Heal(context.Background(), diag)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := h.Heal(context.Background(), diag)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestHealNeverOverwritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "util.js")
	require.NoError(t, os.WriteFile(existing, []byte("handwritten"), 0600))

	h := newTestHealer(t, dir, &stubProvider{text: "generated"})

	created, err := h.Heal(context.Background(), `Unable to resolve path to module './util'`)
	require.NoError(t, err)
	assert.Empty(t, created)

	content, _ := os.ReadFile(existing)
	assert.Equal(t, "handwritten", string(content))
}

func TestHealKeepsExtensionWhenPresent(t *testing.T) {
	dir := t.TempDir()
	h := newTestHealer(t, dir, &stubProvider{text: "x"})

	created, err := h.Heal(context.Background(), `Unable to resolve path to module './styles.css'`)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, filepath.Join(dir, "styles.css"), created[0])
}

func TestHealGenerationFailureLeavesEmptyStub(t *testing.T) {
	dir := t.TempDir()
	h := newTestHealer(t, dir, &stubProvider{err: errors.New("backend down")})

	diag := "Unable to resolve path to module './a'\nUnable to resolve path to module './b'"

	created, err := h.Heal(context.Background(), diag)
	require.NoError(t, err)
	require.Len(t, created, 2, "one specifier failing must not block the rest")

	for _, p := range created {
		content, readErr := os.ReadFile(p)
		require.NoError(t, readErr)
		assert.Empty(t, string(content))
	}
}

func TestHealNoDiagnosticsNoFiles(t *testing.T) {
	dir := t.TempDir()
	h := newTestHealer(t, dir, &stubProvider{text: "x"})

	created, err := h.Heal(context.Background(), "everything is fine")
	require.NoError(t, err)
	assert.Empty(t, created)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
