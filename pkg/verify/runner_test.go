package verify

import (
	"context"
	"strings"
	"testing"
)

func TestRunPassesOnZeroExit(t *testing.T) {
	r := NewRunner(t.TempDir(), nil)

	res := r.Run(context.Background(), "echo ok")
	if !res.Passed {
		t.Fatalf("expected pass, got output: %s", res.Output)
	}
	if !strings.Contains(res.Output, "ok") {
		t.Errorf("expected captured stdout, got: %s", res.Output)
	}
}

func TestRunFailsOnNonZeroExit(t *testing.T) {
	r := NewRunner(t.TempDir(), nil)

	res := r.Run(context.Background(), "echo broken >&2; exit 3")
	if res.Passed {
		t.Fatal("expected failure for non-zero exit")
	}
	if !strings.Contains(res.Output, "broken") {
		t.Errorf("expected captured stderr, got: %s", res.Output)
	}
}

func TestRunFailsOnSpawnError(t *testing.T) {
	r := NewRunner("/nonexistent-work-dir-for-test", nil)

	res := r.Run(context.Background(), "true")
	if res.Passed {
		t.Fatal("expected spawn failure to normalize to Passed=false")
	}
	if res.Output == "" {
		t.Error("expected diagnostic output for spawn failure")
	}
}

func TestRunFailsOnEmptyCommand(t *testing.T) {
	r := NewRunner(t.TempDir(), nil)

	if res := r.Run(context.Background(), "   "); res.Passed {
		t.Fatal("expected empty command to fail")
	}
}

func TestRunUsesWorkDir(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner(dir, nil)

	res := r.Run(context.Background(), "pwd")
	if !res.Passed {
		t.Fatalf("pwd failed: %s", res.Output)
	}
	if !strings.Contains(res.Output, dir) {
		t.Errorf("expected command to run in %s, got: %s", dir, res.Output)
	}
}
