// Package verify runs the project's verification command (tests, lint, a
// build) and reduces whatever happens to a single pass/fail signal.
package verify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/SWORDIntel/autocoder-sub000/pkg/logging"
)

// Result is the outcome of one verification run. Passed is true iff the
// command ran and exited zero. A spawn failure and a non-zero exit are both
// reported as Passed=false; no caller may treat "could not run the check"
// differently from "the check failed".
type Result struct {
	Passed bool
	Output string
}

// Runner invokes an external verification command with the project root as
// working directory. The command string is handed to the shell as-is.
//
// No internal timeout bounds the command; a hung process stalls the calling
// flow. Callers can bound it through ctx if they need to.
type Runner struct {
	workDir string
	log     *logging.Logger
}

// NewRunner creates a Runner rooted at workDir.
func NewRunner(workDir string, log *logging.Logger) *Runner {
	return &Runner{workDir: workDir, log: log}
}

// Run executes command and waits for it to finish. All failure modes are
// normalized into the Result; Run never returns an error.
func (r *Runner) Run(ctx context.Context, command string) Result {
	if strings.TrimSpace(command) == "" {
		return Result{Passed: false, Output: "no verification command configured"}
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = r.workDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		if r.log != nil {
			r.log.Debugf("verification command %q failed: %v", command, err)
		}
		return Result{
			Passed: false,
			Output: fmt.Sprintf("%s%v", output, err),
		}
	}

	return Result{Passed: true, Output: string(output)}
}
