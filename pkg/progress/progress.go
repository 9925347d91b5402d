// Package progress defines the progress-reporting interface injected into the
// mutation pipeline, the self-improvement cycle, and the healer. Components
// report state transitions through a Reporter instead of sharing ambient
// global state, so front-ends can render progress however they like.
package progress

import (
	"fmt"
	"io"

	"github.com/SWORDIntel/autocoder-sub000/pkg/logging"
)

// Reporter receives one line per state transition or notable event.
type Reporter interface {
	// Statusf reports a formatted progress line.
	Statusf(format string, args ...interface{})
}

// Nop is a Reporter that discards everything.
type Nop struct{}

// Statusf implements Reporter.
func (Nop) Statusf(string, ...interface{}) {}

// writerReporter mirrors progress lines to a writer and the session log.
type writerReporter struct {
	w   io.Writer
	log *logging.Logger
}

// NewWriterReporter returns a Reporter that writes progress lines to w and,
// when log is non-nil, to the session log file as well.
func NewWriterReporter(w io.Writer, log *logging.Logger) Reporter {
	return &writerReporter{w: w, log: log}
}

func (r *writerReporter) Statusf(format string, args ...interface{}) {
	fmt.Fprintf(r.w, format+"\n", args...)
	if r.log != nil {
		r.log.Infof(format, args...)
	}
}
