// Package bcompare drives the Beyond Compare command line. It locates the
// executable, builds argument vectors, runs the tool under a timeout, and
// classifies its exit code. bcompare is CLI-only for automation, so we shell
// out via os/exec; no shell is ever involved.
package bcompare

import (
	"fmt"
	"time"
)

// ProcessResult is a completed run: the tool produced an exit code.
// Stdout and Stderr are decoded text with invalid UTF-8 replaced.
type ProcessResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// FailureReason explains why a run produced no exit code.
type FailureReason string

const (
	ReasonNotFound   FailureReason = "not_found"
	ReasonTimedOut   FailureReason = "timed_out"
	ReasonSpawnError FailureReason = "spawn_error"
)

// ProcessFailure is returned by Runner.Run when the child never produced an
// exit code.
type ProcessFailure struct {
	Reason FailureReason
	Detail string
	// Stdout and Stderr hold whatever was captured before the failure.
	Stdout string
	Stderr string
	err    error
}

func (f *ProcessFailure) Error() string {
	return fmt.Sprintf("bcompare %s: %s", f.Reason, f.Detail)
}

func (f *ProcessFailure) Unwrap() error {
	return f.err
}
