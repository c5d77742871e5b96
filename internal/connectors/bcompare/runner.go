package bcompare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sync/semaphore"
)

// DefaultTimeout applies when Run is called with a non-positive timeout.
const DefaultTimeout = 30 * time.Second

// Runner executes argument vectors as child processes.
type Runner struct {
	slots     *semaphore.Weighted
	waitDelay time.Duration
}

// NewRunner creates a Runner that allows at most maxConcurrent children at
// once. maxConcurrent <= 0 means unlimited.
func NewRunner(maxConcurrent int) *Runner {
	r := &Runner{waitDelay: 500 * time.Millisecond}
	if maxConcurrent > 0 {
		r.slots = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return r
}

// Run executes argv[0] with argv[1:] (no shell) and waits for it under
// timeout. It returns a *ProcessFailure when no exit code was produced.
// On timeout or cancellation the whole process tree is killed before Run
// returns.
func (r *Runner) Run(ctx context.Context, argv []string, timeout time.Duration) (ProcessResult, error) {
	if len(argv) == 0 || argv[0] == "" {
		return ProcessResult{}, &ProcessFailure{Reason: ReasonSpawnError, Detail: "empty argument vector"}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return ProcessResult{}, interrupted(err, timeout, nil, nil)
	}
	if r.slots != nil {
		if err := r.slots.Acquire(ctx, 1); err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return ProcessResult{}, interrupted(ctx.Err(), timeout, nil, nil)
			}
			return ProcessResult{}, &ProcessFailure{
				Reason: ReasonTimedOut,
				Detail: fmt.Sprintf("no process slot within %s", timeout),
				err:    err,
			}
		}
		defer r.slots.Release(1)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		killTree(cmd.Process)
		return nil
	}
	cmd.WaitDelay = r.waitDelay

	start := time.Now()
	if err := cmd.Start(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ProcessResult{}, interrupted(ctxErr, timeout, nil, nil)
		}
		return ProcessResult{}, startFailure(argv[0], err)
	}
	slog.Debug("bcompare started", "pid", cmd.Process.Pid, "args", len(argv)-1)

	err := cmd.Wait()
	elapsed := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil && (cmd.ProcessState == nil || !cmd.ProcessState.Exited()) {
		// The leader is reaped; sweep whatever is left of its group.
		killProcessGroup(cmd.Process)
		return ProcessResult{}, interrupted(ctxErr, timeout, stdout.Bytes(), stderr.Bytes())
	}

	res := ProcessResult{
		Stdout:   decodeOutput(stdout.Bytes()),
		Stderr:   decodeOutput(stderr.Bytes()),
		Duration: elapsed,
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = cmd.ProcessState.ExitCode()
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	case errors.Is(err, exec.ErrWaitDelay):
		// The tool exited but a descendant kept its output pipes open.
		killProcessGroup(cmd.Process)
		res.ExitCode = cmd.ProcessState.ExitCode()
	default:
		return ProcessResult{}, &ProcessFailure{Reason: ReasonSpawnError, Detail: err.Error(), err: err}
	}
	return res, nil
}

// interrupted reports a run cut short by its deadline or by the caller.
func interrupted(ctxErr error, timeout time.Duration, stdout, stderr []byte) *ProcessFailure {
	detail := fmt.Sprintf("killed after %s", timeout)
	if errors.Is(ctxErr, context.Canceled) {
		detail = "canceled by caller"
	}
	return &ProcessFailure{
		Reason: ReasonTimedOut,
		Detail: detail,
		Stdout: decodeOutput(stdout),
		Stderr: decodeOutput(stderr),
		err:    ctxErr,
	}
}

func startFailure(name string, err error) *ProcessFailure {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return &ProcessFailure{Reason: ReasonNotFound, Detail: fmt.Sprintf("%s: %v", name, err), err: err}
	}
	return &ProcessFailure{Reason: ReasonSpawnError, Detail: fmt.Sprintf("%s: %v", name, err), err: err}
}

// killTree kills proc's descendants bottom-up, then proc's process group.
func killTree(proc *os.Process) {
	if proc == nil {
		return
	}
	if root, err := process.NewProcess(int32(proc.Pid)); err == nil {
		for _, p := range descendantsBottomUp(root) {
			if err := p.Kill(); err != nil {
				slog.Debug("bcompare kill descendant", "pid", p.Pid, "err", err)
			}
		}
	}
	killProcessGroup(proc)
	if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		slog.Debug("bcompare kill", "pid", proc.Pid, "err", err)
	}
}

func descendantsBottomUp(p *process.Process) []*process.Process {
	children, err := p.Children()
	if err != nil {
		return nil
	}
	var tree []*process.Process
	for _, c := range children {
		tree = append(tree, descendantsBottomUp(c)...)
		tree = append(tree, c)
	}
	return tree
}

func decodeOutput(b []byte) string {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	return strings.ToValidUTF8(string(b), "�")
}
