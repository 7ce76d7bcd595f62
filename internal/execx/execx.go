// Package execx runs external commands with bounded timeouts.
//
// Every external process envdrift spawns goes through the Runner interface,
// which guarantees a closed result type: a command either completed
// (successfully or not), timed out and was killed, or could not be spawned.
// Callers never observe a hang.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Timeouts for external commands. Version queries are expected to return
// almost instantly; tree listings and install probes can be slow.
const (
	// ShortTimeout bounds quick version queries.
	ShortTimeout = 5 * time.Second

	// DefaultTimeout bounds tree-listing and install-probe commands.
	DefaultTimeout = 30 * time.Second

	// LongTimeout bounds repair commands that may reinstall dependencies.
	LongTimeout = 60 * time.Second
)

// Status classifies the outcome of a command.
type Status int

const (
	// StatusSuccess means the command exited zero.
	StatusSuccess Status = iota

	// StatusFailed means the command exited non-zero.
	StatusFailed

	// StatusTimedOut means the command exceeded its timeout and was killed.
	StatusTimedOut

	// StatusSpawnError means the command could not be started.
	StatusSpawnError
)

// Result is the outcome of running a command.
type Result struct {
	Status   Status
	ExitCode int
	Stdout   string
	Stderr   string

	// SpawnErr holds the spawn failure detail when Status is StatusSpawnError.
	SpawnErr string
}

// Success reports whether the command exited zero.
func (r Result) Success() bool {
	return r.Status == StatusSuccess
}

// Completed reports whether the command ran to completion (zero or not),
// meaning its output streams are meaningful.
func (r Result) Completed() bool {
	return r.Status == StatusSuccess || r.Status == StatusFailed
}

// Runner provides an abstraction for running external commands.
type Runner interface {
	// Run executes a command with the given arguments in dir.
	Run(ctx context.Context, dir, name string, args []string, timeout time.Duration) Result

	// RunShell executes a full shell line in dir, so operators like &&
	// and output redirection resolve.
	RunShell(ctx context.Context, dir, command string, timeout time.Duration) Result
}

// RealRunner implements Runner using os/exec.
type RealRunner struct{}

// NewRealRunner creates a new RealRunner.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// Run executes a command with the given arguments in dir.
func (r *RealRunner) Run(ctx context.Context, dir, name string, args []string, timeout time.Duration) Result {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, name, args...)
	cmd.Dir = dir
	return run(cctx, cmd, name)
}

// RunShell executes a full shell line in dir.
func (r *RealRunner) RunShell(ctx context.Context, dir, command string, timeout time.Duration) Result {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "sh", "-c", command)
	cmd.Dir = dir
	return run(cctx, cmd, command)
}

func run(ctx context.Context, cmd *exec.Cmd, display string) Result {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{
			Status:   StatusSpawnError,
			SpawnErr: fmt.Sprintf("failed to start %q: %v", display, err),
		}
	}

	// CommandContext kills the child when the deadline expires; Wait reaps it.
	err := cmd.Wait()

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.Status = StatusTimedOut
		return res
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.Status = StatusFailed
			res.ExitCode = exitErr.ExitCode()
			return res
		}
		res.Status = StatusSpawnError
		res.SpawnErr = fmt.Sprintf("failed to wait for %q: %v", display, err)
		return res
	}

	res.Status = StatusSuccess
	return res
}
