package execx

import (
	"context"
	"strings"
	"time"
)

// FakeRunner implements Runner with canned results for testing.
// Results are keyed by the command line ("name arg1 arg2" for Run,
// the raw line for RunShell).
type FakeRunner struct {
	results map[string]Result

	// Calls records every command line executed, in order.
	Calls []string
}

// NewFakeRunner creates a new FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		results: make(map[string]Result),
	}
}

// SetResult sets the canned result for a command line.
func (r *FakeRunner) SetResult(commandLine string, result Result) {
	r.results[commandLine] = result
}

// Run returns the canned result for "name args...".
func (r *FakeRunner) Run(_ context.Context, _ string, name string, args []string, _ time.Duration) Result {
	line := name
	if len(args) > 0 {
		line += " " + strings.Join(args, " ")
	}
	return r.lookup(line)
}

// RunShell returns the canned result for the shell line.
func (r *FakeRunner) RunShell(_ context.Context, _ string, command string, _ time.Duration) Result {
	return r.lookup(command)
}

func (r *FakeRunner) lookup(line string) Result {
	r.Calls = append(r.Calls, line)
	if res, ok := r.results[line]; ok {
		return res
	}
	// Unknown commands behave as if the binary is not installed.
	return Result{Status: StatusSpawnError, SpawnErr: "fake: no result for " + line}
}
