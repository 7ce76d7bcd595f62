package repair

import (
	"context"
	"errors"
	"strings"

	"envdrift/internal/execx"
)

// Executor runs repair actions through the shell so && chains and PATH
// resolution behave as they would in a terminal. Confirmation policy is
// the caller's job, keyed off Action.Safe; nothing here prompts.
type Executor struct {
	runner execx.Runner
}

// NewExecutor creates an Executor.
func NewExecutor(runner execx.Runner) *Executor {
	return &Executor{runner: runner}
}

// Outcome records one action's execution result.
type Outcome struct {
	Action Action `json:"action"`
	Err    error  `json:"-"`

	// Error mirrors Err as text for serialized output.
	Error string `json:"error,omitempty"`
}

// manualInstruction reports whether an action's command is prose for the
// user rather than something executable.
func manualInstruction(command string) bool {
	return strings.Contains(command, "manually") ||
		strings.Contains(command, "Manual") ||
		strings.Contains(command, "reinstall Node.js")
}

// Apply runs one action. Manual-instruction commands are no-op
// successes. A non-zero exit is tolerated when stderr holds nothing but
// warning and deprecation lines and stdout carries no error marker.
func (e *Executor) Apply(ctx context.Context, dir string, action Action) error {
	if manualInstruction(action.Command) {
		return nil
	}

	res := e.runner.RunShell(ctx, dir, action.Command, execx.LongTimeout)
	if res.Success() {
		return nil
	}
	if res.Status == execx.StatusTimedOut {
		return errors.New("command timed out")
	}
	if res.Status == execx.StatusSpawnError {
		return errors.New("failed to start command: " + res.SpawnErr)
	}

	if onlyBenignStderr(res.Stderr) && !containsErrorMarker(res.Stdout) {
		return nil
	}

	detail := strings.TrimSpace(res.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(res.Stdout)
	}
	return errors.New("command failed: " + detail)
}

// ApplyAll runs actions strictly in order, collecting per-action
// outcomes. A failed action never aborts the rest of the plan.
func (e *Executor) ApplyAll(ctx context.Context, dir string, actions []Action) []Outcome {
	outcomes := make([]Outcome, 0, len(actions))
	for _, action := range actions {
		o := Outcome{Action: action, Err: e.Apply(ctx, dir, action)}
		if o.Err != nil {
			o.Error = o.Err.Error()
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func onlyBenignStderr(stderr string) bool {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "warning ") ||
			strings.HasPrefix(line, "npm WARN") ||
			strings.Contains(line, "deprecated") {
			continue
		}
		return false
	}
	return true
}

func containsErrorMarker(stdout string) bool {
	return strings.Contains(stdout, "error") || strings.Contains(stdout, "ERR!")
}
