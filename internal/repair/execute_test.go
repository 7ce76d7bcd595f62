package repair

import (
	"context"
	"strings"
	"testing"

	"envdrift/internal/execx"
)

func TestApply(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult("npm ci", execx.Result{Status: execx.StatusSuccess})

		err := NewExecutor(runner).Apply(context.Background(), ".", Action{Command: "npm ci", Safe: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("manual instruction is a no-op", func(t *testing.T) {
		runner := execx.NewFakeRunner()

		err := NewExecutor(runner).Apply(context.Background(), ".",
			Action{Command: "Review and remove unused lockfile manually"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runner.Calls) != 0 {
			t.Errorf("expected no execution, ran %v", runner.Calls)
		}
	})

	t.Run("warnings on stderr are tolerated", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult("npm install", execx.Result{
			Status:   execx.StatusFailed,
			ExitCode: 1,
			Stderr:   "npm WARN old lockfile\nwarning something minor\npackage xyz is deprecated\n",
		})

		err := NewExecutor(runner).Apply(context.Background(), ".", Action{Command: "npm install"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("error marker on stdout fails despite benign stderr", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult("npm install", execx.Result{
			Status:   execx.StatusFailed,
			ExitCode: 1,
			Stdout:   "npm ERR! peer dep conflict",
			Stderr:   "npm WARN old lockfile\n",
		})

		err := NewExecutor(runner).Apply(context.Background(), ".", Action{Command: "npm install"})
		if err == nil {
			t.Fatal("expected failure")
		}
	})

	t.Run("real stderr fails", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult("npm ci", execx.Result{
			Status:   execx.StatusFailed,
			ExitCode: 1,
			Stderr:   "ENOENT: no such file or directory",
		})

		err := NewExecutor(runner).Apply(context.Background(), ".", Action{Command: "npm ci"})
		if err == nil || !strings.Contains(err.Error(), "ENOENT") {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("timeout and spawn errors are distinct failures", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult("slow", execx.Result{Status: execx.StatusTimedOut})

		exec := NewExecutor(runner)
		if err := exec.Apply(context.Background(), ".", Action{Command: "slow"}); err == nil {
			t.Fatal("expected timeout error")
		}
		if err := exec.Apply(context.Background(), ".", Action{Command: "missing"}); err == nil {
			t.Fatal("expected spawn error")
		}
	})
}

func TestApplyAll_CollectsOutcomesWithoutAborting(t *testing.T) {
	runner := execx.NewFakeRunner()
	runner.SetResult("first", execx.Result{Status: execx.StatusSuccess})
	runner.SetResult("second", execx.Result{Status: execx.StatusFailed, ExitCode: 1, Stderr: "boom"})
	runner.SetResult("third", execx.Result{Status: execx.StatusSuccess})

	outcomes := NewExecutor(runner).ApplyAll(context.Background(), ".", []Action{
		{Description: "a", Command: "first"},
		{Description: "b", Command: "second"},
		{Description: "c", Command: "third"},
	})

	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(outcomes))
	}
	if outcomes[0].Err != nil || outcomes[2].Err != nil {
		t.Errorf("outcomes = %+v", outcomes)
	}
	if outcomes[1].Err == nil || outcomes[1].Error == "" {
		t.Errorf("expected the middle action to fail: %+v", outcomes[1])
	}
	if len(runner.Calls) != 3 {
		t.Errorf("calls = %v, want all three", runner.Calls)
	}
}
