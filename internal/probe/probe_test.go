package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"envdrift/internal/execx"
)

func noEnv(string) (string, bool) { return "", false }

func envWith(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestNodeVersion(t *testing.T) {
	t.Run("strips the v prefix", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult("node --version", execx.Result{Status: execx.StatusSuccess, Stdout: "v20.11.0\n"})

		got, err := New(runner).NodeVersion(context.Background(), ".")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "20.11.0" {
			t.Errorf("version = %q, want 20.11.0", got)
		}
	})

	t.Run("empty output is a runtime error", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult("node --version", execx.Result{Status: execx.StatusSuccess, Stdout: "   \n"})

		_, err := New(runner).NodeVersion(context.Background(), ".")
		if !errors.Is(err, ErrRuntimeUnavailable) {
			t.Fatalf("err = %v, want ErrRuntimeUnavailable", err)
		}
	})

	t.Run("timeout is distinct", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult("node --version", execx.Result{Status: execx.StatusTimedOut})

		_, err := New(runner).NodeVersion(context.Background(), ".")
		if !errors.Is(err, ErrRuntimeTimeout) {
			t.Fatalf("err = %v, want ErrRuntimeTimeout", err)
		}
	})

	t.Run("missing binary is distinct", func(t *testing.T) {
		runner := execx.NewFakeRunner()

		_, err := New(runner).NodeVersion(context.Background(), ".")
		if !errors.Is(err, ErrRuntimeSpawn) {
			t.Fatalf("err = %v, want ErrRuntimeSpawn", err)
		}
	})
}

func TestPackageManager(t *testing.T) {
	t.Run("manifest packageManager field wins", func(t *testing.T) {
		dir := t.TempDir()
		mustWrite(t, filepath.Join(dir, "package.json"), `{"name":"a","packageManager":"pnpm@8.15.1"}`)
		mustWrite(t, filepath.Join(dir, "yarn.lock"), "")

		runner := execx.NewFakeRunner()
		name, version, err := New(runner).PackageManager(context.Background(), dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != "pnpm" || version != "8.15.1" {
			t.Errorf("got %s@%s, want pnpm@8.15.1", name, version)
		}
		if len(runner.Calls) != 0 {
			t.Errorf("expected no commands, ran %v", runner.Calls)
		}
	})

	t.Run("lockfile presence picks the manager", func(t *testing.T) {
		dir := t.TempDir()
		mustWrite(t, filepath.Join(dir, "package.json"), `{"name":"a"}`)
		mustWrite(t, filepath.Join(dir, "pnpm-lock.yaml"), "lockfileVersion: 9\n")

		runner := execx.NewFakeRunner()
		runner.SetResult("pnpm --version", execx.Result{Status: execx.StatusSuccess, Stdout: "9.1.0\n"})

		name, version, err := New(runner).PackageManager(context.Background(), dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != "pnpm" || version != "9.1.0" {
			t.Errorf("got %s@%s, want pnpm@9.1.0", name, version)
		}
	})

	t.Run("defaults to npm", func(t *testing.T) {
		dir := t.TempDir()
		runner := execx.NewFakeRunner()
		runner.SetResult("npm --version", execx.Result{Status: execx.StatusSuccess, Stdout: "10.2.4\n"})

		name, version, err := New(runner).PackageManager(context.Background(), dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != "npm" || version != "10.2.4" {
			t.Errorf("got %s@%s, want npm@10.2.4", name, version)
		}
	})

	t.Run("manager binary failure surfaces", func(t *testing.T) {
		dir := t.TempDir()
		mustWrite(t, filepath.Join(dir, "bun.lockb"), "")

		runner := execx.NewFakeRunner()
		if _, _, err := New(runner).PackageManager(context.Background(), dir); err == nil {
			t.Fatal("expected an error when bun cannot be spawned")
		}
	})
}

func TestDetectVersionManager(t *testing.T) {
	t.Run("volta verified via volta which", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult("volta which node", execx.Result{Status: execx.StatusSuccess, Stdout: "/home/u/.volta/tools/image/node/20.11.0/bin/node\n"})

		p := New(runner)
		p.SetEnvLookup(envWith(map[string]string{"VOLTA_HOME": "/home/u/.volta"}))

		if got := p.DetectVersionManager(context.Background(), "."); got != ManagerVolta {
			t.Errorf("manager = %v, want volta", got)
		}
	})

	t.Run("volta env without working binary falls through", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult("node --version", execx.Result{Status: execx.StatusSuccess, Stdout: "v20.0.0\n"})

		p := New(runner)
		p.SetEnvLookup(envWith(map[string]string{"VOLTA_HOME": "/home/u/.volta"}))

		if got := p.DetectVersionManager(context.Background(), "."); got != ManagerSystem {
			t.Errorf("manager = %v, want system", got)
		}
	})

	t.Run("fnm and nvm from environment", func(t *testing.T) {
		p := New(execx.NewFakeRunner())
		p.SetEnvLookup(envWith(map[string]string{"FNM_DIR": "/home/u/.fnm"}))
		if got := p.DetectVersionManager(context.Background(), "."); got != ManagerFnm {
			t.Errorf("manager = %v, want fnm", got)
		}

		p = New(execx.NewFakeRunner())
		p.SetEnvLookup(envWith(map[string]string{"NVM_DIR": "/home/u/.nvm"}))
		if got := p.DetectVersionManager(context.Background(), "."); got != ManagerNvm {
			t.Errorf("manager = %v, want nvm", got)
		}
	})

	t.Run("node path substring", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult("which node", execx.Result{Status: execx.StatusSuccess, Stdout: "/home/u/.nvm/versions/node/v20.11.0/bin/node\n"})

		p := New(runner)
		p.SetEnvLookup(noEnv)

		if got := p.DetectVersionManager(context.Background(), "."); got != ManagerNvm {
			t.Errorf("manager = %v, want nvm", got)
		}
	})

	t.Run("unknown when nothing responds", func(t *testing.T) {
		p := New(execx.NewFakeRunner())
		p.SetEnvLookup(noEnv)

		if got := p.DetectVersionManager(context.Background(), "."); got != ManagerUnknown {
			t.Errorf("manager = %v, want unknown", got)
		}
	})
}

func TestCorepackEnabled(t *testing.T) {
	t.Run("nil when corepack is missing", func(t *testing.T) {
		if got := New(execx.NewFakeRunner()).CorepackEnabled(context.Background(), t.TempDir()); got != nil {
			t.Errorf("got %v, want nil", *got)
		}
	})

	t.Run("true when the manifest pins a manager", func(t *testing.T) {
		dir := t.TempDir()
		mustWrite(t, filepath.Join(dir, "package.json"), `{"name":"a","packageManager":"yarn@4.1.0"}`)

		runner := execx.NewFakeRunner()
		runner.SetResult("corepack --version", execx.Result{Status: execx.StatusSuccess, Stdout: "0.23.0\n"})

		got := New(runner).CorepackEnabled(context.Background(), dir)
		if got == nil || !*got {
			t.Fatalf("got %v, want true", got)
		}
	})

	t.Run("false when available but unpinned", func(t *testing.T) {
		dir := t.TempDir()
		mustWrite(t, filepath.Join(dir, "package.json"), `{"name":"a"}`)

		runner := execx.NewFakeRunner()
		runner.SetResult("corepack --version", execx.Result{Status: execx.StatusSuccess, Stdout: "0.23.0\n"})

		got := New(runner).CorepackEnabled(context.Background(), dir)
		if got == nil || *got {
			t.Fatalf("got %v, want false", got)
		}
	})
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
