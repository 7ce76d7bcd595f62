package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"envdrift/internal/execx"
	"envdrift/internal/fsops"
	"envdrift/internal/registry"
)

func newTestResolver(runner *execx.FakeRunner, lookup *registry.FakeLookup) *Resolver {
	if runner == nil {
		runner = execx.NewFakeRunner()
	}
	if lookup == nil {
		lookup = registry.NewFakeLookup()
	}
	return NewResolver(runner, lookup)
}

func TestFindResolution_RequiredRangePicksNewestSatisfying(t *testing.T) {
	lookup := registry.NewFakeLookup()
	lookup.Packages["react"] = []registry.PackageVersion{
		{Version: "17.0.2"},
		{Version: "18.2.0"},
		{Version: "18.3.1"},
		{Version: "19.0.0"},
	}
	r := newTestResolver(nil, lookup)

	res, err := r.FindResolution(context.Background(), Conflict{
		Package:               "react",
		CurrentVersion:        "17.0.2",
		ConflictingDependency: "react-native",
		RequiredRange:         "^18.0.0",
	})
	if err != nil {
		t.Fatalf("FindResolution() error = %v", err)
	}
	if res == nil {
		t.Fatal("FindResolution() = nil, want a resolution")
	}
	if res.SuggestedVersion != "18.3.1" {
		t.Errorf("SuggestedVersion = %q, want %q", res.SuggestedVersion, "18.3.1")
	}
	if res.Reason != "react-native requires react ^18.0.0" {
		t.Errorf("Reason = %q", res.Reason)
	}
}

func TestFindResolution_SkipsPrereleases(t *testing.T) {
	lookup := registry.NewFakeLookup()
	lookup.Packages["react"] = []registry.PackageVersion{
		{Version: "18.3.1"},
		{Version: "19.0.0-rc.1"},
	}
	r := newTestResolver(nil, lookup)

	res, err := r.FindResolution(context.Background(), Conflict{
		Package:               "react",
		CurrentVersion:        "17.0.2",
		ConflictingDependency: "react-native",
		RequiredRange:         ">=18.0.0",
	})
	if err != nil {
		t.Fatalf("FindResolution() error = %v", err)
	}
	if res == nil || res.SuggestedVersion != "18.3.1" {
		t.Fatalf("FindResolution() = %+v, want suggestion 18.3.1", res)
	}
}

func TestFindResolution_AllowsPrereleaseWhenCurrentIsPrerelease(t *testing.T) {
	lookup := registry.NewFakeLookup()
	lookup.Packages["react"] = []registry.PackageVersion{
		{Version: "18.3.1"},
		{Version: "19.0.0-rc.1"},
	}
	r := newTestResolver(nil, lookup)

	res, err := r.FindResolution(context.Background(), Conflict{
		Package:               "react",
		CurrentVersion:        "19.0.0-beta.2",
		ConflictingDependency: "react-native",
		RequiredRange:         ">=18.0.0",
	})
	if err != nil {
		t.Fatalf("FindResolution() error = %v", err)
	}
	if res == nil || res.SuggestedVersion != "19.0.0-rc.1" {
		t.Fatalf("FindResolution() = %+v, want suggestion 19.0.0-rc.1", res)
	}
}

func TestFindResolution_PeerRequirementAcceptsInstalled(t *testing.T) {
	lookup := registry.NewFakeLookup()
	lookup.Packages["react-dom"] = []registry.PackageVersion{
		{
			Version:          "18.3.0",
			PeerDependencies: map[string]string{"react": "^18.0.0"},
			HasPeerDeps:      true,
		},
		{
			Version:          "19.0.0",
			PeerDependencies: map[string]string{"react": "^19.0.0"},
			HasPeerDeps:      true,
		},
	}
	r := newTestResolver(nil, lookup)

	res, err := r.FindResolution(context.Background(), Conflict{
		Package:               "react-dom",
		CurrentVersion:        "18.2.0",
		ConflictingDependency: "react",
	})
	if err != nil {
		t.Fatalf("FindResolution() error = %v", err)
	}
	if res == nil {
		t.Fatal("FindResolution() = nil, want a resolution")
	}
	if res.SuggestedVersion != "18.3.0" {
		t.Errorf("SuggestedVersion = %q, want %q", res.SuggestedVersion, "18.3.0")
	}
	if res.Reason != "v18.3.0 supports react (requires ^18.0.0)" {
		t.Errorf("Reason = %q", res.Reason)
	}
}

func TestFindResolution_MissingPeerEntryIsCompatible(t *testing.T) {
	lookup := registry.NewFakeLookup()
	lookup.Packages["some-plugin"] = []registry.PackageVersion{
		{
			Version:          "2.0.0",
			PeerDependencies: map[string]string{"eslint": ">=8.0.0"},
			HasPeerDeps:      true,
		},
	}
	r := newTestResolver(nil, lookup)

	res, err := r.FindResolution(context.Background(), Conflict{
		Package:               "some-plugin",
		CurrentVersion:        "1.4.0",
		ConflictingDependency: "react",
	})
	if err != nil {
		t.Fatalf("FindResolution() error = %v", err)
	}
	if res == nil || res.SuggestedVersion != "2.0.0" {
		t.Fatalf("FindResolution() = %+v, want suggestion 2.0.0", res)
	}
	if res.Reason != "v2.0.0 has no peer requirement for react" {
		t.Errorf("Reason = %q", res.Reason)
	}
}

func TestFindResolution_SkipsVersionsWithoutPeerMetadata(t *testing.T) {
	// Versions that declare no peerDependencies object at all say
	// nothing about compatibility, so they never count as a fix.
	lookup := registry.NewFakeLookup()
	lookup.Packages["react-dom"] = []registry.PackageVersion{
		{Version: "19.0.0"},
		{Version: "18.3.0"},
	}
	r := newTestResolver(nil, lookup)

	res, err := r.FindResolution(context.Background(), Conflict{
		Package:               "react-dom",
		CurrentVersion:        "17.0.2",
		ConflictingDependency: "react",
	})
	if err != nil {
		t.Fatalf("FindResolution() error = %v", err)
	}
	if res != nil {
		t.Fatalf("FindResolution() = %+v, want nil", res)
	}
}

func TestFindResolution_UnknownPackage(t *testing.T) {
	r := newTestResolver(nil, nil)

	res, err := r.FindResolution(context.Background(), Conflict{
		Package:               "ghost",
		CurrentVersion:        "1.0.0",
		ConflictingDependency: "react",
		RequiredRange:         "^2.0.0",
	})
	if err != nil {
		t.Fatalf("FindResolution() error = %v", err)
	}
	if res != nil {
		t.Fatalf("FindResolution() = %+v, want nil", res)
	}
}

func TestFindResolutions_SkipsFailuresAndUnresolvable(t *testing.T) {
	lookup := registry.NewFakeLookup()
	lookup.Packages["react"] = []registry.PackageVersion{
		{Version: "18.3.1"},
	}
	lookup.Errs["left-pad"] = errors.New("registry unreachable")
	r := newTestResolver(nil, lookup)

	conflicts := []Conflict{
		{Package: "left-pad", CurrentVersion: "1.0.0", ConflictingDependency: "app", RequiredRange: "^2.0.0"},
		{Package: "react", CurrentVersion: "17.0.2", ConflictingDependency: "react-native", RequiredRange: "^18.0.0"},
		{Package: "react", CurrentVersion: "17.0.2", ConflictingDependency: "react-native", RequiredRange: "^99.0.0"},
	}

	resolutions := r.FindResolutions(context.Background(), conflicts)
	if len(resolutions) != 1 {
		t.Fatalf("FindResolutions() returned %d resolutions, want 1", len(resolutions))
	}
	if resolutions[0].SuggestedVersion != "18.3.1" {
		t.Errorf("SuggestedVersion = %q, want %q", resolutions[0].SuggestedVersion, "18.3.1")
	}
}

func TestDetectConflicts(t *testing.T) {
	const dryRun = "npm install --dry-run 2>&1"

	t.Run("parses conflicts from failed install", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult(dryRun, execx.Result{
			Status:   execx.StatusFailed,
			ExitCode: 1,
			Stdout:   eresolveOutput,
		})
		r := newTestResolver(runner, nil)

		conflicts, err := r.DetectConflicts(context.Background(), t.TempDir())
		if err != nil {
			t.Fatalf("DetectConflicts() error = %v", err)
		}
		if len(conflicts) != 1 {
			t.Fatalf("DetectConflicts() returned %d conflicts, want 1", len(conflicts))
		}
		if conflicts[0].Package != "react" {
			t.Errorf("Package = %q, want %q", conflicts[0].Package, "react")
		}
	})

	t.Run("clean install yields no conflicts", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult(dryRun, execx.Result{Status: execx.StatusSuccess})
		r := newTestResolver(runner, nil)

		conflicts, err := r.DetectConflicts(context.Background(), t.TempDir())
		if err != nil {
			t.Fatalf("DetectConflicts() error = %v", err)
		}
		if len(conflicts) != 0 {
			t.Errorf("DetectConflicts() returned %d conflicts, want 0", len(conflicts))
		}
	})

	t.Run("spawn failure is an error", func(t *testing.T) {
		r := newTestResolver(execx.NewFakeRunner(), nil)

		if _, err := r.DetectConflicts(context.Background(), t.TempDir()); err == nil {
			t.Fatal("DetectConflicts() error = nil, want spawn error")
		}
	})

	t.Run("timeout is an error", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.SetResult(dryRun, execx.Result{Status: execx.StatusTimedOut})
		r := newTestResolver(runner, nil)

		if _, err := r.DetectConflicts(context.Background(), t.TempDir()); err == nil {
			t.Fatal("DetectConflicts() error = nil, want timeout error")
		}
	})
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	original := `{
  "name": "my-app",
  "version": "1.0.0",
  "dependencies": {
    "react": "^17.0.2",
    "lodash": "^4.17.21"
  },
  "devDependencies": {
    "@types/react": "^17.0.0"
  }
}
`
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	resolutions := []Resolution{
		{Package: "react", CurrentVersion: "17.0.2", SuggestedVersion: "18.3.1"},
		{Package: "@types/react", CurrentVersion: "17.0.80", SuggestedVersion: "18.2.45"},
	}
	if err := Apply(fsops.NewRealFS(), dir, resolutions); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("rewritten package.json does not end with a newline")
	}

	var doc struct {
		Name            string            `json:"name"`
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("rewritten package.json is not valid JSON: %v", err)
	}
	if doc.Name != "my-app" {
		t.Errorf("name = %q, want %q", doc.Name, "my-app")
	}
	if got := doc.Dependencies["react"]; got != "^18.3.1" {
		t.Errorf("dependencies.react = %q, want %q", got, "^18.3.1")
	}
	if got := doc.Dependencies["lodash"]; got != "^4.17.21" {
		t.Errorf("dependencies.lodash = %q, want %q", got, "^4.17.21")
	}
	if got := doc.DevDependencies["@types/react"]; got != "^18.2.45" {
		t.Errorf("devDependencies[@types/react] = %q, want %q", got, "^18.2.45")
	}
}

func TestApply_MissingManifest(t *testing.T) {
	err := Apply(fsops.NewRealFS(), t.TempDir(), []Resolution{
		{Package: "react", SuggestedVersion: "18.3.1"},
	})
	if err == nil {
		t.Fatal("Apply() error = nil, want read failure")
	}
}
