// Package engine provides the core business logic for envdrift operations.
//
// The engine package acts as the orchestration layer between CLI commands
// and the lower-level components. It coordinates the environment probe,
// snapshot store, check suite, repair planner/executor, and conflict
// resolver.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Lock/Status/Diff: Snapshot generation and drift comparison
//   - Verify/Doctor: Check runs and repair planning
//   - Repair/Resolve: Plan execution and conflict resolution
package engine

import (
	"context"
	"runtime"

	"envdrift/internal/checks"
	"envdrift/internal/clock"
	"envdrift/internal/execx"
	"envdrift/internal/fsops"
	"envdrift/internal/hash"
	"envdrift/internal/probe"
	"envdrift/internal/registry"
	"envdrift/internal/repair"
	"envdrift/internal/resolve"
	"envdrift/internal/snapshot"
)

// Version is the tool version recorded in generated snapshots.
const Version = "0.1.0"

// Engine orchestrates all envdrift operations.
// It is the main API surface called by the CLI.
type Engine struct {
	fs       fsops.FS
	hasher   hash.Hasher
	runner   execx.Runner
	prober   *probe.Prober
	store    *snapshot.Store
	suite    *checks.Suite
	executor *repair.Executor
	resolver *resolve.Resolver
}

// New creates a new Engine with the given dependencies.
func New(
	fs fsops.FS,
	hasher hash.Hasher,
	clk clock.Clock,
	runner execx.Runner,
	lookup registry.Lookup,
) *Engine {
	prober := probe.New(runner)
	return &Engine{
		fs:       fs,
		hasher:   hasher,
		runner:   runner,
		prober:   prober,
		store:    snapshot.NewStore(fs, hasher, clk, runner, prober, "envdrift@"+Version),
		suite:    checks.NewSuite(runner, hasher, prober),
		executor: repair.NewExecutor(runner),
		resolver: resolve.NewResolver(runner, lookup),
	}
}

// repairContext builds the command context repair planning needs for a
// project directory. Target runtime version comes from the snapshot when
// one is loadable.
func (e *Engine) repairContext(ctx context.Context, dir string, snap *snapshot.Snapshot) repair.Context {
	rc := repair.Context{OS: runtime.GOOS}

	pm, _, err := e.prober.PackageManager(ctx, dir)
	if err != nil || pm == "" {
		pm = "npm"
	}
	rc.PackageManager = pm
	rc.VersionManager = e.prober.DetectVersionManager(ctx, dir)

	if snap != nil {
		rc.TargetNodeVersion = snap.Toolchain.Node
		if snap.Toolchain.NodeVersionSource != "" {
			rc.VersionManager = probe.VersionManager(snap.Toolchain.NodeVersionSource)
		}
	}
	return rc
}
