// Package probe detects live toolchain facts: the Node.js runtime, the
// package manager, the version manager fronting the runtime, and corepack.
//
// Detection never mutates process state; every call takes the project
// directory explicitly so multiple projects can be probed from one process.
package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"envdrift/internal/execx"
	"envdrift/internal/lockfile"
	"envdrift/internal/manifest"
)

// Fatal runtime-detection failures. Each maps to a distinct remediation
// message upstream.
var (
	// ErrRuntimeUnavailable means node ran but reported nothing usable.
	ErrRuntimeUnavailable = errors.New("runtime unavailable")

	// ErrRuntimeTimeout means the version query hung and was killed.
	ErrRuntimeTimeout = errors.New("runtime version query timed out")

	// ErrRuntimeSpawn means the node binary could not be started at all.
	ErrRuntimeSpawn = errors.New("runtime not found")
)

// VersionManager identifies the tool fronting the Node.js runtime.
type VersionManager string

const (
	ManagerVolta   VersionManager = "volta"
	ManagerFnm     VersionManager = "fnm"
	ManagerNvm     VersionManager = "nvm"
	ManagerSystem  VersionManager = "system"
	ManagerUnknown VersionManager = "unknown"
)

// ToolchainFacts is the immutable result of probing the live environment.
type ToolchainFacts struct {
	NodeVersion           string
	PackageManager        string
	PackageManagerVersion string
	VersionManager        VersionManager

	// CorepackEnabled is nil when corepack is unavailable, true when it is
	// available and the manifest pins a package manager, false otherwise.
	CorepackEnabled *bool
}

// Prober detects toolchain facts via the command runner.
type Prober struct {
	runner    execx.Runner
	lookupEnv func(string) (string, bool)
}

// New creates a Prober.
func New(runner execx.Runner) *Prober {
	return &Prober{
		runner:    runner,
		lookupEnv: os.LookupEnv,
	}
}

// SetEnvLookup overrides environment lookup, for tests.
func (p *Prober) SetEnvLookup(fn func(string) (string, bool)) {
	p.lookupEnv = fn
}

// NodeVersion returns the live runtime version with the leading "v"
// stripped. Spawn failure, timeout, and empty output are distinct fatal
// errors.
func (p *Prober) NodeVersion(ctx context.Context, dir string) (string, error) {
	res := p.runner.Run(ctx, dir, "node", []string{"--version"}, execx.ShortTimeout)

	switch res.Status {
	case execx.StatusSuccess:
		version := strings.TrimPrefix(strings.TrimSpace(res.Stdout), "v")
		if version == "" {
			return "", fmt.Errorf("%w: node --version returned empty output", ErrRuntimeUnavailable)
		}
		return version, nil
	case execx.StatusFailed:
		return "", fmt.Errorf("%w: node --version failed: %s", ErrRuntimeUnavailable, strings.TrimSpace(res.Stderr))
	case execx.StatusTimedOut:
		return "", fmt.Errorf("%w: Node.js may be hanging or unresponsive", ErrRuntimeTimeout)
	default:
		return "", fmt.Errorf("%w: is Node.js installed and in PATH? %s", ErrRuntimeSpawn, res.SpawnErr)
	}
}

// PackageManager resolves the project's package manager and its version.
// Resolution order: explicit manifest packageManager field, then
// manager-specific lockfile presence, then npm as the default.
func (p *Prober) PackageManager(ctx context.Context, dir string) (name, version string, err error) {
	if m, status, _ := manifest.Load(dir); status == manifest.StatusValid && m.PackageManager != "" {
		// Format: "pnpm@8.15.1"; split on the first @.
		if n, v, found := strings.Cut(m.PackageManager, "@"); found && n != "" {
			return n, v, nil
		}
	}

	for _, candidate := range []string{"pnpm", "yarn", "bun"} {
		path := dir + "/" + lockfile.ForManager(candidate)
		if _, statErr := os.Stat(path); statErr == nil {
			v, verr := p.toolVersion(ctx, dir, candidate)
			if verr != nil {
				return "", "", verr
			}
			return candidate, v, nil
		}
	}

	v, verr := p.toolVersion(ctx, dir, "npm")
	if verr != nil {
		return "", "", verr
	}
	return "npm", v, nil
}

func (p *Prober) toolVersion(ctx context.Context, dir, tool string) (string, error) {
	res := p.runner.Run(ctx, dir, tool, []string{"--version"}, execx.ShortTimeout)

	switch res.Status {
	case execx.StatusSuccess:
		version := strings.TrimSpace(res.Stdout)
		if version == "" {
			return "", fmt.Errorf("%s --version returned empty output", tool)
		}
		return version, nil
	case execx.StatusFailed:
		return "", fmt.Errorf("%s --version failed: %s", tool, strings.TrimSpace(res.Stderr))
	case execx.StatusTimedOut:
		return "", fmt.Errorf("%s --version timed out - %s may be hanging or unresponsive", tool, tool)
	default:
		return "", fmt.Errorf("failed to execute %s --version: is %s installed? %s", tool, tool, res.SpawnErr)
	}
}

// DetectVersionManager identifies the Node version manager, cheapest
// signal first: environment variables require no spawn, resolving the node
// binary path does.
func (p *Prober) DetectVersionManager(ctx context.Context, dir string) VersionManager {
	if _, ok := p.lookupEnv("VOLTA_HOME"); ok {
		if p.runner.Run(ctx, dir, "volta", []string{"which", "node"}, execx.ShortTimeout).Success() {
			return ManagerVolta
		}
	}

	if _, ok := p.lookupEnv("FNM_MULTISHELL_PATH"); ok {
		return ManagerFnm
	}
	if _, ok := p.lookupEnv("FNM_DIR"); ok {
		return ManagerFnm
	}
	if _, ok := p.lookupEnv("NVM_DIR"); ok {
		return ManagerNvm
	}

	if res := p.runner.Run(ctx, dir, "which", []string{"node"}, execx.ShortTimeout); res.Success() {
		path := strings.ToLower(res.Stdout)
		switch {
		case strings.Contains(path, "volta"):
			return ManagerVolta
		case strings.Contains(path, "fnm"):
			return ManagerFnm
		case strings.Contains(path, "nvm"):
			return ManagerNvm
		}
	}

	if p.runner.Run(ctx, dir, "node", []string{"--version"}, execx.ShortTimeout).Success() {
		return ManagerSystem
	}

	return ManagerUnknown
}

// CorepackEnabled reports corepack status: nil when corepack is not
// available (or timed out), true when available with a pinned package
// manager in the manifest, false when available but unpinned.
func (p *Prober) CorepackEnabled(ctx context.Context, dir string) *bool {
	res := p.runner.Run(ctx, dir, "corepack", []string{"--version"}, execx.ShortTimeout)
	if !res.Success() {
		return nil
	}

	enabled := false
	if m, status, _ := manifest.Load(dir); status == manifest.StatusValid && m.PackageManager != "" {
		enabled = true
	}
	return &enabled
}

// Detect gathers all toolchain facts for a project.
func (p *Prober) Detect(ctx context.Context, dir string) (ToolchainFacts, error) {
	nodeVersion, err := p.NodeVersion(ctx, dir)
	if err != nil {
		return ToolchainFacts{}, err
	}

	pm, pmVersion, err := p.PackageManager(ctx, dir)
	if err != nil {
		return ToolchainFacts{}, fmt.Errorf("failed to detect package manager: %w", err)
	}

	return ToolchainFacts{
		NodeVersion:           nodeVersion,
		PackageManager:        pm,
		PackageManagerVersion: pmVersion,
		VersionManager:        p.DetectVersionManager(ctx, dir),
		CorepackEnabled:       p.CorepackEnabled(ctx, dir),
	}, nil
}
