package checks

import (
	"context"
	"fmt"
	"strings"

	"envdrift/internal/config"
	"envdrift/internal/execx"
	"envdrift/internal/hash"
	"envdrift/internal/lockfile"
	"envdrift/internal/manifest"
	"envdrift/internal/probe"
	"envdrift/internal/snapshot"
)

// Environment captures the live facts the checks compare against.
type Environment struct {
	NodeVersion           string
	PackageManager        string
	PackageManagerVersion string
	LockfileKind          string
	LockfileHash          string
}

// Suite runs the environment checks. Checks are sequential and
// independent; a failure inside one never aborts its siblings.
type Suite struct {
	runner execx.Runner
	hasher hash.Hasher
	prober *probe.Prober
}

// NewSuite creates a Suite.
func NewSuite(runner execx.Runner, hasher hash.Hasher, prober *probe.Prober) *Suite {
	return &Suite{runner: runner, hasher: hasher, prober: prober}
}

// DetectEnvironment gathers the live facts checks run against. Runtime
// detection failure is fatal; a missing lockfile is not.
func (s *Suite) DetectEnvironment(ctx context.Context, dir string) (Environment, error) {
	nodeVersion, err := s.prober.NodeVersion(ctx, dir)
	if err != nil {
		return Environment{}, err
	}
	pm, pmVersion, err := s.prober.PackageManager(ctx, dir)
	if err != nil {
		return Environment{}, fmt.Errorf("failed to detect package manager: %w", err)
	}

	env := Environment{
		NodeVersion:           nodeVersion,
		PackageManager:        pm,
		PackageManagerVersion: pmVersion,
	}
	if det, err := lockfile.Detect(dir, s.hasher); err == nil && det.Primary != nil {
		env.LockfileKind = det.Primary.Manager
		env.LockfileHash = det.Hash
	}
	return env, nil
}

// RunAll validates the manifest, then runs the selected check categories
// and applies the configuration filter. An unreadable manifest yields a
// single fatal finding; a runtime-detection failure is returned as an
// error since no comparison is possible without it.
func (s *Suite) RunAll(ctx context.Context, dir string, snap *snapshot.Snapshot, category Category, cfg *config.Config) ([]Finding, error) {
	var findings []Finding

	m, status, detail := manifest.Load(dir)
	switch status {
	case manifest.StatusMissing:
		f := errorf(NameManifestExists, "project", "No package.json found in "+dir).
			withFix("Run `npm init` or `yarn init` to create package.json")
		return applyConfig([]Finding{f}, cfg), nil
	case manifest.StatusInvalid:
		f := errorf(NameManifestValid, "project", "package.json is invalid JSON: "+detail).
			withFix("Fix the JSON syntax in package.json")
		return applyConfig([]Finding{f}, cfg), nil
	case manifest.StatusUnreadable:
		f := errorf(NameManifestReadable, "project", "Cannot read package.json: "+detail).
			withFix("Check file permissions: chmod 644 package.json")
		return applyConfig([]Finding{f}, cfg), nil
	}
	findings = append(findings, pass(NameManifestValid, "project"))

	if ws := manifest.DetectWorkspace(dir); ws != nil {
		findings = append(findings, info(NameWorkspace, "project", "Running in "+ws.Describe()+" context"))
	}

	env, err := s.DetectEnvironment(ctx, dir)
	if err != nil {
		return nil, err
	}

	if category == CategoryAll || category == CategoryToolchain {
		findings = append(findings, s.toolchainChecks(ctx, dir, env, snap, m)...)
	}
	if category == CategoryAll || category == CategoryLockfile {
		findings = append(findings, s.lockfileChecks(dir, env, snap)...)
	}
	if category == CategoryAll || category == CategoryDeps {
		findings = append(findings, s.dependencyChecks(ctx, dir, m)...)
	}
	if category == CategoryAll || category == CategoryFrameworks {
		findings = append(findings, s.frameworkChecks(dir, env, m)...)
	}

	return applyConfig(findings, cfg), nil
}

// applyConfig drops disabled findings, drops framework findings whose
// toggle is off, and remaps overridden severities. It never changes what
// a check computed, only what survives.
func applyConfig(findings []Finding, cfg *config.Config) []Finding {
	if cfg == nil {
		return findings
	}

	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if cfg.IsCheckDisabled(f.Name) {
			continue
		}
		if suppressedByToggle(f, cfg) {
			continue
		}
		if override := cfg.SeverityOverride(f.Name); override != "" {
			if sev, ok := ParseSeverity(override); ok {
				f.Severity = sev
			}
		}
		out = append(out, f)
	}
	return out
}

func suppressedByToggle(f Finding, cfg *config.Config) bool {
	switch {
	case f.Name == NameReactDOMMatch:
		return !cfg.Frameworks.React.EnforceVersionMatch
	case f.Name == NameTypeScriptConfig:
		return !cfg.Frameworks.TypeScript.RequireTsconfig
	case strings.HasPrefix(f.Name, "Next.js cache"):
		return !cfg.Frameworks.Nextjs.CheckCacheIntegrity
	}
	return false
}
