package checks

import (
	"context"
	"fmt"

	"envdrift/internal/execx"
	"envdrift/internal/manifest"
	"envdrift/internal/semver"
	"envdrift/internal/snapshot"
)

const categoryToolchain = "toolchain"

func (s *Suite) toolchainChecks(ctx context.Context, dir string, env Environment, snap *snapshot.Snapshot, m *manifest.Manifest) []Finding {
	var findings []Finding

	if env.NodeVersion == "" {
		findings = append(findings, errorf(NameNodeAccessible, categoryToolchain, "Node.js not found in PATH").
			withFix("Install Node.js or check your PATH"))
	} else {
		findings = append(findings, pass(NameNodeAccessible, categoryToolchain))
	}

	findings = append(findings, s.packageManagerAccessible(ctx, dir, env.PackageManager))

	if snap != nil {
		if env.NodeVersion != snap.Toolchain.Node {
			findings = append(findings, errorf(NameNodeVersionMatch, categoryToolchain,
				fmt.Sprintf("Expected %s but found %s", snap.Toolchain.Node, env.NodeVersion)).
				withFix(fmt.Sprintf("nvm use %s or volta pin node@%s", snap.Toolchain.Node, snap.Toolchain.Node)))
		} else {
			findings = append(findings, pass(NameNodeVersionMatch, categoryToolchain))
		}

		if env.PackageManager != snap.Toolchain.PackageManager {
			findings = append(findings, errorf(NamePackageManagerMatch, categoryToolchain,
				fmt.Sprintf("Expected %s but found %s", snap.Toolchain.PackageManager, env.PackageManager)).
				withFix(fmt.Sprintf("Use %s instead", snap.Toolchain.PackageManager)))
		} else {
			findings = append(findings, pass(NamePackageManagerMatch, categoryToolchain))
		}

		if env.PackageManagerVersion != snap.Toolchain.PackageManagerVersion {
			findings = append(findings, warning(NamePackageManagerVersion, categoryToolchain,
				fmt.Sprintf("Expected %s but found %s", snap.Toolchain.PackageManagerVersion, env.PackageManagerVersion)))
		} else {
			findings = append(findings, pass(NamePackageManagerVersion, categoryToolchain))
		}
	}

	findings = append(findings, s.corepackStatus(ctx, dir, m))

	if f, ok := enginesCompliance(env.NodeVersion, m); ok {
		findings = append(findings, f)
	}

	return findings
}

func (s *Suite) packageManagerAccessible(ctx context.Context, dir, pm string) Finding {
	name := pm + " accessible"
	res := s.runner.Run(ctx, dir, pm, []string{"--version"}, execx.ShortTimeout)
	switch res.Status {
	case execx.StatusSuccess:
		return pass(name, categoryToolchain)
	case execx.StatusFailed:
		return errorf(name, categoryToolchain, pm+" command failed").
			withFix("Install " + pm + " or check your PATH")
	case execx.StatusTimedOut:
		return errorf(name, categoryToolchain, pm+" command timed out - may be hanging or unresponsive").
			withFix("Check if " + pm + " is working correctly")
	default:
		return errorf(name, categoryToolchain, pm+" not found in PATH").
			withFix("Install " + pm + " or check your PATH")
	}
}

func (s *Suite) corepackStatus(ctx context.Context, dir string, m *manifest.Manifest) Finding {
	res := s.runner.Run(ctx, dir, "corepack", []string{"--version"}, execx.ShortTimeout)
	switch res.Status {
	case execx.StatusSuccess:
		if m != nil && m.PackageManager != "" {
			return pass(NameCorepackEnabled, categoryToolchain)
		}
		return warning(NameCorepackAvailable, categoryToolchain,
			"Corepack is available but packageManager field not set").
			withFix(`Add "packageManager": "<pm>@<version>" to package.json`)
	case execx.StatusTimedOut:
		return warning(NameCorepackAvailable, categoryToolchain,
			"Corepack command timed out - skipping corepack check")
	default:
		return warning(NameCorepackAvailable, categoryToolchain,
			"Corepack is not available (comes with Node.js 14.19+)").
			withFix("Upgrade to Node.js 14.19+ or run `npm install -g corepack`")
	}
}

// enginesCompliance checks the live runtime against the manifest's
// engines.node constraint. Unrecognized constraint syntax degrades to an
// advisory, never a silent pass or a hard failure.
func enginesCompliance(nodeVersion string, m *manifest.Manifest) (Finding, bool) {
	if m == nil {
		return Finding{}, false
	}
	constraint, ok := m.Engines["node"]
	if !ok || constraint == "" {
		return Finding{}, false
	}

	if _, parsed := semver.Parse(nodeVersion); !parsed {
		return warning(NameEnginesCompliance, categoryToolchain,
			fmt.Sprintf("Cannot parse Node version %q for constraint checking", nodeVersion)), true
	}

	satisfied, recognized := semver.Satisfies(nodeVersion, constraint)
	switch {
	case !recognized:
		return warning(NameEnginesCompliance, categoryToolchain,
			fmt.Sprintf("Unrecognized constraint format %q, skipping check", constraint)), true
	case satisfied:
		return pass(NameEnginesCompliance, categoryToolchain), true
	default:
		return errorf(NameEnginesCompliance, categoryToolchain,
			fmt.Sprintf("Node %s does not satisfy engines.node constraint: %s", nodeVersion, constraint)).
			withFix(fmt.Sprintf("Install a Node version matching %s", constraint)), true
	}
}
