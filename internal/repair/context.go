// Package repair translates findings into safety-classified shell actions
// and executes them with tolerance for benign non-zero exits.
package repair

import (
	"fmt"

	"envdrift/internal/lockfile"
	"envdrift/internal/probe"
)

// Context carries the facts commands depend on: which package manager
// installs, which version manager switches runtimes, and the runtime
// version a switch should land on.
type Context struct {
	PackageManager    string
	VersionManager    probe.VersionManager
	TargetNodeVersion string
	OS                string // GOOS, used for install fallbacks
}

// NewContext creates a Context for a package manager.
func NewContext(packageManager string) Context {
	return Context{PackageManager: packageManager}
}

// InstallCommand returns the frozen-lockfile install for the package
// manager: installs exactly what the lockfile pins.
func (c Context) InstallCommand() string {
	switch c.PackageManager {
	case "pnpm":
		return "pnpm install --frozen-lockfile"
	case "yarn":
		return "yarn install --frozen-lockfile"
	case "bun":
		return "bun install --frozen-lockfile"
	default:
		return "npm ci"
	}
}

// InstallCommandUnfrozen returns the plain install, used when the
// lockfile itself must be (re)generated.
func (c Context) InstallCommandUnfrozen() string {
	switch c.PackageManager {
	case "pnpm":
		return "pnpm install"
	case "yarn":
		return "yarn install"
	case "bun":
		return "bun install"
	default:
		return "npm install"
	}
}

// NodeSwitchCommand returns the runtime-switch command for the detected
// version manager. With no manager detected it proposes nvm and names
// the alternatives, since guessing one outright would mislead.
func (c Context) NodeSwitchCommand(version string) string {
	switch c.VersionManager {
	case probe.ManagerVolta:
		return fmt.Sprintf("volta pin node@%s", version)
	case probe.ManagerFnm:
		return fmt.Sprintf("fnm use %s", version)
	case probe.ManagerNvm:
		return fmt.Sprintf("nvm use %s", version)
	default:
		return fmt.Sprintf("nvm use %s (or volta pin node@%s / fnm use %s)", version, version, version)
	}
}

// ClearCacheCommand returns the cache-clear command for the package
// manager. The second result is false when the command needs manual
// review before running.
func (c Context) ClearCacheCommand() (description, command string, safe bool) {
	switch c.PackageManager {
	case "pnpm":
		return "Clear pnpm cache", "pnpm store prune", true
	case "yarn":
		return "Clear yarn cache", "yarn cache clean", true
	case "bun":
		return "Clear bun cache (manual)", "rm -rf ~/.bun/install/cache", false
	default:
		return "Clear npm cache", "npm cache clean --force", true
	}
}

// LockfileName returns the lockfile the package manager owns.
func (c Context) LockfileName() string {
	return lockfile.ForManager(c.PackageManager)
}

// ExecCommand prefixes a package runner invocation for the package
// manager (npx, pnpm exec, yarn, bun x).
func (c Context) ExecCommand(tool string) string {
	switch c.PackageManager {
	case "pnpm":
		return "pnpm exec " + tool
	case "yarn":
		return "yarn " + tool
	case "bun":
		return "bun x " + tool
	default:
		return "npx " + tool
	}
}

// CreateCommand returns the scaffold invocation for an initializer
// package like @eslint/config.
func (c Context) CreateCommand(pkg string) string {
	switch c.PackageManager {
	case "pnpm":
		return "pnpm create " + pkg
	case "yarn":
		return "yarn create " + pkg
	case "bun":
		return "bun create " + pkg
	default:
		return "npm init " + pkg
	}
}

// NodeInstallCommand returns an install command for a missing runtime,
// preferring the detected version manager, then an OS package manager.
func (c Context) NodeInstallCommand(targetVersion string) string {
	if targetVersion == "" {
		targetVersion = "--lts"
	}
	switch c.VersionManager {
	case probe.ManagerVolta:
		return fmt.Sprintf("volta install node@%s", targetVersion)
	case probe.ManagerFnm:
		return fmt.Sprintf("fnm install %s", targetVersion)
	case probe.ManagerNvm:
		return fmt.Sprintf("nvm install %s", targetVersion)
	}

	major := majorOf(targetVersion)
	switch c.OS {
	case "windows":
		return "winget install OpenJS.NodeJS.LTS"
	case "darwin":
		return fmt.Sprintf("brew install node@%s", major)
	default:
		return fmt.Sprintf("curl -fsSL https://deb.nodesource.com/setup_%s.x | sudo -E bash - && sudo apt-get install -y nodejs", major)
	}
}

func majorOf(version string) string {
	for i := 0; i < len(version); i++ {
		if version[i] == '.' {
			return version[:i]
		}
	}
	if version == "" || version == "--lts" {
		return "20"
	}
	return version
}
