package repair

import (
	"fmt"
	"strings"

	"envdrift/internal/checks"
)

// Action is one concrete remediation. Safe actions are idempotent and
// low risk; the rest need review before running.
type Action struct {
	Description string `json:"description"`
	Command     string `json:"command"`
	Safe        bool   `json:"is_safe"`
}

// Plan maps findings to actions. Each finding name yields at most one
// action; findings with no table entry but a suggested fix become a
// needs-review action carrying the fix verbatim. The result is
// partitioned safe-first, preserving the findings' relative order within
// each partition.
func Plan(findings []checks.Finding, ctx Context) []Action {
	var safe, review []Action
	for _, finding := range findings {
		action, ok := actionFor(finding, ctx)
		if !ok {
			continue
		}
		if action.Safe {
			safe = append(safe, action)
		} else {
			review = append(review, action)
		}
	}
	return append(safe, review...)
}

func actionFor(finding checks.Finding, ctx Context) (Action, bool) {
	switch finding.Name {
	case checks.NameNodeVersionMatch:
		target := extractExpectedVersion(finding.Message)
		if target == "" {
			target = ctx.TargetNodeVersion
		}
		if target == "" {
			target = "<version>"
		}
		return Action{
			Description: fmt.Sprintf("Switch Node.js to version %s", target),
			Command:     ctx.NodeSwitchCommand(target),
			Safe:        true,
		}, true

	case checks.NameEnginesCompliance:
		target := extractConstraintVersion(finding.Message)
		if target == "" {
			target = ctx.TargetNodeVersion
		}
		if target == "" {
			target = "<version>"
		}
		return Action{
			Description: fmt.Sprintf("Switch Node.js to version %s to satisfy engines.node", target),
			Command:     ctx.NodeSwitchCommand(target),
			Safe:        true,
		}, true

	case checks.NamePackageManagerMatch:
		command := finding.SuggestedFix
		if command == "" {
			command = fmt.Sprintf("Use %s instead", ctx.PackageManager)
		}
		return Action{
			Description: "Use correct package manager",
			Command:     command,
			Safe:        true,
		}, true

	case checks.NameNodeModulesExists:
		return Action{
			Description: fmt.Sprintf("Install dependencies using %s", ctx.PackageManager),
			Command:     ctx.InstallCommand(),
			Safe:        true,
		}, true

	case checks.NameNodeModulesSync:
		return Action{
			Description: fmt.Sprintf("Reinstall dependencies using %s", ctx.PackageManager),
			Command:     "rm -rf node_modules && " + ctx.InstallCommand(),
			Safe:        true,
		}, true

	case checks.NameLockfileExists:
		// Generating a lockfile rewrites resolution from scratch.
		return Action{
			Description: fmt.Sprintf("Generate lockfile using %s", ctx.PackageManager),
			Command:     ctx.InstallCommandUnfrozen(),
			Safe:        false,
		}, true

	case checks.NameLockfileHashMatch:
		return Action{
			Description: "Update env.lock to match current lockfile",
			Command:     "envdrift lock",
			Safe:        true,
		}, true

	case checks.NameLockfileCorrupted:
		return Action{
			Description: fmt.Sprintf("Regenerate corrupted lockfile using %s", ctx.PackageManager),
			Command:     fmt.Sprintf("rm -f %s && %s", ctx.LockfileName(), ctx.InstallCommandUnfrozen()),
			Safe:        false,
		}, true

	case checks.NameSingleLockfile:
		return Action{
			Description: "Remove duplicate lockfiles",
			Command:     "Review and remove unused lockfile manually",
			Safe:        false,
		}, true

	case checks.NameTypeScriptConfig:
		return Action{
			Description: "Initialize TypeScript config",
			Command:     ctx.ExecCommand("tsc --init"),
			Safe:        true,
		}, true

	case checks.NameESLintConfig:
		return Action{
			Description: "Initialize ESLint config",
			Command:     ctx.CreateCommand("@eslint/config"),
			Safe:        false,
		}, true

	case checks.NameCorepackAvailable, checks.NameCorepackEnabled:
		return Action{
			Description: "Enable Corepack",
			Command:     "corepack enable",
			Safe:        true,
		}, true

	case checks.NamePrettierConfig:
		return Action{
			Description: "Create Prettier config",
			Command:     "echo '{}' > .prettierrc",
			Safe:        true,
		}, true

	case checks.NamePeerDependencies, checks.NamePeerConflict:
		return Action{
			Description: "Install missing peer dependencies",
			Command:     ctx.InstallCommandUnfrozen(),
			Safe:        true,
		}, true

	case checks.NameNpmCacheIntegrity:
		description, command, safe := ctx.ClearCacheCommand()
		return Action{Description: description, Command: command, Safe: safe}, true

	case checks.NameNodeAccessible:
		target := ctx.TargetNodeVersion
		description := "Install Node.js (LTS)"
		if target != "" {
			description = "Install Node.js " + target
		}
		return Action{
			Description: description,
			Command:     ctx.NodeInstallCommand(target),
			Safe:        false,
		}, true
	}

	if pm, ok := strings.CutSuffix(finding.Name, " accessible"); ok {
		var command string
		switch pm {
		case "yarn":
			command = "corepack enable && corepack prepare yarn@stable --activate"
		case "pnpm":
			command = "corepack enable && corepack prepare pnpm@latest --activate"
		case "bun":
			command = "npm install -g bun"
		default:
			command = "npm is included with Node.js - reinstall Node.js"
		}
		// Global tool installs always need review.
		return Action{
			Description: fmt.Sprintf("Install %s package manager", pm),
			Command:     command,
			Safe:        false,
		}, true
	}

	if finding.SuggestedFix != "" {
		return Action{
			Description: finding.Name,
			Command:     finding.SuggestedFix,
			Safe:        false,
		}, true
	}
	return Action{}, false
}

// extractExpectedVersion pulls the target from drift messages shaped
// "Expected X but found Y".
func extractExpectedVersion(message string) string {
	rest, ok := strings.CutPrefix(message, "Expected ")
	if !ok {
		return ""
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// extractConstraintVersion pulls a concrete version out of an engines
// message shaped "... constraint: >=18.17.0". Only the first OR branch is
// considered; operator prefixes are stripped.
func extractConstraintVersion(message string) string {
	idx := strings.Index(message, "constraint: ")
	if idx < 0 {
		return ""
	}
	constraint := strings.TrimSpace(message[idx+len("constraint: "):])
	fields := strings.Fields(strings.Split(constraint, "||")[0])
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimLeft(fields[0], ">=<^~")
}
