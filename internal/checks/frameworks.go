package checks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"envdrift/internal/manifest"
	"envdrift/internal/semver"
)

const categoryFrameworks = "frameworks"

var eslintConfigFiles = []string{
	".eslintrc",
	".eslintrc.js",
	".eslintrc.json",
	".eslintrc.yml",
	"eslint.config.js",
}

var prettierConfigFiles = []string{
	".prettierrc",
	".prettierrc.js",
	".prettierrc.cjs",
	".prettierrc.mjs",
	".prettierrc.json",
	".prettierrc.yml",
	".prettierrc.yaml",
	".prettierrc.toml",
	"prettier.config.js",
	"prettier.config.cjs",
	"prettier.config.mjs",
}

func (s *Suite) frameworkChecks(dir string, env Environment, m *manifest.Manifest) []Finding {
	if m == nil {
		return nil
	}
	var findings []Finding

	react, hasReact := m.DeclaredVersion("react")
	reactDOM, hasReactDOM := m.DeclaredVersion("react-dom")
	if hasReact && hasReactDOM {
		if majorOf(react) != majorOf(reactDOM) {
			findings = append(findings, errorf(NameReactDOMMatch, categoryFrameworks,
				fmt.Sprintf("react@%s and react-dom@%s major versions don't match", react, reactDOM)).
				withFix("Ensure react and react-dom have the same major version"))
		} else {
			findings = append(findings, pass(NameReactDOMMatch, categoryFrameworks))
		}
	}

	if next, ok := m.DeclaredVersion("next"); ok {
		findings = append(findings, packageNodeCompat(dir, "next", next, env.NodeVersion, NameNextNodeCompat))
		findings = append(findings, nextCacheChecks(dir)...)
	}

	if ts, ok := m.DeclaredVersion("typescript"); ok {
		if _, err := os.Stat(filepath.Join(dir, "tsconfig.json")); err != nil {
			findings = append(findings, warning(NameTypeScriptConfig, categoryFrameworks,
				"TypeScript is installed but tsconfig.json not found").
				withFix("Run `npx tsc --init` to create tsconfig.json"))
		} else {
			findings = append(findings, pass(NameTypeScriptConfig, categoryFrameworks))
		}
		findings = append(findings, packageNodeCompat(dir, "typescript", ts, env.NodeVersion, NameTSNodeCompat))
	}

	if _, ok := m.DeclaredVersion("eslint"); ok {
		if hasAnyFile(dir, eslintConfigFiles) || m.HasKey("eslintConfig") {
			findings = append(findings, pass(NameESLintConfig, categoryFrameworks))
		} else {
			findings = append(findings, warning(NameESLintConfig, categoryFrameworks,
				"ESLint is installed but no config found").
				withFix("Run `npx eslint --init` to create config"))
		}
	}

	if _, ok := m.DeclaredVersion("prettier"); ok {
		if hasAnyFile(dir, prettierConfigFiles) || m.HasKey("prettier") {
			findings = append(findings, pass(NamePrettierConfig, categoryFrameworks))
		} else {
			findings = append(findings, warning(NamePrettierConfig, categoryFrameworks,
				"Prettier is installed but no config found").
				withFix("Create a .prettierrc file with your formatting preferences"))
		}
	}

	findings = append(findings, buildCacheChecks(dir)...)

	return findings
}

func majorOf(version string) string {
	version = strings.TrimLeft(version, "^~>=<v ")
	return strings.SplitN(version, ".", 2)[0]
}

func hasAnyFile(dir string, names []string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// packageNodeCompat reads the installed package's own engines.node
// constraint from node_modules, so the requirement tracks whatever
// version is actually installed instead of a hardcoded table.
func packageNodeCompat(dir, pkg, declaredVersion, nodeVersion, checkName string) Finding {
	installed := manifest.LoadPackage(dir, pkg)
	if installed == nil {
		return pass(checkName, categoryFrameworks)
	}
	constraint, ok := installed.Engines["node"]
	if !ok || constraint == "" {
		return pass(checkName, categoryFrameworks)
	}

	minMajor, minMinor, ok := semver.MinimumOf(constraint)
	if !ok {
		return pass(checkName, categoryFrameworks)
	}

	v, parsed := semver.Parse(nodeVersion)
	meets := parsed && (v.Major > minMajor || (v.Major == minMajor && v.Minor >= minMinor))
	if meets {
		return pass(checkName, categoryFrameworks)
	}
	return errorf(checkName, categoryFrameworks,
		fmt.Sprintf("%s %s requires Node.js %s, but found %s", pkg, declaredVersion, constraint, nodeVersion)).
		withFix(fmt.Sprintf("Upgrade Node.js to version %d.%d+", minMajor, minMinor))
}

// nextCacheChecks validates the .next build cache. A missing cache is
// fine; a cache without a build manifest means an interrupted build.
func nextCacheChecks(dir string) []Finding {
	nextDir := filepath.Join(dir, ".next")
	if _, err := os.Stat(nextDir); err != nil {
		return nil
	}

	buildManifest := filepath.Join(nextDir, "build-manifest.json")
	data, err := os.ReadFile(buildManifest)
	if err != nil {
		if os.IsNotExist(err) {
			if _, cerr := os.Stat(filepath.Join(nextDir, "cache")); cerr == nil {
				return []Finding{warning("Next.js cache incomplete", categoryFrameworks,
					".next cache exists but no build manifest found").
					withFix("Run `npm run build` to complete the build")}
			}
			return nil
		}
		return []Finding{warning("Next.js cache unreadable", categoryFrameworks,
			"Cannot read build-manifest.json").
			withFix("Run `rm -rf .next && npm run build` to rebuild")}
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return []Finding{warning("Next.js cache corrupted", categoryFrameworks,
			"build-manifest.json is corrupted").
			withFix("Run `rm -rf .next && npm run build` to rebuild")}
	}
	return []Finding{pass("Next.js cache valid", categoryFrameworks)}
}

// buildCacheChecks flags empty or unreadable build output directories.
func buildCacheChecks(dir string) []Finding {
	caches := []struct {
		path string
		name string
	}{
		{".turbo", "Turbo cache"},
		{".vite", "Vite cache"},
		{"dist", "Build output"},
		{"build", "Build output"},
	}

	var findings []Finding
	for _, cache := range caches {
		path := filepath.Join(dir, cache.path)
		fi, err := os.Stat(path)
		if err != nil || !fi.IsDir() {
			continue
		}
		entries, err := os.ReadDir(path)
		switch {
		case err != nil:
			findings = append(findings, warning(cache.name+" unreadable", categoryFrameworks,
				"Cannot read "+cache.path+" directory").
				withFix("Check permissions on "+cache.path))
		case len(entries) == 0:
			findings = append(findings, warning(cache.name+" empty", categoryFrameworks,
				cache.path+" directory exists but is empty").
				withFix("Remove empty "+cache.path+" or rebuild"))
		default:
			findings = append(findings, pass(cache.name+" exists", categoryFrameworks))
		}
	}
	return findings
}
