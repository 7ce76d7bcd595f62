package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"envdrift/internal/execx"
	"envdrift/internal/manifest"
)

const categoryDeps = "deps"

// maxSourceScanDepth bounds the phantom-import walk so pathological
// directory trees cannot stall a check run.
const maxSourceScanDepth = 10

// sourceDirs are the conventional locations scanned for imports.
var sourceDirs = []string{"src", "lib", "app", "pages", "components"}

// nodeBuiltins are importable without a manifest entry.
var nodeBuiltins = map[string]struct{}{
	"assert": {}, "buffer": {}, "child_process": {}, "cluster": {},
	"console": {}, "constants": {}, "crypto": {}, "dgram": {}, "dns": {},
	"domain": {}, "events": {}, "fs": {}, "http": {}, "https": {},
	"module": {}, "net": {}, "os": {}, "path": {}, "perf_hooks": {},
	"process": {}, "punycode": {}, "querystring": {}, "readline": {},
	"repl": {}, "stream": {}, "string_decoder": {}, "sys": {},
	"timers": {}, "tls": {}, "tty": {}, "url": {}, "util": {}, "v8": {},
	"vm": {}, "wasi": {}, "worker_threads": {}, "zlib": {},
}

// deprecatedPackages maps known-deprecated packages to their suggested
// replacements.
var deprecatedPackages = []struct {
	name       string
	suggestion string
}{
	{"request", "Use `node-fetch` or `axios` instead"},
	{"node-sass", "Use `sass` (Dart Sass) instead"},
	{"tslint", "Use `eslint` with `@typescript-eslint` instead"},
	{"left-pad", "Use String.prototype.padStart() instead"},
	{"moment", "Consider `date-fns` or `dayjs` for smaller bundle size"},
}

func (s *Suite) dependencyChecks(ctx context.Context, dir string, m *manifest.Manifest) []Finding {
	var findings []Finding

	nodeModules := filepath.Join(dir, "node_modules")
	if _, err := os.Stat(nodeModules); err != nil {
		if m != nil && len(m.DirectDependencies()) > 0 {
			findings = append(findings, errorf(NameNodeModulesExists, categoryDeps,
				"Dependencies are declared but node_modules does not exist").
				withFix("Run your package manager's install command"))
		}
		return findings
	}

	if f, ok := nodeModulesInSync(dir, m); ok {
		findings = append(findings, f)
	}

	if _, err := os.Stat(filepath.Join(nodeModules, ".bin")); err == nil {
		findings = append(findings, pass(NameBinariesInstalled, categoryDeps))
	}

	findings = append(findings, deprecatedPackageChecks(m)...)
	findings = append(findings, s.peerDependencyChecks(ctx, dir)...)
	findings = append(findings, s.cacheIntegrityCheck(ctx, dir)...)
	findings = append(findings, phantomDependencyChecks(dir, m))

	return findings
}

// nodeModulesInSync compares installed versions of direct dependencies
// against the versions the lockfile pins. An unreadable lockfile skips
// the check rather than failing it.
func nodeModulesInSync(dir string, m *manifest.Manifest) (Finding, bool) {
	if m == nil {
		return Finding{}, false
	}
	pinned := lockfileVersions(dir)
	if len(pinned) == 0 {
		return Finding{}, false
	}

	direct := make([]string, 0, len(m.DirectDependencies()))
	for dep := range m.DirectDependencies() {
		direct = append(direct, dep)
	}
	sort.Strings(direct)

	var mismatches []string
	for _, dep := range direct {
		expected, ok := pinned[dep]
		if !ok {
			continue
		}
		installed := manifest.LoadPackage(dir, dep)
		if installed == nil || installed.Version == "" {
			continue
		}
		if installed.Version != expected {
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %s but found %s", dep, expected, installed.Version))
		}
	}

	if len(mismatches) == 0 {
		return pass(NameNodeModulesSync, categoryDeps), true
	}

	msg := "Version mismatches: " + strings.Join(mismatches, "; ")
	if len(mismatches) > 2 {
		msg = fmt.Sprintf("Version mismatches: %s; and %d more",
			strings.Join(mismatches[:2], "; "), len(mismatches)-2)
	}
	return errorf(NameNodeModulesSync, categoryDeps, msg).
		withFix("Run `npm ci` or `pnpm install --frozen-lockfile` to reinstall"), true
}

// lockfileVersions reads top-level package pins from the npm or pnpm
// lockfile. yarn and bun formats are not parsed here.
func lockfileVersions(dir string) map[string]string {
	versions := make(map[string]string)

	if data, err := os.ReadFile(filepath.Join(dir, "package-lock.json")); err == nil {
		var lock struct {
			Packages map[string]struct {
				Version string `json:"version"`
			} `json:"packages"`
			Dependencies map[string]struct {
				Version string `json:"version"`
			} `json:"dependencies"`
		}
		if err := json.Unmarshal(data, &lock); err != nil {
			return versions
		}
		if len(lock.Packages) > 0 {
			// v2/v3 layout: keys are node_modules/<name>, nested entries
			// carry a second node_modules segment.
			for key, entry := range lock.Packages {
				rest, ok := strings.CutPrefix(key, "node_modules/")
				if !ok || strings.Contains(rest, "/node_modules/") {
					continue
				}
				if name, ok := topLevelPackageName(rest); ok && entry.Version != "" {
					versions[name] = entry.Version
				}
			}
		} else {
			for name, entry := range lock.Dependencies {
				if entry.Version != "" {
					versions[name] = entry.Version
				}
			}
		}
		return versions
	}

	if data, err := os.ReadFile(filepath.Join(dir, "pnpm-lock.yaml")); err == nil {
		var lock struct {
			Packages map[string]struct {
				Version string `yaml:"version"`
			} `yaml:"packages"`
		}
		if err := yaml.Unmarshal(data, &lock); err != nil {
			return versions
		}
		for key, entry := range lock.Packages {
			name, version, ok := splitPnpmPackageRef(strings.TrimPrefix(key, "/"))
			if !ok {
				continue
			}
			if entry.Version != "" {
				version = entry.Version
			}
			versions[name] = version
		}
	}

	return versions
}

// topLevelPackageName reduces a lockfile path fragment to a package name,
// keeping the scope segment for scoped packages.
func topLevelPackageName(fragment string) (string, bool) {
	parts := strings.SplitN(fragment, "/", 3)
	if strings.HasPrefix(fragment, "@") {
		if len(parts) < 2 {
			return "", false
		}
		return parts[0] + "/" + parts[1], true
	}
	return parts[0], parts[0] != ""
}

// splitPnpmPackageRef splits a pnpm package key like "lodash@4.17.21" or
// "@types/node@18.0.0" at its last @.
func splitPnpmPackageRef(ref string) (name, version string, ok bool) {
	lastAt := strings.LastIndex(ref, "@")
	if lastAt <= 0 {
		return "", "", false
	}
	return ref[:lastAt], ref[lastAt+1:], ref[:lastAt] != "" && ref[lastAt+1:] != ""
}

func deprecatedPackageChecks(m *manifest.Manifest) []Finding {
	if m == nil {
		return nil
	}
	var findings []Finding
	for _, dep := range deprecatedPackages {
		_, inDeps := m.Dependencies[dep.name]
		_, inDev := m.DevDependencies[dep.name]
		if inDeps || inDev {
			findings = append(findings, warning("Deprecated: "+dep.name, categoryDeps,
				fmt.Sprintf("`%s` is deprecated or has better alternatives", dep.name)).
				withFix(dep.suggestion))
		}
	}
	return findings
}

// peerDependencyChecks surfaces conflicts from the package manager's own
// tree listing. npm ls exits non-zero when the tree has problems but
// still prints usable JSON, so both outcomes are parsed.
func (s *Suite) peerDependencyChecks(ctx context.Context, dir string) []Finding {
	res := s.runner.Run(ctx, dir, "npm", []string{"ls", "--json", "--depth=1"}, execx.DefaultTimeout)

	switch res.Status {
	case execx.StatusTimedOut:
		return []Finding{warning(NamePeerDependencies, categoryDeps,
			"npm ls command timed out - skipping peer dependency check").
			withFix("Try running `npm ls` manually to check for issues")}
	case execx.StatusSpawnError:
		return nil
	}

	var tree struct {
		Problems []string `json:"problems"`
	}
	if err := json.Unmarshal([]byte(res.Stdout), &tree); err != nil {
		return []Finding{pass(NamePeerDependencies, categoryDeps)}
	}

	var peerIssues []string
	for _, p := range tree.Problems {
		if strings.Contains(p, "peer dep") || strings.Contains(p, "ERESOLVE") {
			peerIssues = append(peerIssues, p)
		}
	}
	if len(peerIssues) == 0 {
		return []Finding{pass(NamePeerDependencies, categoryDeps)}
	}

	var findings []Finding
	for i, issue := range peerIssues {
		if i == 3 {
			findings = append(findings, warning(NamePeerDependencies, categoryDeps,
				fmt.Sprintf("%d more peer dependency issues found", len(peerIssues)-3)))
			break
		}
		findings = append(findings, warning(NamePeerConflict, categoryDeps, issue).
			withFix("Run `npm install` to attempt resolution or check versions"))
	}
	return findings
}

// cacheIntegrityCheck verifies the npm cache. A failed verification
// usually means a corrupted cache that makes installs flaky. The finding
// carries no inline fix; the repair planner owns the cache-clear command.
func (s *Suite) cacheIntegrityCheck(ctx context.Context, dir string) []Finding {
	res := s.runner.Run(ctx, dir, "npm", []string{"cache", "verify"}, execx.DefaultTimeout)

	switch res.Status {
	case execx.StatusSuccess:
		return []Finding{pass(NameNpmCacheIntegrity, categoryDeps)}
	case execx.StatusFailed:
		return []Finding{warning(NameNpmCacheIntegrity, categoryDeps,
			"npm cache verification failed - the cache may be corrupted")}
	default:
		return nil
	}
}

// phantomDependencyChecks scans source files for imports of packages the
// manifest does not declare.
func phantomDependencyChecks(dir string, m *manifest.Manifest) Finding {
	declared := map[string]struct{}{}
	if m != nil {
		declared = m.DeclaredDependencies()
	}

	phantoms := make(map[string]struct{})
	for _, sub := range sourceDirs {
		scanTreeForImports(filepath.Join(dir, sub), declared, phantoms)
	}

	// Root-level scripts too, skipping config files.
	if entries, err := os.ReadDir(dir); err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !isSourceFile(name) {
				continue
			}
			if strings.Contains(name, "config") || strings.HasPrefix(name, ".") {
				continue
			}
			scanFileForImports(filepath.Join(dir, name), declared, phantoms)
		}
	}

	if len(phantoms) == 0 {
		return pass(NamePhantomDeps, categoryDeps)
	}

	list := make([]string, 0, len(phantoms))
	for p := range phantoms {
		list = append(list, p)
	}
	sort.Strings(list)

	msg := "Found phantom dependencies: " + strings.Join(list, ", ")
	if len(list) > 5 {
		msg = fmt.Sprintf("Found %d phantom dependencies: %s, and %d more",
			len(list), strings.Join(list[:5], ", "), len(list)-5)
	}
	return warning(NamePhantomDeps, categoryDeps, msg).
		withFix("Add missing dependencies to package.json or remove unused imports")
}

func isSourceFile(name string) bool {
	switch filepath.Ext(name) {
	case ".js", ".ts", ".jsx", ".tsx", ".mjs":
		return true
	}
	return false
}

func scanTreeForImports(root string, declared, phantoms map[string]struct{}) {
	rootDepth := strings.Count(root, string(filepath.Separator))

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "node_modules" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			if strings.Count(path, string(filepath.Separator))-rootDepth >= maxSourceScanDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if isSourceFile(d.Name()) {
			scanFileForImports(path, declared, phantoms)
		}
		return nil
	})
}

func scanFileForImports(path string, declared, phantoms map[string]struct{}) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "import ") || strings.Contains(line, " from ") {
			if pkg, ok := importAfter(line, " from "); ok {
				recordImport(pkg, declared, phantoms)
			}
		}
		for _, pkg := range importsAfterAll(line, "require(") {
			recordImport(pkg, declared, phantoms)
		}
		if pkg, ok := importAfter(line, "import("); ok {
			recordImport(pkg, declared, phantoms)
		}
	}
}

func importAfter(line, marker string) (string, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return "", false
	}
	return quotedString(line[idx+len(marker):])
}

func importsAfterAll(line, marker string) []string {
	var out []string
	for {
		idx := strings.Index(line, marker)
		if idx < 0 {
			return out
		}
		line = line[idx+len(marker):]
		if pkg, ok := quotedString(line); ok {
			out = append(out, pkg)
		}
	}
}

func quotedString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	quote := s[0]
	if quote != '"' && quote != '\'' && quote != '`' {
		return "", false
	}
	end := strings.IndexByte(s[1:], quote)
	if end < 0 {
		return "", false
	}
	return s[1 : 1+end], true
}

func recordImport(importPath string, declared, phantoms map[string]struct{}) {
	if importPath == "" || strings.HasPrefix(importPath, ".") || strings.HasPrefix(importPath, "/") {
		return
	}
	if strings.HasPrefix(importPath, "node:") {
		return
	}

	name := importPath
	if strings.HasPrefix(importPath, "@") {
		parts := strings.SplitN(importPath, "/", 3)
		if len(parts) >= 2 {
			name = parts[0] + "/" + parts[1]
		}
	} else {
		name = strings.SplitN(importPath, "/", 2)[0]
	}

	if _, ok := nodeBuiltins[name]; ok {
		return
	}
	if _, ok := declared[name]; !ok {
		phantoms[name] = struct{}{}
	}
}
