package snapshot

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"envdrift/internal/hash"
	"envdrift/internal/manifest"
)

// pnpmStoreLimit caps how many .pnpm store entries are enumerated so huge
// installs do not stall snapshot generation.
const pnpmStoreLimit = 1000

// DepTreeHash computes a content hash over the installed dependency tree:
// every top-level package's name@version token, plus pnpm store entries
// when present, sorted lexicographically and hashed as one stream. The
// sort makes the hash invariant under directory-listing order. Returns
// false when node_modules is absent or holds no readable packages.
func DepTreeHash(dir string, h hash.Hasher) (string, bool) {
	nodeModules := filepath.Join(dir, "node_modules")
	entries, err := os.ReadDir(nodeModules)
	if err != nil {
		return "", false
	}

	var packages []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(nodeModules, name)
		if strings.HasPrefix(name, "@") {
			scoped, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			for _, sub := range scoped {
				subPath := resolveSymlink(filepath.Join(path, sub.Name()))
				if version, ok := installedVersion(subPath); ok {
					packages = append(packages, name+"/"+sub.Name()+"@"+version)
				}
			}
			continue
		}

		if version, ok := installedVersion(resolveSymlink(path)); ok {
			packages = append(packages, name+"@"+version)
		}
	}

	// Content-addressed stores hold the full transitive set under .pnpm;
	// fold those in too so store-level changes move the hash.
	for _, pkg := range pnpmStorePackages(filepath.Join(nodeModules, ".pnpm")) {
		if !contains(packages, pkg) {
			packages = append(packages, pkg)
		}
	}

	if len(packages) == 0 {
		return "", false
	}

	sort.Strings(packages)

	var sb strings.Builder
	for _, pkg := range packages {
		sb.WriteString(pkg)
		sb.WriteByte('\n')
	}
	return "sha256:" + h.HashBytes([]byte(sb.String())), true
}

// resolveSymlink follows a symlink to its target, resolving relative
// targets against the link's parent. pnpm installs top-level packages as
// symlinks into the store.
func resolveSymlink(path string) string {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return path
	}
	target, err := os.Readlink(path)
	if err != nil {
		return path
	}
	if !filepath.IsAbs(target) {
		return filepath.Join(filepath.Dir(path), target)
	}
	return target
}

func installedVersion(packageDir string) (string, bool) {
	m, status, _ := manifest.Load(packageDir)
	if status != manifest.StatusValid || m.Version == "" {
		return "", false
	}
	return m.Version, true
}

// pnpmStorePackages reads name@version pairs from .pnpm's encoded
// directory names (lodash@4.17.21, @types+node@18.0.0).
func pnpmStorePackages(pnpmDir string) []string {
	entries, err := os.ReadDir(pnpmDir)
	if err != nil {
		return nil
	}

	var packages []string
	for i, entry := range entries {
		if i >= pnpmStoreLimit {
			break
		}
		if name, version, ok := parsePnpmDirName(entry.Name()); ok {
			packages = append(packages, name+"@"+version)
		}
	}
	return packages
}

// parsePnpmDirName splits a .pnpm directory name at its last @ and
// decodes the + used for scope separators. The version must start with a
// digit; anything else (peer-suffix dirs, dot dirs) is skipped.
func parsePnpmDirName(dirName string) (name, version string, ok bool) {
	if strings.HasPrefix(dirName, ".") || !strings.Contains(dirName, "@") {
		return "", "", false
	}

	lastAt := strings.LastIndex(dirName, "@")
	if lastAt <= 0 {
		return "", "", false
	}

	name = strings.ReplaceAll(dirName[:lastAt], "+", "/")
	version = dirName[lastAt+1:]
	if version == "" || version[0] < '0' || version[0] > '9' {
		return "", "", false
	}
	return name, version, true
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
