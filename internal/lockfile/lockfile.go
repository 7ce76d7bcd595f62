// Package lockfile knows the fixed lockfile-name table per package manager
// and detects which lockfiles a project carries.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"

	"envdrift/internal/hash"
)

// Kind identifies a package manager's lockfile.
type Kind struct {
	// Manager is the package manager name (npm, yarn, pnpm, bun).
	Manager string

	// File is the lockfile name on disk.
	File string
}

// Known lockfile kinds, in detection order.
var kinds = []Kind{
	{Manager: "npm", File: "package-lock.json"},
	{Manager: "yarn", File: "yarn.lock"},
	{Manager: "pnpm", File: "pnpm-lock.yaml"},
	{Manager: "bun", File: "bun.lockb"},
}

// ForManager returns the lockfile name for a package manager, defaulting
// to npm's.
func ForManager(manager string) string {
	for _, k := range kinds {
		if k.Manager == manager {
			return k.File
		}
	}
	return "package-lock.json"
}

// Detection is the result of scanning a project for lockfiles.
type Detection struct {
	// Primary is the first lockfile found in table order, nil if none.
	Primary *Kind

	// Hash is the content hash of the primary lockfile.
	Hash string

	// All lists every lockfile present, for multiple-lockfile conflicts.
	All []Kind
}

// Detect scans dir for known lockfiles and hashes the primary one.
func Detect(dir string, hasher hash.Hasher) (*Detection, error) {
	det := &Detection{}

	for _, k := range kinds {
		path := filepath.Join(dir, k.File)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", k.File, err)
		}
		det.All = append(det.All, k)
	}

	if len(det.All) == 0 {
		return det, nil
	}

	primary := det.All[0]
	det.Primary = &primary

	h, err := hasher.HashFile(filepath.Join(dir, primary.File))
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", primary.File, err)
	}
	det.Hash = h

	return det, nil
}
