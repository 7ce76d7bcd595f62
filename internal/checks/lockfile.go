package checks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"envdrift/internal/lockfile"
	"envdrift/internal/snapshot"
)

const categoryLockfile = "lockfile"

func (s *Suite) lockfileChecks(dir string, env Environment, snap *snapshot.Snapshot) []Finding {
	var findings []Finding

	det, err := lockfile.Detect(dir, s.hasher)
	if err != nil || det.Primary == nil {
		findings = append(findings, errorf(NameLockfileExists, categoryLockfile,
			"No lockfile found for "+env.PackageManager).
			withFix(fmt.Sprintf("Run `%s install` to generate a lockfile", env.PackageManager)))
		return findings
	}
	findings = append(findings, pass(NameLockfileExists, categoryLockfile))

	if len(det.All) > 1 {
		var names []string
		for _, k := range det.All {
			names = append(names, k.File)
		}
		findings = append(findings, warning(NameSingleLockfile, categoryLockfile,
			"Multiple lockfiles found: "+strings.Join(names, ", ")).
			withFix("Review and remove unused lockfile manually"))
	} else {
		findings = append(findings, pass(NameSingleLockfile, categoryLockfile))
	}

	if f, ok := lockfileParses(dir, det.Primary); ok {
		findings = append(findings, f)
	}

	if snap != nil && snap.Lockfile != nil {
		if env.LockfileHash != snap.Lockfile.Hash {
			findings = append(findings, errorf(NameLockfileHashMatch, categoryLockfile,
				"Lockfile has changed since env.lock was generated").
				withFix("Run `envdrift lock` to update env.lock, or restore the lockfile"))
		} else {
			findings = append(findings, pass(NameLockfileHashMatch, categoryLockfile))
		}
	}

	return findings
}

// lockfileParses sanity-checks the primary lockfile's syntax. Binary and
// line-oriented formats have no cheap validation and are skipped.
func lockfileParses(dir string, kind *lockfile.Kind) (Finding, bool) {
	path := filepath.Join(dir, kind.File)
	data, err := os.ReadFile(path)
	if err != nil {
		return warning(NameLockfileCorrupted, categoryLockfile,
			"Cannot read "+kind.File), true
	}

	switch kind.File {
	case "package-lock.json":
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return errorf(NameLockfileCorrupted, categoryLockfile,
				kind.File+" is not valid JSON").
				withFix("Regenerate the lockfile with your package manager"), true
		}
	case "pnpm-lock.yaml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return errorf(NameLockfileCorrupted, categoryLockfile,
				kind.File+" is not valid YAML").
				withFix("Regenerate the lockfile with your package manager"), true
		}
	default:
		return Finding{}, false
	}
	return pass(NameLockfileCorrupted, categoryLockfile), true
}
