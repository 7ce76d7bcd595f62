package snapshot

import (
	"envdrift/internal/probe"
)

// DiffItem is one field-level comparison between the locked record and
// the live environment.
type DiffItem struct {
	Field   string `json:"field"`
	Locked  string `json:"locked"`
	Current string `json:"current"`
	Match   bool   `json:"matches"`
}

// hashDisplayLen truncates lockfile hashes for display; the full hash is
// compared, only the diff item is shortened.
const hashDisplayLen = 12

// Diff compares a locked snapshot against live toolchain facts and an
// optional current lockfile hash. Returns the field comparisons and
// whether any field drifted.
func Diff(locked *Snapshot, facts probe.ToolchainFacts, currentLockfileHash string) ([]DiffItem, bool) {
	items := []DiffItem{
		{
			Field:   "Node.js",
			Locked:  locked.Toolchain.Node,
			Current: facts.NodeVersion,
			Match:   facts.NodeVersion == locked.Toolchain.Node,
		},
		{
			Field:   "Package Manager",
			Locked:  locked.Toolchain.PackageManager,
			Current: facts.PackageManager,
			Match:   facts.PackageManager == locked.Toolchain.PackageManager,
		},
		{
			Field:   "PM Version",
			Locked:  locked.Toolchain.PackageManagerVersion,
			Current: facts.PackageManagerVersion,
			Match:   facts.PackageManagerVersion == locked.Toolchain.PackageManagerVersion,
		},
	}

	if locked.Lockfile != nil {
		current := currentLockfileHash
		if current == "" {
			current = "N/A"
		}
		items = append(items, DiffItem{
			Field:   "Lockfile Hash",
			Locked:  truncate(locked.Lockfile.Hash, hashDisplayLen),
			Current: truncate(current, hashDisplayLen),
			Match:   current == locked.Lockfile.Hash,
		})
	}

	drift := false
	for _, item := range items {
		if !item.Match {
			drift = true
			break
		}
	}
	return items, drift
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
