// Package semver implements the subset of npm version-range syntax that
// Node.js engine constraints and peer-dependency requirements use.
//
// Supported range forms: exact versions, >, >=, <, <=, caret, tilde,
// space-separated AND, ||-separated OR, and wildcards (*, x, X). Range
// checking is tri-state: a range can be satisfied, unsatisfied, or
// unrecognized, so callers can degrade an unparsable constraint to an
// advisory instead of silently passing or failing.
package semver

import (
	"strconv"
	"strings"
)

// Version is a parsed semantic version.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
}

// knownSuffixes are prerelease markers stripped by lenient parsing.
var knownSuffixes = []string{
	"-nightly", "-canary", "-alpha", "-beta", "-rc", "-pre", "-dev", "-test",
}

// Parse parses a version string leniently: a leading "v" is dropped,
// "18" and "18.2" are padded with zeros, and prerelease or build suffixes
// are recorded but do not fail the parse.
func Parse(s string) (Version, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "v"))
	if s == "" {
		return Version{}, false
	}

	var pre string
	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		pre = s[idx+1:]
		s = s[:idx]
	}
	if idx := strings.IndexByte(s, '+'); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.IndexByte(pre, '+'); idx >= 0 {
		pre = pre[:idx]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Version{}, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, false
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Prerelease: pre}, true
}

// IsPrerelease reports whether the version string carries a recognized
// prerelease suffix.
func IsPrerelease(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	idx := strings.IndexByte(s, '-')
	if idx < 0 {
		return false
	}
	suffix := strings.ToLower(s[idx:])
	for _, known := range knownSuffixes {
		if strings.HasPrefix(suffix, known) {
			return true
		}
	}
	// Any hyphen suffix on a valid numeric base counts as prerelease.
	_, ok := Parse(s[:idx])
	return ok
}

// Compare returns -1, 0, or 1 comparing a to b. A version without a
// prerelease suffix sorts above the same version with one.
func Compare(a, b Version) int {
	if c := compareInt(a.Major, b.Major); c != 0 {
		return c
	}
	if c := compareInt(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := compareInt(a.Patch, b.Patch); c != 0 {
		return c
	}
	if a.Prerelease == b.Prerelease {
		return 0
	}
	if a.Prerelease == "" {
		return 1
	}
	if b.Prerelease == "" {
		return -1
	}
	return strings.Compare(a.Prerelease, b.Prerelease)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Satisfies checks a version string against a range. The second return
// value reports whether the range was recognized; when it is false the
// first value is meaningless and callers should treat the constraint as
// unresolved rather than failed.
func Satisfies(version, rng string) (bool, bool) {
	v, ok := Parse(version)
	if !ok {
		return false, false
	}
	return satisfies(v, rng)
}

func satisfies(v Version, rng string) (bool, bool) {
	rng = strings.TrimSpace(rng)

	if rng == "" || rng == "*" || rng == "x" || rng == "X" {
		return true, true
	}

	// OR short-circuits true on the first satisfied branch. If every
	// branch is unrecognized the whole range is unrecognized.
	if strings.Contains(rng, "||") {
		anyRecognized := false
		for _, branch := range strings.Split(rng, "||") {
			ok, recognized := satisfies(v, branch)
			if recognized {
				anyRecognized = true
				if ok {
					return true, true
				}
			}
		}
		return false, anyRecognized
	}

	// Space-separated AND: all parts must be satisfied, and all parts
	// must be recognized for the result to be trusted.
	if strings.ContainsAny(rng, " \t") {
		for _, part := range strings.Fields(rng) {
			ok, recognized := satisfies(v, part)
			if !recognized {
				return false, false
			}
			if !ok {
				return false, true
			}
		}
		return true, true
	}

	switch {
	case strings.HasPrefix(rng, ">="):
		if min, ok := Parse(rng[2:]); ok {
			return Compare(v, min) >= 0, true
		}
	case strings.HasPrefix(rng, "<="):
		if max, ok := Parse(rng[2:]); ok {
			return Compare(v, max) <= 0, true
		}
	case strings.HasPrefix(rng, ">"):
		if min, ok := Parse(rng[1:]); ok {
			return Compare(v, min) > 0, true
		}
	case strings.HasPrefix(rng, "<"):
		if max, ok := Parse(rng[1:]); ok {
			return Compare(v, max) < 0, true
		}
	case strings.HasPrefix(rng, "^"):
		if base, ok := Parse(rng[1:]); ok {
			// Caret pins the major; for 0.x it also pins the minor.
			if base.Major == 0 {
				return v.Major == 0 && v.Minor == base.Minor && Compare(v, base) >= 0, true
			}
			return v.Major == base.Major && Compare(v, base) >= 0, true
		}
	case strings.HasPrefix(rng, "~"):
		if base, ok := Parse(rng[1:]); ok {
			return v.Major == base.Major && v.Minor == base.Minor && Compare(v, base) >= 0, true
		}
	default:
		if exact, ok := Parse(rng); ok {
			return Compare(v, exact) == 0, true
		}
	}

	return false, false
}

// MinimumOf extracts the (major, minor) floor implied by a constraint like
// ">=18.17.0" or ">=14.17 || >=16.0.0", taking the first OR branch. Used
// for engine constraints read out of installed packages.
func MinimumOf(constraint string) (major, minor int, ok bool) {
	first := strings.TrimSpace(strings.Split(constraint, "||")[0])
	first = strings.TrimPrefix(first, ">=")
	first = strings.TrimPrefix(first, ">")
	first = strings.TrimPrefix(first, "^")
	first = strings.TrimPrefix(first, "~")

	v, parsed := Parse(first)
	if !parsed {
		return 0, 0, false
	}
	return v.Major, v.Minor, true
}
