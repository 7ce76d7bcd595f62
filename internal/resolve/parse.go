// Package resolve extracts structured dependency conflicts from npm's
// ERESOLVE diagnostics and searches the registry for versions that end
// them.
package resolve

import (
	"strings"
)

// Conflict is one unsatisfied peer requirement pulled out of the
// diagnostic text.
type Conflict struct {
	// Package is the dependency that needs changing.
	Package string `json:"package"`
	// CurrentVersion is what is actually installed.
	CurrentVersion string `json:"current_version"`
	// ConflictingDependency is the package imposing the requirement.
	ConflictingDependency string `json:"conflicting_dep"`
	// RequiredRange is the range the conflicting dependency demands.
	RequiredRange string `json:"required_range"`
	// SuggestedVersion is npm's own proposal, when it printed one.
	SuggestedVersion string `json:"suggested_version,omitempty"`
}

// accumulator is the parser state threaded through the line fold. Fields
// persist across conflict blocks except SuggestedVersion, which resets on
// every flush.
type accumulator struct {
	topLevel         string
	foundName        string
	foundVersion     string
	requiredRange    string
	suggestedVersion string
	inEresolve       bool
	conflicts        []Conflict
}

// ParseConflicts folds npm's diagnostic lines into conflict records. The
// grammar is best effort: unrecognized lines are skipped, later anchors
// refine earlier captures, and a stream that ends inside an ERESOLVE
// block without a terminator still flushes once.
func ParseConflicts(output string) []Conflict {
	acc := accumulator{}
	for _, raw := range strings.Split(output, "\n") {
		acc.consume(strings.TrimSpace(raw))
	}

	if acc.inEresolve && acc.foundName != "" && acc.foundVersion != "" && !acc.recorded(acc.foundName) {
		acc.flush()
	}
	return acc.conflicts
}

func (a *accumulator) consume(line string) {
	if strings.Contains(line, "ERESOLVE") {
		a.inEresolve = true
	}

	if rest, ok := after(line, "While resolving:"); ok {
		if name, _, ok := splitNameVersion(rest); ok {
			a.topLevel = name
		}
	}

	// "Found: X@Y" names what is installed. Lines echoing store paths
	// mention node_modules and are not version anchors.
	if rest, ok := after(line, "Found:"); ok && !strings.Contains(line, "node_modules") {
		if name, version, ok := splitNameVersion(rest); ok {
			a.foundName = name
			a.foundVersion = version
		}
	}

	a.consumePeerLine(line)

	if rest, ok := after(line, "Conflicting peer dependency:"); ok {
		if name, version, ok := splitNameVersion(rest); ok && name == a.foundName {
			a.suggestedVersion = version
		}
	}

	if strings.Contains(line, "Could not resolve dependency") {
		if a.foundName != "" && a.foundVersion != "" {
			a.flush()
		}
	}
}

// consumePeerLine handles `peer X@"range" from Y@Z` and its peerOptional
// variant. The range is taken only when the dependency name matches the
// most recent Found line, so interleaved blocks cannot cross-contaminate.
func (a *accumulator) consumePeerLine(line string) {
	if !strings.Contains(line, " from ") {
		return
	}

	var rest string
	if idx := strings.Index(line, "peerOptional "); idx >= 0 {
		rest = line[idx+len("peerOptional "):]
	} else if idx := strings.Index(line, "peer "); idx >= 0 {
		rest = line[idx+len("peer "):]
	} else {
		return
	}

	fromIdx := strings.Index(rest, " from ")
	if fromIdx < 0 {
		return
	}

	name, rng, ok := splitNameVersion(rest[:fromIdx])
	if !ok {
		return
	}
	if name == a.foundName {
		a.requiredRange = strings.Trim(rng, `"'`)
	}
}

func (a *accumulator) flush() {
	a.conflicts = append(a.conflicts, Conflict{
		Package:               a.foundName,
		CurrentVersion:        a.foundVersion,
		ConflictingDependency: a.topLevel,
		RequiredRange:         a.requiredRange,
		SuggestedVersion:      a.suggestedVersion,
	})
	a.suggestedVersion = ""
}

func (a *accumulator) recorded(pkg string) bool {
	for _, c := range a.conflicts {
		if c.Package == pkg {
			return true
		}
	}
	return false
}

func after(line, marker string) (string, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(line[idx+len(marker):]), true
}

// splitNameVersion splits "name@version" at the last @, keeping scoped
// names like @types/react intact.
func splitNameVersion(s string) (name, version string, ok bool) {
	s = strings.TrimSpace(s)
	lastAt := strings.LastIndex(s, "@")
	if lastAt <= 0 {
		return "", "", false
	}
	return s[:lastAt], s[lastAt+1:], true
}
