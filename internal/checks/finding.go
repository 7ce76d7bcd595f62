// Package checks runs the categorized environment checks and classifies
// their findings by severity. Configuration is applied afterwards as a
// pure filter; no check consults it.
package checks

// Severity classifies one finding.
type Severity string

const (
	SeverityPass    Severity = "pass"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity maps a configuration string to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityPass, SeverityInfo, SeverityWarning, SeverityError:
		return Severity(s), true
	}
	return "", false
}

// Category selects which check group to run. An empty Category runs all.
type Category string

const (
	CategoryAll        Category = ""
	CategoryToolchain  Category = "toolchain"
	CategoryLockfile   Category = "lockfile"
	CategoryDeps       Category = "deps"
	CategoryFrameworks Category = "frameworks"
)

// ParseCategory validates a category flag value.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryAll, CategoryToolchain, CategoryLockfile, CategoryDeps, CategoryFrameworks:
		return Category(s), true
	}
	return "", false
}

// Check names referenced from user configuration and the repair table.
// These are a stable contract: renaming one silently breaks both, so the
// message text changes freely but the name never does.
const (
	NameManifestExists   = "package.json exists"
	NameManifestValid    = "package.json valid"
	NameManifestReadable = "package.json readable"
	NameWorkspace        = "Workspace detected"

	NameNodeAccessible        = "Node.js accessible"
	NameNodeVersionMatch      = "Node version match"
	NamePackageManagerMatch   = "Package manager match"
	NamePackageManagerVersion = "Package manager version"
	NameCorepackEnabled       = "Corepack enabled"
	NameCorepackAvailable     = "Corepack available"
	NameEnginesCompliance     = "Engines compliance"

	NameLockfileExists    = "Lockfile exists"
	NameLockfileHashMatch = "Lockfile hash match"
	NameLockfileCorrupted = "Lockfile corrupted"
	NameSingleLockfile    = "Single lockfile"

	NameNodeModulesExists = "node_modules exists"
	NameNodeModulesSync   = "node_modules in sync"
	NameBinariesInstalled = "Binaries installed"
	NamePeerDependencies  = "Peer dependencies"
	NamePeerConflict      = "Peer dependency conflict"
	NamePhantomDeps       = "Phantom dependencies"
	NameNpmCacheIntegrity = "npm cache integrity"

	NameReactDOMMatch    = "React/ReactDOM match"
	NameNextNodeCompat   = "Next.js/Node compatibility"
	NameTypeScriptConfig = "TypeScript config"
	NameTSNodeCompat     = "TypeScript/Node compatibility"
	NameESLintConfig     = "ESLint config"
	NamePrettierConfig   = "Prettier config"
)

// Finding is one check's classified result. Name is the stable lookup key
// for config suppression, severity overrides, and repair planning.
type Finding struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message,omitempty"`
	SuggestedFix string   `json:"suggested_fix,omitempty"`
}

func pass(name, category string) Finding {
	return Finding{Name: name, Category: category, Severity: SeverityPass}
}

func info(name, category, message string) Finding {
	return Finding{Name: name, Category: category, Severity: SeverityInfo, Message: message}
}

func warning(name, category, message string) Finding {
	return Finding{Name: name, Category: category, Severity: SeverityWarning, Message: message}
}

func errorf(name, category, message string) Finding {
	return Finding{Name: name, Category: category, Severity: SeverityError, Message: message}
}

func (f Finding) withFix(fix string) Finding {
	f.SuggestedFix = fix
	return f
}

// Issues filters findings down to warnings and errors.
func Issues(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == SeverityWarning || f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
