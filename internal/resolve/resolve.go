package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	xsemver "golang.org/x/mod/semver"

	"envdrift/internal/execx"
	"envdrift/internal/fsops"
	"envdrift/internal/manifest"
	"envdrift/internal/registry"
	"envdrift/internal/semver"
)

// Resolution is one suggested fix: move Package from CurrentVersion to
// SuggestedVersion.
type Resolution struct {
	Package          string `json:"package"`
	CurrentVersion   string `json:"current_version"`
	SuggestedVersion string `json:"suggested_version"`
	Reason           string `json:"reason"`
}

// Resolver detects conflicts via the package manager and searches the
// registry for versions that resolve them.
type Resolver struct {
	runner execx.Runner
	lookup registry.Lookup
}

// NewResolver creates a Resolver.
func NewResolver(runner execx.Runner, lookup registry.Lookup) *Resolver {
	return &Resolver{runner: runner, lookup: lookup}
}

// DetectConflicts runs a dry-run install and parses its diagnostics. The
// install legitimately exits non-zero when conflicts exist, so only
// spawn failure is an error.
func (r *Resolver) DetectConflicts(ctx context.Context, dir string) ([]Conflict, error) {
	res := r.runner.RunShell(ctx, dir, "npm install --dry-run 2>&1", execx.LongTimeout)
	if res.Status == execx.StatusSpawnError {
		return nil, fmt.Errorf("failed to run npm install --dry-run: %s", res.SpawnErr)
	}
	if res.Status == execx.StatusTimedOut {
		return nil, fmt.Errorf("npm install --dry-run timed out")
	}
	return ParseConflicts(res.Stdout + res.Stderr), nil
}

// FindResolution searches the registry for a version that ends one
// conflict. Two strategies, first match wins: a version of the package
// satisfying the captured required range, else a version whose own peer
// requirement on the conflicting dependency accepts the installed
// version (or omits the entry entirely). No match means no resolution;
// nothing is guessed.
func (r *Resolver) FindResolution(ctx context.Context, conflict Conflict) (*Resolution, error) {
	versions, err := r.lookup.Versions(ctx, conflict.Package)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, nil
	}

	sortDescending(versions)
	currentIsPre := semver.IsPrerelease(conflict.CurrentVersion)

	if conflict.RequiredRange != "" {
		for _, v := range versions {
			if semver.IsPrerelease(v.Version) && !currentIsPre {
				continue
			}
			if satisfied, ok := semver.Satisfies(v.Version, conflict.RequiredRange); ok && satisfied {
				return &Resolution{
					Package:          conflict.Package,
					CurrentVersion:   conflict.CurrentVersion,
					SuggestedVersion: v.Version,
					Reason: fmt.Sprintf("%s requires %s %s",
						conflict.ConflictingDependency, conflict.Package, conflict.RequiredRange),
				}, nil
			}
		}
	}

	for _, v := range versions {
		if semver.IsPrerelease(v.Version) && !currentIsPre {
			continue
		}
		if !v.HasPeerDeps {
			continue
		}
		req, declares := v.PeerDependencies[conflict.ConflictingDependency]
		if !declares {
			// A peerDependencies object without the entry is an explicit
			// statement of no requirement.
			return &Resolution{
				Package:          conflict.Package,
				CurrentVersion:   conflict.CurrentVersion,
				SuggestedVersion: v.Version,
				Reason: fmt.Sprintf("v%s has no peer requirement for %s",
					v.Version, conflict.ConflictingDependency),
			}, nil
		}
		if satisfied, ok := semver.Satisfies(conflict.CurrentVersion, req); ok && satisfied {
			return &Resolution{
				Package:          conflict.Package,
				CurrentVersion:   conflict.CurrentVersion,
				SuggestedVersion: v.Version,
				Reason: fmt.Sprintf("v%s supports %s (requires %s)",
					v.Version, conflict.ConflictingDependency, req),
			}, nil
		}
	}

	return nil, nil
}

// FindResolutions maps FindResolution over conflicts, skipping ones with
// no answer. Registry failures skip the conflict rather than abort.
func (r *Resolver) FindResolutions(ctx context.Context, conflicts []Conflict) []Resolution {
	var out []Resolution
	for _, conflict := range conflicts {
		res, err := r.FindResolution(ctx, conflict)
		if err != nil || res == nil {
			continue
		}
		out = append(out, *res)
	}
	return out
}

// sortDescending orders versions newest first by (major, minor, patch).
func sortDescending(versions []registry.PackageVersion) {
	sort.SliceStable(versions, func(i, j int) bool {
		return xsemver.Compare(canonical(versions[i].Version), canonical(versions[j].Version)) > 0
	})
}

func canonical(v string) string {
	return "v" + strings.TrimPrefix(v, "v")
}

// Apply rewrites the manifest to pin each resolution at ^suggested in
// whichever dependency block declares the package. The write is atomic
// and whole-file; raw formatting of unrelated keys is preserved by
// operating on the raw JSON document.
func Apply(fs fsops.FS, dir string, resolutions []Resolution) error {
	path := filepath.Join(dir, manifest.FileName)
	data, err := fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read package.json: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse package.json: %w", err)
	}

	for _, block := range []string{"dependencies", "devDependencies"} {
		raw, ok := doc[block]
		if !ok {
			continue
		}
		var deps map[string]string
		if err := json.Unmarshal(raw, &deps); err != nil {
			continue
		}
		changed := false
		for _, res := range resolutions {
			if _, ok := deps[res.Package]; ok {
				deps[res.Package] = "^" + res.SuggestedVersion
				changed = true
			}
		}
		if changed {
			updated, err := json.Marshal(deps)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", block, err)
			}
			doc[block] = updated
		}
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode package.json: %w", err)
	}
	out = append(out, '\n')

	if err := fs.AtomicWrite(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write package.json: %w", err)
	}
	return nil
}
