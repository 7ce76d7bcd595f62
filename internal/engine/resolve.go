package engine

import (
	"context"

	"envdrift/internal/resolve"
)

// Resolve detects peer dependency conflicts and searches the registry
// for versions that would satisfy them.
func (e *Engine) Resolve(ctx context.Context, req *ResolveRequest) (*ResolveResult, error) {
	conflicts, err := e.resolver.DetectConflicts(ctx, req.Dir)
	if err != nil {
		return nil, err
	}
	if len(conflicts) == 0 {
		return &ResolveResult{}, nil
	}

	resolutions := e.resolver.FindResolutions(ctx, conflicts)
	return &ResolveResult{Conflicts: conflicts, Resolutions: resolutions}, nil
}

// ApplyResolutions rewrites package.json dependency ranges to the
// suggested versions.
func (e *Engine) ApplyResolutions(dir string, resolutions []resolve.Resolution) error {
	return resolve.Apply(e.fs, dir, resolutions)
}
