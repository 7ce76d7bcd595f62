package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"envdrift/internal/snapshot"
)

// Lock probes the environment and writes a fresh env.lock. Without
// Force, an existing snapshot that can no longer be read (incompatible
// or corrupt) blocks regeneration so the failure is surfaced instead of
// silently discarded.
func (e *Engine) Lock(ctx context.Context, req *LockRequest) (*LockResult, error) {
	if !req.Force {
		if _, _, err := e.store.LoadIfExists(req.Dir); err != nil {
			return nil, fmt.Errorf("existing env.lock cannot be read (use --force to regenerate): %w", err)
		}
	}

	snap, err := e.store.Generate(ctx, req.Dir, req.IncludeSystem)
	if err != nil {
		return nil, fmt.Errorf("failed to generate snapshot: %w", err)
	}
	if err := e.store.Save(snap, req.Dir); err != nil {
		return nil, err
	}

	return &LockResult{
		Snapshot: snap,
		Path:     filepath.Join(req.Dir, snapshot.FileName),
	}, nil
}
