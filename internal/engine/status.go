package engine

import (
	"context"
	"fmt"

	"envdrift/internal/lockfile"
	"envdrift/internal/snapshot"
)

// Status loads the snapshot if one exists and compares it against the
// live environment. A missing snapshot is not an error: the result
// reports HasSnapshot false and no items.
func (e *Engine) Status(ctx context.Context, req *StatusRequest) (*StatusResult, error) {
	snap, compat, err := e.store.LoadIfExists(req.Dir)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return &StatusResult{}, nil
	}

	facts, err := e.prober.Detect(ctx, req.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to probe environment: %w", err)
	}

	currentHash := ""
	if det, err := lockfile.Detect(req.Dir, e.hasher); err == nil {
		currentHash = det.Hash
	}

	items, drift := snapshot.Diff(snap, facts, currentHash)
	return &StatusResult{
		HasSnapshot:    true,
		Items:          items,
		HasDrift:       drift,
		SchemaAdvisory: schemaAdvisory(compat),
	}, nil
}

// schemaAdvisory returns a user-facing note when a snapshot loaded
// under an older-but-supported schema version.
func schemaAdvisory(compat snapshot.Compat) string {
	if compat.State == snapshot.CompatSupported {
		return compat.Detail
	}
	return ""
}
