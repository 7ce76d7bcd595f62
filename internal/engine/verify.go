package engine

import (
	"context"
	"fmt"

	"envdrift/internal/checks"
	"envdrift/internal/config"
	"envdrift/internal/snapshot"
)

// Verify runs the check suite against the project and classifies the
// result. Errors in findings fail the run unless WarnOnly is set.
func (e *Engine) Verify(ctx context.Context, req *VerifyRequest) (*VerifyResult, error) {
	snap, compat, findings, err := e.runChecks(ctx, req.Dir, req.Category)
	if err != nil {
		return nil, err
	}

	return &VerifyResult{
		Findings:       findings,
		HasSnapshot:    snap != nil,
		SchemaAdvisory: schemaAdvisory(compat),
		Failed:         checks.HasErrors(findings) && !req.WarnOnly,
	}, nil
}

// runChecks loads the snapshot and config for a directory and runs the
// check suite. The snapshot is optional; config validation failures
// abort the run.
func (e *Engine) runChecks(ctx context.Context, dir string, category checks.Category) (*snapshot.Snapshot, snapshot.Compat, []checks.Finding, error) {
	snap, compat, err := e.store.LoadIfExists(dir)
	if err != nil {
		return nil, snapshot.Compat{}, nil, err
	}

	cfg, err := config.Load(e.fs, dir)
	if err != nil {
		return nil, snapshot.Compat{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, snapshot.Compat{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	findings, err := e.suite.RunAll(ctx, dir, snap, category, cfg)
	if err != nil {
		return nil, snapshot.Compat{}, nil, err
	}
	return snap, compat, findings, nil
}
