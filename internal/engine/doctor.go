package engine

import (
	"context"

	"envdrift/internal/checks"
	"envdrift/internal/repair"
)

// Doctor runs the check suite and plans repairs for every finding that
// carries an actionable fix.
func (e *Engine) Doctor(ctx context.Context, req *DoctorRequest) (*DoctorResult, error) {
	snap, compat, findings, err := e.runChecks(ctx, req.Dir, req.Category)
	if err != nil {
		return nil, err
	}

	rc := e.repairContext(ctx, req.Dir, snap)
	actions := repair.Plan(checks.Issues(findings), rc)

	return &DoctorResult{
		Findings:       findings,
		Actions:        actions,
		SchemaAdvisory: schemaAdvisory(compat),
	}, nil
}
