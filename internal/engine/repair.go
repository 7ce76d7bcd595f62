package engine

import (
	"context"

	"envdrift/internal/checks"
	"envdrift/internal/repair"
)

// Repair plans fixes for the current findings and, unless DryRun is
// set, executes them. With SafeOnly the actions that need review are
// reported as Skipped instead of executed.
func (e *Engine) Repair(ctx context.Context, req *RepairRequest) (*RepairResult, error) {
	snap, _, findings, err := e.runChecks(ctx, req.Dir, checks.CategoryAll)
	if err != nil {
		return nil, err
	}

	rc := e.repairContext(ctx, req.Dir, snap)
	actions := repair.Plan(checks.Issues(findings), rc)

	res := &RepairResult{Findings: findings, Actions: actions}
	if req.DryRun {
		return res, nil
	}

	res.Outcomes, res.Skipped = e.ApplyActions(ctx, req.Dir, actions, req.SafeOnly)
	return res, nil
}

// ApplyActions executes a previously planned set of actions. With
// safeOnly, actions that need review are returned as skipped.
func (e *Engine) ApplyActions(ctx context.Context, dir string, actions []repair.Action, safeOnly bool) (outcomes []repair.Outcome, skipped []repair.Action) {
	toRun := actions
	if safeOnly {
		toRun = nil
		for _, a := range actions {
			if a.Safe {
				toRun = append(toRun, a)
			} else {
				skipped = append(skipped, a)
			}
		}
	}
	return e.executor.ApplyAll(ctx, dir, toRun), skipped
}
