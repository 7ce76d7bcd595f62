package engine

import (
	"envdrift/internal/checks"
	"envdrift/internal/repair"
	"envdrift/internal/resolve"
	"envdrift/internal/snapshot"
)

// LockRequest asks for a fresh snapshot of the environment.
type LockRequest struct {
	// Dir is the project directory.
	Dir string

	// IncludeSystem records OS and architecture in the snapshot.
	IncludeSystem bool

	// Force overwrites an existing snapshot without loading it first.
	Force bool
}

// LockResult reports the written snapshot.
type LockResult struct {
	Snapshot *snapshot.Snapshot
	Path     string
}

// StatusRequest asks for a quick drift summary.
type StatusRequest struct {
	Dir string
}

// StatusResult compares the locked record against the live environment.
type StatusResult struct {
	HasSnapshot bool
	Items       []snapshot.DiffItem
	HasDrift    bool

	// SchemaAdvisory is non-empty when the snapshot loaded under an
	// older-but-supported schema version.
	SchemaAdvisory string
}

// VerifyRequest asks for a full check run.
type VerifyRequest struct {
	Dir      string
	Category checks.Category

	// WarnOnly downgrades the overall result so errors do not fail the
	// run (findings keep their severity).
	WarnOnly bool
}

// VerifyResult carries the classified findings.
type VerifyResult struct {
	Findings       []checks.Finding
	HasSnapshot    bool
	SchemaAdvisory string

	// Failed is set when error findings exist and WarnOnly was not set.
	Failed bool
}

// DoctorRequest asks for findings plus a repair plan.
type DoctorRequest struct {
	Dir      string
	Category checks.Category
}

// DoctorResult pairs findings with the plan that would address them.
type DoctorResult struct {
	Findings       []checks.Finding
	Actions        []repair.Action
	SchemaAdvisory string
}

// RepairRequest asks for plan execution.
type RepairRequest struct {
	Dir string

	// DryRun plans without executing.
	DryRun bool

	// SafeOnly executes only actions classified safe.
	SafeOnly bool
}

// RepairResult reports the plan and, unless DryRun, per-action outcomes.
type RepairResult struct {
	Findings []checks.Finding
	Actions  []repair.Action
	Outcomes []repair.Outcome
	Skipped  []repair.Action
}

// ResolveRequest asks for dependency-conflict detection and resolution
// search.
type ResolveRequest struct {
	Dir string
}

// ResolveResult carries detected conflicts and any suggested fixes.
type ResolveResult struct {
	Conflicts   []resolve.Conflict
	Resolutions []resolve.Resolution
}
