package snapshot

import (
	"testing"

	"envdrift/internal/probe"
)

func lockedSnapshot() *Snapshot {
	return &Snapshot{
		Toolchain: Toolchain{
			Node:                  "20.11.0",
			PackageManager:        "npm",
			PackageManagerVersion: "10.2.4",
		},
		Lockfile: &Lockfile{Type: "npm", Hash: "sha256:aaaaaaaaaaaaaaaa"},
	}
}

func TestDiff_NoDrift(t *testing.T) {
	facts := probe.ToolchainFacts{
		NodeVersion:           "20.11.0",
		PackageManager:        "npm",
		PackageManagerVersion: "10.2.4",
	}

	items, drift := Diff(lockedSnapshot(), facts, "sha256:aaaaaaaaaaaaaaaa")
	if drift {
		t.Error("expected no drift")
	}
	if len(items) != 4 {
		t.Fatalf("items = %d, want 4", len(items))
	}
	for _, item := range items {
		if !item.Match {
			t.Errorf("field %q unexpectedly drifted", item.Field)
		}
	}
}

func TestDiff_NodeDrift(t *testing.T) {
	facts := probe.ToolchainFacts{
		NodeVersion:           "22.1.0",
		PackageManager:        "npm",
		PackageManagerVersion: "10.2.4",
	}

	items, drift := Diff(lockedSnapshot(), facts, "sha256:aaaaaaaaaaaaaaaa")
	if !drift {
		t.Fatal("expected drift")
	}
	if items[0].Field != "Node.js" || items[0].Match {
		t.Errorf("node item = %+v", items[0])
	}
	if items[0].Locked != "20.11.0" || items[0].Current != "22.1.0" {
		t.Errorf("node item = %+v", items[0])
	}
}

func TestDiff_LockfileHashTruncatedForDisplay(t *testing.T) {
	facts := probe.ToolchainFacts{
		NodeVersion:           "20.11.0",
		PackageManager:        "npm",
		PackageManagerVersion: "10.2.4",
	}

	items, drift := Diff(lockedSnapshot(), facts, "sha256:bbbbbbbbbbbbbbbb")
	if !drift {
		t.Fatal("expected drift from the lockfile hash")
	}
	last := items[len(items)-1]
	if last.Field != "Lockfile Hash" {
		t.Fatalf("last field = %q", last.Field)
	}
	if len(last.Locked) != hashDisplayLen || len(last.Current) != hashDisplayLen {
		t.Errorf("hash display = %q / %q, want %d chars", last.Locked, last.Current, hashDisplayLen)
	}
}

func TestDiff_MissingLockfileShowsNA(t *testing.T) {
	facts := probe.ToolchainFacts{
		NodeVersion:           "20.11.0",
		PackageManager:        "npm",
		PackageManagerVersion: "10.2.4",
	}

	items, drift := Diff(lockedSnapshot(), facts, "")
	if !drift {
		t.Fatal("expected drift when the lockfile is gone")
	}
	last := items[len(items)-1]
	if last.Current != "N/A" {
		t.Errorf("current = %q, want N/A", last.Current)
	}
}

func TestDiff_NoLockfileSection(t *testing.T) {
	locked := lockedSnapshot()
	locked.Lockfile = nil

	facts := probe.ToolchainFacts{
		NodeVersion:           "20.11.0",
		PackageManager:        "npm",
		PackageManagerVersion: "10.2.4",
	}

	items, drift := Diff(locked, facts, "")
	if drift {
		t.Error("expected no drift")
	}
	if len(items) != 3 {
		t.Errorf("items = %d, want 3 without a locked lockfile", len(items))
	}
}
