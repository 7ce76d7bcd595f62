package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	"envdrift/internal/hash"
)

func TestForManager(t *testing.T) {
	tests := []struct {
		manager string
		want    string
	}{
		{"npm", "package-lock.json"},
		{"yarn", "yarn.lock"},
		{"pnpm", "pnpm-lock.yaml"},
		{"bun", "bun.lockb"},
		{"deno", "package-lock.json"},
	}
	for _, tt := range tests {
		if got := ForManager(tt.manager); got != tt.want {
			t.Errorf("ForManager(%q) = %q, want %q", tt.manager, got, tt.want)
		}
	}
}

func TestDetect_NoLockfile(t *testing.T) {
	det, err := Detect(t.TempDir(), hash.NewFakeHasher())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if det.Primary != nil {
		t.Errorf("Primary = %+v, want nil", det.Primary)
	}
	if len(det.All) != 0 {
		t.Errorf("All = %+v, want empty", det.All)
	}
}

func TestDetect_SingleLockfile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pnpm-lock.yaml"), []byte("lockfileVersion: '9.0'\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	det, err := Detect(dir, hash.NewFakeHasher())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if det.Primary == nil || det.Primary.Manager != "pnpm" {
		t.Fatalf("Primary = %+v, want pnpm", det.Primary)
	}
	if det.Hash == "" {
		t.Error("Hash is empty for a present lockfile")
	}
}

func TestDetect_MultipleLockfilesKeepsTableOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"yarn.lock", "package-lock.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	det, err := Detect(dir, hash.NewFakeHasher())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if det.Primary == nil || det.Primary.Manager != "npm" {
		t.Fatalf("Primary = %+v, want npm first in table order", det.Primary)
	}
	if len(det.All) != 2 {
		t.Errorf("detected %d lockfiles, want 2", len(det.All))
	}
}

func TestDetect_HashChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package-lock.json")
	if err := os.WriteFile(path, []byte(`{"lockfileVersion":3}`), 0o644); err != nil {
		t.Fatal(err)
	}

	hasher := hash.NewSHA256Hasher()
	before, err := Detect(dir, hasher)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"lockfileVersion":2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	after, err := Detect(dir, hasher)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if before.Hash == after.Hash {
		t.Error("hash did not change with lockfile content")
	}
}
