// Package snapshot persists the versioned env.lock record of a verified
// environment and validates schema compatibility on load.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"envdrift/internal/clock"
	"envdrift/internal/execx"
	"envdrift/internal/fsops"
	"envdrift/internal/hash"
	"envdrift/internal/lockfile"
	"envdrift/internal/manifest"
	"envdrift/internal/probe"
)

// FileName is the snapshot file written at the project root.
const FileName = "env.lock"

// Schema versions. Bump CurrentSchemaVersion on any incompatible layout
// change; raise MinSchemaVersion only when old files can no longer be read.
const (
	CurrentSchemaVersion = "1.0"
	MinSchemaVersion     = "1.0"
)

// ErrNotFound is returned by Load when no snapshot file exists.
var ErrNotFound = errors.New("env.lock not found")

// Snapshot is the full env.lock record. It is always regenerated and
// rewritten whole, never partially mutated.
type Snapshot struct {
	Metadata    Metadata     `toml:"metadata"`
	Toolchain   Toolchain    `toml:"toolchain"`
	Environment *Environment `toml:"environment,omitempty"`
	Lockfile    *Lockfile    `toml:"lockfile,omitempty"`
	Caches      *Caches      `toml:"caches,omitempty"`
	Frameworks  *Frameworks  `toml:"frameworks,omitempty"`
}

type Metadata struct {
	Version     string `toml:"version"`
	GeneratedAt string `toml:"generated_at"`
	GeneratedBy string `toml:"generated_by"`
}

type Toolchain struct {
	Node                  string `toml:"node"`
	NodeVersionSource     string `toml:"node_version_source,omitempty"`
	PackageManager        string `toml:"package_manager"`
	PackageManagerVersion string `toml:"package_manager_version"`
	CorepackEnabled       *bool  `toml:"corepack_enabled,omitempty"`
}

type Environment struct {
	OS   string `toml:"os"`
	Arch string `toml:"arch"`
}

type Lockfile struct {
	Type string `toml:"type"`
	Hash string `toml:"hash"`
}

type Caches struct {
	NodeModulesHash string `toml:"node_modules_hash,omitempty"`
	PnpmStorePath   string `toml:"pnpm_store_path,omitempty"`
}

type Frameworks struct {
	React      string `toml:"react,omitempty"`
	Next       string `toml:"next,omitempty"`
	TypeScript string `toml:"typescript,omitempty"`
}

// CompatState classifies a snapshot's schema version against what this
// build can read.
type CompatState int

const (
	CompatCurrent CompatState = iota
	CompatSupported
	CompatTooOld
	CompatTooNew
	CompatInvalid
)

// Compat is the result of schema validation. Only Current and Supported
// permit use of the snapshot's fields.
type Compat struct {
	State       CompatState
	FileVersion string
	Detail      string
}

// Loadable reports whether the snapshot's fields may be trusted.
func (c Compat) Loadable() bool {
	return c.State == CompatCurrent || c.State == CompatSupported
}

func parseSchemaVersion(v string) (major, minor int, ok bool) {
	first, second, found := strings.Cut(v, ".")
	if !found || strings.Contains(second, ".") {
		return 0, 0, false
	}
	major, err := strconv.Atoi(first)
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(second)
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// CheckCompat validates a schema version string against the current and
// minimum supported versions.
func CheckCompat(version string) Compat {
	curMajor, curMinor, ok := parseSchemaVersion(CurrentSchemaVersion)
	if !ok {
		return Compat{State: CompatInvalid, FileVersion: version, Detail: "internal error: invalid current schema version"}
	}
	minMajor, minMinor, ok := parseSchemaVersion(MinSchemaVersion)
	if !ok {
		return Compat{State: CompatInvalid, FileVersion: version, Detail: "internal error: invalid minimum schema version"}
	}
	major, minor, ok := parseSchemaVersion(version)
	if !ok {
		return Compat{
			State:       CompatInvalid,
			FileVersion: version,
			Detail:      fmt.Sprintf("invalid schema version format: %q (expected X.Y)", version),
		}
	}

	switch {
	case major > curMajor:
		return Compat{
			State:       CompatTooNew,
			FileVersion: version,
			Detail:      fmt.Sprintf("schema version %s is newer than this build supports (%s)", version, CurrentSchemaVersion),
		}
	case major < minMajor || (major == minMajor && minor < minMinor):
		return Compat{
			State:       CompatTooOld,
			FileVersion: version,
			Detail:      fmt.Sprintf("schema version %s is too old (minimum supported: %s)", version, MinSchemaVersion),
		}
	case major == curMajor && minor == curMinor:
		return Compat{State: CompatCurrent, FileVersion: version}
	default:
		return Compat{
			State:       CompatSupported,
			FileVersion: version,
			Detail:      fmt.Sprintf("schema version %s is older than current (%s), consider regenerating", version, CurrentSchemaVersion),
		}
	}
}

// Store generates, saves, and loads snapshots for a project directory.
type Store struct {
	fs          fsops.FS
	hasher      hash.Hasher
	clock       clock.Clock
	runner      execx.Runner
	prober      *probe.Prober
	generatedBy string
}

// NewStore creates a Store. generatedBy names the producing tool, for
// example "envdrift@0.1.0".
func NewStore(fs fsops.FS, hasher hash.Hasher, clk clock.Clock, runner execx.Runner, prober *probe.Prober, generatedBy string) *Store {
	return &Store{
		fs:          fs,
		hasher:      hasher,
		clock:       clk,
		runner:      runner,
		prober:      prober,
		generatedBy: generatedBy,
	}
}

// Generate probes the live environment in dir and builds a fresh snapshot.
// When includeSystem is set, OS and architecture are recorded too.
func (s *Store) Generate(ctx context.Context, dir string, includeSystem bool) (*Snapshot, error) {
	facts, err := s.prober.Detect(ctx, dir)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Metadata: Metadata{
			Version:     CurrentSchemaVersion,
			GeneratedAt: s.clock.Now().UTC().Format(time.RFC3339),
			GeneratedBy: s.generatedBy,
		},
		Toolchain: Toolchain{
			Node:                  facts.NodeVersion,
			PackageManager:        facts.PackageManager,
			PackageManagerVersion: facts.PackageManagerVersion,
			CorepackEnabled:       facts.CorepackEnabled,
		},
	}
	if facts.VersionManager != probe.ManagerUnknown {
		snap.Toolchain.NodeVersionSource = string(facts.VersionManager)
	}

	if includeSystem {
		snap.Environment = &Environment{OS: runtime.GOOS, Arch: runtime.GOARCH}
	}

	if det, err := lockfile.Detect(dir, s.hasher); err == nil && det.Primary != nil {
		snap.Lockfile = &Lockfile{Type: det.Primary.Manager, Hash: det.Hash}
	}

	snap.Caches = s.detectCaches(ctx, dir, facts.PackageManager)
	snap.Frameworks = detectFrameworks(dir)

	return snap, nil
}

func (s *Store) detectCaches(ctx context.Context, dir, packageManager string) *Caches {
	caches := &Caches{}

	if h, ok := DepTreeHash(dir, s.hasher); ok {
		caches.NodeModulesHash = h
	}
	if packageManager == "pnpm" {
		if res := s.runner.Run(ctx, dir, "pnpm", []string{"store", "path"}, execx.ShortTimeout); res.Success() {
			caches.PnpmStorePath = strings.TrimSpace(res.Stdout)
		}
	}

	if caches.NodeModulesHash == "" && caches.PnpmStorePath == "" {
		return nil
	}
	return caches
}

// detectFrameworks records declared versions for the frameworks the check
// suite understands. Returns nil when none are declared.
func detectFrameworks(dir string) *Frameworks {
	m, status, _ := manifest.Load(dir)
	if status != manifest.StatusValid {
		return nil
	}

	fw := &Frameworks{}
	fw.React, _ = m.DeclaredVersion("react")
	fw.Next, _ = m.DeclaredVersion("next")
	fw.TypeScript, _ = m.DeclaredVersion("typescript")
	if fw.React == "" && fw.Next == "" && fw.TypeScript == "" {
		return nil
	}
	return fw
}

const fileHeader = "# env.lock - Generated by envdrift\n# DO NOT EDIT MANUALLY - Regenerate with `envdrift lock`\n\n"

// Save writes the snapshot atomically to dir/env.lock with a header
// comment warning against hand edits.
func (s *Store) Save(snap *Snapshot, dir string) error {
	var sb strings.Builder
	sb.WriteString(fileHeader)
	if err := toml.NewEncoder(&sb).Encode(snap); err != nil {
		return fmt.Errorf("failed to serialize %s: %w", FileName, err)
	}

	path := filepath.Join(dir, FileName)
	if err := s.fs.AtomicWrite(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	return nil
}

// Load reads and validates dir/env.lock. A missing file is ErrNotFound;
// TooOld, TooNew, and Invalid schemas are errors. The returned Compat is
// valid whenever the snapshot is non-nil so callers can surface a
// Supported-schema advisory.
func (s *Store) Load(dir string) (*Snapshot, Compat, error) {
	path := filepath.Join(dir, FileName)
	if ok, _ := s.fs.Exists(path); !ok {
		return nil, Compat{}, fmt.Errorf("%w: run `envdrift lock` to create one", ErrNotFound)
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, Compat{}, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var snap Snapshot
	if err := toml.Unmarshal(data, &snap); err != nil {
		return nil, Compat{}, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	compat := CheckCompat(snap.Metadata.Version)
	if !compat.Loadable() {
		return nil, compat, fmt.Errorf("incompatible %s: %s", FileName, compat.Detail)
	}
	return &snap, compat, nil
}

// LoadIfExists is Load except a missing file yields (nil, zero, nil).
func (s *Store) LoadIfExists(dir string) (*Snapshot, Compat, error) {
	if ok, _ := s.fs.Exists(filepath.Join(dir, FileName)); !ok {
		return nil, Compat{}, nil
	}
	return s.Load(dir)
}
