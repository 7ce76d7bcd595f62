package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WorkspaceKind identifies the workspace/monorepo layout in use.
type WorkspaceKind int

const (
	WorkspaceNpmYarn WorkspaceKind = iota
	WorkspacePnpm
	WorkspaceNx
	WorkspaceTurbo
	WorkspaceLerna
)

// String returns a human-readable name for the workspace kind.
func (k WorkspaceKind) String() string {
	switch k {
	case WorkspaceNpmYarn:
		return "npm/yarn workspaces"
	case WorkspacePnpm:
		return "pnpm workspaces"
	case WorkspaceNx:
		return "Nx monorepo"
	case WorkspaceTurbo:
		return "Turborepo"
	case WorkspaceLerna:
		return "Lerna"
	default:
		return "unknown"
	}
}

// WorkspaceInfo describes a detected workspace layout.
type WorkspaceInfo struct {
	Kind     WorkspaceKind
	Packages []string
}

// Describe renders the workspace for an informational finding.
func (w *WorkspaceInfo) Describe() string {
	if len(w.Packages) == 0 {
		return w.Kind.String()
	}
	return fmt.Sprintf("%s (%d packages)", w.Kind, len(w.Packages))
}

type pnpmWorkspaceFile struct {
	Packages []string `yaml:"packages"`
}

// DetectWorkspace looks for a workspace/monorepo layout in dir.
// Precedence: manifest-embedded workspaces, then the dedicated pnpm
// workspace file, then monorepo tool config files.
func DetectWorkspace(dir string) *WorkspaceInfo {
	if m, status, _ := Load(dir); status == StatusValid && len(m.Workspaces.Packages) > 0 {
		return &WorkspaceInfo{Kind: WorkspaceNpmYarn, Packages: m.Workspaces.Packages}
	}

	pnpmPath := filepath.Join(dir, "pnpm-workspace.yaml")
	if data, err := os.ReadFile(pnpmPath); err == nil {
		var ws pnpmWorkspaceFile
		if err := yaml.Unmarshal(data, &ws); err == nil && len(ws.Packages) > 0 {
			return &WorkspaceInfo{Kind: WorkspacePnpm, Packages: ws.Packages}
		}
	}

	toolConfigs := []struct {
		file string
		kind WorkspaceKind
	}{
		{"nx.json", WorkspaceNx},
		{"turbo.json", WorkspaceTurbo},
		{"lerna.json", WorkspaceLerna},
	}
	for _, tc := range toolConfigs {
		if _, err := os.Stat(filepath.Join(dir, tc.file)); err == nil {
			return &WorkspaceInfo{Kind: tc.kind}
		}
	}

	return nil
}
