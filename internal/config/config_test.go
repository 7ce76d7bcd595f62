package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"envdrift/internal/fsops"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(fsops.NewRealFS(), t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Policies.AllowNodeUpgradeMinor {
		t.Error("expected minor upgrades allowed by default")
	}
	if cfg.Policies.AllowNodeUpgradeMajor {
		t.Error("expected major upgrades denied by default")
	}
	if !cfg.Frameworks.React.EnforceVersionMatch {
		t.Error("expected react version match on by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
[policies]
allow_node_upgrade_major = true
min_node_version = "18.0.0"

[checks]
disabled = ["Phantom dependencies"]

[checks.severity_overrides]
"Corepack available" = "info"

[frameworks.react]
enforce_version_match = false
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(fsops.NewRealFS(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Policies.AllowNodeUpgradeMajor {
		t.Error("expected file value for allow_node_upgrade_major")
	}
	if cfg.Policies.MinNodeVersion != "18.0.0" {
		t.Errorf("min_node_version = %q", cfg.Policies.MinNodeVersion)
	}
	if cfg.Frameworks.React.EnforceVersionMatch {
		t.Error("expected file value for enforce_version_match")
	}
	if !cfg.IsCheckDisabled("Phantom dependencies") {
		t.Error("expected the disabled list from the file")
	}
	if got := cfg.SeverityOverride("Corepack available"); got != "info" {
		t.Errorf("override = %q, want info", got)
	}
}

func TestSaveRoundtrip(t *testing.T) {
	dir := t.TempDir()
	fs := fsops.NewRealFS()

	cfg := Default()
	cfg.Checks.Disabled = []string{"Node version match"}
	if err := Save(fs, cfg, dir); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if !strings.HasPrefix(string(data), "#") {
		t.Error("expected a header comment")
	}

	loaded, err := Load(fs, dir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !loaded.IsCheckDisabled("node version match") {
		t.Error("expected case-insensitive disabled match after roundtrip")
	}
}

func TestSeverityOverride_CaseInsensitiveKeyLowercasedValue(t *testing.T) {
	cfg := Default()
	cfg.Checks.SeverityOverrides = map[string]string{"Engines Compliance": "WARNING"}

	if got := cfg.SeverityOverride("engines compliance"); got != "warning" {
		t.Errorf("override = %q, want warning", got)
	}
	if got := cfg.SeverityOverride("other check"); got != "" {
		t.Errorf("override = %q, want empty", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		min     string
		max     string
		wantErr bool
	}{
		{"both empty", "", "", false},
		{"only min", "18.0.0", "", false},
		{"ordered", "18.0.0", "22.0.0", false},
		{"equal", "20.0.0", "20.0.0", false},
		{"inverted", "22.0.0", "18.0.0", true},
		{"bad min", "abc", "22.0.0", true},
		{"bad max", "18.0.0", "xyz", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Policies.MinNodeVersion = tt.min
			cfg.Policies.MaxNodeVersion = tt.max
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
