// Package config loads the optional .envdrift.toml project configuration:
// policies, check suppression and severity overrides, and framework
// toggles. Configuration filters findings after the checks run; it never
// changes how a check computes its result.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"envdrift/internal/fsops"
	"envdrift/internal/semver"
)

// FileName is the configuration file looked up at the project root.
const FileName = ".envdrift.toml"

// Config is the full project configuration. Unknown keys in the file are
// ignored so newer files load under older builds.
type Config struct {
	Policies   Policies         `toml:"policies"`
	Checks     ChecksConfig     `toml:"checks"`
	Frameworks FrameworksConfig `toml:"frameworks"`
}

type Policies struct {
	AllowNodeUpgradeMinor  bool     `toml:"allow_node_upgrade_minor"`
	AllowNodeUpgradeMajor  bool     `toml:"allow_node_upgrade_major"`
	RequireLockfileFrozen  bool     `toml:"require_lockfile_frozen"`
	EnforceCorepack        bool     `toml:"enforce_corepack"`
	AllowedPackageManagers []string `toml:"allowed_package_managers"`
	MinNodeVersion         string   `toml:"min_node_version"`
	MaxNodeVersion         string   `toml:"max_node_version"`
}

type ChecksConfig struct {
	Disabled []string `toml:"disabled"`

	// SeverityOverrides maps a check name to pass, info, warning, or
	// error. Values are kept as strings; the check layer interprets them.
	SeverityOverrides map[string]string `toml:"severity_overrides"`

	TimeoutSeconds int `toml:"timeout_seconds"`
}

type FrameworksConfig struct {
	Nextjs     NextjsConfig     `toml:"nextjs"`
	React      ReactConfig      `toml:"react"`
	TypeScript TypeScriptConfig `toml:"typescript"`
}

type NextjsConfig struct {
	RequiredVersion     string `toml:"required_version"`
	CheckCacheIntegrity bool   `toml:"check_cache_integrity"`
}

type ReactConfig struct {
	EnforceVersionMatch bool `toml:"enforce_version_match"`
}

type TypeScriptConfig struct {
	RequireTsconfig bool `toml:"require_tsconfig"`
	EnforceStrict   bool `toml:"enforce_strict"`
}

// Default returns the documented defaults: minor runtime upgrades and
// frozen lockfiles allowed, framework checks on, corepack not enforced.
func Default() *Config {
	return &Config{
		Policies: Policies{
			AllowNodeUpgradeMinor: true,
			RequireLockfileFrozen: true,
		},
		Frameworks: FrameworksConfig{
			Nextjs:     NextjsConfig{CheckCacheIntegrity: true},
			React:      ReactConfig{EnforceVersionMatch: true},
			TypeScript: TypeScriptConfig{RequireTsconfig: true},
		},
	}
}

// Load reads dir/.envdrift.toml. A missing file yields the defaults.
func Load(fs fsops.FS, dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if ok, _ := fs.Exists(path); !ok {
		return Default(), nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

const fileHeader = "# envdrift configuration\n# Checks listed under [checks].disabled are skipped; severity_overrides\n# remap a check's reported severity.\n\n"

// Save writes the configuration atomically with a header comment.
func Save(fs fsops.FS, cfg *Config, dir string) error {
	var sb strings.Builder
	sb.WriteString(fileHeader)
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := fs.AtomicWrite(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// IsCheckDisabled reports whether a check name is suppressed. Matching is
// case-insensitive; check names are a stable contract with user config.
func (c *Config) IsCheckDisabled(name string) bool {
	for _, disabled := range c.Checks.Disabled {
		if strings.EqualFold(disabled, name) {
			return true
		}
	}
	return false
}

// SeverityOverride returns the configured severity for a check name, or
// "" when none is set.
func (c *Config) SeverityOverride(name string) string {
	for key, value := range c.Checks.SeverityOverrides {
		if strings.EqualFold(key, name) {
			return strings.ToLower(value)
		}
	}
	return ""
}

// Validate rejects configurations with inconsistent version policies.
func (c *Config) Validate() error {
	minStr := c.Policies.MinNodeVersion
	maxStr := c.Policies.MaxNodeVersion
	if minStr == "" || maxStr == "" {
		return nil
	}

	min, ok := semver.Parse(minStr)
	if !ok {
		return fmt.Errorf("invalid min_node_version %q", minStr)
	}
	max, ok := semver.Parse(maxStr)
	if !ok {
		return fmt.Errorf("invalid max_node_version %q", maxStr)
	}
	if semver.Compare(min, max) > 0 {
		return fmt.Errorf("min_node_version (%s) is greater than max_node_version (%s)", minStr, maxStr)
	}
	return nil
}
