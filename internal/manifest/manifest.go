// Package manifest reads the project manifest (package.json) and detects
// workspace/monorepo layouts.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the project manifest file name.
const FileName = "package.json"

// Manifest is the parsed project manifest. Unknown keys are retained in
// raw form so presence checks (eslintConfig, prettier) stay cheap.
type Manifest struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	Engines              map[string]string `json:"engines"`
	Workspaces           Workspaces        `json:"workspaces"`
	PackageManager       string            `json:"packageManager"`

	raw map[string]json.RawMessage
}

// Workspaces accepts both the array form and the yarn object form
// ({"packages": [...]}).
type Workspaces struct {
	Packages []string
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *Workspaces) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		w.Packages = arr
		return nil
	}

	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		w.Packages = obj.Packages
		return nil
	}

	// Unknown shape is treated as no workspaces, not an error.
	w.Packages = nil
	return nil
}

// HasKey reports whether a top-level key is present in the manifest.
func (m *Manifest) HasKey(key string) bool {
	_, ok := m.raw[key]
	return ok
}

// DeclaredVersion returns the declared range for a package from
// dependencies or devDependencies, with any leading ^ or ~ stripped.
func (m *Manifest) DeclaredVersion(name string) (string, bool) {
	for _, deps := range []map[string]string{m.Dependencies, m.DevDependencies} {
		if v, ok := deps[name]; ok {
			for len(v) > 0 && (v[0] == '^' || v[0] == '~') {
				v = v[1:]
			}
			return v, true
		}
	}
	return "", false
}

// DirectDependencies returns the union of dependencies and devDependencies
// names.
func (m *Manifest) DirectDependencies() map[string]struct{} {
	out := make(map[string]struct{})
	for name := range m.Dependencies {
		out[name] = struct{}{}
	}
	for name := range m.DevDependencies {
		out[name] = struct{}{}
	}
	return out
}

// DeclaredDependencies returns every declared dependency name across all
// four dependency sections.
func (m *Manifest) DeclaredDependencies() map[string]struct{} {
	out := make(map[string]struct{})
	for _, deps := range []map[string]string{
		m.Dependencies, m.DevDependencies, m.PeerDependencies, m.OptionalDependencies,
	} {
		for name := range deps {
			out[name] = struct{}{}
		}
	}
	return out
}

// Status describes whether the manifest could be read and parsed.
type Status int

const (
	// StatusValid means the manifest was read and parsed.
	StatusValid Status = iota

	// StatusMissing means no manifest exists in the directory.
	StatusMissing

	// StatusInvalid means the manifest exists but is not valid JSON.
	StatusInvalid

	// StatusUnreadable means the manifest exists but could not be read.
	StatusUnreadable
)

// Load reads and parses the manifest in dir. The detail string carries the
// parse or I/O failure for Invalid and Unreadable statuses.
func Load(dir string) (*Manifest, Status, string) {
	path := filepath.Join(dir, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, StatusMissing, ""
		}
		if os.IsPermission(err) {
			return nil, StatusUnreadable, "permission denied - check file permissions"
		}
		return nil, StatusUnreadable, fmt.Sprintf("cannot read file: %v", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, StatusInvalid, err.Error()
	}
	if err := json.Unmarshal(data, &m.raw); err != nil {
		return nil, StatusInvalid, err.Error()
	}

	return &m, StatusValid, ""
}

// LoadPackage reads the manifest of an installed package under
// node_modules. Returns nil if it cannot be read or parsed.
func LoadPackage(dir, packageName string) *Manifest {
	path := filepath.Join(dir, "node_modules", filepath.FromSlash(packageName), FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	_ = json.Unmarshal(data, &m.raw)
	return &m
}
