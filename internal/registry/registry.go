// Package registry looks up published package metadata over HTTP.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public npm registry.
const DefaultBaseURL = "https://registry.npmjs.org"

const requestTimeout = 15 * time.Second

// PackageVersion is one published version's metadata. HasPeerDeps
// distinguishes "declared an empty or partial peerDependencies object"
// from "declared none at all"; the resolver treats only the former as a
// compatibility statement.
type PackageVersion struct {
	Version          string
	PeerDependencies map[string]string
	HasPeerDeps      bool
}

// Lookup fetches the published versions of a package.
type Lookup interface {
	Versions(ctx context.Context, pkg string) ([]PackageVersion, error)
}

// Client talks to an npm-compatible registry.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client against the public npm registry.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    DefaultBaseURL,
	}
}

// NewClientWithBaseURL creates a Client against a custom registry URL.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Versions fetches all published versions of pkg. Scoped package names
// keep their slash percent-encoded as the registry expects.
func (c *Client) Versions(ctx context.Context, pkg string) ([]PackageVersion, error) {
	url := c.baseURL + "/" + strings.ReplaceAll(pkg, "/", "%2f")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query registry for %s: %w", pkg, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned %d for %s", resp.StatusCode, pkg)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry response for %s: %w", pkg, err)
	}

	var doc struct {
		Versions map[string]struct {
			PeerDependencies map[string]string `json:"peerDependencies"`
		} `json:"versions"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse registry response for %s: %w", pkg, err)
	}

	out := make([]PackageVersion, 0, len(doc.Versions))
	for version, info := range doc.Versions {
		out = append(out, PackageVersion{
			Version:          version,
			PeerDependencies: info.PeerDependencies,
			HasPeerDeps:      info.PeerDependencies != nil,
		})
	}
	return out, nil
}

// FakeLookup serves canned version lists, for tests.
type FakeLookup struct {
	Packages map[string][]PackageVersion
	Errs     map[string]error
}

// NewFakeLookup creates an empty FakeLookup.
func NewFakeLookup() *FakeLookup {
	return &FakeLookup{
		Packages: make(map[string][]PackageVersion),
		Errs:     make(map[string]error),
	}
}

// Versions returns the canned list for pkg.
func (f *FakeLookup) Versions(_ context.Context, pkg string) ([]PackageVersion, error) {
	if err, ok := f.Errs[pkg]; ok {
		return nil, err
	}
	return f.Packages[pkg], nil
}
