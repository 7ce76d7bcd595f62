package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"envdrift/internal/checks"
	"envdrift/internal/clock"
	"envdrift/internal/engine"
	"envdrift/internal/execx"
	"envdrift/internal/fsops"
	"envdrift/internal/hash"
	"envdrift/internal/registry"
)

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine() *engine.Engine {
	fs := fsops.NewRealFS()
	hasher := hash.NewSHA256Hasher()
	clk := &clock.RealClock{}
	runner := execx.NewRealRunner()
	lookup := registry.NewClient()

	return engine.New(fs, hasher, clk, runner, lookup)
}

// projectDir resolves the directory commands operate on. The --dir flag
// overrides the working directory.
func projectDir() (string, error) {
	if dirFlag != "" {
		return dirFlag, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}

// parseCategory validates the --category flag value.
func parseCategory(s string) (checks.Category, error) {
	cat, ok := checks.ParseCategory(s)
	if !ok {
		return checks.CategoryAll, fmt.Errorf("%w: %q (expected toolchain, lockfile, deps, or frameworks)", engine.ErrInvalidCategory, s)
	}
	return cat, nil
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// confirm prompts on stdout and reads a yes/no answer from stdin.
// Anything other than y/yes declines.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	var answer string
	if _, err := fmt.Scanln(&answer); err != nil {
		return false
	}
	return answer == "y" || answer == "Y" || answer == "yes"
}
