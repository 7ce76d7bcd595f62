package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"envdrift/internal/engine"
)

var (
	resolveApply bool
	resolveYes   bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Detect peer dependency conflicts and suggest versions",
	Long: `Run the package manager's resolver in dry-run mode, extract peer
dependency conflicts from its output, and query the npm registry for
versions that would satisfy them. With --apply, package.json dependency
ranges are rewritten to the suggested versions.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()
		dir, err := projectDir()
		if err != nil {
			return err
		}

		result, err := eng.Resolve(context.Background(), &engine.ResolveRequest{Dir: dir})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		if len(result.Conflicts) == 0 {
			PrintSuccess("No dependency conflicts detected")
			return nil
		}

		PrintSection("Conflicts")
		for _, c := range result.Conflicts {
			PrintError(fmt.Sprintf("%s@%s conflicts with %s (requires %s)",
				c.Package, c.CurrentVersion, c.ConflictingDependency, c.RequiredRange))
		}

		if len(result.Resolutions) == 0 {
			PrintWarning("No compatible versions found; manual resolution needed.")
			return nil
		}

		PrintSection("Suggested Resolutions")
		for _, r := range result.Resolutions {
			PrintInfo(fmt.Sprintf("  %s: %s -> %s", r.Package, r.CurrentVersion, r.SuggestedVersion))
			PrintDim(r.Reason)
		}

		if !resolveApply {
			PrintInfo("\nRun `envdrift resolve --apply` to update package.json.")
			return nil
		}
		if !resolveYes {
			fmt.Println()
			if !confirm(fmt.Sprintf("Rewrite %s in package.json?",
				PrintCount(len(result.Resolutions), "dependency", "dependencies"))) {
				PrintInfo("Aborted.")
				return nil
			}
		}
		if err := eng.ApplyResolutions(dir, result.Resolutions); err != nil {
			return err
		}
		PrintSuccess("Updated package.json")
		PrintInfo("Reinstall dependencies to apply the new versions.")
		return nil
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveApply, "apply", false, "Rewrite package.json with the suggested versions")
	resolveCmd.Flags().BoolVarP(&resolveYes, "yes", "y", false, "Skip the confirmation prompt")
}
