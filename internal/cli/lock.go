package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"envdrift/internal/engine"
)

var (
	lockSystem bool
	lockForce  bool
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Snapshot the current environment to env.lock",
	Long: `Probe the Node.js toolchain, lockfile, and installed dependency tree,
and write the result to env.lock so later runs can detect drift.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()
		dir, err := projectDir()
		if err != nil {
			return err
		}

		result, err := eng.Lock(context.Background(), &engine.LockRequest{
			Dir:           dir,
			IncludeSystem: lockSystem,
			Force:         lockForce,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result.Snapshot)
		}

		PrintSuccess(fmt.Sprintf("Wrote %s", result.Path))
		PrintLabelValue("Node.js", result.Snapshot.Toolchain.Node)
		PrintLabelValue("Package Manager", fmt.Sprintf("%s@%s",
			result.Snapshot.Toolchain.PackageManager,
			result.Snapshot.Toolchain.PackageManagerVersion))
		if result.Snapshot.Lockfile != nil {
			PrintLabelValue("Lockfile", result.Snapshot.Lockfile.Type)
		}
		return nil
	},
}

func init() {
	lockCmd.Flags().BoolVar(&lockSystem, "system", false, "Record OS and architecture in the snapshot")
	lockCmd.Flags().BoolVarP(&lockForce, "force", "f", false, "Overwrite an unreadable or incompatible snapshot")
}
