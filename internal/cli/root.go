package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool
	dirFlag    string
)

// rootCmd is the root command for envdrift.
var rootCmd = &cobra.Command{
	Use:     "envdrift",
	Version: "dev",
	Short:   "Environment drift detection for Node.js projects",
	Long: `envdrift snapshots the toolchain and dependency state a project was
verified against, detects drift from that record, and plans safe repairs.

Run 'envdrift lock' once to record the environment, then 'envdrift verify'
in CI or before debugging to catch works-on-my-machine problems early.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "Project directory (default: current directory)")

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "snapshot",
		Title: "Snapshot:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "checks",
		Title: "Checks & Repair:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "setup",
		Title: "Setup:",
	})

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the envdrift CLI version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(os.Stdout, rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	// Snapshot commands
	lockCmd.GroupID = "snapshot"
	statusCmd.GroupID = "snapshot"
	diffCmd.GroupID = "snapshot"
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(diffCmd)

	// Checks & Repair commands
	verifyCmd.GroupID = "checks"
	doctorCmd.GroupID = "checks"
	repairCmd.GroupID = "checks"
	resolveCmd.GroupID = "checks"
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(resolveCmd)

	// Setup commands
	initCmd.GroupID = "setup"
	configCmd.GroupID = "setup"
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
