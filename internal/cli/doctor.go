package cli

import (
	"context"

	"github.com/spf13/cobra"

	"envdrift/internal/engine"
)

var doctorCategory string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose problems and show the repair plan",
	Long: `Run the check suite and translate every actionable finding into a
concrete repair step. Nothing is executed; use 'envdrift repair' for that.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := parseCategory(doctorCategory)
		if err != nil {
			return err
		}
		eng := newEngine()
		dir, err := projectDir()
		if err != nil {
			return err
		}

		result, err := eng.Doctor(context.Background(), &engine.DoctorRequest{
			Dir:      dir,
			Category: cat,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		if result.SchemaAdvisory != "" {
			PrintDim(result.SchemaAdvisory)
		}
		PrintFindings(result.Findings)

		if len(result.Actions) == 0 {
			PrintSuccess("Nothing to repair")
			return nil
		}
		PrintSection("Repair Plan")
		for i, a := range result.Actions {
			PrintAction(i, a)
		}
		PrintInfo("\nRun `envdrift repair` to execute, or `envdrift repair --safe-only` for the safe steps.")
		return nil
	},
}

func init() {
	doctorCmd.Flags().StringVarP(&doctorCategory, "category", "c", "", "Diagnose only one category (toolchain, lockfile, deps, frameworks)")
}
