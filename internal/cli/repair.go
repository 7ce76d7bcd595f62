package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"envdrift/internal/engine"
)

var (
	repairDryRun   bool
	repairSafeOnly bool
	repairYes      bool
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Execute the repair plan",
	Long: `Plan repairs for the current findings and execute them. Unsafe steps
require confirmation unless --yes or --safe-only is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()
		dir, err := projectDir()
		if err != nil {
			return err
		}
		ctx := context.Background()

		// Plan first so the user sees what would run before anything does.
		planned, err := eng.Repair(ctx, &engine.RepairRequest{Dir: dir, DryRun: true})
		if err != nil {
			return err
		}

		if len(planned.Actions) == 0 {
			if jsonOutput {
				return outputJSON(planned)
			}
			PrintSuccess("Nothing to repair")
			return nil
		}

		if !jsonOutput {
			PrintSection("Repair Plan")
			for i, a := range planned.Actions {
				PrintAction(i, a)
			}
		}
		if repairDryRun {
			if jsonOutput {
				return outputJSON(planned)
			}
			PrintInfo("\nDry run: nothing executed.")
			return nil
		}

		if !repairYes && !repairSafeOnly {
			fmt.Println()
			if !confirm("Execute this plan?") {
				PrintInfo("Aborted.")
				return nil
			}
		}

		outcomes, skipped := eng.ApplyActions(ctx, dir, planned.Actions, repairSafeOnly)
		planned.Outcomes = outcomes
		planned.Skipped = skipped

		if jsonOutput {
			return outputJSON(planned)
		}

		fmt.Println()
		failed := 0
		for _, o := range outcomes {
			if o.Err != nil {
				failed++
				PrintError(fmt.Sprintf("%s: %v", o.Action.Description, o.Err))
			} else {
				PrintSuccess(o.Action.Description)
			}
		}
		for _, a := range skipped {
			PrintWarning(fmt.Sprintf("Skipped (needs review): %s", a.Description))
			PrintDim(a.Command)
		}
		if failed > 0 {
			return fmt.Errorf("%s failed", PrintCount(failed, "repair", "repairs"))
		}
		return nil
	},
}

func init() {
	repairCmd.Flags().BoolVar(&repairDryRun, "dry-run", false, "Show the plan without executing")
	repairCmd.Flags().BoolVar(&repairSafeOnly, "safe-only", false, "Execute only actions classified safe")
	repairCmd.Flags().BoolVarP(&repairYes, "yes", "y", false, "Skip the confirmation prompt")
}
