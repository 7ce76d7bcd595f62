package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"envdrift/internal/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a quick drift summary",
	Long:  `Compare the live environment against env.lock and summarize any drift.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()
		dir, err := projectDir()
		if err != nil {
			return err
		}

		result, err := eng.Status(context.Background(), &engine.StatusRequest{Dir: dir})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		if !result.HasSnapshot {
			PrintWarning("No env.lock found. Run `envdrift lock` to create one.")
			return nil
		}
		if result.SchemaAdvisory != "" {
			PrintDim(result.SchemaAdvisory)
		}

		if !result.HasDrift {
			PrintSuccess("Environment matches env.lock")
			return nil
		}

		drifted := 0
		for _, item := range result.Items {
			if !item.Match {
				drifted++
			}
		}
		PrintWarning(fmt.Sprintf("Drift detected in %s", PrintCount(drifted, "field", "fields")))
		for _, item := range result.Items {
			if !item.Match {
				PrintDim(fmt.Sprintf("%s: locked %s, found %s", item.Field, item.Locked, item.Current))
			}
		}
		PrintInfo("\nRun `envdrift diff` for details or `envdrift doctor` for fixes.")
		return nil
	},
}
