package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"envdrift/internal/engine"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show a field-by-field comparison against env.lock",
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
		if !result.HasSnapshot {
			return engine.ErrNoSnapshot
		}

		if jsonOutput {
			return outputJSON(result.Items)
		}

		if result.SchemaAdvisory != "" {
			PrintDim(result.SchemaAdvisory)
		}
		PrintSection("Environment Diff")
		for _, item := range result.Items {
			if item.Match {
				PrintSuccess(fmt.Sprintf("%s: %s", item.Field, item.Locked))
			} else {
				PrintError(fmt.Sprintf("%s: locked %s, found %s", item.Field, item.Locked, item.Current))
			}
		}
		if result.HasDrift {
			fmt.Println()
			return engine.ErrDriftDetected
		}
		return nil
	},
}
