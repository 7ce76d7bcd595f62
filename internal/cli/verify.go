package cli

import (
	"context"

	"github.com/spf13/cobra"

	"envdrift/internal/engine"
)

var (
	verifyCategory string
	verifyWarnOnly bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run environment checks and fail on errors",
	Long: `Run the full check suite against the project. Exits non-zero when any
check reports an error, which makes this suitable for CI gates.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := parseCategory(verifyCategory)
		if err != nil {
			return err
		}
		eng := newEngine()
		dir, err := projectDir()
		if err != nil {
			return err
		}

		result, err := eng.Verify(context.Background(), &engine.VerifyRequest{
			Dir:      dir,
			Category: cat,
			WarnOnly: verifyWarnOnly,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := outputJSON(result.Findings); err != nil {
				return err
			}
		} else {
			if !result.HasSnapshot {
				PrintDim("No env.lock found; snapshot comparisons skipped.")
			}
			if result.SchemaAdvisory != "" {
				PrintDim(result.SchemaAdvisory)
			}
			PrintFindings(result.Findings)
		}

		if result.Failed {
			return engine.ErrDriftDetected
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyCategory, "category", "c", "", "Run only one category (toolchain, lockfile, deps, frameworks)")
	verifyCmd.Flags().BoolVar(&verifyWarnOnly, "warn-only", false, "Report errors without failing the run")
}
