package cli

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"envdrift/internal/config"
	"envdrift/internal/fsops"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration envdrift will use for this project: the
contents of .envdrift.toml merged over the built-in defaults.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := projectDir()
		if err != nil {
			return err
		}

		cfg, err := config.Load(fsops.NewRealFS(), dir)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			PrintWarning(err.Error())
		}

		if jsonOutput {
			return outputJSON(cfg)
		}
		return toml.NewEncoder(os.Stdout).Encode(cfg)
	},
}
