package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"envdrift/internal/config"
	"envdrift/internal/fsops"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .envdrift.toml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := projectDir()
		if err != nil {
			return err
		}

		fs := fsops.NewRealFS()
		path := filepath.Join(dir, config.FileName)
		if ok, _ := fs.Exists(path); ok && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
		}

		if err := config.Save(fs, config.Default(), dir); err != nil {
			return err
		}

		PrintSuccess(fmt.Sprintf("Wrote %s", path))
		PrintInfo("Run `envdrift lock` to snapshot the current environment.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration file")
}
