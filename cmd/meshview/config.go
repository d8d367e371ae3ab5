package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taigrr/meshview/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the effective configuration as YAML",
		Long:  "Write the configuration in effect (defaults, config file and flags merged) so it can be edited. Without -o it goes to the user config directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = filepath.Join(config.ConfigDir(), "config.yaml")
				if err := a.cfg.Save(); err != nil {
					return err
				}
			} else if err := a.cfg.SaveTo(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file")
	return cmd
}
