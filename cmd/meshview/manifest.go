package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/meshview/internal/logger"
)

func newManifestCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "manifest <model>",
		Short: "Write the scene manifest",
		Long:  "Load and normalize a model, then write manifest.json describing its hierarchy and per-mesh bounds.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create manifest: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := v.WriteManifest(w); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}
			if output != "" && output != "-" {
				logger.Info("wrote manifest", zap.String("path", output))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
