package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taigrr/meshview/pkg/viewport"
)

// maxSettleFrames bounds the offline focus animation.
const maxSettleFrames = 10000

func newSearchCmd(a *app) *cobra.Command {
	var annotations string
	cmd := &cobra.Command{
		Use:   "search <model> <query>",
		Short: "Focus the first annotation matching a query",
		Long:  "Seed annotations, search their labels case-insensitively, and print the focused mesh and the camera the viewer settles on.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, sched, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			seed := annotations
			if seed == "" {
				seed = a.cfg.Annotations.SeedPath
			}
			if err := v.SeedAnnotations(seed); err != nil {
				return err
			}

			query := strings.Join(args[1:], " ")
			info, err := v.Search(query)
			if err != nil {
				return err
			}
			sched.RunUntilIdle(a.cfg.Settings().Transition/10+1, maxSettleFrames)

			out := struct {
				Focus  viewport.FocusInfo   `json:"focus"`
				Camera viewport.CameraState `json:"camera"`
			}{info, v.Camera()}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&annotations, "annotations", "", "annotations.json to seed from (default from config)")
	return cmd
}
