package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <model>",
		Short: "Display model information",
		Long:  "Display the format, hierarchy size, vertex and triangle counts, bounds, fitted camera and animation clips of a model.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			sc := v.Scene()
			st := sc.Stats()
			b := v.Bounds()
			size := b.Size()
			cam := v.Camera()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Model:      %s\n", args[0])
			fmt.Fprintf(out, "Format:     %s\n", strings.ToUpper(sc.Format))
			fmt.Fprintf(out, "Model ID:   %s\n", v.ModelID())
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Nodes:      %d\n", st.Nodes)
			fmt.Fprintf(out, "Meshes:     %d\n", st.Meshes)
			fmt.Fprintf(out, "Vertices:   %d\n", st.Vertices)
			fmt.Fprintf(out, "Triangles:  %d\n", st.Triangles)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Bounds Min: (%.3f, %.3f, %.3f)\n", b.Min.X, b.Min.Y, b.Min.Z)
			fmt.Fprintf(out, "Bounds Max: (%.3f, %.3f, %.3f)\n", b.Max.X, b.Max.Y, b.Max.Z)
			fmt.Fprintf(out, "Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
			fmt.Fprintf(out, "Camera:     distance %.3f, near %.4f, far %.1f\n", cam.Distance(), cam.Near, cam.Far)

			if len(sc.Clips) > 0 {
				fmt.Fprintln(out)
				for _, c := range sc.Clips {
					fmt.Fprintf(out, "Clip:       %s (%.2fs, %d channels)\n", c.Name, c.Duration, len(c.Channels))
				}
			}
			return nil
		},
	}
}
