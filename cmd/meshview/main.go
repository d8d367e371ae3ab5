// meshview - headless 3D viewport controller
// Loads GLB, GLTF, OBJ, FBX and STL models, frames them, and exports the
// scene manifest and annotations. serve drives a browser canvas over a
// websocket.
//
// Models are file paths, http(s) URLs, or bundled samples such as
// res:bike.obj.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taigrr/meshview/internal/config"
	"github.com/taigrr/meshview/internal/logger"
	"github.com/taigrr/meshview/pkg/loader"
	"github.com/taigrr/meshview/pkg/viewport"
)

var version = "dev"

// app carries state shared by every command.
type app struct {
	flags config.Flags
	cfg   *config.Config
}

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "meshview",
		Short: "Headless 3D viewport controller",
		Long: `meshview - headless 3D viewport controller

Load a 3D model, frame it, search its annotations and export its manifest.

Formats: glb, gltf, obj, fbx, stl
Models:  file paths, http(s) URLs, or bundled samples (see "meshview samples")`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.flags.Config, a.flags)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	a.flags.Register(cmd.PersistentFlags())

	cmd.AddCommand(
		newInfoCmd(a),
		newManifestCmd(a),
		newSearchCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newSamplesCmd(),
	)
	return cmd
}

// open loads url into an offline viewer driven by a manual clock.
func (a *app) open(ctx context.Context, url string) (*viewport.Viewer, *viewport.ManualScheduler, error) {
	desc, err := loader.Describe(url)
	if err != nil {
		return nil, nil, err
	}
	log := logger.Named("viewer")
	sched := viewport.NewManualScheduler(time.Now())
	v := viewport.New(
		viewport.WithSettings(a.cfg.Settings()),
		viewport.WithScheduler(sched),
		viewport.WithLoader(loader.New(loader.WithLogger(logger.Named("loader")))),
		viewport.WithLogger(log),
	)
	if err := v.Load(ctx, desc); err != nil {
		v.Close()
		return nil, nil, err
	}
	log.Debug("offline viewer ready", zap.String("model", url))
	return v, sched, nil
}

func newSamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "List bundled sample models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range loader.Samples() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
