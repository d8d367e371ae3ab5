package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taigrr/meshview/internal/logger"
	"github.com/taigrr/meshview/internal/server"
	"github.com/taigrr/meshview/pkg/loader"
	"github.com/taigrr/meshview/pkg/session"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve <model>",
		Short: "Serve a viewer session over a websocket",
		Long:  "Load a model and host it for a browser canvas. Clients send pointer, wheel and control messages to /ws and receive camera frames.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := loader.Describe(args[0])
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			var store session.Store = session.NewMemoryStore()
			if a.cfg.Server.SessionFile != "" {
				store = session.NewFileStore(a.cfg.Server.SessionFile)
			}
			if err := store.Init(); err != nil {
				return err
			}
			sessions := session.NewManager(store,
				session.WithTTL(a.cfg.Server.TokenTTL),
				session.WithLogger(logger.Named("session")))

			srv, err := server.New(server.Options{
				Settings: a.cfg.Settings(),
				Sessions: sessions,
				Logger:   logger.Named("server"),
				SeedPath: a.cfg.Annotations.SeedPath,
			})
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := srv.Load(ctx, desc); err != nil {
				return err
			}
			err = srv.ListenAndServe(ctx, addr)
			if errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
