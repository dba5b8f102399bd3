package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/njchilds90/calctool/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON-over-HTTP analysis server",
		Long: `Serves the analysis engine over HTTP:

  POST /analyze       run an analysis request
  POST /fast/tangent  tangent estimate from a sampled series
  POST /fast/riemann  Riemann rectangles from a sampled series
  GET  /schema        request schema
  GET  /health        health check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.mustEngine()
			if err != nil {
				return err
			}
			cfg := a.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.New(engine, cfg, a.logger.Named("server")).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
