package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/waypoint/internal/config"
	"github.com/vango-dev/waypoint/internal/content"
	"github.com/vango-dev/waypoint/internal/site"
	"github.com/vango-dev/waypoint/pkg/middleware"
	"github.com/vango-dev/waypoint/pkg/querycache"
	"github.com/vango-dev/waypoint/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		dir  string
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site",
		Long: `Serve the site over HTTP with live navigation.

Endpoints:
  /*                    server-rendered pages
  /_waypoint/live       live navigation WebSocket
  /healthz              health check
  /metrics              Prometheus metrics

Examples:
  waypoint serve
  waypoint serve --port=3000
  WAYPOINT_CONTENT_DRIVER=sqlite waypoint serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := cfg.Logger(os.Stderr)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			metrics := middleware.NewMetrics(middleware.WithRegistry(reg))

			store, closer, err := content.Open(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closer.Close()

			cache := querycache.New(
				querycache.WithStaleTime(cfg.Cache.StaleTime.Std()),
				querycache.WithObserver(metrics),
				querycache.WithLogger(logger),
			)
			table, err := site.New(store, cache, site.WithLogger(logger)).Table()
			if err != nil {
				return err
			}

			scfg := server.DefaultConfig()
			scfg.Address = cfg.Address()
			scfg.LoaderTimeout = cfg.Loader.Timeout.Std()
			srv, err := server.New(table,
				server.WithConfig(scfg),
				server.WithMetrics(metrics, reg),
				server.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			logger.Info("serving",
				"address", scfg.Address,
				"routes", len(table.Leaves()),
				"config", cfg.Path(),
			)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "C", ".", "Project directory containing waypoint.json")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}
