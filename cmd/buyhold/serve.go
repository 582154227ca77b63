package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rpgo/buyhold/internal/api"
	"github.com/rpgo/buyhold/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve simulations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			series, err := a.dataManager(cfg.Data.Dir).LoadSeries()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := api.Options{
				CacheTTL: cfg.Server.CacheTTL,
				Workers:  cfg.Data.Workers,
				Logger:   a.logger,
			}
			if cfg.Output.SQLitePath != "" {
				store, err := storage.Open(cfg.Output.SQLitePath)
				if err != nil {
					return err
				}
				defer store.Close()
				opts.Store = store
			}
			if cfg.Server.RedisAddr != "" {
				cache := api.NewRedisCache(cfg.Server.RedisAddr)
				defer cache.Close()
				if err := cache.Ping(ctx); err != nil {
					a.logger.Warnf("redis at %s unavailable, using in-process cache: %v", cfg.Server.RedisAddr, err)
				} else {
					opts.Cache = cache
				}
			}

			return api.NewServer(series, opts).Run(ctx, cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
